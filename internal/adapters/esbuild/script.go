package esbuild

import (
	"context"
	"path"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
)

var _ ports.Transformer = (*ScriptMinifier)(nil)

// ScriptMinifier implements the minify-script step.
type ScriptMinifier struct{}

// NewScriptMinifier creates a new ScriptMinifier.
func NewScriptMinifier() *ScriptMinifier {
	return &ScriptMinifier{}
}

// Kind returns domain.KindMinifyScript.
func (m *ScriptMinifier) Kind() domain.StepKind {
	return domain.KindMinifyScript
}

// Transform minifies a script. When a sourcemap directory is configured the
// map is returned as a second asset at <dir>/<name>.map, relative to the
// script, and the script ends with a sourceMappingURL comment pointing at it.
func (m *ScriptMinifier) Transform(_ context.Context, step domain.Step, asset domain.Asset) ([]domain.Asset, error) {
	var opts domain.ScriptOptions
	if step.Script != nil {
		opts = *step.Script
	}

	target, err := parseTarget(opts.Target)
	if err != nil {
		return nil, err
	}

	name := path.Base(asset.Path)
	sourcemap := api.SourceMapNone
	if opts.SourceMapDir != "" {
		sourcemap = api.SourceMapExternal
	}

	result := api.Transform(string(asset.Data), api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            target,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		Sourcemap:         sourcemap,
		SourcesContent:    api.SourcesContentInclude,
		Sourcefile:        name,
		LogLevel:          api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return nil, transformError(domain.ErrScriptTransformFailed, result.Errors)
	}

	if opts.SourceMapDir == "" {
		return []domain.Asset{asset.WithData(result.Code)}, nil
	}

	mapRel := path.Join(path.Clean(opts.SourceMapDir), name+".map")
	code := append(result.Code, []byte("//# sourceMappingURL="+mapRel+"\n")...)
	sourceMap := asset.WithPath(path.Join(path.Dir(asset.Path), mapRel)).WithData(result.Map)

	return []domain.Asset{asset.WithData(code), sourceMap}, nil
}
