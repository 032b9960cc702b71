package esbuild

import (
	"context"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Transformer = (*Prefixer)(nil)

// Prefixer implements the prefix-css step. esbuild lowers modern syntax and
// adds the vendor prefixes required by the configured browser engines.
type Prefixer struct{}

// NewPrefixer creates a new Prefixer.
func NewPrefixer() *Prefixer {
	return &Prefixer{}
}

// Kind returns domain.KindPrefixCSS.
func (p *Prefixer) Kind() domain.StepKind {
	return domain.KindPrefixCSS
}

// Transform prefixes and optionally minifies one stylesheet.
func (p *Prefixer) Transform(_ context.Context, step domain.Step, asset domain.Asset) ([]domain.Asset, error) {
	opts := domain.PrefixOptions{Browsers: domain.DefaultBrowsers()}
	if step.Prefix != nil {
		opts = *step.Prefix
	}

	targets, err := engineTargets(opts.Browsers)
	if err != nil {
		return nil, err
	}

	result := api.Transform(string(asset.Data), api.TransformOptions{
		Loader:           api.LoaderCSS,
		Engines:          targets,
		MinifyWhitespace: opts.Minify,
		MinifySyntax:     opts.Minify,
		Sourcefile:       asset.Path,
		LogLevel:         api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return nil, transformError(domain.ErrCSSTransformFailed, result.Errors)
	}

	return []domain.Asset{asset.WithData(result.Code)}, nil
}

// engineTargets converts a browser map into esbuild engines, sorted by name
// so identical options always produce identical output.
func engineTargets(browsers map[string]string) ([]api.Engine, error) {
	names := make([]string, 0, len(browsers))
	for name := range browsers {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]api.Engine, 0, len(names))
	for _, name := range names {
		engine, ok := engines[strings.ToLower(name)]
		if !ok {
			return nil, zerr.With(zerr.Wrap(domain.ErrCSSTransformFailed, "unknown browser"), "browser", name)
		}
		out = append(out, api.Engine{Name: engine, Version: browsers[name]})
	}
	return out, nil
}
