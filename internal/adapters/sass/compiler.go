// Package sass compiles SCSS stylesheets with the dart-sass command line tool.
package sass

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/glaze/internal/adapters/shell"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultBinary is the executable looked up on PATH.
const DefaultBinary = "sass"

var _ ports.Transformer = (*Compiler)(nil)

// Compiler implements the compile-stylesheet step.
type Compiler struct {
	runner ports.CommandRunner
	binary string
}

// NewCompiler creates a Compiler running DefaultBinary through runner.
func NewCompiler(runner ports.CommandRunner) *Compiler {
	return &Compiler{runner: runner, binary: DefaultBinary}
}

// Kind returns domain.KindCompileStylesheet.
func (c *Compiler) Kind() domain.StepKind {
	return domain.KindCompileStylesheet
}

// Transform compiles one stylesheet. Partials (files starting with "_") are
// only compiled through the stylesheets that import them and produce no output.
func (c *Compiler) Transform(ctx context.Context, step domain.Step, asset domain.Asset) ([]domain.Asset, error) {
	if strings.HasPrefix(path.Base(asset.Path), "_") {
		return nil, nil
	}

	out, err := c.runner.Run(ctx, domain.Command{
		Name:  c.binary,
		Args:  c.args(step.Stylesheet, asset),
		Dir:   asset.Root,
		Stdin: asset.Data,
	})
	if err != nil {
		msg := shell.Stderr(err)
		if msg == "" {
			msg = err.Error()
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrStylesheetCompileFailed, msg), "compiler", c.binary)
	}

	css := asset.WithPath(strings.TrimSuffix(asset.Path, path.Ext(asset.Path)) + ".css")
	return []domain.Asset{css.WithData(out)}, nil
}

func (c *Compiler) args(opts *domain.StylesheetOptions, asset domain.Asset) []string {
	style := "compressed"
	var loadPaths []string
	if opts != nil {
		if opts.Style != "" {
			style = opts.Style
		}
		loadPaths = opts.LoadPaths
	}

	args := []string{"--stdin", "--no-source-map", "--style=" + style}
	if asset.Source != "" {
		args = append(args, "--load-path="+filepath.Dir(asset.Source))
	}
	for _, lp := range loadPaths {
		if !filepath.IsAbs(lp) && asset.Root != "" {
			lp = filepath.Join(asset.Root, filepath.FromSlash(lp))
		}
		args = append(args, "--load-path="+lp)
	}
	return args
}
