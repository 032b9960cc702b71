package scheduler

import (
	"bytes"
	"context"
	"errors"
	"path"
	"runtime"
	"slices"
	"strings"

	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// runStep applies one step to the task's assets. Batch steps see the whole
// set; every other step processes files concurrently and keeps their order.
func (s *Scheduler) runStep(ctx context.Context, step domain.Step, assets []domain.Asset) ([]domain.Asset, error) {
	if step.Kind.IsBuiltin() {
		return runBuiltin(step, assets), nil
	}

	t, ok := s.transformers[step.Kind]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownStepKind, "no transformer registered"), "kind", string(step.Kind))
	}

	results := make([][]domain.Asset, len(assets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, a := range assets {
		g.Go(func() error {
			out, err := t.Transform(gctx, step, a)
			if err != nil {
				return domain.NewStepFailure(a.Path, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(results...), nil
}

// runBuiltin interprets the step kinds that need no transformer.
func runBuiltin(step domain.Step, assets []domain.Asset) []domain.Asset {
	switch step.Kind {
	case domain.KindConcat:
		return concat(step.Concat, assets)
	case domain.KindRename:
		return rename(step.Rename, assets)
	default:
		return assets
	}
}

// asStepFailure fills the task and step of a failure raised by a step, or
// wraps any other error into one.
func asStepFailure(err error, task string, kind domain.StepKind) error {
	var f *domain.StepFailure
	if !errors.As(err, &f) {
		f = &domain.StepFailure{Err: err}
	}
	if f.Task == "" {
		f.Task = task
	}
	if f.Step == "" {
		f.Step = kind
	}
	return f
}

// concat joins the assets in path order into one file. An empty set stays empty.
func concat(opts *domain.ConcatOptions, assets []domain.Asset) []domain.Asset {
	if len(assets) == 0 || opts == nil {
		return nil
	}

	sorted := slices.Clone(assets)
	slices.SortStableFunc(sorted, func(a, b domain.Asset) int { return strings.Compare(a.Path, b.Path) })

	sep := []byte("\n")
	if opts.Separator != nil {
		sep = []byte(*opts.Separator)
	}

	parts := make([][]byte, len(sorted))
	for i, a := range sorted {
		parts[i] = a.Data
	}

	joined := sorted[0].WithPath(path.Clean(opts.File))
	return []domain.Asset{joined.WithData(bytes.Join(parts, sep))}
}

// rename rewrites the basename of every asset: prefix + stem + suffix + ext.
func rename(opts *domain.RenameOptions, assets []domain.Asset) []domain.Asset {
	if opts == nil {
		return assets
	}

	out := make([]domain.Asset, len(assets))
	for i, a := range assets {
		dir, file := path.Split(a.Path)
		ext := path.Ext(file)
		stem := strings.TrimSuffix(file, ext)
		if opts.Extname != "" {
			ext = opts.Extname
		}
		out[i] = a.WithPath(dir + opts.Prefix + stem + opts.Suffix + ext)
	}
	return out
}
