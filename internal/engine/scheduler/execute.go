package scheduler

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// output is an asset placed at its root-relative destination.
type output struct {
	rel   string
	abs   string
	asset domain.Asset
}

func (s *Scheduler) execute(ctx context.Context, root string, task *domain.Task) (Result, error) {
	name := task.Name.String()

	assets, err := s.readInputs(root, task)
	if err != nil {
		return Result{}, zerr.With(err, "task", name)
	}

	for _, step := range task.Steps {
		assets, err = s.runStep(ctx, step, assets)
		if err != nil {
			return Result{}, asStepFailure(err, name, step.Kind)
		}
	}

	outputs, err := placeOutputs(root, task.Output, assets)
	if err != nil {
		return Result{}, zerr.With(err, "task", name)
	}

	res := Result{Task: name}
	for _, out := range outputs {
		changed, err := s.writeOutput(out)
		if err != nil {
			return Result{}, zerr.With(err, "task", name)
		}
		if changed {
			res.Written = append(res.Written, out.rel)
		} else {
			res.Unchanged = append(res.Unchanged, out.rel)
		}
	}

	res.Removed, err = s.pruneStale(root, task, outputs)
	if err != nil {
		return Result{}, zerr.With(err, "task", name)
	}
	return res, nil
}

// readInputs resolves the selector and loads every selected file. Asset
// paths are relative to the base of the include pattern that selected them.
func (s *Scheduler) readInputs(root string, task *domain.Task) ([]domain.Asset, error) {
	files, err := s.resolver.Resolve(root, task.Selector)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrInputResolutionFailed.Error())
	}

	assets := make([]domain.Asset, len(files))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, rel := range files {
		g.Go(func() error {
			abs := filepath.Join(root, filepath.FromSlash(rel))
			data, err := os.ReadFile(abs)
			if err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrInputReadFailed.Error()), "file", rel)
			}
			assets[i] = domain.Asset{
				Path:   relativeTo(task.Selector.BaseFor(rel), rel),
				Source: abs,
				Root:   root,
				Data:   data,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return assets, nil
}

// relativeTo returns p relative to base. Paths outside base keep only their
// file name.
func relativeTo(base, p string) string {
	if base == "." || base == "" {
		return p
	}
	if rest, ok := strings.CutPrefix(p, base+"/"); ok {
		return rest
	}
	return path.Base(p)
}

// placeOutputs maps assets below the task's output directory. Two assets
// landing on the same path fail the task.
func placeOutputs(root, outDir string, assets []domain.Asset) ([]output, error) {
	byPath := make(map[string]domain.Asset, len(assets))
	outputs := make([]output, 0, len(assets))
	for _, a := range assets {
		rel := path.Join(outDir, a.Path)
		if prev, ok := byPath[rel]; ok {
			err := zerr.With(zerr.Wrap(domain.ErrOutputCollision, "cannot place output"), "file", rel)
			return nil, zerr.With(zerr.With(err, "first", prev.Source), "second", a.Source)
		}
		abs, err := insideRoot(root, rel)
		if err != nil {
			return nil, err
		}
		byPath[rel] = a
		outputs = append(outputs, output{rel: rel, abs: abs, asset: a})
	}
	slices.SortFunc(outputs, func(a, b output) int { return strings.Compare(a.rel, b.rel) })
	return outputs, nil
}

// insideRoot resolves a root-relative path and refuses paths that escape root.
func insideRoot(root, rel string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}
	abs := filepath.Join(rootAbs, filepath.FromSlash(rel))
	r, err := filepath.Rel(rootAbs, abs)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", zerr.With(zerr.Wrap(domain.ErrOutputPathOutsideRoot, "cannot write output"), "file", rel)
	}
	return abs, nil
}

// writeOutput writes out unless the file on disk already has the same
// content. It reports whether the file changed.
func (s *Scheduler) writeOutput(out output) (bool, error) {
	if existing, err := s.hasher.HashFile(out.abs); err == nil && existing == s.hasher.HashBytes(out.asset.Data) {
		return false, nil
	}

	dir := filepath.Dir(out.abs)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrOutputWriteFailed.Error()), "file", out.rel)
	}

	tmp, err := os.CreateTemp(dir, ".glaze-*")
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrOutputWriteFailed.Error()), "file", out.rel)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(out.asset.Data)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(tmpName, domain.FilePerm)
	}
	if werr == nil {
		werr = os.Rename(tmpName, out.abs)
	}
	if werr != nil {
		_ = os.Remove(tmpName)
		return false, zerr.With(zerr.Wrap(werr, domain.ErrOutputWriteFailed.Error()), "file", out.rel)
	}
	return true, nil
}

// pruneStale deletes outputs recorded by the previous run that this run did
// not produce, then records the current outputs.
func (s *Scheduler) pruneStale(root string, task *domain.Task, outputs []output) ([]string, error) {
	name := task.Name.String()

	prev, err := s.store.Get(root, name)
	if err != nil {
		return nil, err
	}

	current := make([]string, len(outputs))
	for i, out := range outputs {
		current[i] = out.rel
	}

	var removed []string
	if prev != nil {
		for _, rel := range prev.Outputs {
			if slices.Contains(current, rel) {
				continue
			}
			abs, err := insideRoot(root, rel)
			if err != nil {
				return nil, err
			}
			if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrFailedToCleanOutput.Error()), "file", rel)
			}
			removed = append(removed, rel)
			if outDir, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(task.Output))); err == nil {
				pruneEmptyDirs(filepath.Dir(abs), outDir)
			}
		}
	}

	err = s.store.Put(root, domain.Manifest{
		TaskName:  name,
		Outputs:   current,
		Timestamp: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// pruneEmptyDirs removes dir and its empty parents up to, but excluding, stop.
func pruneEmptyDirs(dir, stop string) {
	stop = filepath.Clean(stop)
	for dir = filepath.Clean(dir); dir != stop && strings.HasPrefix(dir, stop+string(filepath.Separator)); dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			return
		}
	}
}
