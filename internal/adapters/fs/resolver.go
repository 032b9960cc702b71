package fs

import (
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements the InputResolver interface using doublestar globs.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve expands the selector's include patterns below root and drops every
// file matched by an exclude pattern. Patterns that match nothing are not an
// error: a task with no sources simply produces no outputs.
func (r *Resolver) Resolve(root string, sel domain.Selector) ([]string, error) {
	if len(sel.Include) == 0 {
		return nil, domain.ErrEmptySelector
	}

	fsys := os.DirFS(root)
	unique := make(map[string]bool)

	for _, pattern := range sel.Include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidPattern, err.Error()), "pattern", pattern)
		}

		for _, match := range matches {
			if !excluded(sel.Exclude, match) {
				unique[match] = true
			}
		}
	}

	result := make([]string, 0, len(unique))
	for path := range unique {
		result = append(result, path)
	}
	slices.Sort(result)

	return result, nil
}

// Matches reports whether a root-relative, slash-separated path is selected.
func (r *Resolver) Matches(sel domain.Selector, path string) bool {
	if excluded(sel.Exclude, path) {
		return false
	}
	for _, pattern := range sel.Include {
		if doublestar.MatchUnvalidated(pattern, path) {
			return true
		}
	}
	return false
}

func excluded(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if doublestar.MatchUnvalidated(pattern, path) {
			return true
		}
	}
	return false
}
