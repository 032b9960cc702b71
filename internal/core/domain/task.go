// Package domain contains the core models of the asset pipeline: tasks,
// their step descriptors, watch rules and the pipeline that groups them.
package domain

import (
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Task is a named transformation from a set of source files to an output directory.
type Task struct {
	Name     InternedString
	Selector Selector
	// Output is the destination directory, relative to the project root.
	Output string
	Steps  []Step
	// Implicit lists patterns of files the steps read without emitting them,
	// such as HTML partials pulled in by includes. They count as task inputs
	// for watch rules.
	Implicit []string
}

// Selector picks the source files of a task.
// All patterns are slash-separated and relative to the project root.
type Selector struct {
	Include []string
	Exclude []string
	// Base is the directory output paths are computed relative to.
	// When empty, the static prefix of the first include pattern is used.
	Base string
}

// NewSelector builds a Selector from glob patterns, where a leading
// "!" marks an exclusion.
func NewSelector(patterns ...string) Selector {
	var s Selector
	for _, p := range patterns {
		if rest, ok := strings.CutPrefix(p, "!"); ok {
			s.Exclude = append(s.Exclude, rest)
			continue
		}
		s.Include = append(s.Include, p)
	}
	return s
}

// WithBase returns a copy of s with an explicit base directory.
func (s Selector) WithBase(base string) Selector {
	s.Base = base
	return s
}

// Patterns returns the selector as glob patterns with "!" exclusions.
func (s Selector) Patterns() []string {
	out := slices.Clone(s.Include)
	for _, e := range s.Exclude {
		out = append(out, "!"+e)
	}
	return out
}

// BaseDir returns the directory output paths are relative to.
func (s Selector) BaseDir() string {
	if s.Base != "" {
		return path.Clean(s.Base)
	}
	if len(s.Include) == 0 {
		return "."
	}
	return GlobParent(s.Include[0])
}

// BaseFor returns the base directory for a selected file: the explicit Base
// when set, otherwise the glob parent of the first include pattern that
// matches p.
func (s Selector) BaseFor(p string) string {
	if s.Base != "" {
		return path.Clean(s.Base)
	}
	for _, pattern := range s.Include {
		if doublestar.MatchUnvalidated(pattern, p) {
			return GlobParent(pattern)
		}
	}
	return s.BaseDir()
}

// GlobParent returns the longest leading directory of pattern that holds no
// glob meta characters. For a literal file path it returns its directory.
func GlobParent(pattern string) string {
	dir := "."
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if i == len(segments)-1 || strings.ContainsAny(seg, "*?[{") {
			break
		}
		dir = path.Join(dir, seg)
	}
	return dir
}
