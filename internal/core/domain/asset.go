package domain

import (
	"path"
	"strings"
)

// Asset is one file flowing through a task's steps.
type Asset struct {
	// Path is slash-separated and relative to the task's output directory.
	Path string
	// Source is the absolute path of the file the asset was read from.
	// Assets created by a step (sourcemaps, concatenations) keep the source of their first input.
	Source string
	// Root is the absolute project root. Steps resolve configured
	// root-relative paths (load paths, include bases) against it.
	Root string
	Data []byte
}

// Ext returns the lower-cased extension of the asset path, including the dot.
func (a Asset) Ext() string {
	return strings.ToLower(path.Ext(a.Path))
}

// WithPath returns a copy of a with a new relative path.
func (a Asset) WithPath(p string) Asset {
	a.Path = p
	return a
}

// WithData returns a copy of a with new contents.
func (a Asset) WithData(data []byte) Asset {
	a.Data = data
	return a
}
