package ports

import "go.trai.ch/glaze/internal/core/domain"

// InputResolver expands task selectors against the filesystem.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type InputResolver interface {
	// Resolve returns the files selected by sel below root, as sorted,
	// slash-separated paths relative to root.
	Resolve(root string, sel domain.Selector) ([]string, error)
	// Matches reports whether the root-relative path is selected by sel.
	Matches(sel domain.Selector, path string) bool
}
