package scheduler

import "go.trai.ch/glaze/internal/core/domain"

// Concat exposes concat for testing.
func Concat(opts *domain.ConcatOptions, assets []domain.Asset) []domain.Asset {
	return concat(opts, assets)
}

// Rename exposes rename for testing.
func Rename(opts *domain.RenameOptions, assets []domain.Asset) []domain.Asset {
	return rename(opts, assets)
}

// RelativeTo exposes relativeTo for testing.
func RelativeTo(base, p string) string {
	return relativeTo(base, p)
}
