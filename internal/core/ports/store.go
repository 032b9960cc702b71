package ports

import "go.trai.ch/glaze/internal/core/domain"

// ManifestStore persists the outputs each task wrote on its last run.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ManifestStore interface {
	// Get retrieves the manifest for a task. Returns nil, nil if not found.
	Get(root, taskName string) (*domain.Manifest, error)
	// Put stores the manifest.
	Put(root string, manifest domain.Manifest) error
}
