// Package cas stores per-task output manifests under the project's .glaze directory.
package cas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ManifestStore = (*Store)(nil)

// Store implements ports.ManifestStore using a file-per-task strategy.
type Store struct{}

// NewStore creates a new manifest store.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the manifest for a given task name.
func (s *Store) Get(root, taskName string) (*domain.Manifest, error) {
	filename := s.filename(root, taskName)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "task", taskName)
	}

	var manifest domain.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestUnmarshalFailed.Error()), "task", taskName)
	}

	return &manifest, nil
}

// Put stores the manifest, replacing the previous one atomically.
func (s *Store) Put(root string, manifest domain.Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrManifestMarshalFailed.Error())
	}

	filename := s.filename(root, manifest.TaskName)
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // Removing an already renamed file fails harmlessly

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}

	return nil
}

func (s *Store) filename(root, taskName string) string {
	name := fmt.Sprintf("%016x.json", xxhash.Sum64String(taskName))
	return filepath.Join(root, domain.DefaultManifestPath(), name)
}
