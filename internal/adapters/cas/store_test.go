package cas_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glaze/internal/adapters/cas"
	"go.trai.ch/glaze/internal/core/domain"
)

func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	store := cas.NewStore()

	manifest := domain.Manifest{
		TaskName:  "images",
		Outputs:   []string{"dist/images/logo.png", "dist/images/icons/a.svg"},
		Timestamp: time.Now().Truncate(time.Second).UTC(),
	}

	t.Run("put and get", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, store.Put(tmpDir, manifest))

		got, err := store.Get(tmpDir, "images")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, manifest, *got)
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()
		got, err := store.Get(tmpDir, "missing-task")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStore_PutOverwrites(t *testing.T) {
	tmpDir := t.TempDir()
	store := cas.NewStore()

	require.NoError(t, store.Put(tmpDir, domain.Manifest{TaskName: "html", Outputs: []string{"dist/a.html"}}))
	require.NoError(t, store.Put(tmpDir, domain.Manifest{TaskName: "html", Outputs: []string{"dist/b.html"}}))

	got, err := store.Get(tmpDir, "html")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"dist/b.html"}, got.Outputs)

	entries, err := os.ReadDir(filepath.Join(tmpDir, domain.DefaultManifestPath()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestStore_GetCorrupt(t *testing.T) {
	tmpDir := t.TempDir()
	store := cas.NewStore()

	require.NoError(t, store.Put(tmpDir, domain.Manifest{TaskName: "fonts"}))

	dir := filepath.Join(tmpDir, domain.DefaultManifestPath())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	//nolint:gosec // Test file permissions
	require.NoError(t, os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("{ invalid json"), 0o600))

	_, err = store.Get(tmpDir, "fonts")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrManifestUnmarshalFailed.Error())
}
