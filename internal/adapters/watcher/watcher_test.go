package watcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glaze/internal/adapters/watcher"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/glaze/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestConvertEvent(t *testing.T) {
	tests := []struct {
		name   string
		op     fsnotify.Op
		want   ports.WatchOp
		wantOK bool
	}{
		{name: "write", op: fsnotify.Write, want: ports.OpWrite, wantOK: true},
		{name: "create", op: fsnotify.Create, want: ports.OpCreate, wantOK: true},
		{name: "remove", op: fsnotify.Remove, want: ports.OpRemove, wantOK: true},
		{name: "rename", op: fsnotify.Rename, want: ports.OpRename, wantOK: true},
		{name: "write wins over chmod", op: fsnotify.Write | fsnotify.Chmod, want: ports.OpWrite, wantOK: true},
		{name: "chmod ignored", op: fsnotify.Chmod, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := watcher.ConvertEvent(fsnotify.Event{Name: "/p/app/a.css", Op: tt.op})
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got.Operation)
				assert.Equal(t, "/p/app/a.css", got.Path)
			}
		})
	}
}

func TestWatchedDirs_SkipsInternalDirectories(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"app/js", "node_modules/x", ".git/objects", ".glaze/manifests"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o750))
	}

	dirs := watcher.WatchedDirs(root)

	assert.ElementsMatch(t, []string{root, filepath.Join(root, "app"), filepath.Join(root, "app", "js")}, dirs)
}

func TestWatcher_DeliversEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scss"), 0o750))

	w, err := watcher.NewWatcher(mockLogger)
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context(), root))
	t.Cleanup(func() { _ = w.Stop() })

	received := make(chan ports.WatchEvent, 16)
	go func() {
		for event := range w.Events() {
			received <- event
		}
		close(received)
	}()

	target := filepath.Join(root, "scss", "main.scss")
	require.NoError(t, os.WriteFile(target, []byte("a{}"), 0o600))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case event, ok := <-received:
			require.True(t, ok, "event stream closed before the write was seen")
			if event.Path == target {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for watch event")
		}
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	w, err := watcher.NewWatcher(mockLogger)
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
