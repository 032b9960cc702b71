package watcher

import (
	"github.com/fsnotify/fsnotify"
	"go.trai.ch/glaze/internal/core/ports"
)

// ConvertEvent exposes convertEvent for testing.
func ConvertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	return convertEvent(event)
}

// WatchedDirs exposes the directories Start would watch below root.
func WatchedDirs(root string) []string {
	var dirs []string
	for dir := range watchRecursively(root) {
		dirs = append(dirs, dir)
	}
	return dirs
}
