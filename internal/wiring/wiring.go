// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/glaze/internal/adapters/cas"
	_ "go.trai.ch/glaze/internal/adapters/config"
	_ "go.trai.ch/glaze/internal/adapters/devserver"
	_ "go.trai.ch/glaze/internal/adapters/esbuild"
	_ "go.trai.ch/glaze/internal/adapters/fileinclude"
	_ "go.trai.ch/glaze/internal/adapters/fs"
	_ "go.trai.ch/glaze/internal/adapters/imagemin"
	_ "go.trai.ch/glaze/internal/adapters/logger"
	_ "go.trai.ch/glaze/internal/adapters/sass"
	_ "go.trai.ch/glaze/internal/adapters/shell"
	_ "go.trai.ch/glaze/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/glaze/internal/app"
	_ "go.trai.ch/glaze/internal/engine/scheduler"
)
