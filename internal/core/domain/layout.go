package domain

import "path/filepath"

const (
	// GlazeDirName is the name of the internal state directory.
	GlazeDirName = ".glaze"

	// ManifestDirName holds the per-task output manifests.
	ManifestDirName = "manifests"

	// ConfigFileName is the name of the optional pipeline configuration file.
	ConfigFileName = "glaze.yaml"

	// DefaultSourceDir is the source root of the built-in pipeline.
	DefaultSourceDir = "app"

	// DefaultDistDir is the output root of the built-in pipeline.
	DefaultDistDir = "dist"

	// DefaultHost is the dev server bind host.
	DefaultHost = "localhost"

	// DefaultPort is the dev server port.
	DefaultPort = 3000

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultManifestPath returns the manifest directory relative to the project root.
func DefaultManifestPath() string {
	return filepath.Join(GlazeDirName, ManifestDirName)
}
