package ports

import "go.trai.ch/glaze/internal/core/domain"

// ConfigLoader loads the pipeline description of a project.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the pipeline for the project containing cwd. A project
	// without a configuration file gets the built-in pipeline rooted at cwd.
	Load(cwd string) (*domain.Pipeline, error)
	// LoadFile reads the pipeline from an explicit configuration file.
	LoadFile(path string) (*domain.Pipeline, error)
}
