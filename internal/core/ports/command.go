package ports

import (
	"context"

	"go.trai.ch/glaze/internal/core/domain"
)

// CommandRunner runs external tools.
//
//go:generate mockgen -source=command.go -destination=mocks/mock_command.go -package=mocks
type CommandRunner interface {
	// Run executes cmd and returns its standard output. A non-zero exit
	// returns an error carrying the tool's standard error.
	Run(ctx context.Context, cmd domain.Command) ([]byte, error)
}
