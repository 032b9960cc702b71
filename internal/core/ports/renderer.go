package ports

import (
	"context"
	"time"
)

// Renderer presents task progress. It is fed by the telemetry bridge so the
// engine never writes progress output itself.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error
	// Stop flushes pending output.
	Stop() error
	// OnPlanEmit is called with the tasks about to run.
	OnPlanEmit(tasks []string)
	// OnTaskStart is called when a task run begins.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)
	// OnTaskComplete is called when a task run ends; err is nil on success.
	OnTaskComplete(spanID string, endTime time.Time, err error)
}
