package telemetry

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/glaze/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// errTaskFailed stands in for failures recorded only as a span status.
var errTaskFailed = errors.New("task failed")

// Bridge is a span processor that turns task spans into renderer events.
// Failures recorded through an OTelSpan reach the renderer as the original
// error value, so step failures keep their task, step and file.
type Bridge struct {
	renderer ports.Renderer

	mu       sync.Mutex
	failures map[trace.SpanID]error
}

// NewBridge returns a Bridge reporting to renderer. A nil renderer turns
// the bridge into a no-op.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{
		renderer: renderer,
		failures: make(map[trace.SpanID]error),
	}
}

// OnStart reports a task start with the span of the run that triggered it, if any.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	sc := s.SpanContext()
	if b.renderer == nil || !sc.IsValid() {
		return
	}

	var parentID string
	if p := trace.SpanContextFromContext(parent); p.IsValid() {
		parentID = p.SpanID().String()
	}
	b.renderer.OnTaskStart(sc.SpanID().String(), parentID, s.Name(), s.StartTime())
}

// OnEnd reports a task completion.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}
	err := b.takeFailure(sc.SpanID())
	if b.renderer == nil {
		return
	}

	if err == nil && s.Status().Code == codes.Error {
		err = errTaskFailed
		if desc := s.Status().Description; desc != "" {
			err = errors.New(desc)
		}
	}
	b.renderer.OnTaskComplete(sc.SpanID().String(), s.EndTime(), err)
}

func (b *Bridge) recordFailure(id trace.SpanID, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[id] = err
}

func (b *Bridge) takeFailure(id trace.SpanID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.failures[id]
	delete(b.failures, id)
	return err
}

// ForceFlush does nothing; events are delivered synchronously.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown drops failures of spans that never ended.
func (b *Bridge) Shutdown(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.failures)
	return nil
}
