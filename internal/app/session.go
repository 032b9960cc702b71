package app

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/glaze/internal/adapters/detector"
	"go.trai.ch/glaze/internal/adapters/linear"
	"go.trai.ch/glaze/internal/adapters/telemetry"
	"go.trai.ch/glaze/internal/adapters/tui"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/glaze/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// session is one command run: the tasks of a pipeline, a scheduler tracing
// into a local provider, and the renderer fed by it.
type session struct {
	registry  *scheduler.Registry
	scheduler *scheduler.Scheduler
	renderer  ports.Renderer
	provider  *sdktrace.TracerProvider
}

func (a *App) newSession(ctx context.Context, pipeline *domain.Pipeline, mode detector.OutputMode) (*session, error) {
	reg, err := scheduler.NewRegistryFromPipeline(pipeline)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to register tasks")
	}

	var renderer ports.Renderer
	if mode == detector.ModeTUI {
		opts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(os.Stderr)}, a.teaOptions...)
		renderer = tui.NewRenderer(tui.NewModel(), opts...)
	} else {
		renderer = linear.NewRenderer(a.out)
	}
	if err := renderer.Start(ctx); err != nil {
		return nil, err
	}

	bridge := telemetry.NewBridge(renderer)
	provider := telemetry.NewTracerProvider(bridge)
	tracer := telemetry.NewOTelTracer(provider, "glaze").
		WithRenderer(renderer).
		WithBridge(bridge)

	return &session{
		registry:  reg,
		scheduler: a.scheduler.WithTracer(tracer),
		renderer:  renderer,
		provider:  provider,
	}, nil
}

func (s *session) run(ctx context.Context, name string) (scheduler.Result, error) {
	return s.scheduler.Run(ctx, s.registry, name)
}

func (s *session) runAll(ctx context.Context) ([]scheduler.Result, error) {
	return s.scheduler.RunAll(ctx, s.registry)
}

// close flushes pending spans and stops the renderer, waiting for an
// interactive renderer to restore the terminal.
func (s *session) close(ctx context.Context) error {
	err := errors.Join(
		s.provider.Shutdown(context.WithoutCancel(ctx)),
		s.renderer.Stop(),
	)
	if w, ok := s.renderer.(interface{ Wait() error }); ok {
		err = errors.Join(err, w.Wait())
	}
	return err
}
