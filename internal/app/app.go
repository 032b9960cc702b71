// Package app implements the application layer for glaze.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/glaze/internal/adapters/detector"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/glaze/internal/engine/scheduler"
	"go.trai.ch/glaze/internal/engine/watchloop"
	"go.trai.ch/zerr"
)

const shutdownTimeout = 5 * time.Second

// App is the context object shared by the commands. It owns no global
// state: every run builds its own registry, tracer and renderer.
type App struct {
	configLoader ports.ConfigLoader
	scheduler    *scheduler.Scheduler
	watcher      ports.Watcher
	resolver     ports.InputResolver
	server       ports.DevServer
	logger       ports.Logger
	out          io.Writer
	cwd          string
	teaOptions   []tea.ProgramOption
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	sched *scheduler.Scheduler,
	watcher ports.Watcher,
	resolver ports.InputResolver,
	server ports.DevServer,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		scheduler:    sched,
		watcher:      watcher,
		resolver:     resolver,
		server:       server,
		logger:       log,
		out:          os.Stdout,
		cwd:          ".",
	}
}

// WithOutput sets the writer progress lines are printed to.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// WithWorkingDir sets the directory the configuration is searched from.
func (a *App) WithWorkingDir(dir string) *App {
	a.cwd = dir
	return a
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	// ConfigPath is an explicit glaze.yaml. When empty the file is searched
	// upwards from the working directory.
	ConfigPath string
	// LogFormat is "auto", "pretty" or "json".
	LogFormat string
	// OutputMode is "auto", "tui" or "linear". Dev always renders linearly
	// so progress lines interleave with watch messages.
	OutputMode string
}

// DevOptions configuration for the Dev method.
type DevOptions struct {
	BuildOptions

	// Host and Port override the configured server address when set.
	Host     string
	Port     int
	NoServer bool
}

// Build runs every task once.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	mode, err := detector.ParseOutputMode(opts.OutputMode)
	if err != nil {
		return err
	}

	pipeline, err := a.prepare(opts)
	if err != nil {
		return err
	}

	s, err := a.newSession(ctx, pipeline, detector.ResolveMode(detector.DetectMode(), mode))
	if err != nil {
		return err
	}
	defer func() {
		_ = s.close(ctx)
	}()

	if _, err := s.runAll(ctx); err != nil {
		return errors.Join(domain.ErrBuildFailed, err)
	}
	return nil
}

// Dev builds once, then rebuilds on changes and serves the output until ctx
// is cancelled. Failures of the initial build are logged, not returned.
func (a *App) Dev(ctx context.Context, opts DevOptions) error {
	pipeline, err := a.prepare(opts.BuildOptions)
	if err != nil {
		return err
	}

	s, err := a.newSession(ctx, pipeline, detector.ModeLinear)
	if err != nil {
		return err
	}
	defer func() {
		_ = s.close(ctx)
	}()

	if _, err := s.runAll(ctx); err != nil {
		a.logger.Error(err)
	}

	var server ports.DevServer
	if !opts.NoServer {
		if err := a.startServer(ctx, pipeline, opts); err != nil {
			return err
		}
		server = a.server
		defer a.stopServer(ctx)
	}

	loop := watchloop.New(watchloop.Config{
		Root:      pipeline.Root,
		Source:    pipeline.Source,
		ServedDir: pipeline.Server.Dir,
		Rules:     pipeline.Rules,
	}, a.watcher, a.resolver, watchloop.TaskRunnerFunc(s.run), server, a.logger)

	loop.OnDispatch(func(d watchloop.Dispatch) {
		if d.Err == nil {
			a.logger.Info(fmt.Sprintf("%s: %d file(s) changed, %d output(s) updated",
				d.Rule.Task, len(d.Paths), len(d.Result.Changed())))
		}
	})

	if err := loop.Start(ctx); err != nil {
		return zerr.Wrap(err, "failed to start watch loop")
	}
	a.logger.Info(fmt.Sprintf("watching %s for changes", pipeline.Source))

	<-ctx.Done()

	if err := loop.Stop(); err != nil {
		return zerr.Wrap(err, "failed to stop watch loop")
	}
	return nil
}

func (a *App) startServer(ctx context.Context, pipeline *domain.Pipeline, opts DevOptions) error {
	host := pipeline.Server.Host
	if opts.Host != "" {
		host = opts.Host
	}
	port := pipeline.Server.Port
	if opts.Port > 0 {
		port = opts.Port
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dir := filepath.Join(pipeline.Root, filepath.FromSlash(pipeline.Server.Dir))
	if err := a.server.Init(ctx, dir, addr); err != nil {
		return zerr.Wrap(err, "failed to start dev server")
	}

	a.logger.Info(fmt.Sprintf("serving %s on http://%s", pipeline.Server.Dir, addr))
	return nil
}

func (a *App) stopServer(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error(zerr.Wrap(err, "failed to stop dev server"))
	}
}

// prepare applies the log format and loads the pipeline.
func (a *App) prepare(opts BuildOptions) (*domain.Pipeline, error) {
	format, err := detector.ParseLogFormat(opts.LogFormat)
	if err != nil {
		return nil, err
	}
	if l, ok := a.logger.(interface{ SetJSON(enable bool) }); ok {
		l.SetJSON(detector.ResolveFormat(detector.DetectEnvironment(), format) == detector.FormatJSON)
	}

	var pipeline *domain.Pipeline
	if opts.ConfigPath != "" {
		pipeline, err = a.configLoader.LoadFile(opts.ConfigPath)
	} else {
		pipeline, err = a.configLoader.Load(a.cwd)
	}
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return pipeline, nil
}
