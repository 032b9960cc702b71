package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glaze/internal/adapters/cas"      //nolint:depguard // Real adapters exercise disk writes
	"go.trai.ch/glaze/internal/adapters/detector" //nolint:depguard // Log format sentinel
	"go.trai.ch/glaze/internal/adapters/fs"       //nolint:depguard // Real adapters exercise disk writes
	"go.trai.ch/glaze/internal/app"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/glaze/internal/core/ports/mocks"
	"go.trai.ch/glaze/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	root     string
	out      *bytes.Buffer
	loader   *mocks.MockConfigLoader
	watcher  *mocks.MockWatcher
	server   *mocks.MockDevServer
	logger   *mocks.MockLogger
	app      *app.App
	pipeline *domain.Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	root := t.TempDir()
	writeFile(t, root, "app/fonts/icons.woff", "woff")

	f := &fixture{
		root:    root,
		out:     new(bytes.Buffer),
		loader:  mocks.NewMockConfigLoader(ctrl),
		watcher: mocks.NewMockWatcher(ctrl),
		server:  mocks.NewMockDevServer(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
		pipeline: &domain.Pipeline{
			Root:   root,
			Source: "app",
			Dist:   "dist",
			Tasks: []*domain.Task{{
				Name:     domain.NewInternedString("fonts"),
				Selector: domain.NewSelector("app/fonts/*").WithBase("app"),
				Output:   "dist",
				Steps:    []domain.Step{domain.Copy()},
			}},
			Rules: []domain.WatchRule{
				{Patterns: []string{"app/fonts/*"}, Task: "fonts", Action: domain.ActionPartial},
			},
			Server: domain.ServerConfig{Host: domain.DefaultHost, Port: domain.DefaultPort, Dir: "dist"},
		},
	}

	sched := scheduler.NewScheduler(fs.NewResolver(), fs.NewHasher(), cas.NewStore(), nil, nil)
	f.app = app.New(f.loader, sched, f.watcher, fs.NewResolver(), f.server, f.logger).
		WithOutput(f.out).
		WithWorkingDir(root)
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	return f
}

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

// expectWatcher makes the watcher mock yield no events until stopped.
func (f *fixture) expectWatcher(onStart func()) {
	events := make(chan ports.WatchEvent)
	f.watcher.EXPECT().Start(gomock.Any(), filepath.Join(f.root, "app")).DoAndReturn(
		func(context.Context, string) error {
			onStart()
			return nil
		})
	f.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
		for ev := range events {
			if !yield(ev) {
				return
			}
		}
	}))
	f.watcher.EXPECT().Stop().DoAndReturn(func() error {
		close(events)
		return nil
	})
}

func TestApp_Build(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(f.root).Return(f.pipeline, nil)

	err := f.app.Build(context.Background(), app.BuildOptions{OutputMode: "linear"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(f.root, "dist", "fonts", "icons.woff"))
	require.NoError(t, err)
	assert.Equal(t, "woff", string(data))
	assert.Contains(t, f.out.String(), "Running 1 task(s): fonts")
}

func TestApp_Build_TUI(t *testing.T) {
	f := newFixture(t)
	f.app.WithTeaOptions(
		tea.WithInput(strings.NewReader("")),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
		tea.WithoutRenderer(),
	)
	f.loader.EXPECT().Load(f.root).Return(f.pipeline, nil)

	require.NoError(t, f.app.Build(context.Background(), app.BuildOptions{OutputMode: "tui"}))

	assert.FileExists(t, filepath.Join(f.root, "dist", "fonts", "icons.woff"))
	assert.Empty(t, f.out.String())
}

func TestApp_Build_ConfigFile(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.root, "conf", "glaze.yaml")
	f.loader.EXPECT().LoadFile(path).Return(f.pipeline, nil)

	require.NoError(t, f.app.Build(context.Background(), app.BuildOptions{ConfigPath: path, OutputMode: "linear"}))
}

func TestApp_Build_TaskFailure(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.root, "app/js/main.js", "let a = 1")
	f.pipeline.Tasks = append(f.pipeline.Tasks, &domain.Task{
		Name:     domain.NewInternedString("scripts"),
		Selector: domain.NewSelector("app/js/main.js"),
		Output:   "dist/js",
		Steps:    []domain.Step{domain.MinifyScript(domain.ScriptOptions{})},
	})
	f.loader.EXPECT().Load(f.root).Return(f.pipeline, nil)

	err := f.app.Build(context.Background(), app.BuildOptions{OutputMode: "linear"})
	require.ErrorIs(t, err, domain.ErrBuildFailed)
	require.ErrorIs(t, err, domain.ErrStepFailed)
	assert.Equal(t, []string{"scripts"}, domain.FailedTasks(err))

	// Independent tasks still complete.
	_, statErr := os.Stat(filepath.Join(f.root, "dist", "fonts", "icons.woff"))
	require.NoError(t, statErr)
}

func TestApp_Build_Errors(t *testing.T) {
	errLoad := errors.New("boom")

	tests := []struct {
		name   string
		opts   app.BuildOptions
		setup  func(f *fixture)
		target error
	}{
		{
			name: "load failure",
			setup: func(f *fixture) {
				f.loader.EXPECT().Load(f.root).Return(nil, errLoad)
			},
			target: errLoad,
		},
		{
			name:   "unknown log format",
			opts:   app.BuildOptions{LogFormat: "xml"},
			setup:  func(*fixture) {},
			target: detector.ErrUnknownLogFormat,
		},
		{
			name:   "unknown output mode",
			opts:   app.BuildOptions{OutputMode: "fancy"},
			setup:  func(*fixture) {},
			target: detector.ErrUnknownOutputMode,
		},
		{
			name: "duplicate task",
			setup: func(f *fixture) {
				f.pipeline.Tasks = append(f.pipeline.Tasks, f.pipeline.Tasks[0])
				f.loader.EXPECT().Load(f.root).Return(f.pipeline, nil)
			},
			target: domain.ErrDuplicateTask,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			err := f.app.Build(context.Background(), tt.opts)
			require.ErrorIs(t, err, tt.target)
			assert.NotErrorIs(t, err, domain.ErrBuildFailed)
		})
	}
}

func TestApp_Dev(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(f.root).Return(f.pipeline, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gomock.InOrder(
		f.server.EXPECT().Init(gomock.Any(), filepath.Join(f.root, "dist"), "127.0.0.1:4000").Return(nil),
		f.server.EXPECT().Shutdown(gomock.Any()).Return(nil),
	)
	f.expectWatcher(cancel)

	err := f.app.Dev(ctx, app.DevOptions{Host: "127.0.0.1", Port: 4000})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(f.root, "dist", "fonts", "icons.woff"))
	require.NoError(t, statErr)
}

func TestApp_Dev_NoServer(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(f.root).Return(f.pipeline, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.expectWatcher(cancel)

	require.NoError(t, f.app.Dev(ctx, app.DevOptions{NoServer: true}))
}

func TestApp_Dev_InitialFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	f.pipeline.Tasks[0].Steps = []domain.Step{domain.CompressImage(domain.ImageOptions{})}
	f.loader.EXPECT().Load(f.root).Return(f.pipeline, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrBuildFailed)
	})
	f.expectWatcher(cancel)

	require.NoError(t, f.app.Dev(ctx, app.DevOptions{NoServer: true}))
}

func TestApp_Dev_ServerStartError(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(f.root).Return(f.pipeline, nil)
	f.server.EXPECT().Init(gomock.Any(), gomock.Any(), "localhost:3000").Return(domain.ErrDevServerStartFailed)

	err := f.app.Dev(context.Background(), app.DevOptions{})
	require.ErrorIs(t, err, domain.ErrDevServerStartFailed)
}
