package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glaze/internal/adapters/cas" //nolint:depguard // Real adapters exercise disk writes
	"go.trai.ch/glaze/internal/adapters/fs"  //nolint:depguard // Real adapters exercise disk writes
	"go.trai.ch/glaze/internal/app"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports/mocks"
	"go.trai.ch/glaze/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

func newApp(ctrl *gomock.Controller, loader *mocks.MockConfigLoader, logger *mocks.MockLogger) *app.App {
	sched := scheduler.NewScheduler(fs.NewResolver(), fs.NewHasher(), cas.NewStore(), nil, nil)
	return app.New(
		loader,
		sched,
		mocks.NewMockWatcher(ctrl),
		fs.NewResolver(),
		mocks.NewMockDevServer(ctrl),
		logger,
	).WithOutput(io.Discard)
}

func provide(a *app.App, logger *mocks.MockLogger) ComponentProvider {
	return func(context.Context) (*app.Components, func(), error) {
		return &app.Components{App: a, Logger: logger}, func() {}, nil
	}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provide(newApp(ctrl, loader, logger), logger))
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that configuration errors are logged and exit with 1.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	errLoad := errors.New("load failed")
	loader.EXPECT().LoadFile("missing.yaml").Return(nil, errLoad)
	logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, errLoad)
	})

	exitCode := run(context.Background(), []string{"build", "--config", "missing.yaml", "-o", "linear"}, io.Discard,
		provide(newApp(ctrl, loader, logger), logger))
	assert.Equal(t, 1, exitCode)
}

// TestRun_BuildFailed verifies that failed tasks exit with 1 without being logged again.
func TestRun_BuildFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	root := t.TempDir()
	src := filepath.Join(root, "app", "images", "logo.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte("png"), 0o644))

	loader.EXPECT().LoadFile("glaze.yaml").Return(&domain.Pipeline{
		Root:   root,
		Source: "app",
		Dist:   "dist",
		Tasks: []*domain.Task{{
			Name:     domain.NewInternedString("images"),
			Selector: domain.NewSelector("app/images/**/*"),
			Output:   "dist/images",
			Steps:    []domain.Step{domain.CompressImage(domain.ImageOptions{})},
		}},
	}, nil)

	exitCode := run(context.Background(), []string{"build", "-c", "glaze.yaml", "-o", "linear"}, io.Discard,
		provide(newApp(ctrl, loader, logger), logger))
	assert.Equal(t, 1, exitCode)
}
