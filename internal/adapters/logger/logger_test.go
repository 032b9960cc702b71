package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glaze/internal/adapters/logger"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger writing to a buffer with colors disabled.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("build finished")

	g := goldie.New(t)
	g.Assert(t, "info_basic", buf.Bytes())
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Warn("no glaze.yaml found, using built-in pipeline")

	g := goldie.New(t)
	g.Assert(t, "warn_basic", buf.Bytes())
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name:       "simple error",
			err:        os.ErrPermission,
			goldenName: "error_simple",
		},
		{
			name:       "multiline error",
			err:        errors.New("yaml: unmarshal errors:\n  line 30: cannot unmarshal"),
			goldenName: "error_multiline",
		},
		{
			name:       "zerr chain",
			err:        zerr.Wrap(errors.New("underlying cause"), "wrapped message"),
			goldenName: "error_chain_zerr",
		},
		{
			name: "sentinel with metadata",
			err: zerr.With(
				zerr.Wrap(domain.ErrDuplicateTask, "cannot register task"),
				"task", "images",
			),
			goldenName: "error_metadata",
		},
		{
			name: "step failure",
			err: &domain.StepFailure{
				Task: "sassToCss",
				Step: domain.KindCompileStylesheet,
				File: "app/scss/main.scss",
				Err:  errors.New(`expected "}"`),
			},
			goldenName: "error_step_failure",
		},
		{
			name: "aggregate failure",
			err: &domain.AggregateFailure{
				Failed: []string{"html", "sassToCss"},
				Err: errors.Join(
					&domain.StepFailure{Task: "html", Step: domain.KindIncludeHTML, File: "index.html", Err: domain.ErrIncludeNotFound},
					&domain.StepFailure{Task: "sassToCss", Step: domain.KindCompileStylesheet, File: "main.scss", Err: errors.New(`expected "}"`)},
				),
			},
			goldenName: "error_aggregate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Error(zerr.With(zerr.Wrap(errors.New("exit status 1"), "failed to compile stylesheet"), "file", "main.scss"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "failed to compile stylesheet: exit status 1", record["msg"])

	causes, ok := record["causes"].(map[string]any)
	require.True(t, ok)
	first, ok := causes["0"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "failed to compile stylesheet", first["message"])
	assert.Equal(t, "main.scss", first["file"])
}

func TestLogger_SetOutputKeepsFormat(t *testing.T) {
	lg, _ := newTestLogger(t)
	lg.SetJSON(true)

	buf := &bytes.Buffer{}
	lg.SetOutput(buf)
	lg.Info("task started")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "task started", record["msg"])
}

func TestErrorLines_MergesMetadataOnlyWrappers(t *testing.T) {
	err := zerr.With(errors.New("connection refused"), "port", 3000)

	assert.Equal(t, "Error: connection refused\n       port: 3000", logger.ErrorLines(err))
}
