package linear_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glaze/internal/adapters/linear"
)

func TestRenderer_TaskLifecycle(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var out bytes.Buffer
	r := linear.NewRenderer(&out)
	require.NoError(t, r.Start(context.Background()))

	r.OnPlanEmit([]string{"images", "fonts"})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.OnTaskStart("span1", "", "images", start)
	r.OnTaskStart("span2", "", "fonts", start)
	r.OnTaskComplete("span1", start.Add(100*time.Millisecond), nil)
	r.OnTaskComplete("span2", start.Add(2*time.Second), errors.New("permission denied"))

	require.NoError(t, r.Stop())

	want := "Running 2 task(s): images, fonts\n" +
		"[images] Starting...\n" +
		"[fonts] Starting...\n" +
		"[images] ✓ Completed in 100ms\n" +
		"[fonts] ✗ Failed after 2s: permission denied\n"
	assert.Equal(t, want, out.String())
}

func TestRenderer_UnknownSpanIsIgnored(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var out bytes.Buffer
	r := linear.NewRenderer(&out)

	r.OnTaskComplete("missing", time.Now(), nil)
	assert.Empty(t, out.String())
}

func TestRenderer_StopForgetsRunningTasks(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var out bytes.Buffer
	r := linear.NewRenderer(&out)

	start := time.Now()
	r.OnTaskStart("span1", "", "html", start)
	require.NoError(t, r.Stop())
	out.Reset()

	r.OnTaskComplete("span1", start.Add(time.Second), nil)
	assert.Empty(t, out.String())
}
