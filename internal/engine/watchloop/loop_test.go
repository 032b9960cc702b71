package watchloop_test

import (
	"context"
	"errors"
	"iter"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glaze/internal/adapters/fs" //nolint:depguard // Real glob matching
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/glaze/internal/core/ports/mocks"
	"go.trai.ch/glaze/internal/engine/scheduler"
	"go.trai.ch/glaze/internal/engine/watchloop"
	"go.uber.org/mock/gomock"
)

const root = "/project"

var rules = []domain.WatchRule{
	{Patterns: []string{"app/scss/**/*.scss"}, Task: "sassToCss", Action: domain.ActionPartial},
	{Patterns: []string{"app/js/**/*.js", "!app/js/main.js"}, Task: "allScripts", Action: domain.ActionPartial},
	{Patterns: []string{"app/**/*.html"}, Task: "html", Action: domain.ActionReload},
}

type harness struct {
	loop   *watchloop.Loop
	events chan ports.WatchEvent
	server *mocks.MockDevServer
	logger *mocks.MockLogger

	mu         sync.Mutex
	runs       []string
	dispatches []watchloop.Dispatch
	results    map[string]scheduler.Result
	failures   map[string]error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	h := &harness{
		events:   make(chan ports.WatchEvent),
		server:   mocks.NewMockDevServer(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		results:  make(map[string]scheduler.Result),
		failures: make(map[string]error),
	}

	watcher := mocks.NewMockWatcher(ctrl)
	watcher.EXPECT().Start(gomock.Any(), "/project/app").Return(nil).AnyTimes()
	watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
		for ev := range h.events {
			if !yield(ev) {
				return
			}
		}
	})).AnyTimes()
	watcher.EXPECT().Stop().DoAndReturn(func() error {
		close(h.events)
		return nil
	}).AnyTimes()

	runner := watchloop.TaskRunnerFunc(func(_ context.Context, name string) (scheduler.Result, error) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.runs = append(h.runs, name)
		return h.results[name], h.failures[name]
	})

	h.loop = watchloop.New(watchloop.Config{
		Root:      root,
		Source:    "app",
		ServedDir: "dist",
		Rules:     rules,
		Debounce:  100 * time.Millisecond,
	}, watcher, fs.NewResolver(), runner, h.server, h.logger)

	h.loop.OnDispatch(func(d watchloop.Dispatch) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.dispatches = append(h.dispatches, d)
	})
	return h
}

func (h *harness) change(paths ...string) {
	for _, p := range paths {
		h.events <- ports.WatchEvent{Path: root + "/" + p, Operation: ports.OpWrite}
	}
}

func (h *harness) ranTasks() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.runs...)
}

func (h *harness) handled() []watchloop.Dispatch {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]watchloop.Dispatch(nil), h.dispatches...)
}

func TestLoop_StateTransitions(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		assert.Equal(t, domain.StateIdle, h.loop.State())

		require.NoError(t, h.loop.Start(context.Background()))
		assert.Equal(t, domain.StateObserving, h.loop.State())

		err := h.loop.Start(context.Background())
		require.ErrorIs(t, err, domain.ErrWatchLoopNotIdle)

		require.NoError(t, h.loop.Stop())
		assert.Equal(t, domain.StateStopped, h.loop.State())
		require.NoError(t, h.loop.Stop())

		require.ErrorIs(t, h.loop.Start(context.Background()), domain.ErrWatchLoopNotIdle)
	})
}

func TestLoop_StopBeforeStart(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.loop.Stop())
	assert.Equal(t, domain.StateStopped, h.loop.State())
}

func TestLoop_DispatchesMatchingRule(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		h.results["sassToCss"] = scheduler.Result{
			Task:    "sassToCss",
			Written: []string{"dist/css/main.min.css"},
		}
		h.server.EXPECT().NotifyPartialUpdate([]string{"css/main.min.css"})

		require.NoError(t, h.loop.Start(context.Background()))
		h.change("app/scss/partials/_vars.scss", "app/scss/main.scss", "app/scss/main.scss")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, []string{"sassToCss"}, h.ranTasks())
		d := h.handled()
		require.Len(t, d, 1)
		assert.Equal(t, "sassToCss", d[0].Rule.Task)
		assert.Equal(t, []string{"app/scss/main.scss", "app/scss/partials/_vars.scss"}, d[0].Paths)
		require.NoError(t, d[0].Err)
		assert.Equal(t, domain.StateObserving, h.loop.State())

		require.NoError(t, h.loop.Stop())
	})
}

func TestLoop_IgnoresUnmatchedChanges(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)

		require.NoError(t, h.loop.Start(context.Background()))
		h.change("app/README.md", "app/js/main.js")
		h.events <- ports.WatchEvent{Path: "/elsewhere/app/scss/a.scss", Operation: ports.OpCreate}

		time.Sleep(time.Second)
		synctest.Wait()

		assert.Empty(t, h.ranTasks())
		require.NoError(t, h.loop.Stop())
	})
}

func TestLoop_EachRuleDispatchedOnce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		h.results["allScripts"] = scheduler.Result{Written: []string{"dist/js/vendor.js"}}
		h.results["html"] = scheduler.Result{Written: []string{"dist/index.html"}}
		h.server.EXPECT().NotifyPartialUpdate([]string{"js/vendor.js"})
		h.server.EXPECT().NotifyFullReload()

		require.NoError(t, h.loop.Start(context.Background()))
		h.change("app/js/vendor.js", "app/index.html", "app/partials/nav.html", "app/js/vendor.js")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		assert.ElementsMatch(t, []string{"allScripts", "html"}, h.ranTasks())
		require.NoError(t, h.loop.Stop())
	})
}

func TestLoop_NothingWrittenNotifiesNothing(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		h.results["html"] = scheduler.Result{Unchanged: []string{"dist/index.html"}}

		require.NoError(t, h.loop.Start(context.Background()))
		h.change("app/index.html")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, []string{"html"}, h.ranTasks())
		require.NoError(t, h.loop.Stop())
	})
}

func TestLoop_FailureIsLogged(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		failure := &domain.StepFailure{Task: "sassToCss", Step: domain.KindCompileStylesheet, Err: errors.New("boom")}
		h.failures["sassToCss"] = failure
		h.logger.EXPECT().Error(failure)

		require.NoError(t, h.loop.Start(context.Background()))
		h.change("app/scss/main.scss")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		d := h.handled()
		require.Len(t, d, 1)
		assert.ErrorIs(t, d[0].Err, domain.ErrStepFailed)
		assert.Equal(t, domain.StateObserving, h.loop.State())

		// The loop keeps observing after a failure.
		h.mu.Lock()
		delete(h.failures, "sassToCss")
		h.mu.Unlock()
		h.change("app/scss/main.scss")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []string{"sassToCss", "sassToCss"}, h.ranTasks())

		require.NoError(t, h.loop.Stop())
	})
}

func TestLoop_StopDropsPendingChanges(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)

		require.NoError(t, h.loop.Start(context.Background()))
		h.change("app/scss/main.scss")
		require.NoError(t, h.loop.Stop())

		time.Sleep(time.Second)
		synctest.Wait()

		assert.Empty(t, h.ranTasks())
		assert.Equal(t, domain.StateStopped, h.loop.State())
	})
}

func TestLoop_StartError(t *testing.T) {
	ctrl := gomock.NewController(t)
	watcher := mocks.NewMockWatcher(ctrl)
	watcher.EXPECT().Start(gomock.Any(), "/project/app").Return(errors.New("too many open files"))

	loop := watchloop.New(watchloop.Config{Root: root, Source: "app"}, watcher, fs.NewResolver(), nil, nil, nil)
	require.Error(t, loop.Start(context.Background()))
	assert.Equal(t, domain.StateIdle, loop.State())
}

func TestLoop_WithoutServer(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		events := make(chan ports.WatchEvent)
		watcher := mocks.NewMockWatcher(ctrl)
		watcher.EXPECT().Start(gomock.Any(), gomock.Any()).Return(nil)
		watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
			for ev := range events {
				if !yield(ev) {
					return
				}
			}
		}))
		watcher.EXPECT().Stop().DoAndReturn(func() error {
			close(events)
			return nil
		})

		var ran batches
		runner := watchloop.TaskRunnerFunc(func(_ context.Context, name string) (scheduler.Result, error) {
			ran.add([]string{name})
			return scheduler.Result{Written: []string{"dist/index.html"}}, nil
		})

		loop := watchloop.New(watchloop.Config{Root: root, Source: "app", Rules: rules}, watcher, fs.NewResolver(), runner, nil, nil)
		require.NoError(t, loop.Start(context.Background()))

		events <- ports.WatchEvent{Path: "/project/app/index.html", Operation: ports.OpCreate}
		time.Sleep(time.Second)
		synctest.Wait()

		assert.Equal(t, [][]string{{"html"}}, ran.all())
		require.NoError(t, loop.Stop())
	})
}
