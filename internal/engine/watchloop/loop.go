// Package watchloop maps file system changes to the task responsible for
// them and tells the dev server what to refresh.
package watchloop

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/glaze/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// DefaultDebounce is the quiet period before a batch of changes is dispatched.
const DefaultDebounce = 100 * time.Millisecond

// TaskRunner runs one task by name.
type TaskRunner interface {
	Run(ctx context.Context, name string) (scheduler.Result, error)
}

// TaskRunnerFunc adapts a function to TaskRunner.
type TaskRunnerFunc func(ctx context.Context, name string) (scheduler.Result, error)

// Run calls f.
func (f TaskRunnerFunc) Run(ctx context.Context, name string) (scheduler.Result, error) {
	return f(ctx, name)
}

// Config describes what the loop watches.
type Config struct {
	// Root is the absolute project root. Rule patterns are relative to it.
	Root string
	// Source is the watched directory, relative to Root.
	Source string
	// ServedDir is the directory served by the dev server, relative to Root.
	// Changed outputs are reported relative to it.
	ServedDir string
	Rules     []domain.WatchRule
	Debounce  time.Duration
}

// Dispatch describes one handled batch of changes.
type Dispatch struct {
	Rule domain.WatchRule
	// Paths are the changed files, relative to the project root.
	Paths  []string
	Result scheduler.Result
	Err    error
}

type batch struct {
	rule  int
	paths []string
}

// Loop is the watch loop: Idle → Observing ⇄ Dispatching → Stopped.
type Loop struct {
	cfg      Config
	watcher  ports.Watcher
	resolver ports.InputResolver
	runner   TaskRunner
	server   ports.DevServer
	logger   ports.Logger

	selectors  []domain.Selector
	debouncers []*Debouncer
	onDispatch func(Dispatch)

	mu       sync.Mutex
	state    domain.WatchState
	batches  chan batch
	done     chan struct{}
	finished chan struct{}
	routed   chan struct{}
	stopOnce sync.Once
}

// New creates an idle Loop. server may be nil when no dev server runs.
func New(
	cfg Config,
	watcher ports.Watcher,
	resolver ports.InputResolver,
	runner TaskRunner,
	server ports.DevServer,
	logger ports.Logger,
) *Loop {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.ServedDir == "" {
		cfg.ServedDir = "."
	}

	l := &Loop{
		cfg:      cfg,
		watcher:  watcher,
		resolver: resolver,
		runner:   runner,
		server:   server,
		logger:   logger,
		batches:  make(chan batch),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		routed:   make(chan struct{}),
	}

	for i, rule := range cfg.Rules {
		l.selectors = append(l.selectors, rule.Selector())
		l.debouncers = append(l.debouncers, NewDebouncer(cfg.Debounce, func(paths []string) {
			select {
			case l.batches <- batch{rule: i, paths: paths}:
			case <-l.done:
			}
		}))
	}
	return l
}

// OnDispatch registers fn to be called after every dispatch. It must be set
// before Start.
func (l *Loop) OnDispatch(fn func(Dispatch)) {
	l.onDispatch = fn
}

// State returns the current state.
func (l *Loop) State() domain.WatchState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Start begins watching the source directory. It fails unless the loop is Idle.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != domain.StateIdle {
		return zerr.With(zerr.Wrap(domain.ErrWatchLoopNotIdle, "cannot start watch loop"), "state", l.state.String())
	}

	dir := filepath.Join(l.cfg.Root, filepath.FromSlash(l.cfg.Source))
	if err := l.watcher.Start(ctx, dir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to start watcher"), "dir", dir)
	}

	l.state = domain.StateObserving
	go l.route()
	go l.run(ctx)
	return nil
}

// Stop moves the loop to Stopped and waits for it to finish. Pending changes
// are dropped. Calling Stop again is a no-op.
func (l *Loop) Stop() error {
	var err error
	l.stopOnce.Do(func() {
		l.mu.Lock()
		started := l.state != domain.StateIdle
		l.state = domain.StateStopped
		l.mu.Unlock()

		close(l.done)
		for _, d := range l.debouncers {
			d.Stop()
		}
		if !started {
			return
		}

		err = l.watcher.Stop()
		<-l.routed
		<-l.finished
	})
	return err
}

// route feeds changed paths to the debouncer of every matching rule.
func (l *Loop) route() {
	defer close(l.routed)

	for ev := range l.watcher.Events() {
		rel, ok := l.relative(ev.Path)
		if !ok {
			continue
		}
		for i, sel := range l.selectors {
			if l.resolver.Matches(sel, rel) {
				l.debouncers[i].Add(rel)
			}
		}
	}
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.finished)

	for {
		select {
		case <-l.done:
			return
		case <-ctx.Done():
			return
		case b := <-l.batches:
			l.dispatch(ctx, b)
		}
	}
}

func (l *Loop) dispatch(ctx context.Context, b batch) {
	if !l.transition(domain.StateObserving, domain.StateDispatching) {
		return
	}

	rule := l.cfg.Rules[b.rule]
	res, err := l.runner.Run(ctx, rule.Task)
	if err != nil {
		l.logger.Error(err)
	} else {
		l.notify(rule, res)
	}

	l.transition(domain.StateDispatching, domain.StateObserving)

	if l.onDispatch != nil {
		l.onDispatch(Dispatch{Rule: rule, Paths: b.paths, Result: res, Err: err})
	}
}

func (l *Loop) transition(from, to domain.WatchState) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != from {
		return false
	}
	l.state = to
	return true
}

// notify tells the dev server what a successful run changed.
func (l *Loop) notify(rule domain.WatchRule, res scheduler.Result) {
	if l.server == nil {
		return
	}

	changed := l.served(res.Changed())
	if len(changed) == 0 {
		return
	}
	if rule.FullReload() {
		l.server.NotifyFullReload()
		return
	}
	l.server.NotifyPartialUpdate(changed)
}

// served converts root-relative outputs into paths below the served
// directory, dropping outputs the server does not serve.
func (l *Loop) served(paths []string) []string {
	dir := strings.Trim(filepath.ToSlash(l.cfg.ServedDir), "/")
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if dir == "." || dir == "" {
			out = append(out, p)
			continue
		}
		if rest, ok := strings.CutPrefix(p, dir+"/"); ok {
			out = append(out, rest)
		}
	}
	return out
}

// relative returns the slash-separated path of abs relative to the project root.
func (l *Loop) relative(abs string) (string, bool) {
	rel, err := filepath.Rel(l.cfg.Root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
