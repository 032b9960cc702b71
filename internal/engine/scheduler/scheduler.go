// Package scheduler runs the tasks of a pipeline: it resolves each task's
// inputs, streams them through the task's steps and writes the results.
package scheduler

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Result summarizes one successful task run. Paths are slash-separated and
// relative to the project root.
type Result struct {
	Task string
	// Written lists outputs whose content changed.
	Written []string
	// Unchanged lists outputs already up to date on disk.
	Unchanged []string
	// Removed lists stale outputs of the previous run that were deleted.
	Removed []string
}

// Changed returns the written and removed outputs, sorted.
func (r Result) Changed() []string {
	out := make([]string, 0, len(r.Written)+len(r.Removed))
	out = append(out, r.Written...)
	out = append(out, r.Removed...)
	slices.Sort(out)
	return out
}

// Scheduler executes tasks of a Registry.
type Scheduler struct {
	resolver     ports.InputResolver
	hasher       ports.Hasher
	store        ports.ManifestStore
	tracer       ports.Tracer
	transformers map[domain.StepKind]ports.Transformer

	locks *taskLocks
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(
	resolver ports.InputResolver,
	hasher ports.Hasher,
	store ports.ManifestStore,
	tracer ports.Tracer,
	transformers ports.TransformerSet,
) *Scheduler {
	byKind := make(map[domain.StepKind]ports.Transformer, len(transformers))
	for _, t := range transformers {
		byKind[t.Kind()] = t
	}
	if tracer == nil {
		tracer = nopTracer{}
	}
	return &Scheduler{
		resolver:     resolver,
		hasher:       hasher,
		store:        store,
		tracer:       tracer,
		transformers: byKind,
		locks:        &taskLocks{m: make(map[string]*sync.Mutex)},
	}
}

// WithTracer returns a Scheduler reporting spans to tracer. The copy shares
// the per-task locks of s.
func (s *Scheduler) WithTracer(tracer ports.Tracer) *Scheduler {
	c := *s
	c.tracer = tracer
	return &c
}

// Run executes one task. Outputs are written only after every step
// succeeded; a failing step yields a *domain.StepFailure. Runs of the same
// task are serialized.
func (s *Scheduler) Run(ctx context.Context, reg *Registry, name string) (Result, error) {
	task, ok := reg.Get(name)
	if !ok {
		return Result{}, zerr.With(zerr.Wrap(domain.ErrTaskNotFound, "cannot run task"), "task", name)
	}

	unlock := s.locks.lock(reg.Root(), name)
	defer unlock()

	ctx, span := s.tracer.Start(ctx, name)
	defer span.End()

	res, err := s.execute(ctx, reg.Root(), task)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	span.SetAttribute("glaze.written", len(res.Written))
	span.SetAttribute("glaze.unchanged", len(res.Unchanged))
	span.SetAttribute("glaze.removed", len(res.Removed))
	return res, nil
}

// RunAll executes every registered task concurrently. All tasks run to
// completion even when some fail; failures are reported together as a
// *domain.AggregateFailure listing the failed task names in sorted order.
func (s *Scheduler) RunAll(ctx context.Context, reg *Registry) ([]Result, error) {
	names := reg.Names()
	s.tracer.EmitPlan(ctx, names)

	results := make([]Result, len(names))
	errs := make([]error, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			results[i], errs[i] = s.Run(ctx, reg, name)
			return nil
		})
	}
	_ = g.Wait()

	type failure struct {
		name string
		err  error
	}
	var failures []failure
	succeeded := make([]Result, 0, len(names))
	for i, name := range names {
		if errs[i] != nil {
			failures = append(failures, failure{name: name, err: errs[i]})
			continue
		}
		succeeded = append(succeeded, results[i])
	}

	if len(failures) == 0 {
		return succeeded, nil
	}

	slices.SortFunc(failures, func(a, b failure) int {
		return strings.Compare(a.name, b.name)
	})
	agg := &domain.AggregateFailure{}
	joined := make([]error, len(failures))
	for i, f := range failures {
		agg.Failed = append(agg.Failed, f.name)
		joined[i] = f.err
	}
	agg.Err = errors.Join(joined...)
	return succeeded, agg
}

// taskLocks hands out one mutex per project task.
type taskLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (l *taskLocks) lock(root, name string) func() {
	key := root + "\x00" + name

	l.mu.Lock()
	m, ok := l.m[key]
	if !ok {
		m = &sync.Mutex{}
		l.m[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

type nopTracer struct{}

func (nopTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, nopSpan{}
}

func (nopTracer) EmitPlan(context.Context, []string) {}

type nopSpan struct{}

func (nopSpan) End()                     {}
func (nopSpan) RecordError(error)        {}
func (nopSpan) SetAttribute(string, any) {}
