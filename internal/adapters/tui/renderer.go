package tui

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/glaze/internal/core/ports"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer drives a Model from task events. Events are delivered through
// the program's message loop, so Send blocks until the model consumed them.
type Renderer struct {
	program *tea.Program
	model   *Model
	started atomic.Bool
	done    chan error
}

// NewRenderer creates a renderer for model. The program is not started
// until Start is called.
func NewRenderer(model *Model, opts ...tea.ProgramOption) *Renderer {
	return &Renderer{
		program: tea.NewProgram(model, opts...),
		model:   model,
		done:    make(chan error, 1),
	}
}

// Start runs the program in the background. It is a no-op after the first call.
func (r *Renderer) Start(_ context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return nil
	}
	go func() {
		_, err := r.program.Run()
		r.done <- err
	}()
	return nil
}

// Stop asks the program to quit. The final view stays on screen.
func (r *Renderer) Stop() error {
	if r.started.Load() {
		r.program.Quit()
	}
	return nil
}

// Wait blocks until the program has restored the terminal.
func (r *Renderer) Wait() error {
	if !r.started.Load() {
		return nil
	}
	return <-r.done
}

// OnPlanEmit lists the tasks of a build before any of them starts.
func (r *Renderer) OnPlanEmit(tasks []string) {
	r.send(MsgInitTasks{Tasks: tasks})
}

// OnTaskStart marks a task as running. Rebuilds are never nested, so the
// parent span is not shown.
func (r *Renderer) OnTaskStart(spanID, _, name string, startTime time.Time) {
	r.send(MsgTaskStart{SpanID: spanID, Name: name, StartTime: startTime})
}

// OnTaskComplete marks the task of spanID as done or failed.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.send(MsgTaskComplete{SpanID: spanID, EndTime: endTime, Err: err})
}

func (r *Renderer) send(msg tea.Msg) {
	if r.started.Load() {
		r.program.Send(msg)
	}
}

// Program returns the underlying program.
func (r *Renderer) Program() *tea.Program {
	return r.program
}
