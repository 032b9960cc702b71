package scheduler

import (
	"sync"

	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/zerr"
)

// Registry holds the tasks of one project. It is the task graph the
// scheduler runs: tasks are independent, so the graph has no edges.
type Registry struct {
	root string

	mu    sync.RWMutex
	tasks map[string]*domain.Task
	order []string
}

// NewRegistry creates an empty Registry for the project at root.
func NewRegistry(root string) *Registry {
	return &Registry{
		root:  root,
		tasks: make(map[string]*domain.Task),
	}
}

// NewRegistryFromPipeline registers every task of p.
func NewRegistryFromPipeline(p *domain.Pipeline) (*Registry, error) {
	r := NewRegistry(p.Root)
	for _, t := range p.Tasks {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Root returns the project root the registry's tasks are relative to.
func (r *Registry) Root() string {
	return r.root
}

// Register adds a task. It fails with domain.ErrDuplicateTask when the name
// is taken, and rejects tasks with an empty name, no inputs or unknown steps.
func (r *Registry) Register(task *domain.Task) error {
	if err := domain.ValidateTask(task); err != nil {
		return err
	}

	name := task.Name.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[name]; exists {
		return zerr.With(zerr.Wrap(domain.ErrDuplicateTask, "cannot register task"), "task", name)
	}
	r.tasks[name] = task
	r.order = append(r.order, name)
	return nil
}

// Get returns the task registered under name.
func (r *Registry) Get(name string) (*domain.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[name]
	return t, ok
}

// Names returns the task names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
