package domain

// WatchAction selects what connected browsers are told after a dispatch.
type WatchAction string

const (
	// ActionPartial pushes only the changed outputs to clients.
	ActionPartial WatchAction = "partial"
	// ActionReload forces clients to reload the whole page.
	ActionReload WatchAction = "reload"
)

// WatchRule binds watched patterns to the task rebuilt when they change.
type WatchRule struct {
	// Patterns use the same notation as Selector: a leading "!" excludes.
	Patterns []string
	Task     string
	Action   WatchAction
}

// Selector returns the rule's patterns as a Selector.
func (r WatchRule) Selector() Selector {
	return NewSelector(r.Patterns...)
}

// FullReload reports whether the rule forces a page reload.
func (r WatchRule) FullReload() bool {
	return r.Action == ActionReload
}

// WatchState is a state of the watch loop.
type WatchState int

const (
	// StateIdle is the state before Start.
	StateIdle WatchState = iota
	// StateObserving waits for filesystem changes.
	StateObserving
	// StateDispatching runs the task bound to a changed rule.
	StateDispatching
	// StateStopped is terminal.
	StateStopped
)

func (s WatchState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateObserving:
		return "observing"
	case StateDispatching:
		return "dispatching"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
