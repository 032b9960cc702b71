package tui

import "time"

// MsgInitTasks lists the tasks of a run in plan order.
type MsgInitTasks struct {
	Tasks []string
}

// MsgTaskStart is sent when a task span starts.
type MsgTaskStart struct {
	SpanID    string
	Name      string
	StartTime time.Time
}

// MsgTaskComplete is sent when a task span ends.
type MsgTaskComplete struct {
	SpanID  string
	EndTime time.Time
	Err     error
}
