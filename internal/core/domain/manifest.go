package domain

import "time"

// Manifest records the outputs a task wrote on its last successful run.
// Outputs listed here but not produced by the next run are stale.
type Manifest struct {
	TaskName string `json:"task_name,omitzero"`
	// Outputs are slash-separated paths relative to the project root.
	Outputs   []string  `json:"outputs,omitzero"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}
