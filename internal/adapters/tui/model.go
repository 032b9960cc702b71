package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting to start.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusDone indicates the task completed successfully.
	StatusDone TaskStatus = "Done"
	// StatusError indicates the task failed.
	StatusError TaskStatus = "Error"
)

// TaskNode represents a single task in the UI list.
type TaskNode struct {
	Name      string
	Status    TaskStatus
	StartTime time.Time
	Duration  time.Duration
	Err       error
}

// Model represents the main TUI state.
type Model struct {
	Tasks       []*TaskNode
	TaskMap     map[string]*TaskNode
	SpanMap     map[string]*TaskNode
	SelectedIdx int
	Width       int
	// FollowMode moves the selection to the most recently started task.
	FollowMode bool
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // message dispatch
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "k", "up":
			if m.SelectedIdx > 0 {
				m.SelectedIdx--
				m.FollowMode = false
			}
		case "j", "down":
			if m.SelectedIdx < len(m.Tasks)-1 {
				m.SelectedIdx++
				m.FollowMode = false
			}
		case "esc":
			m.FollowMode = true
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width

	case MsgInitTasks:
		m.Tasks = make([]*TaskNode, len(msg.Tasks))
		m.TaskMap = make(map[string]*TaskNode, len(msg.Tasks))
		for i, name := range msg.Tasks {
			m.Tasks[i] = &TaskNode{Name: name, Status: StatusPending}
			m.TaskMap[name] = m.Tasks[i]
		}
		m.SelectedIdx = 0

	case MsgTaskStart:
		node, ok := m.TaskMap[msg.Name]
		if !ok {
			// Runs outside the plan, such as watch-triggered rebuilds.
			node = &TaskNode{Name: msg.Name}
			m.Tasks = append(m.Tasks, node)
			m.TaskMap[msg.Name] = node
		}
		node.Status = StatusRunning
		node.StartTime = msg.StartTime
		node.Err = nil
		m.SpanMap[msg.SpanID] = node

		if m.FollowMode {
			m.selectTask(node.Name)
		}

	case MsgTaskComplete:
		node, ok := m.SpanMap[msg.SpanID]
		if !ok {
			break
		}
		delete(m.SpanMap, msg.SpanID)

		node.Duration = msg.EndTime.Sub(node.StartTime)
		if msg.Err != nil {
			node.Status = StatusError
			node.Err = msg.Err
			// Failures stay in view.
			m.selectTask(node.Name)
			m.FollowMode = false
		} else {
			node.Status = StatusDone
		}
	}

	return m, nil
}

func (m *Model) selectTask(name string) {
	for i, t := range m.Tasks {
		if t.Name == name {
			m.SelectedIdx = i
			return
		}
	}
}

// SelectedTask returns the task under the cursor, if any.
func (m *Model) SelectedTask() *TaskNode {
	if m.SelectedIdx >= 0 && m.SelectedIdx < len(m.Tasks) {
		return m.Tasks[m.SelectedIdx]
	}
	return nil
}

// Counts returns how many tasks finished and how many of them failed.
func (m *Model) Counts() (finished, failed int) {
	for _, t := range m.Tasks {
		switch t.Status {
		case StatusDone:
			finished++
		case StatusError:
			finished++
			failed++
		case StatusPending, StatusRunning:
		}
	}
	return finished, failed
}
