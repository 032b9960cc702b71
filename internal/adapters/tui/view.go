package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the task list, the status line and the error of the
// selected task.
func (m *Model) View() string {
	if len(m.Tasks) == 0 {
		return "Initializing...\n"
	}

	sections := []string{titleStyle.Render("GLAZE"), m.taskList(), m.statusLine()}
	if detail := m.detailPane(); detail != "" {
		sections = append(sections, detail)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m *Model) taskList() string {
	var s strings.Builder

	for i, task := range m.Tasks {
		var style lipgloss.Style
		var icon string

		switch task.Status {
		case StatusRunning:
			style = taskRunningStyle
			icon = "●"
		case StatusDone:
			style = taskDoneStyle
			icon = "✓"
		case StatusError:
			style = taskErrorStyle
			icon = "✗"
		default:
			style = taskPendingStyle
			icon = "○"
		}

		line := fmt.Sprintf("%s %s", icon, task.Name)
		if task.Status == StatusDone || task.Status == StatusError {
			line += durationStyle.Render(" " + task.Duration.Round(time.Millisecond).String())
		}

		if i == m.SelectedIdx {
			s.WriteString(selectedStyle.Render("> ") + style.Render(line) + "\n")
			continue
		}
		s.WriteString("  " + style.Render(line) + "\n")
	}

	return listStyle.Render(strings.TrimSuffix(s.String(), "\n"))
}

func (m *Model) statusLine() string {
	finished, failed := m.Counts()
	status := fmt.Sprintf("%d/%d tasks finished", finished, len(m.Tasks))
	if failed > 0 {
		status += taskErrorStyle.Render(fmt.Sprintf(", %d failed", failed))
	}
	return footerStyle.Render(status + "  (↑/↓ select, q quit)")
}

func (m *Model) detailPane() string {
	task := m.SelectedTask()
	if task == nil || task.Err == nil {
		return ""
	}

	width := m.Width - detailBorderWidth
	style := detailStyle
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(titleStyle.Render("ERROR: "+task.Name) + "\n" + task.Err.Error())
}
