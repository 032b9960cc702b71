package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/glaze/internal/ui/style"
)

const detailBorderWidth = 4

var (
	colorWhite = lipgloss.Color("#FFFFFF")

	// Pane Styles.
	listStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			MarginTop(1)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(style.Red).
			Padding(0, 1)

	// Task Status Styles.
	taskPendingStyle = lipgloss.NewStyle().
				Foreground(style.Slate)

	taskRunningStyle = lipgloss.NewStyle().
				Foreground(style.Sky).
				Bold(true)

	taskDoneStyle = lipgloss.NewStyle().
			Foreground(style.Green)

	taskErrorStyle = lipgloss.NewStyle().
			Foreground(style.Red)

	durationStyle = lipgloss.NewStyle().
			Foreground(style.Slate).
			Faint(true)

	// Selection Style.
	selectedStyle = lipgloss.NewStyle().
			Foreground(style.Sky).
			Bold(true)

	// Header Styles.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Sky).
			Foreground(colorWhite)

	footerStyle = lipgloss.NewStyle().
			Foreground(style.Slate).
			MarginTop(1)
)
