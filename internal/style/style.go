// Package style centralizes the terminal color palette and print helpers
// shared by the CLI and the live dashboard, so status colors stay
// consistent wherever they're rendered.
package style

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary   = lipgloss.Color("39")
	colorDim       = lipgloss.Color("240")
	colorHighlight = lipgloss.Color("212")
	colorSuccess   = lipgloss.Color("42")
	colorWarning   = lipgloss.Color("214")
	colorDanger    = lipgloss.Color("196")
	colorInfo      = lipgloss.Color("33")
)

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	DimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	WarningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorDanger)
	SuccessStyle = lipgloss.NewStyle().Foreground(colorSuccess)

	// RunningStyle, WaitingStyle, IdleStyle, and FailedStyle color an
	// agent's status the same way in the CLI and the dashboard (spec §6:
	// "running=green, waiting/spawning=yellow, idle=blue, failed/lost=red").
	RunningStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	WaitingStyle = lipgloss.NewStyle().Foreground(colorWarning)
	IdleStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	FailedStyle  = lipgloss.NewStyle().Foreground(colorDanger)
)

// StatusStyle returns the style a raw agent or worktree status string
// should render in, falling back to DimStyle for anything unrecognized.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "running", "busy":
		return RunningStyle
	case "waiting", "spawning":
		return WaitingStyle
	case "idle", "ready":
		return IdleStyle
	case "failed", "lost", "attention":
		return FailedStyle
	default:
		return DimStyle
	}
}

// PrintWarning writes a yellow "warning:"-prefixed line to stderr.
func PrintWarning(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, WarningStyle.Render("warning: "+fmt.Sprintf(format, args...)))
}

// PrintError writes a red "error:"-prefixed line to stderr.
func PrintError(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: "+fmt.Sprintf(format, args...)))
}

// PrintSuccess writes a green line to stdout.
func PrintSuccess(format string, args ...interface{}) {
	fmt.Println(SuccessStyle.Render(fmt.Sprintf(format, args...)))
}
