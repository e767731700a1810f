// Package styles defines the lipgloss styles shared by CLI commands.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

	Bold  = lipgloss.NewStyle().Bold(true)
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	Error   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// StatusIcon returns a colored pass/fail marker for status lines.
func StatusIcon(ok bool) string {
	if ok {
		return Success.Render("✓")
	}
	return Error.Render("✗")
}
