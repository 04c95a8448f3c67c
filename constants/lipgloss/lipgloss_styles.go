package lipgloss

import "github.com/charmbracelet/lipgloss"

var (
	Red     = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
	Green   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ECC71"))
	Yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F4D03F"))
	BlueSky = lipgloss.NewStyle().Foreground(lipgloss.Color("#5DADE2")).Bold(true)
	Info    = lipgloss.NewStyle().Foreground(lipgloss.Color("#85929E"))

	// BoxStyle frames the end-of-command summaries
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5DADE2")).
			Padding(0, 1)
)
