package cmd

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// styles renders inspect output. Colors are dropped when w is not a
// terminal.
type styles struct {
	Header  lipgloss.Style
	Label   lipgloss.Style
	Applied lipgloss.Style
	Success lipgloss.Style
	Muted   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Label:   r.NewStyle().Bold(true),
		Applied: r.NewStyle().Foreground(lipgloss.Color("63")),
		Success: r.NewStyle().Foreground(lipgloss.Color("42")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}
