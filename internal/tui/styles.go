package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var palette = struct {
	text, textMuted, border, selection, accent, danger lipgloss.AdaptiveColor
}{
	text:      lipgloss.AdaptiveColor{Light: "#1f2328", Dark: "#e6edf3"},
	textMuted: lipgloss.AdaptiveColor{Light: "#57606a", Dark: "#8b949e"},
	border:    lipgloss.AdaptiveColor{Light: "#d0d7de", Dark: "#30363d"},
	selection: lipgloss.AdaptiveColor{Light: "#ddf4ff", Dark: "#1f6feb"},
	accent:    lipgloss.AdaptiveColor{Light: "#0969da", Dark: "#58a6ff"},
	danger:    lipgloss.AdaptiveColor{Light: "#cf222e", Dark: "#f85149"},
}

type styles struct {
	title, summary   lipgloss.Style
	panel            lipgloss.Style
	status, errorMsg lipgloss.Style
	hint             lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()

	return styles{
		title:    base.Copy().Bold(true).Padding(0, 1),
		summary:  base.Copy().Foreground(palette.textMuted),
		panel:    base.Copy().BorderStyle(lipgloss.NormalBorder()).BorderForeground(palette.border),
		status:   base.Copy().Foreground(palette.accent).Padding(0, 1),
		errorMsg: base.Copy().Foreground(palette.danger).Padding(0, 1),
		hint:     base.Copy().Faint(true).Padding(0, 1),
	}
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(palette.textMuted).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(palette.border).
		BorderBottom(true).
		Padding(0, 1)
	s.Cell = lipgloss.NewStyle().
		Padding(0, 1)
	s.Selected = lipgloss.NewStyle().
		Foreground(palette.text).
		Background(palette.selection).
		Bold(true)
	return s
}
