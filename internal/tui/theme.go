package tui

// Palette helpers. The TUI must remain readable on both light and dark
// terminal backgrounds, so every color is a lipgloss.AdaptiveColor and
// "faint" styling is only applied on dark backgrounds (faint text on light
// terminals often becomes illegible).

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted    = ac("240", "243")
	colorAccent   = ac("27", "62") // blue
	colorSelected = ac("232", "255")
	colorDanger   = ac("124", "203")

	styleHeader   = lipgloss.NewStyle().Bold(true)
	styleChrome   = lipgloss.NewStyle().Foreground(colorMuted)
	styleCursor   = lipgloss.NewStyle().Bold(true).Foreground(colorSelected)
	styleChecked  = lipgloss.NewStyle().Foreground(colorAccent)
	styleConfirm  = lipgloss.NewStyle().Bold(true).Foreground(colorDanger)
	stylePreview  = faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
	styleStatus   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleDivider  = lipgloss.NewStyle().Foreground(colorMuted)
	styleCellBody = lipgloss.NewStyle().PaddingLeft(6)
)

func itoa(n int) string { return strconv.Itoa(n) }
