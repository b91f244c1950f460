package host

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	colorPrimary   = lipgloss.Color("#a78bfa")
	colorSecondary = lipgloss.Color("#f1a208")
	colorFgBase    = lipgloss.Color("#c0c0c0")
	colorFgMuted   = lipgloss.Color("#808080")
	colorFgSubtle  = lipgloss.Color("#585858")
	colorBgCursor  = lipgloss.Color("#303030")
	colorError     = lipgloss.Color("#e06c75")
)

const (
	playSymbol  = "▶"
	pauseSymbol = "⏸"
	likeSymbol  = "♥"
)

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorFgBase).Bold(true)
}

func mutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorFgMuted)
}

func subtleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorFgSubtle)
}

func likedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSecondary)
}

func selectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Background(colorBgCursor)
}

func activeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
}

func errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorError)
}

func progressBarFilled() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorPrimary)
}

func progressBarEmpty() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorFgSubtle)
}
