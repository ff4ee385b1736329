package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the semantic color palette for the status bar.
type Theme struct {
	Base    lipgloss.Color
	Border  lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme uses Charmbracelet's CharmTone palette.
var DefaultTheme = Theme{
	Base:    lipgloss.Color("#201F26"), // Pepper
	Border:  lipgloss.Color("#4D4C57"), // Iron
	Muted:   lipgloss.Color("#858392"), // Squid
	Text:    lipgloss.Color("#DFDBDD"), // Ash
	Primary: lipgloss.Color("#6B50FF"), // Charple
	Accent:  lipgloss.Color("#FF60FF"), // Dolly
	Success: lipgloss.Color("#00FFB2"), // Julep
	Warning: lipgloss.Color("#FFD300"),
	Error:   lipgloss.Color("#E94090"),
}

type styles struct {
	label        lipgloss.Style
	text         lipgloss.Style
	separator    lipgloss.Style
	tooltip      lipgloss.Style
	notification lipgloss.Style
	muted        lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		label:     lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		text:      lipgloss.NewStyle().Foreground(t.Text),
		separator: lipgloss.NewStyle().Foreground(t.Border),
		tooltip: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Foreground(t.Text).
			Padding(0, 1),
		notification: lipgloss.NewStyle().Foreground(t.Warning),
		muted:        lipgloss.NewStyle().Foreground(t.Muted),
	}
}
