package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if !m.ready {
		return "\n  Loading..."
	}

	lines := []string{m.viewBar()}
	if m.notification != "" {
		lines = append(lines, m.styles.notification.Render("» "+m.notification))
	} else {
		lines = append(lines, "")
	}
	if m.showTooltips {
		lines = append(lines, m.viewport.View())
	}
	lines = append(lines, m.help.View(keys))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) viewBar() string {
	if len(m.items) == 0 {
		return m.styles.muted.Render("waiting for data")
	}

	parts := make([]string, 0, len(m.items))
	for _, item := range m.items {
		parts = append(parts, m.styles.label.Render(item.Job)+" "+m.styles.text.Render(item.Text))
	}
	bar := strings.Join(parts, m.styles.separator.Render(" │ "))
	if m.width > 0 {
		bar = lipgloss.NewStyle().MaxWidth(m.width).Render(bar)
	}
	return bar
}

func (m Model) tooltipContent() string {
	blocks := make([]string, 0, len(m.items))
	for _, item := range m.items {
		body := item.Tooltip
		if item.Link != "" {
			body += "\n" + m.styles.muted.Render(item.Link)
		}
		blocks = append(blocks, m.styles.tooltip.Render(body))
	}
	return strings.Join(blocks, "\n")
}
