package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aristath/kanbanbar/internal/modules/display"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(m.width, m.panelHeight())
		m.help.Width = m.width
		m.ready = true

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Tooltips):
			m.showTooltips = !m.showTooltips
		case key.Matches(msg, keys.Restart):
			if m.restart != nil {
				cmds = append(cmds, restartCmd(m.restart))
			}
		}

	case eventMsg:
		m.apply(display.Event(msg))
		cmds = append(cmds, waitForEvent(m.events))

	case closedMsg:
		// Source went away; keep showing the last state
	}

	if m.ready {
		m.viewport.SetContent(m.tooltipContent())
		if _, isKey := msg.(tea.KeyMsg); isKey {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) apply(ev display.Event) {
	switch ev.Type {
	case display.EventRender:
		if ev.Item == nil {
			return
		}
		for i := range m.items {
			if m.items[i].Job == ev.Item.Job {
				m.items[i] = *ev.Item
				return
			}
		}
		m.items = append(m.items, *ev.Item)
	case display.EventNotify:
		if ev.Notification != nil {
			m.notification = ev.Notification.Message
		}
	}
}

// panelHeight leaves room for the bar, the notification line and the help line.
func (m Model) panelHeight() int {
	h := m.height - 3
	if h < 0 {
		return 0
	}
	return h
}
