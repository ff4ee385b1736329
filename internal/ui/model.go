// Package ui renders the bar items as a bubbletea terminal status bar.
package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aristath/kanbanbar/internal/modules/display"
)

// Source is the display state the bar follows.
type Source interface {
	Items() []display.Item
	Notifications() []display.Notification
	Subscribe() (<-chan display.Event, func())
}

// Model is the bubbletea model of the status bar.
type Model struct {
	events      <-chan display.Event
	unsubscribe func()
	restart     func()

	// Data
	items        []display.Item
	notification string

	// UI state
	width        int
	height       int
	ready        bool
	showTooltips bool
	styles       styles

	// Components
	viewport viewport.Model
	help     help.Model
}

// Messages

type eventMsg display.Event

type closedMsg struct{}

// NewModel subscribes to source. restart is invoked by the refresh key.
// Call Close once the program has exited.
func NewModel(source Source, restart func()) Model {
	events, unsubscribe := source.Subscribe()
	m := Model{
		events:      events,
		unsubscribe: unsubscribe,
		restart:     restart,
		items:       source.Items(),
		styles:      newStyles(DefaultTheme),
		help:        help.New(),
	}
	if n := source.Notifications(); len(n) > 0 {
		m.notification = n[len(n)-1].Message
	}
	return m
}

// Close stops following the source.
func (m Model) Close() {
	m.unsubscribe()
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// Commands

func waitForEvent(events <-chan display.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func restartCmd(restart func()) tea.Cmd {
	return func() tea.Msg {
		restart()
		return nil
	}
}
