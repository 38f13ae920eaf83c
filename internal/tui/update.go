package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Tab):
			m.tab = (m.tab + 1) % tabCount
		case key.Matches(msg, m.keys.ShiftTab):
			m.tab = (m.tab - 1 + tabCount) % tabCount
		case key.Matches(msg, m.keys.PrevYear):
			m.year--
			m.cursor = 0
		case key.Matches(msg, m.keys.NextYear):
			m.year++
			m.cursor = 0
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.yearEntries())-1 {
				m.cursor++
			}
		}
	}

	return m, nil
}
