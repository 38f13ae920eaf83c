// Package tui is a read-only browser over the journal: a year calendar, the
// garden of blooms and the list of entries.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/posy/internal/garden"
	"github.com/julianstephens/posy/internal/journal"
	"github.com/julianstephens/posy/internal/models"
)

type Tab int

const (
	TabYear Tab = iota
	TabGarden
	TabEntries
	tabCount
)

var tabTitles = [...]string{"Year", "Garden", "Entries"}

func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return "?"
	}
	return tabTitles[t]
}

type Model struct {
	entries    []models.DayEntry
	settings   models.UserSettings
	thresholds garden.Thresholds
	theme      Theme

	tab      Tab
	year     int
	cursor   int
	keys     KeyMap
	help     help.Model
	quitting bool
	width    int
	height   int
}

// NewModel opens on the Year tab showing year.
func NewModel(entries []models.DayEntry, s models.UserSettings, t garden.Thresholds, year int) Model {
	h := help.New()
	return Model{
		entries:    entries,
		settings:   s,
		thresholds: t,
		theme:      NewTheme(s),
		tab:        TabYear,
		year:       year,
		keys:       DefaultKeyMap(),
		help:       h,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Tab() Tab  { return m.tab }
func (m Model) Year() int { return m.year }

// yearEntries are the shown year's entries, newest first.
func (m Model) yearEntries() []models.DayEntry {
	return journal.SortedByDate(journal.FilterByYear(m.entries, m.year))
}
