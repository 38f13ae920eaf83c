package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/posy/internal/constants"
	"github.com/julianstephens/posy/internal/garden"
	"github.com/julianstephens/posy/internal/models"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.tab {
	case TabYear:
		content = RenderYear(m.theme, m.entries, m.year)
	case TabGarden:
		content = m.viewGarden()
	case TabEntries:
		content = m.viewEntries()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.theme.Doc.Render(content),
		m.help.View(m.keys),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for t := Tab(0); t < tabCount; t++ {
		if m.tab == t {
			tabs = append(tabs, m.theme.ActiveTab.Render(t.String()))
		} else {
			tabs = append(tabs, m.theme.InactiveTab.Render(t.String()))
		}
	}
	tabs = append(tabs, m.theme.Muted.Render("  "+strconv.Itoa(m.year)))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewGarden() string {
	summary := garden.YearSummary(m.entries, m.year)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%d flowers · %d affirmations · %d kinds\n\n",
		m.theme.Title.Render(fmt.Sprintf("Garden of %d", m.year)),
		summary.TotalCount, summary.AffirmationCount, summary.DistinctMoodCount)

	blooms := garden.Blooms(m.entries, m.year, m.thresholds)
	if len(blooms) == 0 {
		b.WriteString(m.theme.Empty.Render("Nothing has been planted this year."))
		return b.String()
	}
	for _, bl := range blooms {
		fmt.Fprintf(&b, "%s %s ×%d %s\n", bl.Stage.Glyph(), m.theme.MoodCell(bl.Mood, " "+bl.Info.Flower+" "), bl.Count, m.theme.Muted.Render(bl.Stage.String()))
		if q, ok := garden.ResilienceQuote(bl.Mood); ok {
			b.WriteString(m.theme.Quote.Render(q) + "\n")
		}
		if m.theme.LargeText() {
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewEntries() string {
	entries := m.yearEntries()
	if len(entries) == 0 {
		return m.theme.Empty.Render(fmt.Sprintf("No entries in %d.", m.year))
	}

	var list strings.Builder
	for i, e := range entries {
		line := fmt.Sprintf("%s %s", e.Date, e.Mood.Info().Flower)
		if i == m.cursor {
			list.WriteString(m.theme.Accent.Render("› "+line) + "\n")
		} else {
			list.WriteString("  " + line + "\n")
		}
	}

	cursor := m.cursor
	if cursor >= len(entries) {
		cursor = len(entries) - 1
	}
	detail := m.viewDetail(entries[cursor])
	return lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "   ", detail)
}

func (m Model) viewDetail(e models.DayEntry) string {
	info := e.Mood.Info()
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", m.theme.Title.Render(e.Date), m.theme.MoodCell(e.Mood, " "+info.Label+" · "+info.Flower+" "))
	if e.Note != "" {
		b.WriteString(lipgloss.NewStyle().Width(48).Render(e.Note) + "\n\n")
	}
	if e.HasAffirmation() {
		b.WriteString(m.theme.Quote.Width(48).Render("“"+e.Affirmation+"”") + "\n\n")
	}
	for _, id := range e.CompletedGoals() {
		if g, ok := m.settings.Goal(id); ok {
			b.WriteString(g.Icon + " " + g.Label + "\n")
		} else {
			b.WriteString("• " + id + "\n")
		}
	}
	if e.HasMedia() {
		b.WriteString(m.theme.Muted.Render("📎 " + string(e.MediaType)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderYear draws one row per month and one cell per day, coloured by the
// mood planted that day.
func RenderYear(theme Theme, entries []models.DayEntry, year int) string {
	byDate := make(map[string]models.Mood, len(entries))
	for _, e := range entries {
		byDate[e.Date] = e.Mood
	}
	counts := garden.MonthCounts(entries, year)

	var b strings.Builder
	b.WriteString(theme.Title.Render(strconv.Itoa(year)) + "\n")
	for mo := time.January; mo <= time.December; mo++ {
		first := time.Date(year, mo, 1, 0, 0, 0, 0, time.UTC)
		days := first.AddDate(0, 1, -1).Day()
		b.WriteString(mo.String()[:3] + " ")
		for d := 0; d < days; d++ {
			key := first.AddDate(0, 0, d).Format(constants.DateFormat)
			if mood, ok := byDate[key]; ok {
				b.WriteString(theme.MoodCell(mood, "●"))
			} else {
				b.WriteString(theme.Empty.Render("·"))
			}
		}
		fmt.Fprintf(&b, "%s %s\n", strings.Repeat(" ", 31-days), theme.Muted.Render(strconv.Itoa(counts[mo-1])))
	}
	return b.String()
}
