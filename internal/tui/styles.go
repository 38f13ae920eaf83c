package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/posy/internal/constants"
	"github.com/julianstephens/posy/internal/models"
)

type palette struct {
	accent lipgloss.Color
	soft   lipgloss.Color
	muted  lipgloss.Color
}

var palettes = map[string]palette{
	constants.PaletteClassic: {accent: "#8fbc8f", soft: "#fefdfb", muted: "245"},
	constants.PaletteRose:    {accent: "#e8a0b4", soft: "#ffcad4", muted: "245"},
	constants.PaletteForest:  {accent: "#4f7942", soft: "#d1e8e2", muted: "243"},
}

// Theme holds the lipgloss styles derived from the user's display settings.
type Theme struct {
	settings models.UserSettings

	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	Title       lipgloss.Style
	Muted       lipgloss.Style
	Accent      lipgloss.Style
	Danger      lipgloss.Style
	Quote       lipgloss.Style
	Doc         lipgloss.Style
	Empty       lipgloss.Style
}

func NewTheme(s models.UserSettings) Theme {
	p, ok := palettes[s.Palette]
	if !ok {
		p = palettes[constants.PaletteClassic]
	}
	text := lipgloss.Color("236")
	if s.IsDarkMode {
		text = lipgloss.Color("252")
	}
	muted := p.muted
	if s.IsHighContrast {
		muted = text
	}

	t := Theme{
		settings: s,
		ActiveTab: lipgloss.NewStyle().
			Foreground(lipgloss.Color("236")).
			Background(p.accent).
			Padding(0, 1).
			Bold(true),
		InactiveTab: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),
		Title:  lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		Muted:  lipgloss.NewStyle().Foreground(muted),
		Accent: lipgloss.NewStyle().Foreground(p.accent),
		Danger: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Quote:  lipgloss.NewStyle().Foreground(text).Italic(true).PaddingLeft(2),
		Doc:    lipgloss.NewStyle().Padding(1, 2),
		Empty:  lipgloss.NewStyle().Foreground(muted),
	}
	if s.IsHighContrast {
		t.Title = t.Title.Underline(true)
		t.Accent = t.Accent.Bold(true)
		t.InactiveTab = t.InactiveTab.Bold(true)
	}
	if s.IsLargeText {
		t.Doc = t.Doc.Padding(2, 4)
		t.ActiveTab = t.ActiveTab.Padding(0, 2)
		t.InactiveTab = t.InactiveTab.Padding(0, 2)
	}
	return t
}

// LargeText reports whether layouts should use roomier spacing.
func (t Theme) LargeText() bool { return t.settings.IsLargeText }

// MoodCell renders a calendar cell in the mood's colour.
func (t Theme) MoodCell(m models.Mood, text string) string {
	style := lipgloss.NewStyle().
		Background(lipgloss.Color(m.Info().Color)).
		Foreground(lipgloss.Color("236"))
	if t.settings.IsHighContrast {
		style = style.Bold(true)
	}
	return style.Render(text)
}
