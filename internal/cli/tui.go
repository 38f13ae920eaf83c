package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/posy/internal/tui"
)

type TuiCmd struct {
	Year int `help:"Year to open on. Defaults to the current year."`
}

func (c *TuiCmd) Run(ctx *Context) error {
	ctx.PerformAutomaticBackup()

	year := c.Year
	if year == 0 {
		year = ctx.currentYear()
	}
	model := tui.NewModel(ctx.Entries().Load(), ctx.Settings().Load(), ctx.Thresholds(), year)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
