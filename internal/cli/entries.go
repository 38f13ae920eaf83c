package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	perrors "github.com/julianstephens/posy/internal/errors"
	"github.com/julianstephens/posy/internal/journal"
	"github.com/julianstephens/posy/internal/media"
	"github.com/julianstephens/posy/internal/models"
)

type ShowCmd struct {
	Date        string `arg:"" optional:"" default:"today" help:"Day to show (YYYY-MM-DD, today or yesterday)."`
	History     bool   `help:"Also show earlier versions of the entry."`
	Limit       int    `help:"Maximum number of earlier versions." default:"5"`
	ExportMedia string `type:"path" help:"Write the attachment to this path (extension added when missing)."`
}

func (c *ShowCmd) Run(ctx *Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	store := ctx.Entries()
	entry, ok := journal.FindByDate(store.Load(), date)
	if !ok {
		return perrors.WithHint(fmt.Errorf("%w: %s", journal.ErrNotFound, date), "plant one with 'posy checkin "+date+"'")
	}

	ctx.println(ctx.formatEntry(entry, true))

	if c.ExportMedia != "" {
		if !entry.HasMedia() {
			return fmt.Errorf("entry for %s has no attachment", date)
		}
		data, mime, err := media.Decode(entry.Media)
		if err != nil {
			return err
		}
		path := c.ExportMedia
		if filepath.Ext(path) == "" {
			path += media.Extension(mime)
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("failed to write attachment: %w", err)
		}
		ctx.printf("Attachment written to %s\n", path)
	}

	if c.History {
		past, err := store.History(date, c.Limit)
		if err != nil {
			return err
		}
		theme := ctx.theme()
		ctx.println()
		if len(past) == 0 {
			ctx.println(theme.Muted.Render("No earlier versions kept for this day."))
			return nil
		}
		ctx.println(theme.Title.Render("Earlier versions"))
		for _, p := range past {
			ctx.printf("\n%s\n", theme.Muted.Render("replaced "+p.ReplacedAt.Local().Format(time.DateTime)))
			ctx.println(ctx.formatEntry(p.Entry, false))
		}
	}
	return nil
}

// formatEntry renders an entry as a short card.
func (c *Context) formatEntry(e models.DayEntry, full bool) string {
	theme := c.theme()
	info := e.Mood.Info()

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s · %s\n", theme.Title.Render(e.Date), theme.MoodCell(e.Mood, " "+info.Label+" "), info.Flower)
	if e.Note != "" {
		fmt.Fprintf(&b, "  %s\n", e.Note)
	} else {
		b.WriteString(theme.Muted.Render("  (no note)") + "\n")
	}
	if full && e.HasAffirmation() {
		b.WriteString(theme.Quote.Render("“"+e.Affirmation+"”") + "\n")
	}
	if done := e.CompletedGoals(); len(done) > 0 {
		current := c.Settings().Load()
		labels := make([]string, 0, len(done))
		for _, id := range done {
			if g, ok := current.Goal(id); ok {
				labels = append(labels, g.Icon+" "+g.Label)
			} else {
				labels = append(labels, id)
			}
		}
		fmt.Fprintf(&b, "  goals: %s\n", strings.Join(labels, ", "))
	}
	if e.HasMedia() {
		fmt.Fprintf(&b, "  %s\n", theme.Muted.Render("📎 "+string(e.MediaType)+" attached"))
	}
	return strings.TrimRight(b.String(), "\n")
}

type ListCmd struct {
	Year  int `help:"Only entries from this year."`
	Month int `help:"Only entries from this month (1-12, needs --year or uses the current year)."`
}

func (c *ListCmd) Run(ctx *Context) error {
	entries := ctx.Entries().Load()
	switch {
	case c.Month != 0:
		if c.Month < 1 || c.Month > 12 {
			return fmt.Errorf("month must be between 1 and 12, got %d", c.Month)
		}
		year := c.Year
		if year == 0 {
			year = ctx.currentYear()
		}
		entries = journal.FilterByMonth(entries, year, time.Month(c.Month))
	case c.Year != 0:
		entries = journal.FilterByYear(entries, c.Year)
	}

	if len(entries) == 0 {
		ctx.println("No entries found.")
		return nil
	}
	theme := ctx.theme()
	for _, e := range journal.SortedByDate(entries) {
		note := e.Note
		if len([]rune(note)) > 48 {
			note = string([]rune(note)[:47]) + "…"
		}
		ctx.printf("%s  %s  %-12s %s\n", e.Date, e.Mood.Info().Flower, e.Mood, theme.Muted.Render(note))
	}
	return nil
}

type DeleteCmd struct {
	Date string `arg:"" help:"Day to delete (YYYY-MM-DD, today or yesterday)."`
	Yes  bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *DeleteCmd) Run(ctx *Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	store := ctx.Entries()
	entry, ok := journal.FindByDate(store.Load(), date)
	if !ok {
		return fmt.Errorf("%w: %s", journal.ErrNotFound, date)
	}
	if !c.Yes {
		sure, err := ctx.confirm(fmt.Sprintf("Remove the %s planted on %s?", entry.Mood.Info().Flower, date))
		if err != nil {
			return err
		}
		if !sure {
			ctx.println("Delete cancelled.")
			return nil
		}
	}

	return ctx.WithWriteLock(func() error {
		if _, _, err := store.Delete(date); err != nil {
			return err
		}
		ctx.printf("✓ Deleted entry for %s\n", date)
		if ctx.Backups() != nil {
			ctx.println("  A snapshot was saved; see 'posy backup list'.")
		}
		return nil
	})
}
