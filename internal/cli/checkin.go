package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/posy/internal/checkin"
	perrors "github.com/julianstephens/posy/internal/errors"
	"github.com/julianstephens/posy/internal/garden"
	"github.com/julianstephens/posy/internal/journal"
	"github.com/julianstephens/posy/internal/media"
	"github.com/julianstephens/posy/internal/models"
)

type CheckinCmd struct {
	Date  string   `arg:"" optional:"" default:"today" help:"Day to check in for (YYYY-MM-DD, today or yesterday)."`
	Mood  string   `short:"m" help:"Mood, e.g. Happy. Without it an interactive form is shown."`
	Note  string   `short:"n" help:"What is on your mind."`
	Goal  []string `short:"g" help:"Id of a goal completed today. Repeatable."`
	Media string   `type:"path" help:"Image or video to attach."`
	Yes   bool     `short:"y" help:"Replace an existing entry for the day without asking."`
}

type checkinForm struct {
	Mood  string
	Note  string
	Goals []string
}

// runCheckinForm fills in the form interactively.
var runCheckinForm = func(f *checkinForm, goals []models.UserGoal) error {
	moods := make([]huh.Option[string], 0, len(models.Moods()))
	for _, m := range models.Moods() {
		info := m.Info()
		moods = append(moods, huh.NewOption(fmt.Sprintf("%s · %s", info.Label, info.Flower), string(m)))
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How does today feel?").
				Options(moods...).
				Value(&f.Mood),
		),
		huh.NewGroup(
			huh.NewText().
				Title("Anything on your mind?").
				Description("Optional. Leave empty for a quiet day.").
				Value(&f.Note),
		),
	}
	if len(goals) > 0 {
		opts := make([]huh.Option[string], 0, len(goals))
		for _, g := range goals {
			opts = append(opts, huh.NewOption(g.Icon+" "+g.Label, g.ID))
		}
		groups = append(groups, huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Daily goals").
				Options(opts...).
				Value(&f.Goals),
		))
	}
	return huh.NewForm(groups...).WithTheme(huh.ThemeDracula()).Run()
}

func moodHint() string {
	names := make([]string, 0, len(models.Moods()))
	for _, m := range models.Moods() {
		names = append(names, string(m))
	}
	return "choose one of: " + strings.Join(names, ", ")
}

func (c *CheckinCmd) Run(ctx *Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	current := ctx.Settings().Load()
	entries := ctx.Entries()

	if existing, ok := journal.FindByDate(entries.Load(), date); ok && !c.Yes {
		replace, err := ctx.confirm(fmt.Sprintf("%s already holds a %s. Replace it?", date, existing.Mood.Info().Flower))
		if err != nil {
			return err
		}
		if !replace {
			ctx.println("Check-in cancelled.")
			return nil
		}
	}

	form := checkinForm{Mood: c.Mood, Note: c.Note, Goals: c.Goal}
	if form.Mood == "" {
		if err := runCheckinForm(&form, current.EnabledGoals()); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				ctx.println("Check-in cancelled.")
				return nil
			}
			return fmt.Errorf("check-in form failed: %w", err)
		}
	}

	mood, err := models.ParseMood(form.Mood)
	if err != nil {
		return perrors.WithHint(err, moodHint())
	}

	bg := context.Background()
	sess, err := checkin.New(entries, ctx.Affirmations(bg), current, date)
	if err != nil {
		return err
	}
	if err := sess.SelectMood(mood); err != nil {
		return err
	}
	if err := sess.SetNote(form.Note); err != nil {
		return err
	}
	for _, id := range form.Goals {
		if err := sess.SetGoal(id, true); err != nil {
			return perrors.WithHint(err, "see 'posy goal list' for enabled goal ids")
		}
	}
	if c.Media != "" {
		att, err := media.Load(c.Media)
		if err != nil {
			return err
		}
		if err := sess.AttachMedia(att.DataURL, att.Type); err != nil {
			return err
		}
	}

	ctx.printf("Planting a %s...\n", mood.Info().Flower)
	text, err := sess.Plant(bg)
	if err != nil {
		return err
	}

	var all []models.DayEntry
	err = ctx.WithWriteLock(func() error {
		var err error
		all, err = sess.Commit()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save check-in: %w", err)
	}

	theme := ctx.theme()
	ctx.println()
	ctx.println(theme.Quote.Render("“" + text + "”"))
	if quote, ok := garden.ResilienceQuote(mood); ok {
		ctx.println(theme.Muted.Render("  " + quote))
	}

	year := 0
	if t, err := journal.ParseDate(date); err == nil {
		year = t.Year()
	}
	count := garden.MoodFrequency(journal.FilterByYear(all, year))[mood]
	stage := ctx.Thresholds().Stage(count)
	ctx.printf("\n%s %s for %s: %s (%d this year)\n", stage.Glyph(), mood.Info().Flower, date, stage, count)
	return nil
}
