package cli

import (
	"errors"
	"fmt"
	"strings"

	perrors "github.com/julianstephens/posy/internal/errors"
	"github.com/julianstephens/posy/internal/models"
	"github.com/julianstephens/posy/internal/settings"
)

type SettingsCmd struct {
	Palette      *string `help:"Colour palette: classic, rose or forest."`
	Dark         *bool   `help:"Use the dark theme."`
	HighContrast *bool   `help:"Use bold, high-contrast styling."`
	LargeText    *bool   `help:"Use roomier spacing."`
	Timezone     *string `help:"IANA timezone used to decide what 'today' is. Empty for local time."`
}

func (c *SettingsCmd) changes() bool {
	return c.Palette != nil || c.Dark != nil || c.HighContrast != nil || c.LargeText != nil || c.Timezone != nil
}

func (c *SettingsCmd) Run(ctx *Context) error {
	if !c.changes() {
		printSettings(ctx, ctx.Settings().Load())
		return nil
	}

	var updated models.UserSettings
	err := ctx.WithWriteLock(func() error {
		var err error
		updated, err = ctx.Settings().Update(func(s *models.UserSettings) error {
			if c.Palette != nil {
				s.Palette = strings.ToLower(*c.Palette)
			}
			if c.Dark != nil {
				s.IsDarkMode = *c.Dark
			}
			if c.HighContrast != nil {
				s.IsHighContrast = *c.HighContrast
			}
			if c.LargeText != nil {
				s.IsLargeText = *c.LargeText
			}
			if c.Timezone != nil {
				s.Timezone = *c.Timezone
			}
			return nil
		})
		return err
	})
	if errors.Is(err, settings.ErrUnknownPalette) {
		return perrors.WithHint(err, "use classic, rose or forest")
	}
	if err != nil {
		return err
	}
	ctx.println("✓ Settings updated")
	printSettings(ctx, updated)
	return nil
}

func printSettings(ctx *Context, s models.UserSettings) {
	tz := s.Timezone
	if tz == "" {
		tz = "local"
	}
	ctx.println("Current Settings:")
	ctx.printf("  Palette:        %s\n", s.Palette)
	ctx.printf("  Dark mode:      %v\n", s.IsDarkMode)
	ctx.printf("  High contrast:  %v\n", s.IsHighContrast)
	ctx.printf("  Large text:     %v\n", s.IsLargeText)
	ctx.printf("  Timezone:       %s\n", tz)
	ctx.printf("  Goals:          %d (%d enabled)\n", len(s.Goals), len(s.EnabledGoals()))
}

type GoalAddCmd struct {
	Label string `arg:"" help:"Goal label, e.g. 'Read a chapter'."`
	Icon  string `help:"Emoji shown next to the goal."`
}

func (c *GoalAddCmd) Run(ctx *Context) error {
	return ctx.WithWriteLock(func() error {
		goal, err := ctx.Settings().AddGoal(c.Label, c.Icon)
		if err != nil {
			return err
		}
		ctx.printf("✓ Added goal %s %s (%s)\n", goal.Icon, goal.Label, goal.ID)
		return nil
	})
}

type GoalListCmd struct{}

func (c *GoalListCmd) Run(ctx *Context) error {
	theme := ctx.theme()
	for _, g := range ctx.Settings().Load().Goals {
		state := theme.Accent.Render("on ")
		if !g.Enabled {
			state = theme.Muted.Render("off")
		}
		kind := ""
		if !settings.IsBuiltin(g.ID) {
			kind = theme.Muted.Render(" custom")
		}
		ctx.printf("  %s  %s %-24s %s%s\n", state, g.Icon, g.Label, theme.Muted.Render(g.ID), kind)
	}
	return nil
}

type GoalEnableCmd struct {
	ID string `arg:"" help:"Goal id."`
}

func (c *GoalEnableCmd) Run(ctx *Context) error {
	return setGoalEnabled(ctx, c.ID, true)
}

type GoalDisableCmd struct {
	ID string `arg:"" help:"Goal id."`
}

func (c *GoalDisableCmd) Run(ctx *Context) error {
	return setGoalEnabled(ctx, c.ID, false)
}

func setGoalEnabled(ctx *Context, id string, enabled bool) error {
	return ctx.WithWriteLock(func() error {
		if _, err := ctx.Settings().SetGoalEnabled(id, enabled); err != nil {
			return goalHint(err)
		}
		verb := "Enabled"
		if !enabled {
			verb = "Disabled"
		}
		ctx.printf("✓ %s goal %s\n", verb, id)
		return nil
	})
}

type GoalRemoveCmd struct {
	ID string `arg:"" help:"Id of a custom goal."`
}

func (c *GoalRemoveCmd) Run(ctx *Context) error {
	return ctx.WithWriteLock(func() error {
		if _, err := ctx.Settings().RemoveGoal(c.ID); err != nil {
			if errors.Is(err, settings.ErrBuiltinGoal) {
				return perrors.WithHint(err, fmt.Sprintf("built-in goals can only be disabled: 'posy goal disable %s'", c.ID))
			}
			return goalHint(err)
		}
		ctx.printf("✓ Removed goal %s\n", c.ID)
		return nil
	})
}

func goalHint(err error) error {
	if errors.Is(err, settings.ErrGoalNotFound) {
		return perrors.WithHint(err, "see 'posy goal list' for goal ids")
	}
	return err
}
