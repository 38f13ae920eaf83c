package cli

import (
	"context"

	perrors "github.com/julianstephens/posy/internal/errors"
	"github.com/julianstephens/posy/internal/models"
)

// AffirmCmd prints an affirmation without planting anything.
type AffirmCmd struct {
	Mood string `arg:"" help:"Mood to write for."`
	Note string `arg:"" optional:"" help:"Optional note to respond to."`
}

func (c *AffirmCmd) Run(ctx *Context) error {
	mood, err := models.ParseMood(c.Mood)
	if err != nil {
		return perrors.WithHint(err, moodHint())
	}
	provider := ctx.Affirmations(context.Background())
	text := provider.Affirmation(context.Background(), mood, c.Note)
	ctx.println(ctx.theme().Quote.Render("“" + text + "”"))
	return nil
}
