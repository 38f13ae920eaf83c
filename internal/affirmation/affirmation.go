// Package affirmation produces the short reassurance attached to a check-in.
// Providers never fail: every error path ends in a fixed line of text.
package affirmation

import (
	"context"

	"github.com/julianstephens/posy/internal/config"
	"github.com/julianstephens/posy/internal/constants"
	"github.com/julianstephens/posy/internal/logger"
	"github.com/julianstephens/posy/internal/models"
)

// Provider returns a non-empty affirmation for a mood and note.
type Provider interface {
	Affirmation(ctx context.Context, mood models.Mood, note string) string
	Name() string
}

// New picks a provider from cfg. "auto" uses Gemini when an API key can be
// resolved and the local library otherwise.
func New(ctx context.Context, cfg *config.Config) Provider {
	if cfg == nil {
		cfg = config.Default()
	}
	if cfg.AffirmationSource == constants.AffirmationSourceLibrary {
		return NewLibrary(nil)
	}

	key := cfg.ResolveAPIKey()
	if key == "" {
		if cfg.AffirmationSource == constants.AffirmationSourceGemini {
			logger.Warn("No API key found for Gemini, affirmations will use the fallback line")
			return newOffline(cfg)
		}
		return NewLibrary(nil)
	}

	g, err := NewGemini(ctx, key, cfg)
	if err != nil {
		logger.Warn("Failed to create Gemini client", "error", err)
		if cfg.AffirmationSource == constants.AffirmationSourceGemini {
			return newOffline(cfg)
		}
		return NewLibrary(nil)
	}
	return g
}
