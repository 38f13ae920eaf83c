package affirmation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"

	"github.com/julianstephens/posy/internal/config"
	"github.com/julianstephens/posy/internal/logger"
	"github.com/julianstephens/posy/internal/models"
)

const (
	// EmptyFallback is used when the model answers with no text.
	EmptyFallback = "The earth remembers your strength even when the frost feels permanent."
	// ErrorFallback is used when no answer could be obtained at all.
	ErrorFallback = "Soft moss gathers where you rest; your growth is quiet, steady, and true."

	silentNote  = "A silent moment in the shade."
	maxNoteRune = 2000
)

const promptTemplate = `You are Posy, the quiet soul of an ancient, empathetic garden.
A human is feeling %s and shares this reflection: "%s"

Write a single, short sentence of artistic reassurance that feels like a handwritten note left on a garden bench.

CRITICAL GUIDELINES:
- Resonance: Directly acknowledge the emotion or specific context in their note without parroting them.
- Style: Poetic, sensory, and grounded. Use botanical imagery like moss, trellis, deep roots, dew, or wild brambles.
- Tone: Deeply human and assuring. Avoid toxic positivity or "AI-speak".
- Constraint: Under 16 words.
- No emojis. Pure, evocative text.`

// BuildPrompt renders the generation prompt for a mood and note.
func BuildPrompt(mood models.Mood, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		note = silentNote
	}
	if r := []rune(note); len(r) > maxNoteRune {
		note = string(r[:maxNoteRune])
	}
	return fmt.Sprintf(promptTemplate, mood, note)
}

// contentGenerator is the slice of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini asks a Gemini model for a fresh affirmation.
type Gemini struct {
	models      contentGenerator
	model       string
	temperature float32
	topP        float32
	timeout     time.Duration
	maxRetries  uint64
	newBackOff  func() backoff.BackOff
}

func NewGemini(ctx context.Context, apiKey string, cfg *config.Config) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	g := newGemini(cfg)
	g.models = client.Models
	return g, nil
}

func newGemini(cfg *config.Config) *Gemini {
	return &Gemini{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		timeout:     cfg.Timeout,
		maxRetries:  cfg.MaxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 4 * time.Second
			return b
		},
	}
}

// newOffline returns a Gemini provider with no client; it always answers
// with ErrorFallback.
func newOffline(cfg *config.Config) *Gemini {
	return newGemini(cfg)
}

func (g *Gemini) Name() string { return "gemini:" + g.model }

func (g *Gemini) Affirmation(ctx context.Context, mood models.Mood, note string) string {
	text, err := g.generate(ctx, mood, note)
	if err != nil {
		logger.Warn("Affirmation generation failed, using fallback", "model", g.model, "error", err)
		return ErrorFallback
	}
	if text == "" {
		logger.Warn("Affirmation generation returned no text, using fallback", "model", g.model)
		return EmptyFallback
	}
	return text
}

func (g *Gemini) generate(ctx context.Context, mood models.Mood, note string) (string, error) {
	if g.models == nil {
		return "", errors.New("gemini client not configured")
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	temperature, topP := g.temperature, g.topP
	genCfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
		TopP:        &topP,
	}
	contents := genai.Text(BuildPrompt(mood, note))

	var text string
	operation := func() error {
		resp, err := g.models.GenerateContent(ctx, g.model, contents, genCfg)
		if err != nil {
			if ctx.Err() != nil || !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		if resp == nil {
			return nil
		}
		text = strings.TrimSpace(resp.Text())
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(g.newBackOff(), g.maxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		logger.Debug("Retrying affirmation request", "error", err, "wait", wait)
	}
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return "", err
	}
	return text, nil
}

// retryable reports whether a failed request may succeed if sent again.
// Client errors such as a bad key or a rejected request are final; timeouts
// and rate limits are not.
func retryable(err error) bool {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code = apiErrPtr.Code
	default:
		return true
	}
	if code == 408 || code == 429 {
		return true
	}
	return code < 400 || code >= 500
}
