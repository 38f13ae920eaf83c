package affirmation

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"

	"github.com/julianstephens/posy/internal/config"
	"github.com/julianstephens/posy/internal/models"
)

type fakeModels struct {
	calls     int
	responses []fakeResponse
	lastModel string
	lastCfg   *genai.GenerateContentConfig
	lastText  string
}

type fakeResponse struct {
	text string
	err  error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.lastModel, f.lastCfg = model, cfg
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.lastText = contents[0].Parts[0].Text
	}
	r := f.responses[min(f.calls, len(f.responses)-1)]
	f.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: r.text}}},
		}},
	}, nil
}

func testGemini(f *fakeModels) *Gemini {
	g := newGemini(config.Default())
	g.models = f
	g.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return g
}

func TestGeminiReturnsTrimmedText(t *testing.T) {
	f := &fakeModels{responses: []fakeResponse{{text: "  Dew settles on tired petals.\n"}}}
	got := testGemini(f).Affirmation(context.Background(), models.MoodTired, "long day")
	if got != "Dew settles on tired petals." {
		t.Errorf("Affirmation() = %q", got)
	}
	if f.lastModel != config.Default().Model {
		t.Errorf("model = %q", f.lastModel)
	}
	if f.lastCfg == nil || f.lastCfg.Temperature == nil || *f.lastCfg.Temperature != 1.0 || *f.lastCfg.TopP != 0.95 {
		t.Errorf("sampling config not passed through: %+v", f.lastCfg)
	}
	if !strings.Contains(f.lastText, "feeling Tired") || !strings.Contains(f.lastText, `"long day"`) {
		t.Errorf("prompt missing mood or note: %q", f.lastText)
	}
}

func TestGeminiRetriesThenSucceeds(t *testing.T) {
	f := &fakeModels{responses: []fakeResponse{
		{err: errors.New("503 unavailable")},
		{err: errors.New("503 unavailable")},
		{text: "Roots hold."},
	}}
	if got := testGemini(f).Affirmation(context.Background(), models.MoodAnxious, ""); got != "Roots hold." {
		t.Errorf("Affirmation() = %q, want Roots hold.", got)
	}
	if f.calls != 3 {
		t.Errorf("calls = %d, want 3", f.calls)
	}
}

func TestGeminiNeverFails(t *testing.T) {
	tests := []struct {
		name string
		g    func() *Gemini
		want string
	}{
		{
			name: "persistent error",
			g: func() *Gemini {
				return testGemini(&fakeModels{responses: []fakeResponse{{err: errors.New("network down")}}})
			},
			want: ErrorFallback,
		},
		{
			name: "empty text",
			g: func() *Gemini {
				return testGemini(&fakeModels{responses: []fakeResponse{{text: "   "}}})
			},
			want: EmptyFallback,
		},
		{
			name: "no client",
			g:    func() *Gemini { return newOffline(config.Default()) },
			want: ErrorFallback,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.g().Affirmation(context.Background(), models.MoodSad, "note"); got != tt.want {
				t.Errorf("Affirmation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGeminiRetryLimit(t *testing.T) {
	f := &fakeModels{responses: []fakeResponse{{err: errors.New("boom")}}}
	g := testGemini(f)
	g.maxRetries = 2
	_ = g.Affirmation(context.Background(), models.MoodHappy, "")
	if f.calls != 3 {
		t.Errorf("calls = %d, want 1 attempt + 2 retries", f.calls)
	}
}

func TestGeminiClientErrorsNotRetried(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCalls int
	}{
		{"invalid key", genai.APIError{Code: 401, Status: "UNAUTHENTICATED"}, 1},
		{"bad request", &genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, 1},
		{"rate limited", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, 3},
		{"server error", genai.APIError{Code: 503, Status: "UNAVAILABLE"}, 3},
		{"network", errors.New("connection reset"), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeModels{responses: []fakeResponse{{err: tt.err}}}
			g := testGemini(f)
			g.maxRetries = 2
			if got := g.Affirmation(context.Background(), models.MoodHappy, ""); got != ErrorFallback {
				t.Errorf("Affirmation() = %q, want fallback", got)
			}
			if f.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", f.calls, tt.wantCalls)
			}
		})
	}
}

func TestGeminiCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &fakeModels{responses: []fakeResponse{{err: context.Canceled}}}
	if got := testGemini(f).Affirmation(ctx, models.MoodCalm, ""); got != ErrorFallback {
		t.Errorf("Affirmation() = %q, want fallback", got)
	}
	if f.calls > 1 {
		t.Errorf("cancelled request retried %d times", f.calls)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(models.MoodLonely, "   ")
	if !strings.Contains(p, silentNote) {
		t.Errorf("empty note should become %q: %s", silentNote, p)
	}
	note := "first line\nshe said \"rest\"\ttoday"
	if p := BuildPrompt(models.MoodSad, note); !strings.Contains(p, `"`+note+`"`) {
		t.Errorf("note should appear verbatim in quotes: %s", p)
	}
	long := strings.Repeat("a", maxNoteRune+50)
	if strings.Count(BuildPrompt(models.MoodHappy, long), "a") > maxNoteRune+100 {
		t.Error("long notes should be truncated")
	}
}

func TestLibraryAlwaysReturnsLine(t *testing.T) {
	lib := NewLibrary(rand.New(rand.NewPCG(1, 2)))
	for _, m := range models.Moods() {
		got := lib.Affirmation(context.Background(), m, "")
		if got == "" {
			t.Errorf("Affirmation(%s) empty", m)
		}
		if !slices.Contains(Lines(m), got) {
			t.Errorf("Affirmation(%s) = %q not from its table", m, got)
		}
	}
	if got := lib.Affirmation(context.Background(), "Unlisted", ""); !slices.Contains(generic, got) {
		t.Errorf("unknown mood got %q, want a generic line", got)
	}
}

func TestEveryMoodHasThreeLines(t *testing.T) {
	for _, m := range models.Moods() {
		if n := len(library[m]); n != 3 {
			t.Errorf("%s has %d lines, want 3", m, n)
		}
	}
}

func TestNewSelectsProvider(t *testing.T) {
	orig := config.Default()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")

	cfg := *orig
	cfg.AffirmationSource = "library"
	if p := New(context.Background(), &cfg); p.Name() != "library" {
		t.Errorf("library source gave %s", p.Name())
	}

	cfg.AffirmationSource = "gemini"
	cfg.APIKey = "test-key"
	if p := New(context.Background(), &cfg); !strings.HasPrefix(p.Name(), "gemini:") {
		t.Errorf("gemini source gave %s", p.Name())
	}

	cfg.AffirmationSource = "auto"
	if p := New(context.Background(), &cfg); !strings.HasPrefix(p.Name(), "gemini:") {
		t.Errorf("auto with key gave %s", p.Name())
	}
}
