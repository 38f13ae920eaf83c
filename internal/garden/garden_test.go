package garden

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/posy/internal/models"
)

func TestMoodFrequencyAndSummaryScenario(t *testing.T) {
	entries := []models.DayEntry{
		{Date: "2024-01-10", Mood: models.MoodHappy, Affirmation: "You glow."},
		{Date: "2024-02-11", Mood: models.MoodHappy},
		{Date: "2024-03-12", Mood: models.MoodSad, Affirmation: "Rain helps roots."},
	}

	want := map[models.Mood]int{models.MoodHappy: 2, models.MoodSad: 1}
	if diff := cmp.Diff(want, MoodFrequency(entries)); diff != "" {
		t.Errorf("MoodFrequency mismatch (-want +got):\n%s", diff)
	}

	got := YearSummary(entries, 2024)
	wantSummary := Summary{Year: 2024, TotalCount: 3, AffirmationCount: 2, DistinctMoodCount: 2}
	if diff := cmp.Diff(wantSummary, got); diff != "" {
		t.Errorf("YearSummary mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyInput(t *testing.T) {
	if got := MoodFrequency(nil); len(got) != 0 {
		t.Errorf("MoodFrequency(nil) = %v, want empty", got)
	}
	if diff := cmp.Diff(Summary{Year: 2024}, YearSummary(nil, 2024)); diff != "" {
		t.Errorf("YearSummary(nil) mismatch (-want +got):\n%s", diff)
	}
	if got := Blooms(nil, 2024, DefaultThresholds()); len(got) != 0 {
		t.Errorf("Blooms(nil) = %v, want empty", got)
	}
	if got := MonthCounts(nil, 2024); got != [12]int{} {
		t.Errorf("MonthCounts(nil) = %v, want zeros", got)
	}
}

func TestYearSummaryExcludesOtherYears(t *testing.T) {
	entries := []models.DayEntry{
		{Date: "2023-12-31", Mood: models.MoodCalm, Affirmation: "x"},
		{Date: "2024-01-01", Mood: models.MoodHappy},
		{Date: "2025-01-01", Mood: models.MoodSad},
	}
	got := YearSummary(entries, 2024)
	if got.TotalCount != 1 || got.AffirmationCount != 0 || got.DistinctMoodCount != 1 {
		t.Errorf("YearSummary = %+v", got)
	}
}

func TestGrowthStageMonotonic(t *testing.T) {
	for _, th := range []Thresholds{DefaultThresholds(), {Bush: 1, Tree: 2}, {Bush: 5, Tree: 30}} {
		if err := th.Validate(); err != nil {
			t.Fatalf("%+v: %v", th, err)
		}
		prev := th.Stage(0)
		for c := 1; c <= 100; c++ {
			cur := th.Stage(c)
			if cur < prev {
				t.Fatalf("%+v: Stage(%d)=%s smaller than Stage(%d)=%s", th, c, cur, c-1, prev)
			}
			prev = cur
		}
		if th.Stage(0) != Seedling || th.Stage(th.Bush) != Bush || th.Stage(th.Tree) != Tree {
			t.Errorf("%+v: cut points not honoured", th)
		}
	}
}

func TestGrowthStageDefaults(t *testing.T) {
	tests := []struct {
		count int
		want  Stage
	}{
		{0, Seedling}, {2, Seedling}, {3, Bush}, {6, Bush}, {7, Tree}, {365, Tree},
	}
	for _, tt := range tests {
		if got := GrowthStage(tt.count); got != tt.want {
			t.Errorf("GrowthStage(%d) = %s, want %s", tt.count, got, tt.want)
		}
	}
}

func TestThresholdsValidate(t *testing.T) {
	for _, th := range []Thresholds{{0, 3}, {3, 3}, {5, 2}, {-1, 4}} {
		if err := th.Validate(); err == nil {
			t.Errorf("%+v.Validate() succeeded, want error", th)
		}
	}
}

func TestBlooms(t *testing.T) {
	entries := []models.DayEntry{
		{Date: "2024-01-01", Mood: models.MoodSad},
		{Date: "2024-01-02", Mood: models.MoodHappy},
		{Date: "2024-01-03", Mood: models.MoodHappy},
		{Date: "2024-01-04", Mood: models.MoodHappy},
		{Date: "2023-06-01", Mood: models.MoodLoved},
	}
	before := append([]models.DayEntry(nil), entries...)

	got := Blooms(entries, 2024, Thresholds{Bush: 2, Tree: 3})
	want := []Bloom{
		{Mood: models.MoodSad, Info: models.MoodSad.Info(), Count: 1, Stage: Seedling},
		{Mood: models.MoodHappy, Info: models.MoodHappy.Info(), Count: 3, Stage: Tree},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Blooms mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before, entries); diff != "" {
		t.Errorf("Blooms mutated input (-want +got):\n%s", diff)
	}
}

func TestMonthCounts(t *testing.T) {
	entries := []models.DayEntry{
		{Date: "2024-01-31"}, {Date: "2024-02-01"}, {Date: "2024-02-29"},
		{Date: "2024-12-31"}, {Date: "2023-02-01"}, {Date: "bad"},
	}
	want := [12]int{1, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	if got := MonthCounts(entries, 2024); got != want {
		t.Errorf("MonthCounts = %v, want %v", got, want)
	}
}

func TestResilienceQuote(t *testing.T) {
	for _, m := range []models.Mood{models.MoodSad, models.MoodAnxious, models.MoodOverwhelmed, models.MoodTired, models.MoodLonely} {
		if q, ok := ResilienceQuote(m); !ok || q == "" {
			t.Errorf("ResilienceQuote(%s) missing", m)
		}
	}
	if _, ok := ResilienceQuote(models.MoodHappy); ok {
		t.Error("Happy should have no resilience quote")
	}
}
