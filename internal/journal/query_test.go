package journal

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/posy/internal/models"
)

func dates(entries []models.DayEntry) []string {
	out := []string{}
	for _, e := range entries {
		out = append(out, e.Date)
	}
	return out
}

func TestFilterByYearBoundaries(t *testing.T) {
	entries := []models.DayEntry{
		{Date: "2023-12-31", Mood: models.MoodHappy},
		{Date: "2024-01-01", Mood: models.MoodSad},
		{Date: "2024-12-31", Mood: models.MoodCalm},
		{Date: "2025-01-01", Mood: models.MoodLoved},
		{Date: "not-a-date", Mood: models.MoodQuiet},
	}
	tests := []struct {
		year int
		want []string
	}{
		{2023, []string{"2023-12-31"}},
		{2024, []string{"2024-01-01", "2024-12-31"}},
		{2025, []string{"2025-01-01"}},
		{2026, []string{}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, dates(FilterByYear(entries, tt.year))); diff != "" {
			t.Errorf("FilterByYear(%d) mismatch (-want +got):\n%s", tt.year, diff)
		}
	}
}

func TestFilterByYearDoesNotMutate(t *testing.T) {
	entries := []models.DayEntry{{Date: "2024-02-01"}, {Date: "2023-02-01"}}
	before := append([]models.DayEntry(nil), entries...)
	_ = FilterByYear(entries, 2024)
	if diff := cmp.Diff(before, entries); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

func TestFilterByMonthAndSeasonalMix(t *testing.T) {
	entries := []models.DayEntry{
		{Date: "2024-03-05"}, {Date: "2024-03-20"}, {Date: "2024-04-01"},
		{Date: "2024-07-04"}, {Date: "2023-03-05"},
	}
	if diff := cmp.Diff([]string{"2024-03-05", "2024-03-20"}, dates(FilterByMonth(entries, 2024, time.March))); diff != "" {
		t.Errorf("FilterByMonth mismatch (-want +got):\n%s", diff)
	}

	mix := SeasonalMix(entries, 2024, []time.Month{time.March, time.July})
	if diff := cmp.Diff([]string{"2024-03-05", "2024-03-20", "2024-07-04"}, dates(mix)); diff != "" {
		t.Errorf("SeasonalMix mismatch (-want +got):\n%s", diff)
	}
	if got := SeasonalMix(entries, 2024, nil); len(got) != 0 {
		t.Errorf("SeasonalMix with no months = %v, want empty", got)
	}
}

func TestDateKeyUsesLocation(t *testing.T) {
	// 23:30 UTC on March 5 is already March 6 in Tokyo.
	instant := time.Date(2024, 3, 5, 23, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*60*60)

	if got := DateKey(instant, time.UTC); got != "2024-03-05" {
		t.Errorf("DateKey(UTC) = %s", got)
	}
	if got := DateKey(instant, tokyo); got != "2024-03-06" {
		t.Errorf("DateKey(JST) = %s", got)
	}

	orig := now
	defer func() { now = orig }()
	now = func() time.Time { return instant }
	if got := Today(tokyo); got != "2024-03-06" {
		t.Errorf("Today(JST) = %s", got)
	}
}

func TestSortedByDateAndYears(t *testing.T) {
	entries := []models.DayEntry{{Date: "2023-05-01"}, {Date: "2024-01-02"}, {Date: "2024-01-01"}}
	if diff := cmp.Diff([]string{"2024-01-02", "2024-01-01", "2023-05-01"}, dates(SortedByDate(entries))); diff != "" {
		t.Errorf("SortedByDate mismatch (-want +got):\n%s", diff)
	}
	if entries[0].Date != "2023-05-01" {
		t.Error("SortedByDate mutated its input")
	}
	if diff := cmp.Diff([]int{2024, 2023}, Years(entries)); diff != "" {
		t.Errorf("Years mismatch (-want +got):\n%s", diff)
	}
}
