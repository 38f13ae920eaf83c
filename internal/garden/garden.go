// Package garden turns entries into the aggregates the garden views draw.
// Nothing here performs I/O or modifies its input.
package garden

import (
	"fmt"

	"github.com/julianstephens/posy/internal/constants"
	"github.com/julianstephens/posy/internal/journal"
	"github.com/julianstephens/posy/internal/models"
)

// Stage is the visual size tier of a mood cluster. Larger values are bigger.
type Stage int

const (
	Seedling Stage = iota
	Bush
	Tree
)

func (s Stage) String() string {
	switch s {
	case Seedling:
		return "seedling"
	case Bush:
		return "bush"
	case Tree:
		return "tree"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Glyph is a one-character rendering of s.
func (s Stage) Glyph() string {
	switch s {
	case Bush:
		return "🌿"
	case Tree:
		return "🌳"
	}
	return "🌱"
}

// Thresholds are the two cut points of the growth function: counts below
// Bush are seedlings, counts at or above Tree are trees.
type Thresholds struct {
	Bush int
	Tree int
}

// DefaultThresholds returns the cut points used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{Bush: constants.GrowthBushAt, Tree: constants.GrowthTreeAt}
}

func (t Thresholds) Validate() error {
	if t.Bush <= 0 || t.Bush >= t.Tree {
		return fmt.Errorf("invalid growth thresholds bush=%d tree=%d: need 0 < bush < tree", t.Bush, t.Tree)
	}
	return nil
}

// Stage maps count to a tier. It is monotonic in count.
func (t Thresholds) Stage(count int) Stage {
	switch {
	case count >= t.Tree:
		return Tree
	case count >= t.Bush:
		return Bush
	default:
		return Seedling
	}
}

// GrowthStage applies the default thresholds.
func GrowthStage(count int) Stage {
	return DefaultThresholds().Stage(count)
}

// MoodFrequency counts entries per mood. Moods without entries are absent.
func MoodFrequency(entries []models.DayEntry) map[models.Mood]int {
	freq := make(map[models.Mood]int)
	for _, e := range entries {
		freq[e.Mood]++
	}
	return freq
}

// Summary is the headline numbers for one year.
type Summary struct {
	Year              int
	TotalCount        int
	AffirmationCount  int
	DistinctMoodCount int
}

func YearSummary(entries []models.DayEntry, year int) Summary {
	inYear := journal.FilterByYear(entries, year)
	s := Summary{Year: year, TotalCount: len(inYear)}
	for _, e := range inYear {
		if e.HasAffirmation() {
			s.AffirmationCount++
		}
	}
	s.DistinctMoodCount = len(MoodFrequency(inYear))
	return s
}

// Bloom is one mood cluster in the garden view.
type Bloom struct {
	Mood  models.Mood
	Info  models.MoodInfo
	Count int
	Stage Stage
}

// Blooms returns one bloom per mood seen in year, ordered by first
// appearance in entries.
func Blooms(entries []models.DayEntry, year int, t Thresholds) []Bloom {
	inYear := journal.FilterByYear(entries, year)
	freq := MoodFrequency(inYear)

	out := make([]Bloom, 0, len(freq))
	seen := make(map[models.Mood]bool, len(freq))
	for _, e := range inYear {
		if seen[e.Mood] {
			continue
		}
		seen[e.Mood] = true
		n := freq[e.Mood]
		out = append(out, Bloom{Mood: e.Mood, Info: e.Mood.Info(), Count: n, Stage: t.Stage(n)})
	}
	return out
}

// MonthCounts counts a year's entries per month, January first.
func MonthCounts(entries []models.DayEntry, year int) [12]int {
	var counts [12]int
	for _, e := range entries {
		d, err := journal.ParseDate(e.Date)
		if err != nil || d.Year() != year {
			continue
		}
		counts[d.Month()-1]++
	}
	return counts
}

var resilienceQuotes = map[models.Mood]string{
	models.MoodSad:         "Blue blooms are evidence of a heart that feels deeply. You are brave.",
	models.MoodAnxious:     "Even in heavy winds, these roots hold fast. You are strong and safe.",
	models.MoodOverwhelmed: "Every petal here is a victory of your gentle spirit. You are doing enough.",
	models.MoodTired:       "Quiet growth happens in the rest. You are beautifully human and deserving of peace.",
	models.MoodLonely:      "Each bloom here is a companion to your journey. You are seen and loved.",
}

// ResilienceQuote returns the comfort line shown beside a hard mood's bloom.
func ResilienceQuote(m models.Mood) (string, bool) {
	q, ok := resilienceQuotes[m]
	return q, ok
}
