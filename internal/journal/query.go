package journal

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/julianstephens/posy/internal/constants"
	"github.com/julianstephens/posy/internal/models"
)

var now = time.Now

// ParseDate parses a canonical YYYY-MM-DD key.
func ParseDate(key string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, key, err)
	}
	return t, nil
}

// DateKey is the calendar date of t as seen from loc.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(constants.DateFormat)
}

// Today returns the current date key in loc.
func Today(loc *time.Location) string {
	return DateKey(now(), loc)
}

// Validate checks the fields a stored entry must satisfy.
func Validate(e models.DayEntry) error {
	if _, err := ParseDate(e.Date); err != nil {
		return err
	}
	if !e.Mood.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMood, e.Mood)
	}
	if e.MediaType != "" && e.Media == "" {
		return ErrOrphanedType
	}
	switch e.MediaType {
	case "", models.MediaImage, models.MediaVideo:
	default:
		return fmt.Errorf("unknown media type %q", e.MediaType)
	}
	return nil
}

// FindByDate returns the entry with the exact date key.
func FindByDate(entries []models.DayEntry, date string) (models.DayEntry, bool) {
	for _, e := range entries {
		if e.Date == date {
			return e, true
		}
	}
	return models.DayEntry{}, false
}

// FilterByYear keeps entries whose date falls in year. Entries with an
// unparseable date never match.
func FilterByYear(entries []models.DayEntry, year int) []models.DayEntry {
	return filter(entries, func(d time.Time) bool { return d.Year() == year })
}

func FilterByMonth(entries []models.DayEntry, year int, month time.Month) []models.DayEntry {
	return filter(entries, func(d time.Time) bool { return d.Year() == year && d.Month() == month })
}

// SeasonalMix gathers a year's entries from the selected months, used for the
// florist bouquet. An empty month set selects nothing.
func SeasonalMix(entries []models.DayEntry, year int, months []time.Month) []models.DayEntry {
	return filter(entries, func(d time.Time) bool {
		return d.Year() == year && slices.Contains(months, d.Month())
	})
}

func filter(entries []models.DayEntry, keep func(time.Time) bool) []models.DayEntry {
	out := []models.DayEntry{}
	for _, e := range entries {
		d, err := ParseDate(e.Date)
		if err != nil {
			continue
		}
		if keep(d) {
			out = append(out, e)
		}
	}
	return out
}

// SortedByDate returns a copy ordered by date, newest first.
func SortedByDate(entries []models.DayEntry) []models.DayEntry {
	out := slices.Clone(entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// Years lists the distinct years with entries, newest first.
func Years(entries []models.DayEntry) []int {
	seen := map[int]bool{}
	var years []int
	for _, e := range entries {
		d, err := ParseDate(e.Date)
		if err != nil || seen[d.Year()] {
			continue
		}
		seen[d.Year()] = true
		years = append(years, d.Year())
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
