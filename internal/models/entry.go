package models

import "sort"

// MediaType tags an embedded attachment
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// DayEntry is one check-in for exactly one calendar date
type DayEntry struct {
	Date        string          `json:"date"` // YYYY-MM-DD
	Mood        Mood            `json:"mood"`
	Note        string          `json:"note"`
	Affirmation string          `json:"affirmation,omitempty"`
	Media       string          `json:"media,omitempty"` // data URL
	MediaType   MediaType       `json:"mediaType,omitempty"`
	Goals       map[string]bool `json:"goals"`
}

// HasAffirmation reports whether a non-empty affirmation was stored.
func (e DayEntry) HasAffirmation() bool {
	return e.Affirmation != ""
}

// HasMedia reports whether an attachment is embedded.
func (e DayEntry) HasMedia() bool {
	return e.Media != ""
}

// CompletedGoals returns the ids of goals marked done, sorted.
func (e DayEntry) CompletedGoals() []string {
	var ids []string
	for id, done := range e.Goals {
		if done {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
