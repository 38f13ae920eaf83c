package models

import "time"

// UserGoal is a daily habit toggle shown during check-in
type UserGoal struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
	Icon    string `json:"icon"`
}

// UserSettings represents application-wide settings
type UserSettings struct {
	Goals          []UserGoal `json:"goals"`
	Palette        string     `json:"palette"`            // classic, rose or forest
	IsDarkMode     bool       `json:"isDarkMode"`         // dark theme
	IsHighContrast bool       `json:"isHighContrast"`     // bold, high contrast styling
	IsLargeText    bool       `json:"isLargeText"`        // roomier layout
	Timezone       string     `json:"timezone,omitempty"` // IANA name used to derive day keys; empty means local
}

// Goal looks up a goal by id.
func (s UserSettings) Goal(id string) (UserGoal, bool) {
	for _, g := range s.Goals {
		if g.ID == id {
			return g, true
		}
	}
	return UserGoal{}, false
}

// EnabledGoals returns the goals offered during check-in, in settings order.
func (s UserSettings) EnabledGoals() []UserGoal {
	var out []UserGoal
	for _, g := range s.Goals {
		if g.Enabled {
			out = append(out, g)
		}
	}
	return out
}

// Location resolves the configured timezone, falling back to time.Local when
// it is empty or unknown.
func (s UserSettings) Location() *time.Location {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
