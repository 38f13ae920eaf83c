// Package settings hydrates, merges and persists the single UserSettings
// document.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/julianstephens/posy/internal/constants"
	"github.com/julianstephens/posy/internal/logger"
	"github.com/julianstephens/posy/internal/models"
	"github.com/julianstephens/posy/internal/storage"
)

var (
	ErrGoalNotFound   = errors.New("goal not found")
	ErrBuiltinGoal    = errors.New("built-in goals can only be disabled")
	ErrEmptyLabel     = errors.New("goal label cannot be empty")
	ErrUnknownPalette = errors.New("unknown palette")
)

// DefaultSettings returns a fresh copy of the built-in configuration.
func DefaultSettings() models.UserSettings {
	return models.UserSettings{
		Goals: []models.UserGoal{
			{ID: constants.GoalWater, Label: "Drank Water", Enabled: true, Icon: "💧"},
			{ID: constants.GoalFruit, Label: "Ate Fruits", Enabled: true, Icon: "🍎"},
			{ID: constants.GoalOutside, Label: "Step Outside", Enabled: true, Icon: "🌲"},
			{ID: constants.GoalMove, Label: "Gentle Movement", Enabled: true, Icon: "🧘"},
			{ID: constants.GoalPeriod, Label: "It's my period today", Enabled: false, Icon: "🩸"},
		},
		Palette: constants.PaletteClassic,
	}
}

// IsBuiltin reports whether id names one of the default goals.
func IsBuiltin(id string) bool {
	for _, g := range DefaultSettings().Goals {
		if g.ID == id {
			return true
		}
	}
	return false
}

// Merge overlays persisted on defaults. Persisted goals replace defaults with
// the same id in place; goals unknown to defaults are appended in persisted
// order; defaults missing from persisted stay. Scalar fields come from
// persisted except an empty palette, which keeps the default. Neither
// argument is modified.
func Merge(defaults, persisted models.UserSettings) models.UserSettings {
	goals := slices.Clone(defaults.Goals)
	index := make(map[string]int, len(goals))
	for i, g := range goals {
		index[g.ID] = i
	}
	for _, g := range persisted.Goals {
		if g.ID == "" {
			continue
		}
		if i, ok := index[g.ID]; ok {
			goals[i] = g
			continue
		}
		index[g.ID] = len(goals)
		goals = append(goals, g)
	}

	out := persisted
	out.Goals = goals
	if out.Palette == "" {
		out.Palette = defaults.Palette
	}
	return out
}

// ValidPalette reports whether p is a known palette name.
func ValidPalette(p string) bool {
	switch p {
	case constants.PaletteClassic, constants.PaletteRose, constants.PaletteForest:
		return true
	}
	return false
}

type Store struct {
	blobs storage.Provider
}

func NewStore(blobs storage.Provider) *Store {
	return &Store{blobs: blobs}
}

// Load returns the defaults merged with whatever is persisted. A missing or
// unreadable document yields the defaults.
func (s *Store) Load() models.UserSettings {
	defaults := DefaultSettings()
	raw, ok, err := s.blobs.Get(constants.SettingsKey)
	if err != nil {
		logger.Warn("Failed to read settings, using defaults", "error", err)
		return defaults
	}
	if !ok || raw == "" {
		return defaults
	}
	var persisted models.UserSettings
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		logger.Warn("Settings blob is malformed, using defaults", "error", err)
		return defaults
	}
	if persisted.Palette != "" && !ValidPalette(persisted.Palette) {
		logger.Warn("Unknown palette in settings, using default", "palette", persisted.Palette)
		persisted.Palette = ""
	}
	return Merge(defaults, persisted)
}

// Save replaces the whole persisted document.
func (s *Store) Save(settings models.UserSettings) error {
	if settings.Palette != "" && !ValidPalette(settings.Palette) {
		return fmt.Errorf("%w: %s", ErrUnknownPalette, settings.Palette)
	}
	if settings.Timezone != "" {
		if _, err := time.LoadLocation(settings.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
		}
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.blobs.Set(constants.SettingsKey, string(data)); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Update loads, applies fn and saves the result.
func (s *Store) Update(fn func(*models.UserSettings) error) (models.UserSettings, error) {
	cur := s.Load()
	if err := fn(&cur); err != nil {
		return models.UserSettings{}, err
	}
	if err := s.Save(cur); err != nil {
		return models.UserSettings{}, err
	}
	return cur, nil
}

// AddGoal appends an enabled custom goal with a fresh id and persists it.
func (s *Store) AddGoal(label, icon string) (models.UserGoal, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return models.UserGoal{}, ErrEmptyLabel
	}
	if icon == "" {
		icon = "✨"
	}
	goal := models.UserGoal{
		ID:      constants.CustomGoalPrefix + strings.ToLower(ulid.Make().String()),
		Label:   label,
		Enabled: true,
		Icon:    icon,
	}
	_, err := s.Update(func(cur *models.UserSettings) error {
		cur.Goals = append(cur.Goals, goal)
		return nil
	})
	if err != nil {
		return models.UserGoal{}, err
	}
	return goal, nil
}

func (s *Store) SetGoalEnabled(id string, enabled bool) (models.UserSettings, error) {
	return s.Update(func(cur *models.UserSettings) error {
		for i := range cur.Goals {
			if cur.Goals[i].ID == id {
				cur.Goals[i].Enabled = enabled
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrGoalNotFound, id)
	})
}

// RemoveGoal deletes a custom goal. Built-ins would come back on the next
// merge, so they are refused.
func (s *Store) RemoveGoal(id string) (models.UserSettings, error) {
	if IsBuiltin(id) {
		return models.UserSettings{}, fmt.Errorf("%w: %s", ErrBuiltinGoal, id)
	}
	return s.Update(func(cur *models.UserSettings) error {
		n := len(cur.Goals)
		cur.Goals = slices.DeleteFunc(cur.Goals, func(g models.UserGoal) bool { return g.ID == id })
		if len(cur.Goals) == n {
			return fmt.Errorf("%w: %s", ErrGoalNotFound, id)
		}
		return nil
	})
}

// EnabledGoals returns the goals offered during check-in.
func (s *Store) EnabledGoals() []models.UserGoal {
	return s.Load().EnabledGoals()
}
