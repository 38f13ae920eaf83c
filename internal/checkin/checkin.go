// Package checkin drives one check-in from mood selection to the committed
// entry. Nothing is written until Commit.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/posy/internal/affirmation"
	"github.com/julianstephens/posy/internal/journal"
	"github.com/julianstephens/posy/internal/logger"
	"github.com/julianstephens/posy/internal/models"
)

type Step int

const (
	StepEmotion Step = iota
	StepWriting
	StepPlanting
	StepReady
	StepCommitted
	StepDiscarded
)

func (s Step) String() string {
	switch s {
	case StepEmotion:
		return "emotion"
	case StepWriting:
		return "writing"
	case StepPlanting:
		return "planting"
	case StepReady:
		return "ready"
	case StepCommitted:
		return "committed"
	case StepDiscarded:
		return "discarded"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

var (
	ErrWrongStep      = errors.New("action not allowed at this step")
	ErrGoalNotOffered = errors.New("goal is not enabled")
	ErrNoAffirmation  = errors.New("affirmation has not been generated")
)

// Session is a single in-progress check-in.
type Session struct {
	ID string

	step     Step
	entry    models.DayEntry
	offered  map[string]bool
	entries  *journal.Store
	provider affirmation.Provider
}

// New starts a session for date. Only the enabled goals of settings can be
// toggled; they all start unchecked.
func New(entries *journal.Store, provider affirmation.Provider, settings models.UserSettings, date string) (*Session, error) {
	if _, err := journal.ParseDate(date); err != nil {
		return nil, err
	}
	s := &Session{
		ID:       uuid.NewString(),
		step:     StepEmotion,
		entries:  entries,
		provider: provider,
		offered:  map[string]bool{},
		entry:    models.DayEntry{Date: date, Goals: map[string]bool{}},
	}
	for _, g := range settings.EnabledGoals() {
		s.offered[g.ID] = true
		s.entry.Goals[g.ID] = false
	}
	return s, nil
}

func (s *Session) Step() Step { return s.step }

// Entry returns a copy of the entry as built so far.
func (s *Session) Entry() models.DayEntry {
	e := s.entry
	e.Goals = make(map[string]bool, len(s.entry.Goals))
	for k, v := range s.entry.Goals {
		e.Goals[k] = v
	}
	return e
}

func (s *Session) expect(steps ...Step) error {
	for _, st := range steps {
		if s.step == st {
			return nil
		}
	}
	return fmt.Errorf("%w: session is %s", ErrWrongStep, s.step)
}

// SelectMood sets the mood and moves to writing. The mood may be changed
// again while writing.
func (s *Session) SelectMood(m models.Mood) error {
	if err := s.expect(StepEmotion, StepWriting); err != nil {
		return err
	}
	if !m.Valid() {
		return fmt.Errorf("%w: %q", journal.ErrUnknownMood, m)
	}
	s.entry.Mood = m
	s.step = StepWriting
	return nil
}

func (s *Session) SetNote(note string) error {
	if err := s.expect(StepWriting); err != nil {
		return err
	}
	s.entry.Note = strings.TrimSpace(note)
	return nil
}

// ToggleGoal flips the completion of an offered goal and returns its new state.
func (s *Session) ToggleGoal(id string) (bool, error) {
	if err := s.expect(StepWriting); err != nil {
		return false, err
	}
	if !s.offered[id] {
		return false, fmt.Errorf("%w: %s", ErrGoalNotOffered, id)
	}
	s.entry.Goals[id] = !s.entry.Goals[id]
	return s.entry.Goals[id], nil
}

// SetGoal marks an offered goal done or not done.
func (s *Session) SetGoal(id string, done bool) error {
	if err := s.expect(StepWriting); err != nil {
		return err
	}
	if !s.offered[id] {
		return fmt.Errorf("%w: %s", ErrGoalNotOffered, id)
	}
	s.entry.Goals[id] = done
	return nil
}

// AttachMedia stores a data URL; an empty URL removes the attachment.
func (s *Session) AttachMedia(dataURL string, kind models.MediaType) error {
	if err := s.expect(StepWriting); err != nil {
		return err
	}
	if dataURL == "" {
		s.entry.Media, s.entry.MediaType = "", ""
		return nil
	}
	s.entry.Media, s.entry.MediaType = dataURL, kind
	return nil
}

// Plant asks the provider for an affirmation and waits for it. The call is
// not cancelled by the session; ctx is passed through as is.
func (s *Session) Plant(ctx context.Context) (string, error) {
	if err := s.expect(StepWriting); err != nil {
		return "", err
	}
	s.step = StepPlanting
	text := s.provider.Affirmation(ctx, s.entry.Mood, s.entry.Note)
	if text == "" {
		text = affirmation.EmptyFallback
	}
	s.entry.Affirmation = text
	s.step = StepReady
	logger.Debug("Affirmation planted", "session", s.ID, "provider", s.provider.Name())
	return text, nil
}

// Commit writes the entry through the journal, replacing any entry for the
// same date. A failed write leaves the session ready so it can be retried.
func (s *Session) Commit() ([]models.DayEntry, error) {
	if err := s.expect(StepReady); err != nil {
		return nil, err
	}
	if s.entry.Affirmation == "" {
		return nil, ErrNoAffirmation
	}
	all, err := s.entries.Upsert(s.Entry())
	if err != nil {
		return nil, err
	}
	s.step = StepCommitted
	logger.Info("Check-in committed", "session", s.ID, "date", s.entry.Date, "mood", s.entry.Mood)
	return all, nil
}

// Discard abandons the session without writing anything.
func (s *Session) Discard() error {
	if s.step == StepCommitted {
		return fmt.Errorf("%w: session already committed", ErrWrongStep)
	}
	s.step = StepDiscarded
	return nil
}
