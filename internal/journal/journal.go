// Package journal owns the collection of day entries: at most one entry per
// calendar date, persisted as a single JSON array under one blob key.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/posy/internal/constants"
	"github.com/julianstephens/posy/internal/logger"
	"github.com/julianstephens/posy/internal/models"
	"github.com/julianstephens/posy/internal/storage"
)

var (
	ErrInvalidDate  = errors.New("invalid date key")
	ErrUnknownMood  = errors.New("unknown mood")
	ErrOrphanedType = errors.New("media type set without media")
	ErrNotFound     = errors.New("no entry for date")
)

// Snapshotter saves a restorable copy of the store before a destructive write.
type Snapshotter interface {
	Snapshot(reason string) (string, error)
}

type Store struct {
	blobs storage.Provider
	snap  Snapshotter
}

type Option func(*Store)

// WithSnapshots takes a snapshot before any write that discards an entry.
func WithSnapshots(s Snapshotter) Option {
	return func(st *Store) { st.snap = s }
}

func NewStore(blobs storage.Provider, opts ...Option) *Store {
	s := &Store{blobs: blobs}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the persisted entries. A missing, unreadable or malformed
// blob yields an empty slice; the failure is only logged.
func (s *Store) Load() []models.DayEntry {
	entries, _ := s.load()
	return entries
}

// load also reports whether a blob was present but could not be used.
func (s *Store) load() ([]models.DayEntry, bool) {
	raw, ok, err := s.blobs.Get(constants.EntriesKey)
	if err != nil {
		logger.Warn("Failed to read entries, treating as empty", "error", err)
		return []models.DayEntry{}, true
	}
	if !ok || raw == "" {
		return []models.DayEntry{}, false
	}
	entries, err := decode(raw)
	if err != nil {
		logger.Warn("Entries blob is malformed, treating as empty", "error", err)
		return []models.DayEntry{}, true
	}
	return entries, false
}

func decode(raw string) ([]models.DayEntry, error) {
	var entries []models.DayEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.DayEntry{}
	}
	return entries, nil
}

// Upsert replaces whatever entry exists for entry.Date with entry, persists
// the full collection and returns it. No fields of the prior entry survive.
func (s *Store) Upsert(entry models.DayEntry) ([]models.DayEntry, error) {
	if err := Validate(entry); err != nil {
		return nil, err
	}
	if entry.Goals == nil {
		entry.Goals = map[string]bool{}
	}

	current, corrupt := s.load()
	_, exists := FindByDate(current, entry.Date)
	if exists || corrupt {
		s.snapshot("before overwriting " + entry.Date)
	}

	next := make([]models.DayEntry, 0, len(current)+1)
	for _, e := range current {
		if e.Date != entry.Date {
			next = append(next, e)
		}
	}
	next = append(next, entry)

	if err := s.save(next); err != nil {
		return nil, err
	}
	logger.Debug("Entry saved", "date", entry.Date, "mood", entry.Mood, "replaced", exists)
	return next, nil
}

// Delete removes the entry for date. The bool is false when nothing matched,
// in which case nothing is written.
func (s *Store) Delete(date string) ([]models.DayEntry, bool, error) {
	if _, err := ParseDate(date); err != nil {
		return nil, false, err
	}
	current, _ := s.load()
	if _, ok := FindByDate(current, date); !ok {
		return current, false, nil
	}
	s.snapshot("before deleting " + date)

	next := make([]models.DayEntry, 0, len(current)-1)
	for _, e := range current {
		if e.Date != date {
			next = append(next, e)
		}
	}
	if err := s.save(next); err != nil {
		return nil, false, err
	}
	return next, true, nil
}

func (s *Store) save(entries []models.DayEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}
	if err := s.blobs.Set(constants.EntriesKey, string(data)); err != nil {
		return fmt.Errorf("failed to save entries: %w", err)
	}
	return nil
}

func (s *Store) snapshot(reason string) {
	if s.snap == nil {
		return
	}
	if _, err := s.snap.Snapshot(reason); err != nil {
		logger.Warn("Snapshot failed", "reason", reason, "error", err)
	}
}

// PastEntry is an earlier version of a day's entry.
type PastEntry struct {
	Entry      models.DayEntry
	ReplacedAt time.Time
}

// History returns earlier versions of the entry for date, newest first, when
// the underlying store keeps replaced values. Unchanged versions are skipped.
func (s *Store) History(date string, limit int) ([]PastEntry, error) {
	h, ok := s.blobs.(storage.Historian)
	if !ok {
		return nil, nil
	}
	revs, err := h.History(constants.EntriesKey, constants.MaxBlobRevisions)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry history: %w", err)
	}

	current, _ := FindByDate(s.Load(), date)
	last, _ := json.Marshal(current)

	var out []PastEntry
	for _, rev := range revs {
		entries, err := decode(rev.Value)
		if err != nil {
			continue
		}
		e, ok := FindByDate(entries, date)
		if !ok {
			continue
		}
		enc, _ := json.Marshal(e)
		if string(enc) == string(last) {
			continue
		}
		last = enc
		out = append(out, PastEntry{Entry: e, ReplacedAt: rev.ReplacedAt})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
