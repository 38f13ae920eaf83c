package storage

import (
	"errors"
	"time"
)

var (
	// ErrNotInitialized is returned by Load when the backing store has never been created
	ErrNotInitialized = errors.New("storage not initialized")
	// ErrEmptyKey is returned when a blank key is written
	ErrEmptyKey = errors.New("blob key cannot be empty")
)

// InitHint is shown with ErrNotInitialized.
const InitHint = "run 'posy init' first"

// Provider is a string-keyed, string-valued blob store. Every value is a
// complete serialized document; writers replace whole values.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Blobs
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Keys() ([]string, error)

	// Utils
	GetConfigPath() string
}

// Revision is a value a key held before it was replaced or deleted.
type Revision struct {
	Key        string
	Value      string
	ReplacedAt time.Time
}

// Historian is implemented by stores that keep replaced values.
type Historian interface {
	// History returns up to limit revisions of key, newest first.
	History(key string, limit int) ([]Revision, error)
}
