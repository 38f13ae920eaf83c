package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/posy/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the requested account
	ErrNotFound = errors.New("secret not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

func get(user string) (string, error) {
	v, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

func set(user, value, what string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	if err := keyring.Set(constants.AppName, user, value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", what, err)
	}
	return nil
}

func del(user, what string) error {
	if err := keyring.Delete(constants.AppName, user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", what, err)
	}
	return nil
}

// GetAPIKey returns the stored affirmation API key.
func GetAPIKey() (string, error) {
	return get(constants.DefaultKeyringUser)
}

func SetAPIKey(key string) error {
	return set(constants.DefaultKeyringUser, key, "API key")
}

func DeleteAPIKey() error {
	return del(constants.DefaultKeyringUser, "API key")
}

// GetConnectionString retrieves the database connection string from the OS keyring.
// Returns ErrNotFound if none is stored.
func GetConnectionString() (string, error) {
	return get(constants.DatabaseKeyringUser)
}

func SetConnectionString(connStr string) error {
	return set(constants.DatabaseKeyringUser, connStr, "connection string")
}

func DeleteConnectionString() error {
	return del(constants.DatabaseKeyringUser, "connection string")
}

// IsAvailable checks if the OS keyring is available on the current system.
// A missing probe entry still means the keyring answered.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "availability-probe")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
