package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/posy/internal/constants"
	perrors "github.com/julianstephens/posy/internal/errors"
	"github.com/julianstephens/posy/internal/migration"
	"github.com/julianstephens/posy/internal/storage"
	"github.com/julianstephens/posy/migrations"
)

var (
	_ storage.Provider  = (*Store)(nil)
	_ storage.Historian = (*Store)(nil)
)

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serialises writers inside this process.
	db.SetMaxOpenConns(1)
	s.db = db
	return nil
}

func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}
	runner, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := runner.Apply(context.Background()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return perrors.WithHint(storage.ErrNotInitialized, storage.InitHint)
	}
	if err := s.open(); err != nil {
		return err
	}
	runner, err := s.runner()
	if err != nil {
		return err
	}
	// Older posy databases are upgraded in place.
	_, err = runner.Upgrade(context.Background())
	return err
}

func (s *Store) runner() (*migration.Runner, error) {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, sub), nil
}

// Migrations exposes the schema runner for diagnostics.
func (s *Store) Migrations() (*migration.Runner, error) {
	if s.db == nil {
		return nil, perrors.WithHint(storage.ErrNotInitialized, storage.InitHint)
	}
	return s.runner()
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying connection, nil before Init or Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func (s *Store) Get(key string) (string, bool, error) {
	if s.db == nil {
		return "", false, perrors.WithHint(storage.ErrNotInitialized, storage.InitHint)
	}
	var value string
	err := s.db.QueryRow("SELECT value FROM blobs WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Set(key, value string) error {
	if key == "" {
		return storage.ErrEmptyKey
	}
	return s.replace(key, func(tx *sql.Tx, now string) error {
		_, err := tx.Exec(`
			INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, value, now)
		return err
	})
}

func (s *Store) Delete(key string) error {
	return s.replace(key, func(tx *sql.Tx, _ string) error {
		_, err := tx.Exec("DELETE FROM blobs WHERE key = ?", key)
		return err
	})
}

// replace archives the current value of key into blob_history, keeping the
// newest MaxBlobRevisions rows, and then runs write, all in one transaction.
func (s *Store) replace(key string, write func(tx *sql.Tx, now string) error) error {
	if s.db == nil {
		return perrors.WithHint(storage.ErrNotInitialized, storage.InitHint)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO blob_history (key, value, replaced_at)
		SELECT key, value, ? FROM blobs WHERE key = ?
	`, now, key); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to archive %s: %w", key, err)
	}
	if _, err := tx.Exec(`
		DELETE FROM blob_history WHERE key = ? AND id NOT IN (
			SELECT id FROM blob_history WHERE key = ? ORDER BY id DESC LIMIT ?
		)
	`, key, key, constants.MaxBlobRevisions); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prune history of %s: %w", key, err)
	}
	if err := write(tx, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

func (s *Store) Keys() ([]string, error) {
	if s.db == nil {
		return nil, perrors.WithHint(storage.ErrNotInitialized, storage.InitHint)
	}
	rows, err := s.db.Query("SELECT key FROM blobs ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *Store) History(key string, limit int) ([]storage.Revision, error) {
	if s.db == nil {
		return nil, perrors.WithHint(storage.ErrNotInitialized, storage.InitHint)
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT value, replaced_at FROM blob_history
		WHERE key = ? ORDER BY id DESC LIMIT ?
	`, key, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.Revision
	for rows.Next() {
		var value, at string
		if err := rows.Scan(&value, &at); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parsing replaced_at %q: %w", at, err)
		}
		out = append(out, storage.Revision{Key: key, Value: value, ReplacedAt: ts})
	}
	return out, rows.Err()
}
