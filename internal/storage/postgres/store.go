package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/posy/internal/constants"
	perrors "github.com/julianstephens/posy/internal/errors"
	"github.com/julianstephens/posy/internal/logger"
	"github.com/julianstephens/posy/internal/migration"
	"github.com/julianstephens/posy/internal/storage"
	"github.com/julianstephens/posy/migrations"
)

var (
	_ storage.Provider  = (*Store)(nil)
	_ storage.Historian = (*Store)(nil)
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

type Store struct {
	connStr string
	db      *sql.DB
}

func New(connStr string) *Store {
	return &Store{connStr: withSearchPath(connStr)}
}

// IsConnString reports whether location names a PostgreSQL database rather
// than a file.
func IsConnString(location string) bool {
	return strings.HasPrefix(location, "postgres://") || strings.HasPrefix(location, "postgresql://")
}

// withSearchPath pins unqualified table names to the posy schema.
func withSearchPath(connStr string) string {
	if IsConnString(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return connStr
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
		}
		return u.String()
	}
	if dsnHas(connStr, "search_path") {
		return connStr
	}
	return strings.TrimSpace(connStr) + " search_path=" + constants.AppName
}

// dsnHas reports whether a key=value DSN or URL query carries key.
func dsnHas(connStr, key string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for k := range u.Query() {
			if strings.EqualFold(k, key) {
				return true
			}
		}
	}
	for _, part := range strings.Fields(connStr) {
		k, _, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), key) {
			return true
		}
	}
	return false
}

// ValidateConnString checks that connStr parses as a PostgreSQL URI or DSN
// and carries no password.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	if HasEmbeddedCredentials(connStr) {
		return ErrEmbeddedCredentials
	}
	if IsConnString(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
		if u.Host == "" && u.User == nil && (u.Path == "" || u.Path == "/") {
			return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
	}
	return nil
}

// HasEmbeddedCredentials reports whether connStr includes a password.
func HasEmbeddedCredentials(connStr string) bool {
	if IsConnString(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return false
		}
		if u.User != nil {
			if _, set := u.User.Password(); set {
				return true
			}
		}
		return u.Query().Get("password") != ""
	}
	return dsnHas(connStr, "password")
}

func (s *Store) connect() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !dsnHas(s.connStr, "sslmode") {
			return perrors.WithHint(fmt.Errorf("failed to connect to database: %w", err), "add ?sslmode=disable to the connection string")
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Init() error {
	if s.db == nil {
		if err := s.connect(); err != nil {
			return err
		}
	}
	if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(constants.AppName)); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
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
	if err := s.connect(); err != nil {
		return err
	}
	var exists bool
	if err := s.db.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)", constants.AppName,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	if !exists {
		return perrors.WithHint(storage.ErrNotInitialized, storage.InitHint)
	}
	runner, err := s.runner()
	if err != nil {
		return err
	}
	st, err := runner.Status(context.Background())
	if err != nil {
		return err
	}
	if st.Current == 0 {
		return perrors.WithHint(storage.ErrNotInitialized, storage.InitHint)
	}
	_, err = runner.Upgrade(context.Background())
	return err
}

func (s *Store) runner() (*migration.Runner, error) {
	sub, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
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

// GetConfigPath returns a non-sensitive identifier instead of the connection string.
func (s *Store) GetConfigPath() string {
	return "postgresql"
}

func (s *Store) Get(key string) (string, bool, error) {
	if s.db == nil {
		return "", false, perrors.WithHint(storage.ErrNotInitialized, storage.InitHint)
	}
	var value string
	err := s.db.QueryRow("SELECT value FROM blobs WHERE key = $1", key).Scan(&value)
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
	return s.replace(key, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO blobs (key, value, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		`, key, value)
		return err
	})
}

func (s *Store) Delete(key string) error {
	return s.replace(key, func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM blobs WHERE key = $1", key)
		return err
	})
}

func (s *Store) replace(key string, write func(tx *sql.Tx) error) error {
	if s.db == nil {
		return perrors.WithHint(storage.ErrNotInitialized, storage.InitHint)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO blob_history (key, value)
		SELECT key, value FROM blobs WHERE key = $1
	`, key); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to archive %s: %w", key, err)
	}
	if _, err := tx.Exec(`
		DELETE FROM blob_history WHERE key = $1 AND id NOT IN (
			SELECT id FROM blob_history WHERE key = $1 ORDER BY id DESC LIMIT $2
		)
	`, key, constants.MaxBlobRevisions); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prune history of %s: %w", key, err)
	}
	if err := write(tx); err != nil {
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
	query := "SELECT value, replaced_at FROM blob_history WHERE key = $1 ORDER BY id DESC"
	args := []any{key}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.Revision
	for rows.Next() {
		r := storage.Revision{Key: key}
		if err := rows.Scan(&r.Value, &r.ReplacedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
