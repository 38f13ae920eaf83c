package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/julianstephens/posy/internal/logger"
)

// ErrSchemaTooNew means the database was migrated by a newer posy release.
var ErrSchemaTooNew = errors.New("database schema is newer than this version of posy")

// Migration is one numbered schema file, e.g. "002_blob_history.sql".
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Status summarises where a database stands against the embedded files.
type Status struct {
	Current int
	Latest  int
	Pending []Migration
}

// UpToDate reports whether no migrations are pending.
func (s Status) UpToDate() bool {
	return len(s.Pending) == 0 && s.Current <= s.Latest
}

// Runner applies migrations from a filesystem to a database. The version
// bookkeeping only uses literal SQL so the same runner serves every driver.
type Runner struct {
	db *sql.DB
	fs fs.FS
}

func NewRunner(db *sql.DB, migrationFS fs.FS) *Runner {
	return &Runner{db: db, fs: migrationFS}
}

func (r *Runner) ensureVersionTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema_version table: %w", err)
	}
	return nil
}

// CurrentVersion returns 0 for a fresh database.
func (r *Runner) CurrentVersion(ctx context.Context) (int, error) {
	if err := r.ensureVersionTable(ctx); err != nil {
		return 0, err
	}
	var version int
	err := r.db.QueryRowContext(ctx, "SELECT version FROM schema_version").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (r *Runner) SetVersion(ctx context.Context, version int) error {
	if err := r.ensureVersionTable(ctx); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := writeVersion(ctx, tx, version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func writeVersion(ctx context.Context, tx *sql.Tx, version int) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_version"); err != nil {
		return fmt.Errorf("failed to clear schema version: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO schema_version (version) VALUES (%d)", version)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}

// Migrations parses NNN_name.sql files and returns them by ascending version.
func (r *Runner) Migrations() ([]Migration, error) {
	files, err := fs.ReadDir(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var out []Migration
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}
		prefix, rest, ok := strings.Cut(file.Name(), "_")
		if !ok {
			return nil, fmt.Errorf("invalid migration filename %s (expected NNN_name.sql)", file.Name())
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("invalid version in %s: %w", file.Name(), err)
		}
		if version < 1 {
			return nil, fmt.Errorf("invalid version in %s: version must be at least 1", file.Name())
		}
		content, err := fs.ReadFile(r.fs, file.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file.Name(), err)
		}
		out = append(out, Migration{
			Version: version,
			Name:    strings.TrimSuffix(rest, ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	for i := 1; i < len(out); i++ {
		if out[i].Version == out[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", out[i].Version)
		}
	}
	return out, nil
}

func (r *Runner) Status(ctx context.Context) (Status, error) {
	current, err := r.CurrentVersion(ctx)
	if err != nil {
		return Status{}, err
	}
	all, err := r.Migrations()
	if err != nil {
		return Status{}, err
	}
	st := Status{Current: current}
	if len(all) > 0 {
		st.Latest = all[len(all)-1].Version
	}
	for _, m := range all {
		if m.Version > current {
			st.Pending = append(st.Pending, m)
		}
	}
	return st, nil
}

// Apply runs every pending migration, each in its own transaction together
// with the version bump. It returns how many were applied.
func (r *Runner) Apply(ctx context.Context) (int, error) {
	st, err := r.Status(ctx)
	if err != nil {
		return 0, err
	}
	if st.Current > st.Latest {
		return 0, fmt.Errorf("%w (database %d, supported %d)", ErrSchemaTooNew, st.Current, st.Latest)
	}
	if len(st.Pending) == 0 {
		logger.Debug("Schema up to date", "version", st.Current)
		return 0, nil
	}

	applied := 0
	for _, m := range st.Pending {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return applied, fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		if err := writeVersion(ctx, tx, m.Version); err != nil {
			_ = tx.Rollback()
			return applied, err
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}
		applied++
		logger.Info("Applied migration", "version", m.Version, "name", m.Name)
	}
	return applied, nil
}

// Upgrade brings an existing database up to date on open. A database ahead
// of the embedded migrations is refused.
func (r *Runner) Upgrade(ctx context.Context) (int, error) {
	st, err := r.Status(ctx)
	if err != nil {
		return 0, err
	}
	if st.Current > st.Latest {
		return 0, r.Validate(ctx)
	}
	if len(st.Pending) == 0 {
		return 0, nil
	}
	logger.Info("Upgrading database schema", "from", st.Current, "to", st.Latest)
	n, err := r.Apply(ctx)
	if err != nil {
		return n, fmt.Errorf("failed to run migrations: %w", err)
	}
	return n, nil
}

// Validate fails when the database is ahead of the embedded migrations.
func (r *Runner) Validate(ctx context.Context) error {
	st, err := r.Status(ctx)
	if err != nil {
		return err
	}
	if st.Current > st.Latest {
		return fmt.Errorf("%w (database %d, supported %d) - please upgrade posy", ErrSchemaTooNew, st.Current, st.Latest)
	}
	return nil
}
