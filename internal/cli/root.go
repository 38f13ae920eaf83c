package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/posy/internal/affirmation"
	"github.com/julianstephens/posy/internal/backup"
	"github.com/julianstephens/posy/internal/config"
	"github.com/julianstephens/posy/internal/constants"
	perrors "github.com/julianstephens/posy/internal/errors"
	"github.com/julianstephens/posy/internal/garden"
	"github.com/julianstephens/posy/internal/journal"
	"github.com/julianstephens/posy/internal/keyring"
	"github.com/julianstephens/posy/internal/lock"
	"github.com/julianstephens/posy/internal/logger"
	"github.com/julianstephens/posy/internal/settings"
	"github.com/julianstephens/posy/internal/storage"
	"github.com/julianstephens/posy/internal/storage/postgres"
	"github.com/julianstephens/posy/internal/storage/sqlite"
	"github.com/julianstephens/posy/internal/tui"
)

// Context is handed to every command's Run method.
type Context struct {
	Store  storage.Provider
	Config *config.Config

	// ConfigDir holds backups, logs and the lockfile.
	ConfigDir string

	// Provider overrides the affirmation provider chosen from Config.
	Provider affirmation.Provider

	Out io.Writer
	In  io.Reader
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) config() *config.Config {
	if c.Config == nil {
		c.Config = config.Default()
	}
	return c.Config
}

// Backups is nil when no config directory is known.
func (c *Context) Backups() *backup.Manager {
	if c.ConfigDir == "" {
		return nil
	}
	return backup.NewManager(c.Store, backup.DefaultDir(c.ConfigDir))
}

func (c *Context) Entries() *journal.Store {
	if mgr := c.Backups(); mgr != nil {
		return journal.NewStore(c.Store, journal.WithSnapshots(mgr))
	}
	return journal.NewStore(c.Store)
}

func (c *Context) Settings() *settings.Store {
	return settings.NewStore(c.Store)
}

func (c *Context) Affirmations(ctx context.Context) affirmation.Provider {
	if c.Provider == nil {
		c.Provider = affirmation.New(ctx, c.config())
	}
	return c.Provider
}

// Thresholds falls back to the defaults when the configured pair is invalid.
func (c *Context) Thresholds() garden.Thresholds {
	cfg := c.config()
	t := garden.Thresholds{Bush: cfg.GrowthBush, Tree: cfg.GrowthTree}
	if err := t.Validate(); err != nil {
		logger.Warn("Invalid growth thresholds, using defaults", "error", err)
		return garden.DefaultThresholds()
	}
	return t
}

// Location is the timezone day keys are derived in.
func (c *Context) Location() *time.Location {
	return c.Settings().Load().Location()
}

// ResolveDate turns "today", "yesterday" or a YYYY-MM-DD key into a day key.
func (c *Context) ResolveDate(s string) (string, error) {
	loc := c.Location()
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return journal.Today(loc), nil
	case "yesterday":
		return journal.DateKey(time.Now().In(loc).AddDate(0, 0, -1), loc), nil
	}
	if _, err := journal.ParseDate(s); err != nil {
		return "", perrors.WithHint(err, "dates look like 2024-03-05, or use 'today'")
	}
	return s, nil
}

// currentYear is the year of today's key in the configured timezone.
func (c *Context) currentYear() int {
	return time.Now().In(c.Location()).Year()
}

// WithWriteLock runs fn while holding the store's writer lock.
func (c *Context) WithWriteLock(fn func() error) error {
	if c.ConfigDir == "" {
		return fn()
	}
	l, err := lock.Acquire(c.ConfigDir)
	if err != nil {
		return perrors.WithHint(err, "close the other posy window, or remove "+filepath.Join(c.ConfigDir, constants.LockfileName)+" if it crashed")
	}
	defer func() {
		if err := l.Release(); err != nil {
			logger.Warn("Failed to release lock", "error", err)
		}
	}()
	return fn()
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr := c.Backups()
	if mgr == nil {
		return
	}
	if _, err := mgr.Snapshot(backup.ReasonAutomatic); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// confirm asks a y/N question on In.
func (c *Context) confirm(question string) (bool, error) {
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	c.printf("%s [y/N]: ", question)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ResolveLocation picks the store location. When the default path is in use
// and a connection string was saved in the keyring, the keyring wins and
// fromKeyring is true.
func ResolveLocation(location string) (resolved string, fromKeyring bool) {
	if location == constants.DefaultConfigPath {
		if connStr, err := keyring.GetConnectionString(); err == nil && connStr != "" {
			logger.Debug("Using connection string from keyring")
			return connStr, true
		}
	}
	return ExpandHome(location), false
}

// OpenStore builds the provider for a location: a PostgreSQL connection
// string, a *.json file, or a SQLite database path. Embedded passwords are
// only accepted for connection strings that came from the keyring.
func OpenStore(location string, fromKeyring bool) (storage.Provider, error) {
	if postgres.IsConnString(location) {
		err := postgres.ValidateConnString(location)
		if errors.Is(err, postgres.ErrEmbeddedCredentials) && fromKeyring {
			err = nil
		}
		if err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, perrors.WithHint(err, "store the connection string with 'posy keyring set connection-string', or use .pgpass / PGPASSWORD")
			}
			return nil, err
		}
		return postgres.New(location), nil
	}
	if strings.HasSuffix(strings.ToLower(location), ".json") {
		return storage.NewJSONStore(location), nil
	}
	return sqlite.NewStore(location), nil
}

// ConfigDirFor is where backups, logs and the lockfile live for a location.
func ConfigDirFor(location string) string {
	if postgres.IsConnString(location) {
		return filepath.Dir(ExpandHome(constants.DefaultConfigPath))
	}
	return filepath.Dir(location)
}

func (c *Context) theme() tui.Theme {
	return tui.NewTheme(c.Settings().Load())
}

func (c *Context) print(s string) {
	fmt.Fprint(c.out(), s)
}
