package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/posy/internal/constants"
	"github.com/julianstephens/posy/internal/journal"
	"github.com/julianstephens/posy/internal/keyring"
	"github.com/julianstephens/posy/internal/migration"
	"github.com/julianstephens/posy/internal/models"
)

// migrator is implemented by the SQL-backed stores.
type migrator interface {
	Migrations() (*migration.Runner, error)
}

type DoctorCmd struct{}

type healthCheck struct {
	name    string
	run     func(*Context) error
	warning bool
}

var healthChecks = []healthCheck{
	{name: "Store reachable", run: checkStoreReachable},
	{name: "Schema version", run: checkSchemaVersion},
	{name: "Journal readable", run: checkEntries},
	{name: "Settings readable", run: checkSettings},
	{name: "Backups present", run: checkBackupsPresent, warning: true},
	{name: "OS keyring", run: checkKeyring, warning: true},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	hasError := false
	reachable := true
	for _, check := range healthChecks {
		if !reachable && check.name != "Clock/timezone" && check.name != "OS keyring" {
			ctx.printf("⊘ %s: SKIPPED (store not reachable)\n", check.name)
			continue
		}
		err := check.run(ctx)
		switch {
		case err == nil:
			ctx.printf("✓ %s: OK\n", check.name)
		case check.warning:
			ctx.printf("⚠ %s: WARNING\n", check.name)
			ctx.printf("   %v\n", err)
		default:
			ctx.printf("❌ %s: FAIL\n", check.name)
			ctx.printf("   Error: %v\n", err)
			hasError = true
			if check.name == "Store reachable" {
				reachable = false
			}
		}
	}

	ctx.printf("\nAffirmations: %s\n", ctx.Affirmations(context.Background()).Name())

	ctx.println()
	if hasError {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	if _, err := ctx.Store.Keys(); err != nil {
		return fmt.Errorf("failed to query store: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		// File and memory stores carry no schema.
		return nil
	}
	runner, err := m.Migrations()
	if err != nil {
		return err
	}
	status, err := runner.Status(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if status.Current > status.Latest {
		return fmt.Errorf("schema version (%d) is newer than supported version (%d)", status.Current, status.Latest)
	}
	if !status.UpToDate() {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", status.Current, status.Latest)
	}
	return nil
}

func checkEntries(ctx *Context) error {
	raw, ok, err := ctx.Store.Get(constants.EntriesKey)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	var entries []models.DayEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return fmt.Errorf("journal blob is unreadable and will be treated as empty: %w", err)
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if err := journal.Validate(e); err != nil {
			return fmt.Errorf("entry %q: %w", e.Date, err)
		}
		if seen[e.Date] {
			return fmt.Errorf("duplicate entry for %s", e.Date)
		}
		seen[e.Date] = true
	}
	return nil
}

func checkSettings(ctx *Context) error {
	raw, ok, err := ctx.Store.Get(constants.SettingsKey)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	var s models.UserSettings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return fmt.Errorf("settings blob is unreadable and defaults will be used: %w", err)
	}
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("unknown timezone %q", s.Timezone)
		}
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr := ctx.Backups()
	if mgr == nil {
		return fmt.Errorf("no config directory for backups")
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'posy backup create'")
	}
	return nil
}

func checkKeyring(*Context) error {
	if !keyring.IsAvailable() {
		return fmt.Errorf("OS keyring is not available; use POSY_API_KEY instead")
	}
	return nil
}

func checkClockTimezone(ctx *Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	loc := ctx.Location()
	ctx.printf("   Today is %s in %s\n", journal.Today(loc), loc)
	return nil
}
