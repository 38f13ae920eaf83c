package main

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/posy/internal/cli"
	"github.com/julianstephens/posy/internal/config"
	"github.com/julianstephens/posy/internal/constants"
	perrors "github.com/julianstephens/posy/internal/errors"
	"github.com/julianstephens/posy/internal/logger"
	"github.com/julianstephens/posy/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Store location: a SQLite path, a *.json file, or a PostgreSQL connection string without a password (use the OS keyring or .pgpass for credentials)." type:"string" default:"~/.config/posy/posy.db" env:"POSY_CONFIG"`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Init    cli.InitCmd    `cmd:"" help:"Initialize posy storage."`
	Tui     cli.TuiCmd     `cmd:"" help:"Browse your garden interactively." default:"1"`
	Checkin cli.CheckinCmd `cmd:"" help:"Plant today's flower."`
	Show    cli.ShowCmd    `cmd:"" help:"Show the entry for a day."`
	List    cli.ListCmd    `cmd:"" help:"List entries."`
	Delete  cli.DeleteCmd  `cmd:"" help:"Delete the entry for a day."`
	Garden  cli.GardenCmd  `cmd:"" help:"Show the garden for a year."`
	Year    cli.YearCmd    `cmd:"" help:"Show a year as a mood calendar."`
	Mix     cli.MixCmd     `cmd:"" help:"Pick a seasonal mix of months."`
	Affirm  cli.AffirmCmd  `cmd:"" help:"Print an affirmation without planting anything."`
	Doctor  cli.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`

	Settings cli.SettingsCmd `cmd:"" help:"Show or change settings."`
	Goal     struct {
		Add     cli.GoalAddCmd     `cmd:"" help:"Add a custom goal."`
		List    cli.GoalListCmd    `cmd:"" help:"List goals." default:"1"`
		Enable  cli.GoalEnableCmd  `cmd:"" help:"Offer a goal during check-in."`
		Disable cli.GoalDisableCmd `cmd:"" help:"Stop offering a goal."`
		Remove  cli.GoalRemoveCmd  `cmd:"" help:"Remove a custom goal."`
	} `cmd:"" help:"Manage daily goals."`
	Backup struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage snapshots of the journal and settings."`
	Keyring struct {
		Set    cli.KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
		Get    cli.KeyringGetCmd    `cmd:"" help:"Show a stored secret, masked."`
		Delete cli.KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
		Status cli.KeyringStatusCmd `cmd:"" help:"Check the OS keyring." default:"1"`
	} `cmd:"" help:"Manage the API key and database connection string in the OS keyring."`
}

// commands that manage their own store lifecycle or never touch it
var skipLoad = map[string]bool{
	"init":           true,
	"affirm":         true,
	"doctor":         true,
	"keyring set":    true,
	"keyring get":    true,
	"keyring delete": true,
	"keyring status": true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("A mood journal that grows a garden"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	location, fromKeyring := cli.ResolveLocation(CLI.Config)
	configDir := cli.ConfigDirFor(location)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	cfg, err := config.New()
	if err != nil {
		perrors.Fatal(err)
	}

	store, err := cli.OpenStore(location, fromKeyring)
	if err != nil {
		perrors.Fatal(err)
	}
	defer store.Close()

	if !skipLoad[commandName(ctx)] {
		if err := store.Load(); err != nil {
			store.Close()
			if stderrors.Is(err, storage.ErrNotInitialized) && perrors.HintOf(err) == "" {
				err = perrors.WithHint(err, storage.InitHint)
			}
			perrors.Fatal(err)
		}
	}

	appCtx := &cli.Context{
		Store:     store,
		Config:    cfg,
		ConfigDir: configDir,
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		perrors.Fatal(err)
	}
}

// commandName drops positional placeholders, e.g. "keyring set <secret> <value>"
// becomes "keyring set".
func commandName(ctx *kong.Context) string {
	var parts []string
	for _, f := range strings.Fields(ctx.Command()) {
		if !strings.HasPrefix(f, "<") {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}
