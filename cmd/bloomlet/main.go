package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/bloomlet/internal/cli"
	"github.com/julianstephens/bloomlet/internal/cli/backups"
	"github.com/julianstephens/bloomlet/internal/cli/companions"
	"github.com/julianstephens/bloomlet/internal/cli/entries"
	"github.com/julianstephens/bloomlet/internal/cli/profiles"
	"github.com/julianstephens/bloomlet/internal/cli/system"
	"github.com/julianstephens/bloomlet/internal/cli/weeks"
	"github.com/julianstephens/bloomlet/internal/config"
	"github.com/julianstephens/bloomlet/internal/constants"
	"github.com/julianstephens/bloomlet/internal/errors"
	"github.com/julianstephens/bloomlet/internal/keyring"
	"github.com/julianstephens/bloomlet/internal/logger"
	"github.com/julianstephens/bloomlet/internal/session"
	"github.com/julianstephens/bloomlet/internal/storage"
	"github.com/julianstephens/bloomlet/internal/storage/postgres"
	"github.com/julianstephens/bloomlet/internal/storage/sqlite"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Local cache path. A .json path selects the plain JSON cache, anything else SQLite." type:"path" default:"${config_path}"`
	Settings string `help:"YAML settings file." type:"path" default:"${settings_path}"`
	EnvFile  string `help:"Optional .env file read before BLOOMLET_* variables." type:"path" default:".env"`
	Remote   string `help:"PostgreSQL connection string for the remote database. Credentials must NOT be embedded; use .pgpass, PGPASSWORD or the OS keyring." env:"BLOOMLET_DB_CONNECTION"`
	Debug    bool   `help:"Log debug output to stderr."`

	Init   system.InitCmd   `cmd:"" help:"Initialize bloomlet storage."`
	Doctor system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Tui    system.TuiCmd    `cmd:"" help:"Launch the interactive journal." default:"1"`
	Entry  struct {
		Add     entries.EntryAddCmd     `cmd:"" help:"Write a journal entry."`
		List    entries.EntryListCmd    `cmd:"" help:"List journal entries."`
		Show    entries.EntryShowCmd    `cmd:"" help:"Show one entry with its analysis."`
		Delete  entries.EntryDeleteCmd  `cmd:"" help:"Delete an entry."`
		Analyze entries.EntryAnalyzeCmd `cmd:"" help:"Analyze entries that have no sentiment yet."`
	} `cmd:"" help:"Manage journal entries."`
	Progress cli.ProgressCmd `cmd:"" help:"Show this week's growth."`
	Stats    cli.StatsCmd    `cmd:"" help:"Show journaling statistics."`
	Weeks    struct {
		List weeks.WeekListCmd `cmd:"" help:"List completed weeks." default:"1"`
		Sync weeks.WeekSyncCmd `cmd:"" help:"Record every week that reached the goal."`
		Mark weeks.WeekMarkCmd `cmd:"" help:"Mark a week complete."`
	} `cmd:"" help:"Manage completed weeks."`
	Profile struct {
		Show     profiles.ProfileShowCmd     `cmd:"" help:"Show profile settings." default:"1"`
		Goal     profiles.ProfileGoalCmd     `cmd:"" help:"Set the weekly goal."`
		Name     profiles.ProfileNameCmd     `cmd:"" help:"Set the display name."`
		Reminder profiles.ProfileReminderCmd `cmd:"" help:"Configure the daily reminder."`
		Theme    profiles.ProfileThemeCmd    `cmd:"" help:"Set the theme."`
	} `cmd:"" help:"Manage your profile."`
	Login   system.LoginCmd  `cmd:"" help:"Sign in as a user."`
	Logout  system.LogoutCmd `cmd:"" help:"Sign out."`
	Whoami  system.WhoamiCmd `cmd:"" help:"Show the signed-in user."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the remote connection string."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability." default:"1"`
	} `cmd:"" help:"Manage credentials in the OS keyring."`
	Prompt   companions.PromptCmd   `cmd:"" help:"Get a writing prompt."`
	Chat     companions.ChatCmd     `cmd:"" help:"Talk with the companion."`
	Insights companions.InsightsCmd `cmd:"" help:"Summarize recent entries."`
	Serve    system.ServeCmd        `cmd:"" help:"Run the companion service."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage local cache backups."`
	Remind system.RemindCmd `cmd:"" help:"Send the daily reminder if one is due."`
}

// offline commands never touch the cache or the remote database.
var offline = map[string]bool{
	"keyring": true,
	"login":   true,
	"logout":  true,
	"whoami":  true,
	"serve":   true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("A weekly journaling companion that grows butterflies"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":       constants.Version,
			"config_path":   constants.DefaultConfigPath,
			"settings_path": constants.DefaultSettingsPath,
		},
	)
	command := strings.Fields(ctx.Command())[0]

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(CLI.Config),
		Console:   command == "serve",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging unavailable: %v\n", err)
	}

	cfg, err := config.Load(CLI.Settings, CLI.EnvFile)
	if err != nil {
		errors.Fatal(err)
	}

	base, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := openCache(CLI.Config)
	sess := session.Keyring{}

	var remote storage.Remote
	if !offline[command] {
		remote, err = openRemote(base, command, sess)
		if err != nil {
			errors.Fatal(err)
		}
		if command != "init" && command != "doctor" {
			if err := cache.Load(); err != nil {
				errors.Fatal(errors.WithHint(err, "run 'bloomlet init' to create the local cache"))
			}
		}
	}

	appCtx, err := cli.NewContext(cache, CLI.Config, remote, sess, cfg)
	if err != nil {
		errors.Fatal(err)
	}
	appCtx.Base = base

	runErr := ctx.Run(appCtx)
	if err := appCtx.Close(); err != nil {
		logger.Warn("Failed to close storage", "error", err)
	}
	stop()
	errors.Fatal(runErr)
}

func openCache(path string) storage.Cache {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return storage.NewJSONStore(path)
	}
	return sqlite.NewStore(path)
}

// connectionString resolves the remote database from the flag or
// environment first, then the keyring.
func connectionString() string {
	if CLI.Remote != "" {
		return CLI.Remote
	}
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if !stderrors.Is(err, keyring.ErrNotFound) {
			logger.Debug("Keyring lookup failed", "error", err)
		}
		return ""
	}
	return connStr
}

// openRemote returns the remote backend, or nil to run local-only. Without a
// signed-in user or a connection string there is nothing to sync with; a
// remote that fails to load is reported and skipped.
func openRemote(ctx context.Context, command string, sess session.Source) (storage.Remote, error) {
	if _, ok := sess.UserID(); !ok {
		return nil, nil
	}
	connStr := connectionString()
	if connStr == "" {
		return nil, nil
	}
	if _, err := postgres.ValidateConnString(connStr); err != nil {
		return nil, errors.WithHint(err,
			"store the password in ~/.pgpass or PGPASSWORD, or save the string with 'bloomlet keyring set'")
	}

	store := postgres.New(connStr)
	if command == "init" {
		return store, nil
	}
	if err := store.Load(); err != nil {
		logger.Warn("Remote database unavailable, running local-only", "error", err)
		fmt.Fprintf(os.Stderr, "⚠ Remote database unavailable, running local-only: %v\n", err)
		return nil, nil
	}
	if err := store.Ping(ctx); err != nil {
		logger.Warn("Remote database unreachable, running local-only", "error", err)
		_ = store.Close()
		return nil, nil
	}
	return store, nil
}
