package system

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/bloomlet/internal/cli"
	"github.com/julianstephens/bloomlet/internal/constants"
	"github.com/julianstephens/bloomlet/internal/models"
	"github.com/julianstephens/bloomlet/internal/storage/sqlite"
	"github.com/julianstephens/bloomlet/internal/validation"
)

const (
	remotePingTimeout = 5 * time.Second
	staleBackupAge    = 7 * 24 * time.Hour
)

type DoctorCmd struct{}

type check struct {
	name    string
	run     func(*cli.Context) error
	warning bool
	// needsCache checks are skipped when the cache cannot be read.
	needsCache bool
}

var checks = []check{
	{name: "Local cache reachable", run: checkCacheReachable},
	{name: "Schema version", run: checkSchemaVersion, needsCache: true},
	{name: "Remote reachable", run: checkRemoteReachable},
	{name: "Cache decodes", run: checkCacheDecodes, needsCache: true},
	{name: "Entry validation", run: checkEntries, needsCache: true},
	{name: "Completed weeks", run: checkCompletedWeeks, needsCache: true},
	{name: "Backups present", run: checkBackupsPresent, warning: true},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	cacheOK := true
	for i, c := range checks {
		if c.needsCache && !cacheOK {
			ctx.Printf("⊘ %s: SKIPPED (local cache not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		var skip skipped
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case errors.As(err, &skip):
			ctx.Printf("⊘ %s: SKIPPED (%s)\n", c.name, skip)
		case c.warning:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			if i == 0 {
				cacheOK = false
			}
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

// skipped is returned by a check that does not apply to this setup.
type skipped string

func (s skipped) Error() string { return string(s) }

func checkCacheReachable(ctx *cli.Context) error {
	if err := ctx.Cache.Load(); err != nil {
		return fmt.Errorf("failed to load cache: %w", err)
	}
	if _, err := ctx.Cache.Get(constants.EntriesCacheKey); err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	store, ok := ctx.Cache.(*sqlite.Store)
	if !ok {
		return skipped("cache has no schema")
	}
	current, latest, err := store.SchemaVersion()
	if err != nil {
		return err
	}
	if current != latest {
		return fmt.Errorf("schema version %d is behind latest %d; run 'bloomlet init'", current, latest)
	}
	return nil
}

func checkRemoteReachable(ctx *cli.Context) error {
	if ctx.Remote == nil {
		return skipped("local only")
	}
	pingCtx, cancel := context.WithTimeout(ctx.Base, remotePingTimeout)
	defer cancel()
	if err := ctx.Remote.Ping(pingCtx); err != nil {
		return fmt.Errorf("failed to reach remote database: %w", err)
	}
	return nil
}

func decodeKey(ctx *cli.Context, key string, v interface{}) error {
	data, err := ctx.Cache.Get(key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s is not readable: %w", key, err)
	}
	return nil
}

func checkCacheDecodes(ctx *cli.Context) error {
	var entries []models.JournalEntry
	var weeks []models.CompletedWeek
	var profile models.Profile
	return errors.Join(
		decodeKey(ctx, constants.EntriesCacheKey, &entries),
		decodeKey(ctx, constants.CompletedWeeksCacheKey, &weeks),
		decodeKey(ctx, constants.ProfileCacheKey, &profile),
	)
}

func checkEntries(ctx *cli.Context) error {
	var entries []models.JournalEntry
	if err := decodeKey(ctx, constants.EntriesCacheKey, &entries); err != nil {
		return err
	}
	result := validation.New().ValidateEntries(entries)
	if result.HasIssues() {
		return errors.New(result.FormatReport())
	}
	return nil
}

// checkCompletedWeeks enforces one ledger record per week.
func checkCompletedWeeks(ctx *cli.Context) error {
	var weeks []models.CompletedWeek
	if err := decodeKey(ctx, constants.CompletedWeeksCacheKey, &weeks); err != nil {
		return err
	}
	result := validation.New().ValidateCompletedWeeks(weeks)
	if result.HasIssues() {
		return errors.New(result.FormatReport())
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'bloomlet backup create'")
	}
	if age := ctx.Now().Sub(backups[0].Timestamp); age > staleBackupAge {
		return fmt.Errorf("newest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Location == nil {
		return errors.New("no timezone configured")
	}
	if err := validation.ValidateTimezone(ctx.Config.Timezone); err != nil {
		return err
	}
	return nil
}
