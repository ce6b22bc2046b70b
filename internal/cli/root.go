package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/bloomlet/internal/analysis"
	"github.com/julianstephens/bloomlet/internal/backup"
	"github.com/julianstephens/bloomlet/internal/config"
	"github.com/julianstephens/bloomlet/internal/journal"
	"github.com/julianstephens/bloomlet/internal/ledger"
	"github.com/julianstephens/bloomlet/internal/logger"
	"github.com/julianstephens/bloomlet/internal/models"
	"github.com/julianstephens/bloomlet/internal/profile"
	"github.com/julianstephens/bloomlet/internal/session"
	"github.com/julianstephens/bloomlet/internal/storage"
	"github.com/julianstephens/bloomlet/internal/utils"
)

// Context carries the wired services into every command.
type Context struct {
	Cache     storage.Cache
	CachePath string
	// Remote is nil when running local-only.
	Remote   storage.Remote
	Session  session.Source
	Config   *config.Config
	Location *time.Location
	Now      func() time.Time
	// Base is the context commands run under; main cancels it on interrupt.
	Base context.Context
	Out  io.Writer

	Journal   *journal.Store
	Ledger    *ledger.Ledger
	Profile   *profile.Service
	Companion *analysis.Companion
	// Analysis is the remote companion client, nil when no URL is configured.
	Analysis *analysis.Client

	loaded bool
}

// NewContext wires the stores and companion client around cache and remote.
// remote may be nil.
func NewContext(cache storage.Cache, cachePath string, remote storage.Remote, sess session.Source, cfg *config.Config) (*Context, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if sess == nil {
		sess = session.None
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	rule, err := ledger.ParseCountRule(cfg.CountRule)
	if err != nil {
		return nil, err
	}

	c := &Context{
		Cache:     cache,
		CachePath: cachePath,
		Remote:    remote,
		Session:   sess,
		Config:    cfg,
		Location:  loc,
		Now:       time.Now,
		Base:      context.Background(),
		Out:       os.Stdout,
	}

	var analyzer analysis.Analyzer = analysis.HeuristicAnalyzer{}
	var svc analysis.Service
	if cfg.Analysis.URL != "" {
		c.Analysis = analysis.NewClient(cfg.Analysis.URL, cfg.Analysis.Timeout.Std())
		analyzer, svc = c.Analysis, c.Analysis
	}
	c.Companion = analysis.NewCompanion(svc)

	local := storage.NewLocal(cache)
	var (
		entryBackend   storage.EntryBackend
		ledgerBackend  storage.LedgerBackend
		profileBackend storage.ProfileBackend
	)
	if remote != nil {
		entryBackend, ledgerBackend, profileBackend = remote, remote, remote
	}

	c.Journal = journal.New(entryBackend, local, sess,
		journal.WithLocation(loc),
		journal.WithAnalyzer(analyzer),
	)
	c.Ledger = ledger.New(ledgerBackend, local, sess,
		ledger.WithLocation(loc),
		ledger.WithCountRule(rule),
	)
	c.Profile = profile.New(profileBackend, local, sess,
		profile.WithDefaultGoal(cfg.WeeklyGoal),
		profile.WithDefaultReminder(cfg.Reminder.Enabled, cfg.Reminder.Time),
	)
	return c, nil
}

// Load reads the profile, entries and ledger, then records any week that
// has reached the goal. A failed sync is logged, not returned. Later calls
// are no-ops.
func (c *Context) Load(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	p, err := c.Profile.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if _, err := c.Journal.Load(ctx); err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}
	if _, err := c.Ledger.Load(ctx); err != nil {
		return fmt.Errorf("failed to load completed weeks: %w", err)
	}
	if _, err := c.Ledger.Sync(ctx, c.Journal.Entries(), p.WeeklyGoal); err != nil {
		logger.Warn("Completed-week sync failed", "error", err)
	}
	c.loaded = true
	return nil
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Printf writes formatted command output.
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

// Println writes a line of command output.
func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// Online reports whether writes go to the remote backend.
func (c *Context) Online() bool {
	return c.Journal.Online()
}

// WeeklyGoal returns the signed-in user's goal.
func (c *Context) WeeklyGoal() int {
	return c.Profile.Get().WeeklyGoal
}

// UserName is the name the companion addresses the user by.
func (c *Context) UserName() string {
	return c.Profile.Get().DisplayName
}

// BackupManager returns a manager for the local cache file with offsite
// upload when configured.
func (c *Context) BackupManager() (*backup.Manager, error) {
	if c.CachePath == "" {
		return nil, errors.New("local cache has no file to back up")
	}
	s3 := c.Config.Backup.S3
	uploader, err := backup.NewUploader(backup.S3Config{
		Endpoint:  s3.Endpoint,
		Bucket:    s3.Bucket,
		Region:    s3.Region,
		AccessKey: s3.AccessKey,
		SecretKey: s3.SecretKey,
		UseSSL:    s3.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return backup.NewManager(c.CachePath, backup.WithUploader(uploader)), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup(ctx context.Context) {
	mgr, err := c.BackupManager()
	if err != nil {
		logger.Warn("Automatic backup skipped", "error", err)
		return
	}
	if _, err := mgr.CreateBackup(ctx); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Close releases the cache and remote connections.
func (c *Context) Close() error {
	var errs []error
	if c.Remote != nil {
		errs = append(errs, c.Remote.Close())
	}
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	return errors.Join(errs...)
}

// ShortID is the prefix shown in listings; Find accepts it back.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatEntryLine renders one entry for list output.
func FormatEntryLine(e models.JournalEntry, now time.Time, loc *time.Location) string {
	day := utils.RelativeDay(e.CreatedAt, now, loc)
	clock := e.CreatedAt.In(loc).Format(timeLayout)
	mood := ""
	if e.Mood != "" {
		mood = " [" + string(e.Mood) + "]"
	}
	return fmt.Sprintf("%s  %s %s%s  %s", ShortID(e.ID), day, clock, mood, Preview(e.Content, 60))
}

const timeLayout = "15:04"

// Preview flattens content onto one line and truncates it to n runes.
func Preview(content string, n int) string {
	flat := strings.Join(strings.Fields(content), " ")
	r := []rune(flat)
	if len(r) <= n {
		return flat
	}
	return string(r[:n-1]) + "…"
}

// FormatScore renders a sentiment score with its label.
func FormatScore(score *float64) string {
	if score == nil {
		return "not analyzed"
	}
	label := "neutral"
	switch {
	case *score > 0.2:
		label = "positive"
	case *score < -0.2:
		label = "negative"
	}
	return fmt.Sprintf("%+.2f (%s)", *score, label)
}
