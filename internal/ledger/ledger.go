// Package ledger keeps the permanent record of weeks that reached the weekly
// goal. Marking a week complete is idempotent per week start, so Sync can run
// after every load without duplicating records.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/bloomlet/internal/constants"
	"github.com/julianstephens/bloomlet/internal/growth"
	"github.com/julianstephens/bloomlet/internal/logger"
	"github.com/julianstephens/bloomlet/internal/models"
	"github.com/julianstephens/bloomlet/internal/progress"
	"github.com/julianstephens/bloomlet/internal/session"
	"github.com/julianstephens/bloomlet/internal/storage"
)

var (
	ErrStorageUnavailable = errors.New("ledger storage unavailable")
	ErrInvalidWeekStart   = errors.New("invalid week start")
	ErrInvalidCountRule   = errors.New("invalid count rule")
)

// CountRule selects how Sync measures a historical week against the goal.
type CountRule string

const (
	// CountEntries treats every entry as one unit of progress.
	CountEntries CountRule = "entries"
	// CountDistinctDays counts calendar days with at least one entry, the
	// same rule the current-week progress uses.
	CountDistinctDays CountRule = "distinct_days"
)

func ParseCountRule(s string) (CountRule, error) {
	switch CountRule(s) {
	case "":
		return CountEntries, nil
	case CountEntries, CountDistinctDays:
		return CountRule(s), nil
	}
	return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidCountRule, s, CountEntries, CountDistinctDays)
}

// Count returns the week's progress under the rule.
func (r CountRule) Count(t progress.WeekTally) int {
	if r == CountDistinctDays {
		return t.DistinctDays
	}
	return t.Entries
}

// Ledger is the completed-week record for one user session.
type Ledger struct {
	mu     sync.Mutex
	syncMu sync.Mutex

	remote  storage.LedgerBackend
	local   *storage.Local
	session session.Source

	now   func() time.Time
	loc   *time.Location
	newID func() string
	rule  CountRule
	// goal is the last goal a week was completed against, sent along when
	// a cached week is pushed upstream again.
	goal int

	weeks []models.CompletedWeek
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

func WithCountRule(rule CountRule) Option {
	return func(l *Ledger) { l.rule = rule }
}

// New creates a ledger. remote may be nil for a local-only deployment.
func New(remote storage.LedgerBackend, local *storage.Local, sess session.Source, opts ...Option) *Ledger {
	if sess == nil {
		sess = session.None
	}
	l := &Ledger{
		remote:  remote,
		local:   local,
		session: sess,
		now:     time.Now,
		loc:     time.Local,
		newID:   uuid.NewString,
		rule:    CountEntries,
		goal:    constants.DefaultWeeklyGoal,
		weeks:   []models.CompletedWeek{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) owner() (string, bool) {
	if l.remote == nil {
		return constants.LocalUserID, false
	}
	id, ok := l.session.UserID()
	if !ok {
		return constants.LocalUserID, false
	}
	return id, true
}

// Rule returns the count rule Sync applies.
func (l *Ledger) Rule() CountRule {
	return l.rule
}

// Load replaces the in-memory ledger with the backend's, oldest week first.
func (l *Ledger) Load(ctx context.Context) ([]models.CompletedWeek, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.load(ctx); err != nil {
		return nil, err
	}
	return l.snapshot(), nil
}

func (l *Ledger) load(ctx context.Context) error {
	userID, online := l.owner()

	var remoteErr error
	if online {
		weeks, err := l.remote.LoadCompletedWeeks(ctx, userID)
		if err == nil {
			l.weeks = normalize(l.adoptCached(ctx, userID, weeks))
			if err := l.local.SaveCompletedWeeks(l.weeks); err != nil {
				logger.Warn("Failed to refresh local ledger cache", "error", err)
			}
			return nil
		}
		remoteErr = err
		logger.Warn("Remote ledger load failed, using local cache", "error", err)
	}

	weeks, err := l.local.CompletedWeeks()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, errors.Join(remoteErr, err))
	}
	l.weeks = normalize(weeks)
	return nil
}

// adoptCached returns remote plus every cached week the remote does not
// have, such as one completed offline or whose upsert failed. Those weeks
// keep their id and color and are upserted again; a week that still fails
// stays cached for the next load.
func (l *Ledger) adoptCached(ctx context.Context, userID string, remote []models.CompletedWeek) []models.CompletedWeek {
	cached, err := l.local.CompletedWeeks()
	if err != nil {
		logger.Warn("Failed to read local ledger cache", "error", err)
		return remote
	}

	known := make(map[string]bool, len(remote))
	for _, w := range remote {
		known[w.WeekStart] = true
	}
	for _, w := range cached {
		if known[w.WeekStart] {
			continue
		}
		known[w.WeekStart] = true
		if err := l.remote.UpsertCompletedWeek(ctx, userID, w, l.goal); err != nil {
			logger.Warn("Completed week still missing remotely", "week_start", w.WeekStart, "error", err)
		}
		remote = append(remote, w)
	}
	return remote
}

// normalize sorts weeks ascending, keeps the first record per week start and
// assigns a palette color to any record stored without one.
func normalize(weeks []models.CompletedWeek) []models.CompletedWeek {
	sort.SliceStable(weeks, func(i, j int) bool {
		return weeks[i].WeekStart < weeks[j].WeekStart
	})

	out := make([]models.CompletedWeek, 0, len(weeks))
	seen := make(map[string]bool, len(weeks))
	for _, w := range weeks {
		if seen[w.WeekStart] {
			logger.Warn("Dropping duplicate completed week", "week_start", w.WeekStart, "id", w.ID)
			continue
		}
		seen[w.WeekStart] = true
		if w.ButterflyColor == "" {
			w.ButterflyColor = growth.ButterflyColor(len(out))
		}
		out = append(out, w)
	}
	return out
}

// MarkComplete records weekStart as completed and returns the record. An
// empty weekStart means the current week; any date is normalized to the
// Sunday that opens its week. Marking an already completed week returns the
// existing record unchanged.
func (l *Ledger) MarkComplete(ctx context.Context, entriesCount, goal int, weekStart string) (models.CompletedWeek, error) {
	key, err := l.weekKey(weekStart)
	if err != nil {
		return models.CompletedWeek{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if idx := l.indexOf(key); idx >= 0 {
		return l.weeks[idx], nil
	}

	week := models.CompletedWeek{
		ID:             l.newID(),
		WeekStart:      key,
		ButterflyColor: growth.ButterflyColor(len(l.weeks)),
		EntriesCount:   entriesCount,
	}

	l.goal = growth.ClampGoal(goal)
	userID, online := l.owner()
	var remoteErr error
	if online {
		if remoteErr = l.remote.UpsertCompletedWeek(ctx, userID, week, l.goal); remoteErr != nil {
			logger.Warn("Remote completed-week upsert failed, keeping it locally", "week_start", key, "error", remoteErr)
		}
	}

	next := normalize(append(l.snapshot(), week))
	localErr := l.local.SaveCompletedWeeks(next)
	if localErr != nil && (!online || remoteErr != nil) {
		return models.CompletedWeek{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, errors.Join(remoteErr, localErr))
	}
	if localErr != nil {
		logger.Warn("Failed to mirror completed week to local cache", "week_start", key, "error", localErr)
	}

	l.weeks = next
	logger.Info("Week completed", "week_start", key, "color", week.ButterflyColor)
	return week, nil
}

func (l *Ledger) weekKey(weekStart string) (string, error) {
	if weekStart == "" {
		return progress.WeekKey(l.now(), l.loc), nil
	}
	t, err := time.ParseInLocation(constants.DateFormat, weekStart, l.loc)
	if err != nil {
		return "", fmt.Errorf("%w: %q (expected YYYY-MM-DD)", ErrInvalidWeekStart, weekStart)
	}
	return progress.WeekKey(t, l.loc), nil
}

// Sync marks every week whose tally meets goal and is not yet recorded, then
// reloads the ledger to absorb writes from other devices. It returns the
// records created by this pass. Passes are serialized.
func (l *Ledger) Sync(ctx context.Context, entries []models.JournalEntry, goal int) ([]models.CompletedWeek, error) {
	l.syncMu.Lock()
	defer l.syncMu.Unlock()

	goal = growth.ClampGoal(goal)
	var created []models.CompletedWeek
	for _, tally := range progress.TallyWeeks(entries, l.loc) {
		count := l.rule.Count(tally)
		if count < goal || l.Has(tally.WeekStart) {
			continue
		}
		week, err := l.MarkComplete(ctx, count, goal, tally.WeekStart)
		if err != nil {
			return created, err
		}
		created = append(created, week)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.load(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// Has reports whether weekStart is already recorded.
func (l *Ledger) Has(weekStart string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.indexOf(weekStart) >= 0
}

// Weeks returns a copy of the ledger, oldest week first.
func (l *Ledger) Weeks() []models.CompletedWeek {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// TotalButterflies is the number of completed weeks.
func (l *Ledger) TotalButterflies() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.weeks)
}

func (l *Ledger) indexOf(weekStart string) int {
	for i, w := range l.weeks {
		if w.WeekStart == weekStart {
			return i
		}
	}
	return -1
}

func (l *Ledger) snapshot() []models.CompletedWeek {
	out := make([]models.CompletedWeek, len(l.weeks))
	copy(out, l.weeks)
	return out
}
