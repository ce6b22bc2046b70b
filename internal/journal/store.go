// Package journal owns the journal entries of the active session. Entries are
// written through to the remote backend when a session exists and always
// mirrored to the local cache, so an offline start sees the last good state.
package journal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/bloomlet/internal/analysis"
	"github.com/julianstephens/bloomlet/internal/constants"
	"github.com/julianstephens/bloomlet/internal/logger"
	"github.com/julianstephens/bloomlet/internal/models"
	"github.com/julianstephens/bloomlet/internal/progress"
	"github.com/julianstephens/bloomlet/internal/session"
	"github.com/julianstephens/bloomlet/internal/storage"
)

var (
	ErrEmptyContent       = errors.New("entry content cannot be empty")
	ErrInvalidMood        = errors.New("invalid mood")
	ErrEntryNotFound      = errors.New("entry not found")
	ErrAmbiguousID        = errors.New("entry id prefix matches more than one entry")
	ErrStorageUnavailable = errors.New("journal storage unavailable")
)

// Store is the entry store for one user session.
type Store struct {
	mu sync.Mutex

	remote   storage.EntryBackend
	local    *storage.Local
	session  session.Source
	analyzer analysis.Analyzer

	now            func() time.Time
	loc            *time.Location
	newID          func() string
	reanalyzeDelay time.Duration

	entries []models.JournalEntry
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the zone that defines calendar days and weeks.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithAnalyzer(a analysis.Analyzer) Option {
	return func(s *Store) { s.analyzer = a }
}

// WithReanalyzeDelay sets the pause between backfill requests.
func WithReanalyzeDelay(d time.Duration) Option {
	return func(s *Store) { s.reanalyzeDelay = d }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New creates a store. remote may be nil for a local-only deployment.
func New(remote storage.EntryBackend, local *storage.Local, sess session.Source, opts ...Option) *Store {
	if sess == nil {
		sess = session.None
	}
	s := &Store{
		remote:         remote,
		local:          local,
		session:        sess,
		now:            time.Now,
		loc:            time.Local,
		newID:          uuid.NewString,
		reanalyzeDelay: constants.ReanalyzeDelay,
		entries:        []models.JournalEntry{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// owner returns the id new entries are written under and whether the remote
// backend is in play for this session.
func (s *Store) owner() (string, bool) {
	if s.remote == nil {
		return constants.LocalUserID, false
	}
	id, ok := s.session.UserID()
	if !ok {
		return constants.LocalUserID, false
	}
	return id, true
}

// Online reports whether mutations target the remote backend.
func (s *Store) Online() bool {
	_, online := s.owner()
	return online
}

// Load replaces the in-memory entries with the backend's, newest first.
// Remote failures fall back to the local cache.
func (s *Store) Load(ctx context.Context) ([]models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, online := s.owner()
	if !online {
		entries, err := s.local.Entries()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		s.setEntries(entries)
		return s.snapshot(), nil
	}

	s.adoptLocal(userID)
	pending := s.flushPending(ctx, userID)

	remoteEntries, remoteErr := s.remote.LoadEntries(ctx, userID)
	if remoteErr != nil {
		logger.Warn("Remote entry load failed, using local cache", "error", remoteErr)
		entries, err := s.local.Entries()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, errors.Join(remoteErr, err))
		}
		s.setEntries(entries)
		return s.snapshot(), nil
	}

	s.setEntries(overlayPending(remoteEntries, pending, userID))
	if err := s.local.SaveEntries(s.entries); err != nil {
		logger.Warn("Failed to refresh local entry cache", "error", err)
	}
	return s.snapshot(), nil
}

// adoptLocal hands entries written without a session to userID and queues
// them for upload, so the first online load keeps them.
func (s *Store) adoptLocal(userID string) {
	cached, err := s.local.Entries()
	if err != nil {
		logger.Warn("Failed to read local entry cache", "error", err)
		return
	}

	var ops []storage.PendingOp
	now := s.now()
	for i := range cached {
		if cached[i].UserID != constants.LocalUserID {
			continue
		}
		cached[i].UserID = userID
		ops = append(ops, storage.NewInsertOp(cached[i], now))
	}
	if len(ops) == 0 {
		return
	}

	err = s.updatePending(func(queued []storage.PendingOp) []storage.PendingOp {
		return append(queued, ops...)
	})
	if err != nil {
		logger.Warn("Failed to queue offline entries", "error", err)
		return
	}
	if err := s.local.SaveEntries(cached); err != nil {
		logger.Warn("Failed to save adopted entries", "error", err)
		return
	}
	logger.Info("Adopted offline entries", "count", len(ops), "user_id", userID)
}

// flushPending replays queued writes for userID and returns what is left.
func (s *Store) flushPending(ctx context.Context, userID string) []storage.PendingOp {
	ops, err := s.local.Pending()
	if err != nil {
		logger.Warn("Failed to read pending writes", "error", err)
		return nil
	}
	if len(ops) == 0 {
		return nil
	}

	remaining, err := storage.Replay(ctx, s.remote, userID, ops)
	if err != nil {
		logger.Warn("Pending writes not fully replayed", "error", err, "remaining", len(remaining))
	} else {
		logger.Debug("Replayed pending writes", "count", len(ops)-len(remaining))
	}
	if len(remaining) != len(ops) {
		if err := s.local.SavePending(remaining); err != nil {
			logger.Warn("Failed to save pending writes", "error", err)
		}
	}
	return remaining
}

// overlayPending applies writes the remote has not seen yet on top of its
// entries so they survive a cache refresh.
func overlayPending(entries []models.JournalEntry, ops []storage.PendingOp, userID string) []models.JournalEntry {
	if len(ops) == 0 {
		return entries
	}
	byID := make(map[string]int, len(entries))
	for i, e := range entries {
		byID[e.ID] = i
	}
	deleted := make(map[string]bool)

	for _, op := range ops {
		if op.UserID != userID {
			continue
		}
		switch op.Kind {
		case storage.OpInsert, storage.OpUpdate:
			if op.Entry == nil {
				continue
			}
			if i, ok := byID[op.EntryID]; ok {
				entries[i] = *op.Entry
			} else if op.Kind == storage.OpInsert {
				byID[op.EntryID] = len(entries)
				entries = append(entries, *op.Entry)
			}
		case storage.OpDelete:
			deleted[op.EntryID] = true
		}
	}

	out := entries[:0]
	for _, e := range entries {
		if !deleted[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

// AddEntry analyzes, stores and returns a new entry together with the number
// of distinct days journaled in the current week.
func (s *Store) AddEntry(ctx context.Context, content string, mood models.Mood) (models.JournalEntry, int, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.JournalEntry{}, 0, ErrEmptyContent
	}
	if !mood.Valid() {
		return models.JournalEntry{}, 0, fmt.Errorf("%w: %q", ErrInvalidMood, mood)
	}

	result := s.analyze(ctx, content)

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, online := s.owner()
	now := s.now()
	entry := models.JournalEntry{
		ID:        s.newID(),
		UserID:    userID,
		Content:   content,
		Mood:      mood,
		CreatedAt: now,
		UpdatedAt: now,
	}
	entry.ApplyAnalysis(result)

	var remoteErr error
	if online {
		if remoteErr = s.remote.InsertEntry(ctx, entry); remoteErr != nil {
			logger.Warn("Remote insert failed, keeping entry locally", "id", entry.ID, "error", remoteErr)
		}
	}

	next := append([]models.JournalEntry{entry}, s.entries...)
	localErr := s.local.SaveEntries(next)
	if remoteErr != nil && localErr == nil {
		if err := s.queue(storage.NewInsertOp(entry, now)); err != nil {
			logger.Warn("Failed to queue remote insert", "id", entry.ID, "error", err)
		}
	}

	if localErr != nil && (!online || remoteErr != nil) {
		return models.JournalEntry{}, 0, fmt.Errorf("%w: %w", ErrStorageUnavailable, errors.Join(remoteErr, localErr))
	}
	if localErr != nil {
		logger.Warn("Failed to mirror entry to local cache", "id", entry.ID, "error", localErr)
	}

	s.entries = next
	return entry, progress.WeekDistinctDayCount(s.entries, now, s.loc), nil
}

func (s *Store) analyze(ctx context.Context, content string) models.Analysis {
	if s.analyzer == nil {
		return analysis.Fallback()
	}
	result, err := s.analyzer.Analyze(ctx, content)
	if err != nil {
		logger.Warn("Entry analysis failed, using fallback", "error", err)
		return analysis.Fallback()
	}
	return result
}

// DeleteEntry removes the entry locally and, when online, remotely. A remote
// failure is queued for replay and not reported.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	entry := s.entries[idx]

	userID, online := s.owner()
	var remoteErr error
	if online {
		if remoteErr = s.remote.DeleteEntry(ctx, userID, id); remoteErr != nil {
			logger.Warn("Remote delete failed, removing locally", "id", id, "error", remoteErr)
		}
	}

	s.entries = append(s.entries[:idx:idx], s.entries[idx+1:]...)
	localErr := s.local.SaveEntries(s.entries)
	if localErr == nil {
		err := s.updatePending(func(ops []storage.PendingOp) []storage.PendingOp {
			// Entries owned by an account must also disappear remotely.
			if remoteErr != nil || (!online && entry.UserID != constants.LocalUserID) {
				return storage.Enqueue(ops, storage.NewDeleteOp(entry.UserID, id, s.now()))
			}
			return storage.Forget(ops, entry.UserID, id)
		})
		if err != nil {
			logger.Warn("Failed to update pending writes", "id", id, "error", err)
		}
	}

	if localErr != nil && (!online || remoteErr != nil) {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, errors.Join(remoteErr, localErr))
	}
	if localErr != nil {
		logger.Warn("Failed to mirror delete to local cache", "id", id, "error", localErr)
	}
	return nil
}

func (s *Store) queue(op storage.PendingOp) error {
	return s.updatePending(func(ops []storage.PendingOp) []storage.PendingOp {
		return storage.Enqueue(ops, op)
	})
}

func (s *Store) updatePending(fn func([]storage.PendingOp) []storage.PendingOp) error {
	ops, err := s.local.Pending()
	if err != nil {
		return err
	}
	next := fn(ops)
	if len(next) == 0 && len(ops) == 0 {
		return nil
	}
	return s.local.SavePending(next)
}

// Reanalyze backfills analysis for entries that never received a score and
// returns how many were updated. Entries whose analysis fails are skipped.
func (s *Store) Reanalyze(ctx context.Context) (int, error) {
	if s.analyzer == nil {
		return 0, analysis.ErrServiceUnavailable
	}

	s.mu.Lock()
	var ids []string
	for _, e := range s.entries {
		if !e.Analyzed() {
			ids = append(ids, e.ID)
		}
	}
	s.mu.Unlock()

	updated := 0
	for i, id := range ids {
		if i > 0 && s.reanalyzeDelay > 0 {
			select {
			case <-ctx.Done():
				return updated, ctx.Err()
			case <-time.After(s.reanalyzeDelay):
			}
		}

		s.mu.Lock()
		idx := s.indexOf(id)
		var content string
		if idx >= 0 {
			content = s.entries[idx].Content
		}
		s.mu.Unlock()
		if idx < 0 {
			continue
		}

		result, err := s.analyzer.Analyze(ctx, content)
		if err != nil {
			logger.Warn("Backfill analysis failed, skipping entry", "id", id, "error", err)
			continue
		}

		if s.applyAnalysis(ctx, id, result) {
			updated++
		}
	}
	return updated, nil
}

func (s *Store) applyAnalysis(ctx context.Context, id string, result models.Analysis) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	entry := s.entries[idx]
	entry.ApplyAnalysis(result)
	entry.UpdatedAt = s.now()

	if _, online := s.owner(); online {
		err := s.remote.UpdateAnalysis(ctx, entry)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			logger.Debug("Entry missing remotely during backfill", "id", id)
		case err != nil:
			logger.Warn("Remote analysis update failed, queued", "id", id, "error", err)
			if qerr := s.queue(storage.NewUpdateOp(entry, entry.UpdatedAt)); qerr != nil {
				logger.Warn("Failed to queue analysis update", "id", id, "error", qerr)
			}
		}
	}

	s.entries[idx] = entry
	if err := s.local.SaveEntries(s.entries); err != nil {
		logger.Warn("Failed to mirror analysis to local cache", "id", id, "error", err)
	}
	return true
}

// Entries returns a copy of the in-memory entries, newest first.
func (s *Store) Entries() []models.JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Find returns the entry whose id equals or uniquely starts with idOrPrefix.
func (s *Store) Find(idOrPrefix string) (models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idOrPrefix == "" {
		return models.JournalEntry{}, ErrEntryNotFound
	}
	if idx := s.indexOf(idOrPrefix); idx >= 0 {
		return s.entries[idx], nil
	}

	var match *models.JournalEntry
	for i := range s.entries {
		if strings.HasPrefix(s.entries[i].ID, idOrPrefix) {
			if match != nil {
				return models.JournalEntry{}, fmt.Errorf("%w: %s", ErrAmbiguousID, idOrPrefix)
			}
			match = &s.entries[i]
		}
	}
	if match == nil {
		return models.JournalEntry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, idOrPrefix)
	}
	return *match, nil
}

// WeekDistinctDayCount counts the distinct days with an entry in the
// Sunday-anchored week containing ref.
func (s *Store) WeekDistinctDayCount(ref time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return progress.WeekDistinctDayCount(s.entries, ref, s.loc)
}

// Location returns the zone used for day and week boundaries.
func (s *Store) Location() *time.Location {
	return s.loc
}

func (s *Store) indexOf(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) setEntries(entries []models.JournalEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	s.entries = entries
}

func (s *Store) snapshot() []models.JournalEntry {
	out := make([]models.JournalEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
