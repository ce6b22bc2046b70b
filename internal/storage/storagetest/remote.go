// Package storagetest provides an in-memory remote backend for tests.
package storagetest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/julianstephens/bloomlet/internal/models"
	"github.com/julianstephens/bloomlet/internal/storage"
)

// ErrOffline is returned by every Remote call while the remote is failing.
var ErrOffline = errors.New("remote offline")

type weekRow struct {
	week  models.CompletedWeek
	goal  int
	owner string
}

// Remote is a storage.Remote kept in memory. Its week table enforces the
// (user, week_start) key the way the SQL backend does.
type Remote struct {
	mu       sync.Mutex
	failing  bool
	failOn   map[string]bool
	entries  map[string]models.JournalEntry
	weeks    map[string]weekRow
	profiles map[string]models.Profile
	calls    map[string]int
}

func NewRemote() *Remote {
	return &Remote{
		entries:  make(map[string]models.JournalEntry),
		weeks:    make(map[string]weekRow),
		profiles: make(map[string]models.Profile),
		calls:    make(map[string]int),
		failOn:   make(map[string]bool),
	}
}

// SetFailing makes every subsequent call fail with ErrOffline until reset.
func (r *Remote) SetFailing(failing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing = failing
}

// FailMethod makes only the named method fail with ErrOffline.
func (r *Remote) FailMethod(method string, failing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOn[method] = failing
}

// Calls reports how many times the named method was invoked.
func (r *Remote) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

func (r *Remote) enter(method string) error {
	r.calls[method]++
	if r.failing || r.failOn[method] {
		return ErrOffline
	}
	return nil
}

func (r *Remote) Init() error { return nil }
func (r *Remote) Load() error { return nil }

func (r *Remote) Ping(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enter("Ping")
}

func (r *Remote) Close() error { return nil }

func (r *Remote) LoadEntries(_ context.Context, userID string) ([]models.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("LoadEntries"); err != nil {
		return nil, err
	}

	out := []models.JournalEntry{}
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Remote) InsertEntry(_ context.Context, e models.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertEntry"); err != nil {
		return err
	}
	if _, exists := r.entries[e.ID]; !exists {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *Remote) DeleteEntry(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("DeleteEntry"); err != nil {
		return err
	}
	if e, ok := r.entries[id]; ok && e.UserID == userID {
		delete(r.entries, id)
	}
	return nil
}

func (r *Remote) UpdateAnalysis(_ context.Context, e models.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("UpdateAnalysis"); err != nil {
		return err
	}
	existing, ok := r.entries[e.ID]
	if !ok || existing.UserID != e.UserID {
		return storage.ErrNotFound
	}
	existing.SentimentScore = e.SentimentScore
	existing.Themes = e.Themes
	existing.Triggers = e.Triggers
	existing.Intensity = e.Intensity
	existing.UpdatedAt = e.UpdatedAt
	r.entries[e.ID] = existing
	return nil
}

func (r *Remote) LoadCompletedWeeks(_ context.Context, userID string) ([]models.CompletedWeek, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("LoadCompletedWeeks"); err != nil {
		return nil, err
	}

	out := []models.CompletedWeek{}
	for _, row := range r.weeks {
		if row.owner == userID {
			out = append(out, row.week)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart < out[j].WeekStart })
	return out, nil
}

func (r *Remote) UpsertCompletedWeek(_ context.Context, userID string, w models.CompletedWeek, goal int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("UpsertCompletedWeek"); err != nil {
		return err
	}

	key := userID + "|" + w.WeekStart
	if row, ok := r.weeks[key]; ok {
		if w.EntriesCount > row.week.EntriesCount {
			row.week.EntriesCount = w.EntriesCount
		}
		row.goal = goal
		r.weeks[key] = row
		return nil
	}
	r.weeks[key] = weekRow{week: w, goal: goal, owner: userID}
	return nil
}

// PutCompletedWeek seeds a row as if another device had written it.
func (r *Remote) PutCompletedWeek(userID string, w models.CompletedWeek) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weeks[userID+"|"+w.WeekStart] = weekRow{week: w, owner: userID}
}

// HasWeek reports whether a row exists for (userID, weekStart).
func (r *Remote) HasWeek(userID, weekStart string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.weeks[userID+"|"+weekStart]
	return ok
}

func (r *Remote) GetProfile(_ context.Context, userID string) (models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetProfile"); err != nil {
		return models.Profile{}, err
	}
	p, ok := r.profiles[userID]
	if !ok {
		return models.Profile{}, storage.ErrNotFound
	}
	return p, nil
}

func (r *Remote) SaveProfile(_ context.Context, p models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("SaveProfile"); err != nil {
		return err
	}
	r.profiles[p.ID] = p
	return nil
}

var _ storage.Remote = (*Remote)(nil)
