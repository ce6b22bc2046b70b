package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/bloomlet/internal/models"
)

// ErrNotFound is returned by backends when a keyed record does not exist.
var ErrNotFound = errors.New("not found")

// Cache is the process-durable key to blob store behind the local fallback.
// Get returns nil, nil for a missing key.
type Cache interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
}

// EntryBackend persists journal entries scoped by owner.
type EntryBackend interface {
	// LoadEntries returns every entry owned by userID, newest first.
	LoadEntries(ctx context.Context, userID string) ([]models.JournalEntry, error)
	// InsertEntry is idempotent on entry id.
	InsertEntry(ctx context.Context, entry models.JournalEntry) error
	// DeleteEntry removes the entry only when it belongs to userID.
	DeleteEntry(ctx context.Context, userID, id string) error
	// UpdateAnalysis rewrites the analysis fields of an existing entry.
	UpdateAnalysis(ctx context.Context, entry models.JournalEntry) error
}

// LedgerBackend persists completed weeks.
type LedgerBackend interface {
	// LoadCompletedWeeks returns completed weeks in ascending week order.
	LoadCompletedWeeks(ctx context.Context, userID string) ([]models.CompletedWeek, error)
	// UpsertCompletedWeek is keyed on (userID, week.WeekStart). An existing
	// row keeps its id and color.
	UpsertCompletedWeek(ctx context.Context, userID string, week models.CompletedWeek, goal int) error
}

// ProfileBackend persists user profiles.
type ProfileBackend interface {
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	SaveProfile(ctx context.Context, profile models.Profile) error
}

// Remote is the multi-device backend used while a session exists.
type Remote interface {
	EntryBackend
	LedgerBackend
	ProfileBackend

	// Lifecycle. Init creates or migrates the schema; Load connects to an
	// existing one.
	Init() error
	Load() error
	Ping(ctx context.Context) error
	Close() error
}
