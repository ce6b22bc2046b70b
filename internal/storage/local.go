package storage

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/bloomlet/internal/constants"
	"github.com/julianstephens/bloomlet/internal/logger"
	"github.com/julianstephens/bloomlet/internal/models"
)

// Local encodes the app's collections into a Cache. Missing keys and
// unparseable values read as empty collections; only failures of the
// underlying medium are returned.
type Local struct {
	cache Cache
}

func NewLocal(cache Cache) *Local {
	return &Local{cache: cache}
}

// Cache returns the underlying blob store.
func (l *Local) Cache() Cache {
	return l.cache
}

func readCollection[T any](l *Local, key string) ([]T, error) {
	data, err := l.cache.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warn("Discarding unreadable local cache value", "key", key, "error", err)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func writeJSON(l *Local, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := l.cache.Put(key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (l *Local) Entries() ([]models.JournalEntry, error) {
	return readCollection[models.JournalEntry](l, constants.EntriesCacheKey)
}

func (l *Local) SaveEntries(entries []models.JournalEntry) error {
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	return writeJSON(l, constants.EntriesCacheKey, entries)
}

func (l *Local) CompletedWeeks() ([]models.CompletedWeek, error) {
	return readCollection[models.CompletedWeek](l, constants.CompletedWeeksCacheKey)
}

func (l *Local) SaveCompletedWeeks(weeks []models.CompletedWeek) error {
	if weeks == nil {
		weeks = []models.CompletedWeek{}
	}
	return writeJSON(l, constants.CompletedWeeksCacheKey, weeks)
}

func (l *Local) Pending() ([]PendingOp, error) {
	return readCollection[PendingOp](l, constants.PendingCacheKey)
}

func (l *Local) SavePending(ops []PendingOp) error {
	if ops == nil {
		ops = []PendingOp{}
	}
	return writeJSON(l, constants.PendingCacheKey, ops)
}

// Profile returns the cached profile, or ok=false when none is stored.
func (l *Local) Profile() (profile models.Profile, ok bool, err error) {
	data, err := l.cache.Get(constants.ProfileCacheKey)
	if err != nil {
		return models.Profile{}, false, fmt.Errorf("failed to read %s: %w", constants.ProfileCacheKey, err)
	}
	if len(data) == 0 {
		return models.Profile{}, false, nil
	}
	if err := json.Unmarshal(data, &profile); err != nil {
		logger.Warn("Discarding unreadable local cache value", "key", constants.ProfileCacheKey, "error", err)
		return models.Profile{}, false, nil
	}
	return profile, true, nil
}

func (l *Local) SaveProfile(profile models.Profile) error {
	return writeJSON(l, constants.ProfileCacheKey, profile)
}
