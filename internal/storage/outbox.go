package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/bloomlet/internal/models"
)

// OpKind is the type of a deferred remote write
type OpKind string

const (
	OpInsert OpKind = "insert"
	OpDelete OpKind = "delete"
	OpUpdate OpKind = "update"
)

// PendingOp is a remote write that failed while a session existed and is
// waiting to be replayed.
type PendingOp struct {
	Kind     OpKind               `json:"kind"`
	UserID   string               `json:"user_id"`
	EntryID  string               `json:"entry_id"`
	Entry    *models.JournalEntry `json:"entry,omitempty"`
	QueuedAt time.Time            `json:"queued_at"`
}

// NewInsertOp queues an entry insert.
func NewInsertOp(entry models.JournalEntry, now time.Time) PendingOp {
	return PendingOp{Kind: OpInsert, UserID: entry.UserID, EntryID: entry.ID, Entry: &entry, QueuedAt: now}
}

// NewUpdateOp queues an analysis update.
func NewUpdateOp(entry models.JournalEntry, now time.Time) PendingOp {
	return PendingOp{Kind: OpUpdate, UserID: entry.UserID, EntryID: entry.ID, Entry: &entry, QueuedAt: now}
}

// NewDeleteOp queues an entry delete.
func NewDeleteOp(userID, entryID string, now time.Time) PendingOp {
	return PendingOp{Kind: OpDelete, UserID: userID, EntryID: entryID, QueuedAt: now}
}

// Enqueue appends op to ops. A delete cancels any queued insert or update of
// the same entry, and is itself dropped when the insert never reached the
// remote.
func Enqueue(ops []PendingOp, op PendingOp) []PendingOp {
	if op.Kind != OpDelete {
		return append(ops, op)
	}

	kept := ops[:0:0]
	insertPending := false
	for _, queued := range ops {
		if queued.EntryID == op.EntryID && queued.UserID == op.UserID {
			if queued.Kind == OpInsert {
				insertPending = true
			}
			continue
		}
		kept = append(kept, queued)
	}
	if insertPending {
		return kept
	}
	return append(kept, op)
}

// Forget drops every queued op for the entry.
func Forget(ops []PendingOp, userID, entryID string) []PendingOp {
	kept := ops[:0:0]
	for _, queued := range ops {
		if queued.EntryID == entryID && queued.UserID == userID {
			continue
		}
		kept = append(kept, queued)
	}
	return kept
}

// Replay applies the ops that belong to userID in queue order and returns the
// ops still outstanding. Replay stops at the first failure so later ops never
// overtake earlier ones.
func Replay(ctx context.Context, backend EntryBackend, userID string, ops []PendingOp) ([]PendingOp, error) {
	var remaining []PendingOp
	var failure error

	for _, op := range ops {
		if op.UserID != userID || failure != nil {
			remaining = append(remaining, op)
			continue
		}

		var err error
		switch op.Kind {
		case OpInsert:
			if op.Entry == nil {
				continue
			}
			err = backend.InsertEntry(ctx, *op.Entry)
		case OpUpdate:
			if op.Entry == nil {
				continue
			}
			err = backend.UpdateAnalysis(ctx, *op.Entry)
		case OpDelete:
			err = backend.DeleteEntry(ctx, op.UserID, op.EntryID)
		default:
			continue
		}
		// The entry is already gone remotely; nothing left to apply.
		if errors.Is(err, ErrNotFound) {
			err = nil
		}
		if err != nil {
			failure = fmt.Errorf("failed to replay %s of entry %s: %w", op.Kind, op.EntryID, err)
			remaining = append(remaining, op)
		}
	}

	return remaining, failure
}
