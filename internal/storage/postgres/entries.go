package postgres

import (
	"context"
	"database/sql"
	"fmt"

	pq "github.com/lib/pq"

	"github.com/julianstephens/bloomlet/internal/models"
	"github.com/julianstephens/bloomlet/internal/storage"
)

func (s *Store) LoadEntries(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, content, mood, sentiment_score, themes, triggers, intensity, created_at, updated_at
		FROM journal_entries
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		var e models.JournalEntry
		var mood, intensity sql.NullString
		var score sql.NullFloat64
		var themes, triggers []string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Content, &mood, &score,
			pq.Array(&themes), pq.Array(&triggers), &intensity, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}

		e.Mood = models.Mood(mood.String)
		e.Intensity = models.Intensity(intensity.String)
		if score.Valid {
			v := score.Float64
			e.SentimentScore = &v
		}
		e.Themes = themes
		e.Triggers = triggers
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) InsertEntry(ctx context.Context, e models.JournalEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal_entries (id, user_id, content, mood, sentiment_score, themes, triggers, intensity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, e.UserID, e.Content, nullString(string(e.Mood)), nullFloat(e.SentimentScore),
		pq.Array(e.Themes), pq.Array(e.Triggers), nullString(string(e.Intensity)),
		e.CreatedAt, e.UpdatedAt)
	return err
}

func (s *Store) DeleteEntry(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM journal_entries WHERE id = $1 AND user_id = $2", id, userID)
	return err
}

func (s *Store) UpdateAnalysis(ctx context.Context, e models.JournalEntry) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE journal_entries
		SET sentiment_score = $1, themes = $2, triggers = $3, intensity = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7`,
		nullFloat(e.SentimentScore), pq.Array(e.Themes), pq.Array(e.Triggers),
		nullString(string(e.Intensity)), e.UpdatedAt, e.ID, e.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("entry %s: %w", e.ID, storage.ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
