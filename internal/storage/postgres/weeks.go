package postgres

import (
	"context"

	"github.com/julianstephens/bloomlet/internal/models"
)

// LoadCompletedWeeks returns the user's completed weeks, oldest first.
func (s *Store) LoadCompletedWeeks(ctx context.Context, userID string) ([]models.CompletedWeek, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, to_char(week_start, 'YYYY-MM-DD'), COALESCE(butterfly_color, ''), entries_count
		FROM weekly_progress
		WHERE user_id = $1 AND completed
		ORDER BY week_start ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	weeks := []models.CompletedWeek{}
	for rows.Next() {
		var w models.CompletedWeek
		if err := rows.Scan(&w.ID, &w.WeekStart, &w.ButterflyColor, &w.EntriesCount); err != nil {
			return nil, err
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

// UpsertCompletedWeek converges concurrent writers on one row per
// (user_id, week_start). The first writer's id and color are kept.
func (s *Store) UpsertCompletedWeek(ctx context.Context, userID string, w models.CompletedWeek, goal int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO weekly_progress (id, user_id, week_start, entries_count, goal, completed, butterfly_color)
		VALUES ($1, $2, $3::date, $4, $5, TRUE, $6)
		ON CONFLICT (user_id, week_start) DO UPDATE SET
			entries_count = GREATEST(weekly_progress.entries_count, EXCLUDED.entries_count),
			goal = EXCLUDED.goal,
			completed = TRUE,
			butterfly_color = COALESCE(weekly_progress.butterfly_color, EXCLUDED.butterfly_color)`,
		w.ID, userID, w.WeekStart, w.EntriesCount, goal, nullString(w.ButterflyColor))
	return err
}
