package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/julianstephens/bloomlet/internal/models"
	"github.com/julianstephens/bloomlet/internal/storage"
)

func (s *Store) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	var p models.Profile
	var displayName sql.NullString
	var theme string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, weekly_goal, reminder_enabled, reminder_time, theme, updated_at
		FROM profiles WHERE id = $1`, userID).
		Scan(&p.ID, &p.Email, &displayName, &p.WeeklyGoal, &p.ReminderEnabled, &p.ReminderTime, &theme, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, storage.ErrNotFound
		}
		return models.Profile{}, err
	}
	p.DisplayName = displayName.String
	p.Theme = models.Theme(theme)
	return p, nil
}

func (s *Store) SaveProfile(ctx context.Context, p models.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, display_name, weekly_goal, reminder_enabled, reminder_time, theme, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			weekly_goal = EXCLUDED.weekly_goal,
			reminder_enabled = EXCLUDED.reminder_enabled,
			reminder_time = EXCLUDED.reminder_time,
			theme = EXCLUDED.theme,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.Email, nullString(p.DisplayName), p.WeeklyGoal, p.ReminderEnabled, p.ReminderTime, string(p.Theme), p.UpdatedAt)
	return err
}
