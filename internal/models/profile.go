package models

import "time"

// Theme is the preferred color scheme
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// Profile holds per-user preferences.
type Profile struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"display_name,omitempty"`
	WeeklyGoal      int       `json:"weekly_goal"`
	ReminderEnabled bool      `json:"reminder_enabled"`
	ReminderTime    string    `json:"reminder_time"`
	Theme           Theme     `json:"theme"`
	UpdatedAt       time.Time `json:"updated_at"`
}
