package notifier

import (
	"testing"
	"time"

	"github.com/julianstephens/bloomlet/internal/models"
)

func TestShouldRemind(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 6, 5, 21, 0, 0, 0, loc)
	enabled := models.Profile{ReminderEnabled: true, ReminderTime: "20:00"}

	tests := []struct {
		name    string
		profile models.Profile
		entries []models.JournalEntry
		now     time.Time
		wantDue bool
	}{
		{"disabled", models.Profile{ReminderTime: "20:00"}, nil, now, false},
		{"before time", enabled, nil, now.Add(-2 * time.Hour), false},
		{"due", enabled, nil, now, true},
		{"wrote yesterday", enabled, []models.JournalEntry{{CreatedAt: now.AddDate(0, 0, -1)}}, now, true},
		{"wrote today", enabled, []models.JournalEntry{{CreatedAt: now.Add(-12 * time.Hour)}}, now, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ShouldRemind(tt.profile, tt.entries, tt.now, loc)
			if err != nil {
				t.Fatalf("ShouldRemind() error: %v", err)
			}
			if d.Due != tt.wantDue {
				t.Errorf("Due = %v (%s), want %v", d.Due, d.Reason, tt.wantDue)
			}
		})
	}
}

func TestShouldRemindBadTime(t *testing.T) {
	p := models.Profile{ReminderEnabled: true, ReminderTime: "later"}
	if _, err := ShouldRemind(p, nil, time.Now(), time.UTC); err == nil {
		t.Error("expected error for invalid reminder time")
	}
}
