package notifier

import (
	"fmt"
	"time"

	"github.com/julianstephens/bloomlet/internal/models"
	"github.com/julianstephens/bloomlet/internal/progress"
	"github.com/julianstephens/bloomlet/internal/utils"
)

// ReminderText is shown when the user has not journaled today.
const ReminderText = "Your butterfly is waiting! Take a moment to reflect today. 🦋"

// Decision explains whether a reminder is due.
type Decision struct {
	Due    bool
	Reason string
}

// ShouldRemind reports whether a reminder is due at now. A reminder is due
// once the profile's reminder time has passed on a day with no entry in loc.
func ShouldRemind(p models.Profile, entries []models.JournalEntry, now time.Time, loc *time.Location) (Decision, error) {
	if !p.ReminderEnabled {
		return Decision{Reason: "reminders are disabled"}, nil
	}

	at, err := utils.AtTimeOfDay(now.In(loc), p.ReminderTime, loc)
	if err != nil {
		return Decision{}, fmt.Errorf("invalid reminder time: %w", err)
	}
	if now.Before(at) {
		return Decision{Reason: fmt.Sprintf("reminder time %s has not passed", p.ReminderTime)}, nil
	}

	today := progress.DayKey(now, loc)
	for _, e := range entries {
		if progress.DayKey(e.CreatedAt, loc) == today {
			return Decision{Reason: "already journaled today"}, nil
		}
	}
	return Decision{Due: true, Reason: "no entry yet today"}, nil
}
