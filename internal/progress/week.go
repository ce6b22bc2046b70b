// Package progress derives weekly journaling progress from entries. Every
// function here is pure: results depend only on the entries, the reference
// time and the location used to decide calendar days.
package progress

import (
	"sort"
	"time"

	"github.com/julianstephens/bloomlet/internal/constants"
	"github.com/julianstephens/bloomlet/internal/growth"
	"github.com/julianstephens/bloomlet/internal/models"
)

// WeekProgress is the derived state of one week. It is never persisted.
type WeekProgress struct {
	WeekStart      string       `json:"week_start"`
	EntriesCount   int          `json:"entries_count"`
	Goal           int          `json:"goal"`
	Stage          growth.Stage `json:"stage"`
	Completed      bool         `json:"completed"`
	ButterflyColor string       `json:"butterfly_color,omitempty"`
}

// EntriesToComplete returns how many more active days the week needs.
func (p WeekProgress) EntriesToComplete() int {
	return max(p.Goal-p.EntriesCount, 0)
}

// WeekStart returns midnight of the Sunday that opens the week containing t.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, loc)
}

// WeekKey returns the YYYY-MM-DD key of the week containing t.
func WeekKey(t time.Time, loc *time.Location) string {
	return WeekStart(t, loc).Format(constants.DateFormat)
}

// DayKey returns the calendar date of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(constants.DateFormat)
}

// InWeek returns the entries created inside [weekStart, weekStart+7d) for the
// week containing ref.
func InWeek(entries []models.JournalEntry, ref time.Time, loc *time.Location) []models.JournalEntry {
	start := WeekStart(ref, loc)
	end := start.AddDate(0, 0, 7)

	var out []models.JournalEntry
	for _, e := range entries {
		if !e.CreatedAt.Before(start) && e.CreatedAt.Before(end) {
			out = append(out, e)
		}
	}
	return out
}

// WeekDistinctDayCount returns the number of distinct calendar dates with at
// least one entry in the week containing ref.
func WeekDistinctDayCount(entries []models.JournalEntry, ref time.Time, loc *time.Location) int {
	return distinctDays(InWeek(entries, ref, loc), loc)
}

func distinctDays(entries []models.JournalEntry, loc *time.Location) int {
	days := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		days[DayKey(e.CreatedAt, loc)] = struct{}{}
	}
	return len(days)
}

// Current computes the progress of the week containing now.
func Current(entries []models.JournalEntry, weeklyGoal int, now time.Time, loc *time.Location) WeekProgress {
	goal := growth.ClampGoal(weeklyGoal)
	count := WeekDistinctDayCount(entries, now, loc)

	p := WeekProgress{
		WeekStart:    WeekKey(now, loc),
		EntriesCount: count,
		Goal:         goal,
		Stage:        growth.StageFromCount(count, goal),
		Completed:    count >= goal,
	}
	if p.Completed {
		p.ButterflyColor = growth.ButterflyColor(0)
	}
	return p
}

// WeekTally counts one week's activity two ways.
type WeekTally struct {
	WeekStart    string
	Entries      int
	DistinctDays int
}

// TallyWeeks groups entries by Sunday-anchored week, oldest week first.
func TallyWeeks(entries []models.JournalEntry, loc *time.Location) []WeekTally {
	byWeek := make(map[string][]models.JournalEntry)
	for _, e := range entries {
		key := WeekKey(e.CreatedAt, loc)
		byWeek[key] = append(byWeek[key], e)
	}

	tallies := make([]WeekTally, 0, len(byWeek))
	for key, weekEntries := range byWeek {
		tallies = append(tallies, WeekTally{
			WeekStart:    key,
			Entries:      len(weekEntries),
			DistinctDays: distinctDays(weekEntries, loc),
		})
	}
	sort.Slice(tallies, func(i, j int) bool {
		return tallies[i].WeekStart < tallies[j].WeekStart
	})
	return tallies
}
