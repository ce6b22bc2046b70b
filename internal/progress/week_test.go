package progress

import (
	"testing"
	"time"

	"github.com/julianstephens/bloomlet/internal/growth"
	"github.com/julianstephens/bloomlet/internal/models"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, time.UTC)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return ts
}

func entryAt(t *testing.T, value string) models.JournalEntry {
	ts := at(t, value)
	return models.JournalEntry{ID: value, Content: "x", CreatedAt: ts, UpdatedAt: ts}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"sunday midnight", "2024-06-02 00:00", "2024-06-02"},
		{"monday", "2024-06-03 09:00", "2024-06-02"},
		{"saturday night", "2024-06-08 23:59", "2024-06-02"},
		{"next sunday", "2024-06-09 00:00", "2024-06-09"},
		{"across month boundary", "2024-06-01 12:00", "2024-05-26"},
		{"across year boundary", "2025-01-01 08:00", "2024-12-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekKey(at(t, tt.in), time.UTC); got != tt.want {
				t.Errorf("WeekKey(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestWeekStartUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*60*60)
	// Sunday 03:00 UTC is still Saturday evening at UTC-8
	ref := at(t, "2024-06-09 03:00")
	if got := WeekKey(ref, loc); got != "2024-06-02" {
		t.Errorf("expected previous week in UTC-8, got %s", got)
	}
	if got := WeekKey(ref, time.UTC); got != "2024-06-09" {
		t.Errorf("expected new week in UTC, got %s", got)
	}
}

func TestWeekDistinctDayCount(t *testing.T) {
	entries := []models.JournalEntry{
		entryAt(t, "2024-06-03 09:00"), // Mon
		entryAt(t, "2024-06-03 21:00"), // Mon
		entryAt(t, "2024-06-04 10:00"), // Tue
	}
	ref := at(t, "2024-06-05 12:00")

	if got := WeekDistinctDayCount(entries, ref, time.UTC); got != 2 {
		t.Errorf("WeekDistinctDayCount() = %d, want 2", got)
	}
}

func TestWeekDistinctDayCountWindow(t *testing.T) {
	entries := []models.JournalEntry{
		entryAt(t, "2024-06-01 23:59"), // previous Saturday
		entryAt(t, "2024-06-02 00:00"), // window start
		entryAt(t, "2024-06-08 23:59"), // window end
		entryAt(t, "2024-06-09 00:00"), // next week
	}
	ref := at(t, "2024-06-05 12:00")

	if got := WeekDistinctDayCount(entries, ref, time.UTC); got != 2 {
		t.Errorf("WeekDistinctDayCount() = %d, want 2", got)
	}
	if got := WeekDistinctDayCount(nil, ref, time.UTC); got != 0 {
		t.Errorf("WeekDistinctDayCount(nil) = %d, want 0", got)
	}
}

func TestCurrent(t *testing.T) {
	now := at(t, "2024-06-06 18:00")

	t.Run("empty week", func(t *testing.T) {
		p := Current(nil, 4, now, time.UTC)
		if p.Stage != growth.StageEmpty || p.Completed || p.EntriesCount != 0 {
			t.Errorf("unexpected progress %+v", p)
		}
		if p.EntriesToComplete() != 4 {
			t.Errorf("EntriesToComplete() = %d, want 4", p.EntriesToComplete())
		}
		if p.WeekStart != "2024-06-02" {
			t.Errorf("WeekStart = %s, want 2024-06-02", p.WeekStart)
		}
	})

	t.Run("partial week", func(t *testing.T) {
		entries := []models.JournalEntry{
			entryAt(t, "2024-06-03 09:00"),
			entryAt(t, "2024-06-03 10:00"),
			entryAt(t, "2024-06-05 09:00"),
		}
		p := Current(entries, 4, now, time.UTC)
		if p.EntriesCount != 2 || p.Stage != growth.StageCaterpillar || p.Completed {
			t.Errorf("unexpected progress %+v", p)
		}
		if p.EntriesToComplete() != 2 {
			t.Errorf("EntriesToComplete() = %d, want 2", p.EntriesToComplete())
		}
		if p.ButterflyColor != "" {
			t.Errorf("incomplete week should have no color, got %s", p.ButterflyColor)
		}
	})

	t.Run("completed week", func(t *testing.T) {
		entries := []models.JournalEntry{
			entryAt(t, "2024-06-02 09:00"),
			entryAt(t, "2024-06-03 09:00"),
			entryAt(t, "2024-06-04 09:00"),
			entryAt(t, "2024-06-05 09:00"),
			entryAt(t, "2024-06-06 09:00"),
		}
		p := Current(entries, 4, now, time.UTC)
		if !p.Completed || p.Stage != growth.StageButterfly {
			t.Errorf("unexpected progress %+v", p)
		}
		if p.EntriesToComplete() != 0 {
			t.Errorf("EntriesToComplete() = %d, want 0", p.EntriesToComplete())
		}
		if p.ButterflyColor != growth.Palette[0] {
			t.Errorf("ButterflyColor = %s, want %s", p.ButterflyColor, growth.Palette[0])
		}
	})

	t.Run("goal is clamped", func(t *testing.T) {
		p := Current([]models.JournalEntry{entryAt(t, "2024-06-03 09:00")}, 0, now, time.UTC)
		if p.Goal != 1 || !p.Completed {
			t.Errorf("expected clamped goal 1 to complete, got %+v", p)
		}
	})

	t.Run("re-derivable", func(t *testing.T) {
		entries := []models.JournalEntry{entryAt(t, "2024-06-03 09:00")}
		if Current(entries, 3, now, time.UTC) != Current(entries, 3, now, time.UTC) {
			t.Error("Current is not deterministic")
		}
	})
}

func TestTallyWeeks(t *testing.T) {
	entries := []models.JournalEntry{
		entryAt(t, "2024-06-10 09:00"),
		entryAt(t, "2024-06-03 09:00"),
		entryAt(t, "2024-06-03 19:00"),
		entryAt(t, "2024-06-04 09:00"),
	}

	tallies := TallyWeeks(entries, time.UTC)
	if len(tallies) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(tallies))
	}
	if tallies[0].WeekStart != "2024-06-02" || tallies[0].Entries != 3 || tallies[0].DistinctDays != 2 {
		t.Errorf("unexpected first tally %+v", tallies[0])
	}
	if tallies[1].WeekStart != "2024-06-09" || tallies[1].Entries != 1 || tallies[1].DistinctDays != 1 {
		t.Errorf("unexpected second tally %+v", tallies[1])
	}
}
