package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/bloomlet/internal/models"
	"github.com/julianstephens/bloomlet/internal/storage"
)

// TestStore_Integration tests the remote backend against a real database.
// Set POSTGRES_TEST_URL to run it, for example
// POSTGRES_TEST_URL="postgres://bloomlet@localhost:5432/bloomlet_test?sslmode=disable"
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	store := New(connStr)
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	userID := "it-" + uuid.NewString()
	otherUser := "it-" + uuid.NewString()

	t.Run("Entries", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		score := -0.3
		older := models.JournalEntry{ID: uuid.NewString(), UserID: userID, Content: "older", CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour)}
		newer := models.JournalEntry{ID: uuid.NewString(), UserID: userID, Content: "newer", Mood: models.MoodLow,
			SentimentScore: &score, Themes: []string{"work"}, Intensity: models.IntensityHigh, CreatedAt: now, UpdatedAt: now}

		for _, e := range []models.JournalEntry{older, newer, newer} {
			if err := store.InsertEntry(ctx, e); err != nil {
				t.Fatalf("InsertEntry() error: %v", err)
			}
		}

		entries, err := store.LoadEntries(ctx, userID)
		if err != nil {
			t.Fatalf("LoadEntries() error: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries after duplicate insert, got %d", len(entries))
		}
		if entries[0].ID != newer.ID {
			t.Errorf("expected newest first")
		}
		if entries[0].Mood != models.MoodLow || *entries[0].SentimentScore != score || entries[0].Themes[0] != "work" {
			t.Errorf("fields not round-tripped: %+v", entries[0])
		}
		if entries[1].SentimentScore != nil || entries[1].Mood != "" {
			t.Errorf("unset fields should stay empty: %+v", entries[1])
		}

		// Cross-user delete must not remove anything
		if err := store.DeleteEntry(ctx, otherUser, older.ID); err != nil {
			t.Fatalf("DeleteEntry() error: %v", err)
		}
		older.ApplyAnalysis(models.Analysis{SentimentScore: 0.5, Themes: []string{"gratitude"}, Intensity: models.IntensityLow})
		if err := store.UpdateAnalysis(ctx, older); err != nil {
			t.Fatalf("UpdateAnalysis() error: %v", err)
		}
		if err := store.DeleteEntry(ctx, userID, newer.ID); err != nil {
			t.Fatalf("DeleteEntry() error: %v", err)
		}

		entries, err = store.LoadEntries(ctx, userID)
		if err != nil {
			t.Fatalf("LoadEntries() error: %v", err)
		}
		if len(entries) != 1 || entries[0].ID != older.ID || *entries[0].SentimentScore != 0.5 {
			t.Errorf("unexpected entries after delete/update: %+v", entries)
		}

		missing := models.JournalEntry{ID: uuid.NewString(), UserID: userID}
		if err := store.UpdateAnalysis(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateAnalysis(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("CompletedWeeks", func(t *testing.T) {
		first := models.CompletedWeek{ID: uuid.NewString(), WeekStart: "2024-06-09", ButterflyColor: "#FFB6C1", EntriesCount: 4}
		racer := models.CompletedWeek{ID: uuid.NewString(), WeekStart: "2024-06-09", ButterflyColor: "#E6E6FA", EntriesCount: 5}
		earlier := models.CompletedWeek{ID: uuid.NewString(), WeekStart: "2024-06-02", ButterflyColor: "#98FB98", EntriesCount: 4}

		for _, w := range []models.CompletedWeek{first, racer, earlier} {
			if err := store.UpsertCompletedWeek(ctx, userID, w, 4); err != nil {
				t.Fatalf("UpsertCompletedWeek() error: %v", err)
			}
		}

		weeks, err := store.LoadCompletedWeeks(ctx, userID)
		if err != nil {
			t.Fatalf("LoadCompletedWeeks() error: %v", err)
		}
		if len(weeks) != 2 {
			t.Fatalf("expected 2 weeks, got %d", len(weeks))
		}
		if weeks[0].WeekStart != "2024-06-02" || weeks[1].WeekStart != "2024-06-09" {
			t.Errorf("weeks not ascending: %+v", weeks)
		}
		if weeks[1].ID != first.ID || weeks[1].ButterflyColor != first.ButterflyColor {
			t.Errorf("upsert replaced the original record: %+v", weeks[1])
		}
		if weeks[1].EntriesCount != 5 {
			t.Errorf("expected entries_count 5, got %d", weeks[1].EntriesCount)
		}
	})

	t.Run("Profile", func(t *testing.T) {
		if _, err := store.GetProfile(ctx, userID); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("GetProfile() error = %v, want ErrNotFound", err)
		}

		p := models.Profile{ID: userID, Email: "me@example.com", WeeklyGoal: 5, ReminderTime: "21:00", Theme: models.ThemeDark, UpdatedAt: time.Now().UTC()}
		if err := store.SaveProfile(ctx, p); err != nil {
			t.Fatalf("SaveProfile() error: %v", err)
		}
		p.DisplayName = "Sam"
		if err := store.SaveProfile(ctx, p); err != nil {
			t.Fatalf("SaveProfile() update error: %v", err)
		}

		got, err := store.GetProfile(ctx, userID)
		if err != nil {
			t.Fatalf("GetProfile() error: %v", err)
		}
		if got.DisplayName != "Sam" || got.WeeklyGoal != 5 || got.Theme != models.ThemeDark {
			t.Errorf("GetProfile() = %+v", got)
		}
	})

	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
}
