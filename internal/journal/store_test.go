package journal

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/julianstephens/bloomlet/internal/analysis"
	"github.com/julianstephens/bloomlet/internal/constants"
	"github.com/julianstephens/bloomlet/internal/models"
	"github.com/julianstephens/bloomlet/internal/session"
	"github.com/julianstephens/bloomlet/internal/storage"
	"github.com/julianstephens/bloomlet/internal/storage/storagetest"
)

const testUser = "user-1"

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type stubAnalyzer struct {
	err   error
	calls int
}

func (a *stubAnalyzer) Analyze(_ context.Context, content string) (models.Analysis, error) {
	a.calls++
	if a.err != nil {
		return models.Analysis{}, a.err
	}
	return models.Analysis{
		Sentiment:      models.SentimentPositive,
		SentimentScore: 0.8,
		Themes:         []string{"gratitude"},
		Triggers:       []string{},
		Intensity:      models.IntensityModerate,
		Summary:        content,
	}, nil
}

// monday is 2024-06-03, the day after the Sunday that opens its week.
func monday(hour int) time.Time {
	return time.Date(2024, 6, 3, hour, 0, 0, 0, time.UTC)
}

func newCounterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("entry-%03d", n)
	}
}

func setupStore(t *testing.T, remote storage.EntryBackend, sess session.Source, cache storage.Cache, c *clock, opts ...Option) *Store {
	t.Helper()
	base := []Option{
		WithClock(c.Now),
		WithLocation(time.UTC),
		WithAnalyzer(&stubAnalyzer{}),
		WithIDGenerator(newCounterIDs()),
		WithReanalyzeDelay(0),
	}
	s := New(remote, storage.NewLocal(cache), sess, append(base, opts...)...)
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return s
}

func TestAddEntryValidation(t *testing.T) {
	cache := storagetest.NewCache()
	s := setupStore(t, nil, session.None, cache, &clock{monday(9)})
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
		mood    models.Mood
		wantErr error
	}{
		{"empty", "", "", ErrEmptyContent},
		{"whitespace", "  \n\t", models.MoodGood, ErrEmptyContent},
		{"bad mood", "hello", "ecstatic", ErrInvalidMood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := s.AddEntry(ctx, tt.content, tt.mood); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddEntry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if len(s.Entries()) != 0 {
		t.Error("rejected entries must not be stored")
	}
	if v, _ := cache.Get(constants.EntriesCacheKey); v != nil {
		t.Errorf("rejected entries must not touch the cache, got %s", v)
	}
}

func TestAddEntryAnalysisFallback(t *testing.T) {
	failing := &stubAnalyzer{err: analysis.ErrServiceUnavailable}
	s := setupStore(t, nil, session.None, storagetest.NewCache(), &clock{monday(9)}, WithAnalyzer(failing))

	entry, count, err := s.AddEntry(context.Background(), "hello", "")
	if err != nil {
		t.Fatalf("AddEntry() error: %v", err)
	}
	if failing.calls != 1 {
		t.Errorf("expected analyzer to be called once, got %d", failing.calls)
	}
	if entry.SentimentScore == nil || *entry.SentimentScore != 0 {
		t.Errorf("SentimentScore = %v, want 0", entry.SentimentScore)
	}
	if len(entry.Themes) != 1 || entry.Themes[0] != "reflection" {
		t.Errorf("Themes = %v, want [reflection]", entry.Themes)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if entry.UserID != constants.LocalUserID {
		t.Errorf("UserID = %q, want %q", entry.UserID, constants.LocalUserID)
	}
}

func TestAddEntryCountsDistinctDays(t *testing.T) {
	c := &clock{}
	s := setupStore(t, nil, session.None, storagetest.NewCache(), c)
	ctx := context.Background()

	steps := []struct {
		at   time.Time
		want int
	}{
		{monday(9), 1},
		{monday(21), 1},
		{monday(24 + 10), 2},
		// The following Sunday opens a new week
		{monday(6*24 + 8), 1},
	}

	for i, step := range steps {
		c.t = step.at
		_, count, err := s.AddEntry(ctx, fmt.Sprintf("entry %d", i), "")
		if err != nil {
			t.Fatalf("AddEntry() error: %v", err)
		}
		if count != step.want {
			t.Errorf("step %d: count = %d, want %d", i, count, step.want)
		}
	}

	if got := s.WeekDistinctDayCount(monday(12)); got != 2 {
		t.Errorf("WeekDistinctDayCount(first week) = %d, want 2", got)
	}

	entries := s.Entries()
	if len(entries) != 4 || entries[0].Content != "entry 3" {
		t.Errorf("entries not newest first: %+v", entries)
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("local", func(t *testing.T) {
		cache := storagetest.NewCache()
		s := setupStore(t, nil, session.None, cache, &clock{monday(9)})
		added, _, err := s.AddEntry(ctx, "a calm walk", models.MoodGood)
		if err != nil {
			t.Fatal(err)
		}

		fresh := setupStore(t, nil, session.None, cache, &clock{monday(10)})
		assertSameEntry(t, fresh.Entries(), added)
	})

	t.Run("remote", func(t *testing.T) {
		remote := storagetest.NewRemote()
		s := setupStore(t, remote, session.Static(testUser), storagetest.NewCache(), &clock{monday(9)})
		added, _, err := s.AddEntry(ctx, "a calm walk", models.MoodGood)
		if err != nil {
			t.Fatal(err)
		}
		if added.UserID != testUser {
			t.Errorf("UserID = %q, want %q", added.UserID, testUser)
		}

		// A new device with an empty cache sees the entry through the remote
		cache := storagetest.NewCache()
		fresh := setupStore(t, remote, session.Static(testUser), cache, &clock{monday(10)})
		assertSameEntry(t, fresh.Entries(), added)

		cached, err := storage.NewLocal(cache).Entries()
		if err != nil || len(cached) != 1 {
			t.Errorf("remote load should refresh the local cache, got %v, %v", cached, err)
		}
	})
}

func assertSameEntry(t *testing.T, entries []models.JournalEntry, want models.JournalEntry) {
	t.Helper()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.ID != want.ID || got.Content != want.Content || got.Mood != want.Mood {
		t.Errorf("entry = %+v, want %+v", got, want)
	}
	if got.SentimentScore == nil || *got.SentimentScore != *want.SentimentScore {
		t.Errorf("SentimentScore = %v, want %v", got.SentimentScore, *want.SentimentScore)
	}
	if len(got.Themes) != len(want.Themes) || got.Intensity != want.Intensity {
		t.Errorf("analysis fields differ: %+v vs %+v", got, want)
	}
}

func TestRemoteFailureFallsBackAndReplays(t *testing.T) {
	ctx := context.Background()
	remote := storagetest.NewRemote()
	cache := storagetest.NewCache()
	s := setupStore(t, remote, session.Static(testUser), cache, &clock{monday(9)})

	remote.SetFailing(true)
	entry, _, err := s.AddEntry(ctx, "written on a plane", "")
	if err != nil {
		t.Fatalf("AddEntry() should degrade, got %v", err)
	}

	local := storage.NewLocal(cache)
	cached, _ := local.Entries()
	if len(cached) != 1 || cached[0].ID != entry.ID {
		t.Fatalf("entry not kept locally: %+v", cached)
	}
	pending, _ := local.Pending()
	if len(pending) != 1 || pending[0].Kind != storage.OpInsert {
		t.Fatalf("expected a queued insert, got %+v", pending)
	}

	// Offline load still sees the entry
	if entries, err := s.Load(ctx); err != nil || len(entries) != 1 {
		t.Fatalf("Load() while offline = %v, %v", entries, err)
	}

	remote.SetFailing(false)
	if _, err := s.Load(ctx); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	remoteEntries, _ := remote.LoadEntries(ctx, testUser)
	if len(remoteEntries) != 1 || remoteEntries[0].ID != entry.ID {
		t.Errorf("pending insert not replayed: %+v", remoteEntries)
	}
	if pending, _ := local.Pending(); len(pending) != 0 {
		t.Errorf("outbox not drained: %+v", pending)
	}
}

func TestOfflineEntriesSurviveLogin(t *testing.T) {
	ctx := context.Background()
	cache := storagetest.NewCache()
	c := &clock{monday(9)}

	offline := setupStore(t, nil, session.None, cache, c)
	entry, _, err := offline.AddEntry(ctx, "written before signing in", models.MoodGood)
	if err != nil {
		t.Fatal(err)
	}

	remote := storagetest.NewRemote()
	online := setupStore(t, remote, session.Static(testUser), cache, c)

	entries := online.Entries()
	if len(entries) != 1 || entries[0].ID != entry.ID {
		t.Fatalf("offline entry lost on first online load: %+v", entries)
	}
	if entries[0].UserID != testUser {
		t.Errorf("UserID = %q, want %q", entries[0].UserID, testUser)
	}
	remoteEntries, _ := remote.LoadEntries(ctx, testUser)
	if len(remoteEntries) != 1 || remoteEntries[0].Content != entry.Content {
		t.Errorf("offline entry not uploaded: %+v", remoteEntries)
	}
	local := storage.NewLocal(cache)
	if cached, _ := local.Entries(); len(cached) != 1 || cached[0].UserID != testUser {
		t.Errorf("local cache = %+v", cached)
	}
	if pending, _ := local.Pending(); len(pending) != 0 {
		t.Errorf("outbox not drained: %+v", pending)
	}
}

func TestOfflineEntriesKeptWhenUploadFails(t *testing.T) {
	ctx := context.Background()
	cache := storagetest.NewCache()
	c := &clock{monday(9)}

	offline := setupStore(t, nil, session.None, cache, c)
	entry, _, err := offline.AddEntry(ctx, "still local", "")
	if err != nil {
		t.Fatal(err)
	}

	remote := storagetest.NewRemote()
	remote.FailMethod("InsertEntry", true)
	online := setupStore(t, remote, session.Static(testUser), cache, c)

	if entries := online.Entries(); len(entries) != 1 || entries[0].ID != entry.ID {
		t.Fatalf("offline entry lost when upload failed: %+v", entries)
	}
	if pending, _ := storage.NewLocal(cache).Pending(); len(pending) != 1 || pending[0].UserID != testUser {
		t.Errorf("expected the upload to stay queued, got %+v", pending)
	}

	remote.FailMethod("InsertEntry", false)
	if _, err := online.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if remoteEntries, _ := remote.LoadEntries(ctx, testUser); len(remoteEntries) != 1 {
		t.Errorf("queued upload not replayed: %+v", remoteEntries)
	}
}

func TestAddThenDeleteLeavesBackendsUnchanged(t *testing.T) {
	ctx := context.Background()
	remote := storagetest.NewRemote()
	cache := storagetest.NewCache()
	c := &clock{monday(9)}
	s := setupStore(t, remote, session.Static(testUser), cache, c)

	existing, _, err := s.AddEntry(ctx, "already here", "")
	if err != nil {
		t.Fatal(err)
	}
	beforeRemote, _ := remote.LoadEntries(ctx, testUser)
	beforeLocal, _ := storage.NewLocal(cache).Entries()

	c.t = monday(10)
	added, _, err := s.AddEntry(ctx, "oops", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteEntry(ctx, added.ID); err != nil {
		t.Fatalf("DeleteEntry() error: %v", err)
	}

	afterRemote, _ := remote.LoadEntries(ctx, testUser)
	afterLocal, _ := storage.NewLocal(cache).Entries()
	for name, pair := range map[string][2][]models.JournalEntry{
		"remote": {beforeRemote, afterRemote},
		"local":  {beforeLocal, afterLocal},
	} {
		if len(pair[0]) != len(pair[1]) || len(pair[1]) != 1 || pair[1][0].ID != existing.ID {
			t.Errorf("%s changed: before %+v, after %+v", name, pair[0], pair[1])
		}
	}
	if got := s.Entries(); len(got) != 1 || got[0].ID != existing.ID {
		t.Errorf("in-memory entries = %+v", got)
	}
}

func TestDeleteEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id", func(t *testing.T) {
		s := setupStore(t, nil, session.None, storagetest.NewCache(), &clock{monday(9)})
		if err := s.DeleteEntry(ctx, "nope"); !errors.Is(err, ErrEntryNotFound) {
			t.Errorf("DeleteEntry() error = %v, want ErrEntryNotFound", err)
		}
	})

	t.Run("remote failure is swallowed and queued", func(t *testing.T) {
		remote := storagetest.NewRemote()
		cache := storagetest.NewCache()
		s := setupStore(t, remote, session.Static(testUser), cache, &clock{monday(9)})
		entry, _, err := s.AddEntry(ctx, "keep me remotely for now", "")
		if err != nil {
			t.Fatal(err)
		}

		remote.SetFailing(true)
		if err := s.DeleteEntry(ctx, entry.ID); err != nil {
			t.Fatalf("DeleteEntry() error = %v, want nil", err)
		}
		if len(s.Entries()) != 0 {
			t.Error("entry should be removed locally")
		}
		pending, _ := storage.NewLocal(cache).Pending()
		if len(pending) != 1 || pending[0].Kind != storage.OpDelete {
			t.Fatalf("expected queued delete, got %+v", pending)
		}

		remote.SetFailing(false)
		if _, err := s.Load(ctx); err != nil {
			t.Fatal(err)
		}
		if remaining, _ := remote.LoadEntries(ctx, testUser); len(remaining) != 0 {
			t.Errorf("queued delete not replayed: %+v", remaining)
		}
	})

	t.Run("pending insert is dropped", func(t *testing.T) {
		remote := storagetest.NewRemote()
		cache := storagetest.NewCache()
		s := setupStore(t, remote, session.Static(testUser), cache, &clock{monday(9)})

		remote.SetFailing(true)
		entry, _, err := s.AddEntry(ctx, "never synced", "")
		if err != nil {
			t.Fatal(err)
		}
		if err := s.DeleteEntry(ctx, entry.ID); err != nil {
			t.Fatal(err)
		}
		if pending, _ := storage.NewLocal(cache).Pending(); len(pending) != 0 {
			t.Errorf("expected empty outbox, got %+v", pending)
		}

		remote.SetFailing(false)
		if _, err := s.Load(ctx); err != nil {
			t.Fatal(err)
		}
		if remote.Calls("InsertEntry") != 1 {
			t.Errorf("insert should not be replayed, calls = %d", remote.Calls("InsertEntry"))
		}
	})
}

func TestCorruptLocalCacheLoadsEmpty(t *testing.T) {
	cache := storagetest.NewCache()
	if err := cache.Put(constants.EntriesCacheKey, []byte("[{broken")); err != nil {
		t.Fatal(err)
	}

	s := setupStore(t, nil, session.None, cache, &clock{monday(9)})
	if got := s.Entries(); len(got) != 0 {
		t.Errorf("expected empty entries, got %+v", got)
	}
	if _, _, err := s.AddEntry(context.Background(), "fresh start", ""); err != nil {
		t.Errorf("AddEntry() after corrupt cache error: %v", err)
	}
}

func TestStorageUnavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("local only medium failure", func(t *testing.T) {
		cache := storagetest.NewCache()
		s := setupStore(t, nil, session.None, cache, &clock{monday(9)})
		cache.SetFailing(true)

		_, _, err := s.AddEntry(ctx, "lost?", "")
		if !errors.Is(err, ErrStorageUnavailable) {
			t.Fatalf("AddEntry() error = %v, want ErrStorageUnavailable", err)
		}
		if len(s.Entries()) != 0 {
			t.Error("failed entry must not appear in memory")
		}
		if _, err := s.Load(ctx); !errors.Is(err, ErrStorageUnavailable) {
			t.Errorf("Load() error = %v, want ErrStorageUnavailable", err)
		}
	})

	t.Run("remote and local both fail", func(t *testing.T) {
		remote := storagetest.NewRemote()
		cache := storagetest.NewCache()
		s := setupStore(t, remote, session.Static(testUser), cache, &clock{monday(9)})
		remote.SetFailing(true)
		cache.SetFailing(true)

		_, _, err := s.AddEntry(ctx, "lost?", "")
		if !errors.Is(err, ErrStorageUnavailable) {
			t.Fatalf("AddEntry() error = %v, want ErrStorageUnavailable", err)
		}
		if !errors.Is(err, storagetest.ErrOffline) || !errors.Is(err, storagetest.ErrMediumUnavailable) {
			t.Errorf("error should carry both causes: %v", err)
		}
		if _, err := s.Load(ctx); !errors.Is(err, ErrStorageUnavailable) {
			t.Errorf("Load() error = %v, want ErrStorageUnavailable", err)
		}
	})

	t.Run("remote succeeds while local fails", func(t *testing.T) {
		remote := storagetest.NewRemote()
		cache := storagetest.NewCache()
		s := setupStore(t, remote, session.Static(testUser), cache, &clock{monday(9)})
		cache.SetFailing(true)

		if _, _, err := s.AddEntry(ctx, "remote has it", ""); err != nil {
			t.Errorf("AddEntry() error = %v, want nil", err)
		}
		if len(s.Entries()) != 1 {
			t.Error("entry should be kept in memory")
		}
	})
}

func TestSessionWithoutRemoteIsLocal(t *testing.T) {
	s := setupStore(t, nil, session.Static(testUser), storagetest.NewCache(), &clock{monday(9)})
	if s.Online() {
		t.Error("store without a remote must not be online")
	}
	entry, _, err := s.AddEntry(context.Background(), "hi", "")
	if err != nil {
		t.Fatal(err)
	}
	if entry.UserID != constants.LocalUserID {
		t.Errorf("UserID = %q, want %q", entry.UserID, constants.LocalUserID)
	}
}

func TestReanalyze(t *testing.T) {
	ctx := context.Background()
	remote := storagetest.NewRemote()
	cache := storagetest.NewCache()

	score := 0.1
	seeded := []models.JournalEntry{
		{ID: "a", UserID: testUser, Content: "first", CreatedAt: monday(9), UpdatedAt: monday(9)},
		{ID: "b", UserID: testUser, Content: "second", CreatedAt: monday(10), UpdatedAt: monday(10)},
		{ID: "c", UserID: testUser, Content: "scored", SentimentScore: &score, CreatedAt: monday(11), UpdatedAt: monday(11)},
	}
	for _, e := range seeded {
		if err := remote.InsertEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	analyzer := &stubAnalyzer{}
	s := setupStore(t, remote, session.Static(testUser), cache, &clock{monday(12)}, WithAnalyzer(analyzer))

	n, err := s.Reanalyze(ctx)
	if err != nil {
		t.Fatalf("Reanalyze() error: %v", err)
	}
	if n != 2 || analyzer.calls != 2 {
		t.Errorf("Reanalyze() = %d with %d calls, want 2", n, analyzer.calls)
	}

	for _, e := range s.Entries() {
		if !e.Analyzed() {
			t.Errorf("entry %s still unanalyzed", e.ID)
		}
	}
	remoteEntries, _ := remote.LoadEntries(ctx, testUser)
	for _, e := range remoteEntries {
		if e.ID != "c" && (e.SentimentScore == nil || *e.SentimentScore != 0.8) {
			t.Errorf("remote entry %s not updated: %+v", e.ID, e)
		}
	}
	cached, _ := storage.NewLocal(cache).Entries()
	for _, e := range cached {
		if !e.Analyzed() {
			t.Errorf("cached entry %s not updated", e.ID)
		}
	}

	t.Run("no analyzer", func(t *testing.T) {
		bare := New(nil, storage.NewLocal(storagetest.NewCache()), nil)
		if _, err := bare.Reanalyze(ctx); !errors.Is(err, analysis.ErrServiceUnavailable) {
			t.Errorf("Reanalyze() error = %v", err)
		}
	})

	t.Run("cancelled between requests", func(t *testing.T) {
		cache := storagetest.NewCache()
		if err := storage.NewLocal(cache).SaveEntries(seeded[:2]); err != nil {
			t.Fatal(err)
		}
		slow := setupStore(t, nil, session.None, cache, &clock{monday(12)}, WithReanalyzeDelay(time.Hour))
		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		n, err := slow.Reanalyze(cctx)
		if !errors.Is(err, context.DeadlineExceeded) || n != 1 {
			t.Errorf("Reanalyze() = %d, %v; want 1, deadline exceeded", n, err)
		}
	})
}

func TestFind(t *testing.T) {
	cache := storagetest.NewCache()
	seeded := []models.JournalEntry{
		{ID: "abc-1", Content: "one", CreatedAt: monday(9)},
		{ID: "abd-2", Content: "two", CreatedAt: monday(10)},
	}
	if err := storage.NewLocal(cache).SaveEntries(seeded); err != nil {
		t.Fatal(err)
	}
	s := setupStore(t, nil, session.None, cache, &clock{monday(12)})

	if e, err := s.Find("abc-1"); err != nil || e.Content != "one" {
		t.Errorf("Find(exact) = %+v, %v", e, err)
	}
	if e, err := s.Find("abd"); err != nil || e.Content != "two" {
		t.Errorf("Find(prefix) = %+v, %v", e, err)
	}
	if _, err := s.Find("ab"); !errors.Is(err, ErrAmbiguousID) {
		t.Errorf("Find(ambiguous) error = %v", err)
	}
	if _, err := s.Find("zzz"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Find(missing) error = %v", err)
	}
}

func TestOverlayPending(t *testing.T) {
	now := monday(9)
	remoteEntries := []models.JournalEntry{
		{ID: "kept", UserID: testUser},
		{ID: "gone", UserID: testUser},
	}
	ops := []storage.PendingOp{
		storage.NewInsertOp(models.JournalEntry{ID: "new", UserID: testUser}, now),
		storage.NewDeleteOp(testUser, "gone", now),
		storage.NewInsertOp(models.JournalEntry{ID: "other", UserID: "someone-else"}, now),
	}

	got := overlayPending(remoteEntries, ops, testUser)
	ids := map[string]bool{}
	for _, e := range got {
		ids[e.ID] = true
	}
	if len(got) != 2 || !ids["kept"] || !ids["new"] {
		t.Errorf("overlayPending() = %+v", got)
	}
}
