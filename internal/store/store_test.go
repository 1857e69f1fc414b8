package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ilkkao/taito/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "taito.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestBestTimesRoundtrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	entry := model.BestTime{Mode: model.ModeRecall, Levels: []string{"A1", "A2"}, TimeMs: 120000}
	if err := st.UpsertBestTime(ctx, entry); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := st.UpsertBestTime(ctx, model.BestTime{Mode: model.ModeVocabulary, TimeMs: 30000}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	entries, err := st.ListBestTimes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Mode != model.ModeRecall || len(entries[0].Levels) != 2 || entries[0].Levels[0] != "A1" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
	if entries[1].Mode != model.ModeVocabulary || entries[1].Levels != nil {
		t.Fatalf("unexpected scope-less entry: %+v", entries[1])
	}

	// Upsert replaces on the same key.
	entry.TimeMs = 95000
	if err := st.UpsertBestTime(ctx, entry); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	entries, err = st.ListBestTimes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].TimeMs != 95000 {
		t.Fatalf("upsert did not replace: %+v", entries)
	}
}

func TestUnlockRoundtrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.InsertUnlock(ctx, model.ModeActiveRecall); err != nil {
		t.Fatalf("insert unlock: %v", err)
	}
	// Duplicate unlocks are ignored.
	if err := st.InsertUnlock(ctx, model.ModeActiveRecall); err != nil {
		t.Fatalf("insert duplicate unlock: %v", err)
	}
	modes, err := st.ListUnlocked(ctx)
	if err != nil {
		t.Fatalf("list unlocked: %v", err)
	}
	if len(modes) != 1 || modes[0] != model.ModeActiveRecall {
		t.Fatalf("unexpected unlocks: %v", modes)
	}
}

func TestSessionHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Unix(0, 0).UTC()
	for i := 0; i < 3; i++ {
		rec := model.SessionRecord{
			Mode:       model.ModeCases,
			EndedAt:    base.Add(time.Duration(i) * time.Minute),
			TimeMs:     int64(60000 + i*1000),
			WrongCount: i,
			Accuracy:   100 - i,
			Questions:  10,
		}
		if _, err := st.InsertSession(ctx, rec); err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}

	records, err := st.ListSessions(ctx, 2)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !records[0].EndedAt.Before(records[1].EndedAt) {
		t.Fatalf("records not chronological: %v then %v", records[0].EndedAt, records[1].EndedAt)
	}
	if records[1].TimeMs != 62000 {
		t.Fatalf("expected newest session last, got %+v", records[1])
	}

	all, err := st.ListSessions(ctx, 0)
	if err != nil {
		t.Fatalf("list all sessions: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
}

func TestReset(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.UpsertBestTime(ctx, model.BestTime{Mode: model.ModeCases, TimeMs: 1000}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := st.InsertUnlock(ctx, model.ModeConjugation); err != nil {
		t.Fatalf("insert unlock: %v", err)
	}
	if _, err := st.InsertSession(ctx, model.SessionRecord{Mode: model.ModeCases, EndedAt: time.Now(), TimeMs: 1}); err != nil {
		t.Fatalf("insert session: %v", err)
	}

	if err := st.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	entries, err := st.ListBestTimes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	modes, err := st.ListUnlocked(ctx)
	if err != nil {
		t.Fatalf("list unlocked: %v", err)
	}
	records, err := st.ListSessions(ctx, 0)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(entries) != 0 || len(modes) != 0 || len(records) != 0 {
		t.Fatalf("reset left data behind: %d/%d/%d", len(entries), len(modes), len(records))
	}
}
