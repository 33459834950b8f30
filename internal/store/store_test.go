package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/cleanse369/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "cleanse.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func row(user, cycleID string, updated time.Time, checks ...string) model.CycleRow {
	m := map[string]bool{}
	for _, c := range checks {
		m[c] = true
	}
	return model.CycleRow{
		UserID:     user,
		CycleID:    cycleID,
		ProgramKey: "original",
		StartISO:   "2024-01-01",
		Checks:     m,
		UpdatedAt:  updated,
	}
}

func TestUpsertOverwritesSameKey(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	if err := st.Upsert(ctx, row("u1", "original|2024-01-01", base, "a")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := st.Upsert(ctx, row("u1", "original|2024-01-01", base.Add(time.Minute), "a", "b")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	rows, err := st.ListCycles(ctx, model.CycleFilter{UserID: "u1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if len(rows[0].Checks) != 2 || !rows[0].Checks["b"] {
		t.Fatalf("unexpected checks: %v", rows[0].Checks)
	}
	if !rows[0].UpdatedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected updated_at: %v", rows[0].UpdatedAt)
	}
}

func TestUpsertDropsFalseChecks(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	r := row("u1", "c1", time.Unix(1700000000, 0), "a")
	r.Checks["b"] = false
	if err := st.Upsert(ctx, r); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := st.LatestIncomplete(ctx, "u1")
	if err != nil || got == nil {
		t.Fatalf("latest: %v %v", got, err)
	}
	if _, ok := got.Checks["b"]; ok {
		t.Fatalf("false entry should not be stored: %v", got.Checks)
	}
}

func TestLatestIncomplete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	got, err := st.LatestIncomplete(ctx, "u1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no row, got %+v", got)
	}

	for i, id := range []string{"c1", "c2", "c3"} {
		if err := st.Upsert(ctx, row("u1", id, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if err := st.Upsert(ctx, row("u2", "c9", base.Add(time.Hour))); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	st.now = func() time.Time { return base.Add(time.Minute) }
	if err := st.MarkCompleted(ctx, "u1", "c3"); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	got, err = st.LatestIncomplete(ctx, "u1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got == nil || got.CycleID != "c2" {
		t.Fatalf("expected c2, got %+v", got)
	}
}

func TestFinishedRowReopensAndKeepsMedal(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	if err := st.Upsert(ctx, row("u1", "c1", base)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := st.MarkCompleted(ctx, "u1", "c1"); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	n, err := st.CountCompleted(ctx, "u1")
	if err != nil || n != 1 {
		t.Fatalf("expected 1 completed, got %d (%v)", n, err)
	}

	if err := st.Upsert(ctx, row("u1", "c1", base.Add(time.Minute), "x")); err != nil {
		t.Fatalf("reopen upsert: %v", err)
	}
	got, err := st.LatestIncomplete(ctx, "u1")
	if err != nil || got == nil || got.CycleID != "c1" || !got.Checks["x"] {
		t.Fatalf("expected reopened c1 with check, got %+v (%v)", got, err)
	}
	n, err = st.CountCompleted(ctx, "u1")
	if err != nil || n != 1 {
		t.Fatalf("expected medal to survive reopen, got %d (%v)", n, err)
	}

	if err := st.Discard(ctx, "u1", "c1"); err != nil {
		t.Fatalf("discard: %v", err)
	}
	n, err = st.CountCompleted(ctx, "u1")
	if err != nil || n != 1 {
		t.Fatalf("expected medal to survive discard, got %d (%v)", n, err)
	}
	n, err = st.LocalMedals(ctx)
	if err != nil || n != 0 {
		t.Fatalf("user medals leaked into anonymous counter: %d (%v)", n, err)
	}
}

func TestMarkCompletedMissingRow(t *testing.T) {
	st := openTestStore(t)
	if err := st.MarkCompleted(context.Background(), "u1", "nope"); err == nil {
		t.Fatalf("expected error for missing row")
	}
}

func TestDiscardRemovesIncompleteRow(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.Upsert(ctx, row("u1", "c1", time.Unix(1700000000, 0))); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := st.Discard(ctx, "u1", "c1"); err != nil {
		t.Fatalf("discard: %v", err)
	}
	got, err := st.LatestIncomplete(ctx, "u1")
	if err != nil || got != nil {
		t.Fatalf("expected no row, got %+v (%v)", got, err)
	}
}

func TestListCyclesFilter(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)
	for i, id := range []string{"c1", "c2", "c3"} {
		if err := st.Upsert(ctx, row("u1", id, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	st.now = func() time.Time { return base.Add(time.Hour) }
	if err := st.MarkCompleted(ctx, "u1", "c1"); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	done := true
	rows, err := st.ListCycles(ctx, model.CycleFilter{UserID: "u1", Completed: &done})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].CycleID != "c1" || !rows[0].IsCompleted {
		t.Fatalf("unexpected completed rows: %+v", rows)
	}

	rows, err = st.ListCycles(ctx, model.CycleFilter{UserID: "u1", Last: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 || rows[0].CycleID != "c1" || rows[1].CycleID != "c3" {
		t.Fatalf("unexpected newest rows: %+v", rows)
	}
}

func TestLocalMedals(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	n, err := st.LocalMedals(ctx)
	if err != nil || n != 0 {
		t.Fatalf("expected 0 medals, got %d (%v)", n, err)
	}
	for i := 0; i < 3; i++ {
		if err := st.IncrementLocalMedals(ctx); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	n, err = st.LocalMedals(ctx)
	if err != nil || n != 3 {
		t.Fatalf("expected 3 medals, got %d (%v)", n, err)
	}
}

func TestTokenFile(t *testing.T) {
	slot := NewTokenFile(filepath.Join(t.TempDir(), "nested", "token"))
	token, err := slot.Read()
	if err != nil || token != "" {
		t.Fatalf("expected empty slot, got %q (%v)", token, err)
	}
	if err := slot.Write("abc_-123"); err != nil {
		t.Fatalf("write: %v", err)
	}
	token, err = slot.Read()
	if err != nil || token != "abc_-123" {
		t.Fatalf("unexpected token %q (%v)", token, err)
	}
	if err := slot.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := slot.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	token, err = slot.Read()
	if err != nil || token != "" {
		t.Fatalf("expected empty slot after clear, got %q (%v)", token, err)
	}
}
