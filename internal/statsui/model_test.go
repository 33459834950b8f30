package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/cleanse369/internal/cycle"
	"github.com/verte-zerg/cleanse369/internal/model"
)

type fakeLister struct {
	rows []model.CycleRow
	err  error
	last model.CycleFilter
}

func (f *fakeLister) ListCycles(_ context.Context, filter model.CycleFilter) ([]model.CycleRow, error) {
	f.last = filter
	if f.err != nil {
		return nil, f.err
	}
	var out []model.CycleRow
	for _, r := range f.rows {
		if filter.Completed != nil && r.IsCompleted != *filter.Completed {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func sampleLister() *fakeLister {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &fakeLister{rows: []model.CycleRow{
		{
			UserID:      "u1",
			CycleID:     "original|2024-01-01",
			ProgramKey:  "original",
			StartISO:    "2024-01-01",
			Checks:      map[string]bool{cycle.Identity("original|2024-01-01", 1, 0, 0): true},
			IsCompleted: true,
			UpdatedAt:   base,
		},
		{
			UserID:     "u1",
			CycleID:    "advanced|2024-02-01",
			ProgramKey: "advanced",
			StartISO:   "2024-02-01",
			Checks:     map[string]bool{},
			UpdatedAt:  base.Add(-time.Hour),
		},
	}}
}

func newSizedModel(t *testing.T, l *fakeLister) *Model {
	t.Helper()
	m := NewModel(context.Background(), l, model.CycleFilter{UserID: "u1"})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowserListsCycles(t *testing.T) {
	m := newSizedModel(t, sampleLister())
	view := m.View()
	for _, want := range []string{"Cycles", "Original 369", "Advanced 369", "finished", "in progress", "User: u1"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	e, ok := m.Selected()
	if !ok || e.Row.ProgramKey != "original" {
		t.Fatalf("expected first cycle selected, got %+v", e.Row)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	e, ok = m.Selected()
	if !ok || e.Row.ProgramKey != "advanced" {
		t.Fatalf("expected second cycle selected, got %+v", e.Row)
	}
}

func TestBrowserShowsDaysOfSelection(t *testing.T) {
	m := newSizedModel(t, sampleLister())
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.activeTab != tabDays {
		t.Fatalf("expected days tab, got %d", m.activeTab)
	}
	view := m.View()
	for _, want := range []string{"Original 369 (started 2024-01-01)", "Day", "Phase", "1/"} {
		if !strings.Contains(view, want) {
			t.Fatalf("days view missing %q:\n%s", want, view)
		}
	}
}

func TestBrowserProgramFilter(t *testing.T) {
	l := sampleLister()
	m := newSizedModel(t, l)
	m.Update(keyRunes("/"))
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.Update(keyRunes("advanced"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter applied, got error %q", m.filterError)
	}
	if len(m.entries) != 1 || m.entries[0].Row.ProgramKey != "advanced" {
		t.Fatalf("unexpected entries: %+v", m.entries)
	}
	if !strings.Contains(m.View(), "program=advanced") {
		t.Fatalf("filter summary not updated:\n%s", m.View())
	}
}

func TestBrowserFinishedOnlyFilter(t *testing.T) {
	l := sampleLister()
	m := newSizedModel(t, l)
	m.Update(keyRunes("/"))
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(keyRunes("y"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if l.last.Completed == nil || !*l.last.Completed {
		t.Fatalf("expected completed filter passed to lister, got %+v", l.last)
	}
	if len(m.entries) != 1 || !m.entries[0].Row.IsCompleted {
		t.Fatalf("unexpected entries: %+v", m.entries)
	}
}

func TestBrowserRejectsUnknownProgram(t *testing.T) {
	m := newSizedModel(t, sampleLister())
	m.Update(keyRunes("/"))
	m.Update(keyRunes("juice"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode {
		t.Fatalf("expected to stay in filter mode")
	}
	if !strings.Contains(m.filterError, "unknown program") {
		t.Fatalf("unexpected filter error %q", m.filterError)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterMode || len(m.entries) != 2 {
		t.Fatalf("esc should keep the previous listing")
	}
}

func TestBrowserLoadError(t *testing.T) {
	m := newSizedModel(t, &fakeLister{err: errors.New("db locked")})
	view := m.View()
	if !strings.Contains(view, "No cycles found.") || !strings.Contains(view, "db locked") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestQuitKey(t *testing.T) {
	m := newSizedModel(t, sampleLister())
	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestFitLines(t *testing.T) {
	got := fitLines("ab\ncd\nef", 3, 2)
	if got != "ab \ncd " {
		t.Fatalf("unexpected fit: %q", got)
	}
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncate: %q", got)
	}
}
