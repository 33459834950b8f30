package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/cleanse369/internal/codec"
	"github.com/verte-zerg/cleanse369/internal/cycle"
	"github.com/verte-zerg/cleanse369/internal/session"
)

var fixedNow = time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, sess *session.Session) (*Model, *session.MemorySlot) {
	t.Helper()
	slot := session.NewMemorySlot("")
	coord := session.NewCoordinator(nil, slot, nil, session.WithClock(func() time.Time { return fixedNow }))
	return NewModel(context.Background(), coord, sess, nil), slot
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRenderFooterFormats(t *testing.T) {
	st, err := cycle.New("simplified", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("new cycle: %v", err)
	}
	st.Set(cycle.Identity(st.ID, 1, 0, 0), true)
	m, _ := newTestModel(t, &session.Session{UserID: "alice", Active: st, CompletedCycles: 2})

	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"Progress 1% (1/101)", "Medals 🥇🥇", "Signed in as alice"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterWithoutCycle(t *testing.T) {
	m, _ := newTestModel(t, &session.Session{})
	if strings.Contains(m.renderFooter(), "Progress") {
		t.Fatalf("unexpected progress without a cycle: %q", m.renderFooter())
	}
}

func TestModelBeginToggleFinish(t *testing.T) {
	sess := &session.Session{}
	m, slot := newTestModel(t, sess)

	m.Update(runes("j"))
	m.Update(runes("y"))
	if sess.Active == nil || sess.Active.ID != "simplified|2024-01-03" {
		t.Fatalf("expected simplified cycle started yesterday, got %+v", sess.Active)
	}
	if m.day != 2 {
		t.Fatalf("expected day 2 selected, got %d", m.day)
	}
	if slot.Token() == "" {
		t.Fatalf("expected token written after begin")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	id := cycle.Identity(sess.Active.ID, 2, 1, 0)
	if !sess.Active.Done(id) {
		t.Fatalf("expected %s checked", id)
	}
	decoded := codec.DecodeToken(slot.Token())
	if decoded == nil || !decoded.Done(id) {
		t.Fatalf("expected token to carry the check")
	}
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	if sess.Active.Done(id) {
		t.Fatalf("expected %s unchecked", id)
	}

	m.Update(runes("f"))
	if sess.Active == nil || !m.confirmFinish {
		t.Fatalf("expected confirmation request before an early finish")
	}
	if !strings.Contains(m.notice, "Only 0% done") {
		t.Fatalf("unexpected notice: %q", m.notice)
	}
	m.Update(runes("f"))
	if sess.Active != nil {
		t.Fatalf("expected cycle finished after confirmation")
	}
	if sess.CompletedCycles != 1 {
		t.Fatalf("expected one medal, got %d", sess.CompletedCycles)
	}
	if slot.Token() != "" {
		t.Fatalf("expected token cleared after finish")
	}
}

func TestModelConfirmationResetsOnOtherKeys(t *testing.T) {
	st, err := cycle.New("original", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("new cycle: %v", err)
	}
	sess := &session.Session{Active: st}
	m, _ := newTestModel(t, sess)

	m.Update(runes("S"))
	m.Update(runes("j"))
	m.Update(runes("S"))
	if sess.Active == nil {
		t.Fatalf("start over must need two consecutive presses")
	}
	m.Update(runes("S"))
	if sess.Active != nil {
		t.Fatalf("expected cycle discarded")
	}
	if sess.CompletedCycles != 0 {
		t.Fatalf("start over must not award a medal")
	}
}

func TestModelNavigation(t *testing.T) {
	st, err := cycle.New("original", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("new cycle: %v", err)
	}
	m, _ := newTestModel(t, &session.Session{Active: st})
	if m.day != 4 || m.phaseIdx != 1 {
		t.Fatalf("expected today (day 4, phase 1), got day %d phase %d", m.day, m.phaseIdx)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.day != 7 || m.phaseIdx != 2 {
		t.Fatalf("expected day 7 after tab, got day %d phase %d", m.day, m.phaseIdx)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.day != 9 || m.phaseIdx != 3 {
		t.Fatalf("expected day 9, got day %d phase %d", m.day, m.phaseIdx)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.day != 9 {
		t.Fatalf("day must stop at 9, got %d", m.day)
	}
	m.Update(runes("."))
	if m.day != 4 {
		t.Fatalf("expected jump back to today, got %d", m.day)
	}
	view := m.View()
	if !containsAll(view, []string{"Original 369", "Day 4 · Phase 4–6 · Thu, Jan 04", "Days 1–3", "Day 9"}) {
		t.Fatalf("view missing expected content:\n%s", view)
	}
}

func TestVisibleWindowFollowsCursor(t *testing.T) {
	lines := []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	got := visibleWindow(lines, 8, 4)
	if strings.Join(got, "") != "6789" {
		t.Fatalf("unexpected window: %v", got)
	}
	got = visibleWindow(lines, 1, 4)
	if strings.Join(got, "") != "0123" {
		t.Fatalf("unexpected window: %v", got)
	}
	if len(visibleWindow(lines, 0, 20)) != 10 {
		t.Fatalf("expected all lines when they fit")
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
