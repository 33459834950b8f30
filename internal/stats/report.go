package stats

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/cleanse369/internal/catalog"
	"github.com/verte-zerg/cleanse369/internal/cycle"
	"github.com/verte-zerg/cleanse369/internal/model"
)

// RenderStatus prints the home view of a cycle: where it stands today,
// overall progress, one row per day, medals and the quote of the day.
// s may be nil when no cycle is running.
func RenderStatus(w io.Writer, s *cycle.State, medals int, now time.Time, useColor bool) error {
	if s == nil {
		if _, err := fmt.Fprintln(w, "No active cycle. Start one with `cleanse begin`."); err != nil {
			return err
		}
		return renderFooter(w, medals, now)
	}
	p, err := s.Program()
	if err != nil {
		return err
	}
	line, lineErr := StatusLine(s, now)
	if _, err := fmt.Fprintf(w, "%s (started %s)\n", p.Label, s.StartISO()); err != nil {
		return err
	}
	if line != "" {
		if _, err := fmt.Fprintf(w, "Today: %s\n", line); err != nil {
			return err
		}
	}
	total, done := cycle.CountTasks(s)
	pct := cycle.Percent(cycle.CompletionRatio(s))
	if _, err := fmt.Fprintf(w, "Overall progress: %d%% (%d/%d)\n\n", pct, done, total); err != nil {
		return err
	}

	if err := RenderTallies(w, s, cycle.DayIndex(s.StartDate, now), useColor); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\nDaily completion: [%s]\n", Sparkline(DayRatios(cycle.DayTallies(s)))); err != nil {
		return err
	}
	if err := renderFooter(w, medals, now); err != nil {
		return err
	}
	return lineErr
}

// RenderTallies prints one row per program day with its date, phase and
// done count. today is marked; 0 marks nothing.
func RenderTallies(w io.Writer, s *cycle.State, today int, useColor bool) error {
	tallies := cycle.DayTallies(s)
	rows := make([][]string, 0, len(tallies))
	for _, t := range tallies {
		marker := ""
		if t.Day == today {
			marker = "◀"
		}
		rows = append(rows, []string{
			strconv.Itoa(t.Day),
			FormatDay(s.DateForDay(t.Day)),
			catalog.Phase{Key: t.Phase}.Label(),
			fmt.Sprintf("%d/%d", t.Done, t.Total),
			marker,
		})
	}
	lines := formatTable([]string{"Day", "Date", "Phase", "Done", ""}, rows, map[int]bool{0: true, 3: true})
	for i, l := range lines {
		code := ""
		if i > 0 {
			t := tallies[i-1]
			switch {
			case t.Total > 0 && t.Done == t.Total:
				code = colorGreen
			case t.Day == today:
				code = colorYellow
			}
		}
		if _, err := fmt.Fprintln(w, colorize(l, code, useColor)); err != nil {
			return err
		}
	}
	return nil
}

// RenderDay prints the numbered checklist of one program day. Section and
// item numbers start at 1.
func RenderDay(w io.Writer, s *cycle.State, day int) error {
	if day < catalog.FirstDay || day > catalog.LastDay {
		return fmt.Errorf("day %d out of range %d-%d", day, catalog.FirstDay, catalog.LastDay)
	}
	p, err := s.Program()
	if err != nil {
		return err
	}
	key, err := cycle.PhaseForDay(p, day)
	if err != nil {
		return err
	}
	ph, _ := p.Phase(key)
	if _, err := fmt.Fprintf(w, "Day %d · Phase %s · %s\n", day, ph.Label(), FormatDay(s.DateForDay(day))); err != nil {
		return err
	}
	for si, section := range ph.Sections {
		if _, err := fmt.Fprintf(w, "\n%d. %s\n", si+1, section.Name); err != nil {
			return err
		}
		for ii, text := range section.Items {
			mark := "[ ]"
			if s.Done(cycle.Identity(s.ID, day, si, ii)) {
				mark = "[x]"
			}
			if _, err := fmt.Fprintf(w, "   %d.%d %s %s\n", si+1, ii+1, mark, text); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderFooter(w io.Writer, medals int, now time.Time) error {
	if medals == 0 {
		if _, err := fmt.Fprintln(w, "\nMedals: none yet. You got this!"); err != nil {
			return err
		}
	} else if _, err := fmt.Fprintf(w, "\nMedals: %s (%d completed)\n", Medals(medals), medals); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "“%s”\n", QuoteOfDay(now))
	return err
}

// HistoryEntry is one stored cycle with its computed progress.
type HistoryEntry struct {
	Row     model.CycleRow
	Label   string
	Done    int
	Total   int
	Percent int
	// State is the rebuilt cycle, nil when the row no longer parses.
	State *cycle.State
}

// CycleLister lists stored cycles.
type CycleLister interface {
	ListCycles(ctx context.Context, f model.CycleFilter) ([]model.CycleRow, error)
}

// BuildHistory loads the user's cycles and computes progress for each.
// Rows whose program is no longer in the catalog are reported with zero
// totals.
func BuildHistory(ctx context.Context, st CycleLister, f model.CycleFilter) ([]HistoryEntry, error) {
	rows, err := st.ListCycles(ctx, f)
	if err != nil {
		return nil, err
	}
	entries := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		e := HistoryEntry{Row: r, Label: r.ProgramKey}
		start, err := cycle.ParseDate(r.StartISO)
		if err == nil {
			if s, err := cycle.New(r.ProgramKey, start); err == nil {
				for id, done := range r.Checks {
					s.Set(id, done)
				}
				p, _ := s.Program()
				e.Label = p.Label
				e.Total, e.Done = cycle.CountTasks(s)
				e.Percent = cycle.Percent(cycle.CompletionRatio(s))
				e.State = s
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// RenderHistory prints a table of stored cycles, newest first.
func RenderHistory(w io.Writer, entries []HistoryEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No cycles found.")
		return err
	}
	rows := make([][]string, 0, len(entries))
	completed := 0
	for _, e := range entries {
		status := "in progress"
		if e.Row.IsCompleted {
			status = "finished"
			completed++
		}
		rows = append(rows, []string{
			e.Label,
			e.Row.StartISO,
			fmt.Sprintf("%d%%", e.Percent),
			fmt.Sprintf("%d/%d", e.Done, e.Total),
			status,
			e.Row.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	for _, l := range formatTable([]string{"Program", "Start", "Progress", "Done", "Status", "Updated"}, rows, map[int]bool{2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(fmt.Sprintf("Finished cycles: %d %s", completed, Medals(completed))))
	return err
}
