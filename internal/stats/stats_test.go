package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/cleanse369/internal/cycle"
)

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1, 0.5}); got != " @+" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
}

func TestDayRatios(t *testing.T) {
	got := DayRatios([]cycle.DayTally{{Day: 1, Total: 4, Done: 1}, {Day: 2}})
	if len(got) != 2 || got[0] != 0.25 || got[1] != 0 {
		t.Fatalf("unexpected ratios: %v", got)
	}
}

func TestMedals(t *testing.T) {
	if got := Medals(0); got != "" {
		t.Fatalf("expected no medals, got %q", got)
	}
	if got := Medals(3); got != "🥇🥇🥇" {
		t.Fatalf("unexpected medals: %q", got)
	}
	want := strings.Repeat("🥇", MaxMedals)
	if got := Medals(MaxMedals); got != want {
		t.Fatalf("unexpected medals at cap: %q", got)
	}
	if got := Medals(MaxMedals + 5); got != want+" +" {
		t.Fatalf("unexpected medals over cap: %q", got)
	}
}

func TestQuoteOfDayIsStableWithinADay(t *testing.T) {
	morning := time.Date(2024, 1, 4, 6, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 1, 4, 23, 0, 0, 0, time.UTC)
	if QuoteOfDay(morning) != QuoteOfDay(evening) {
		t.Fatalf("quote changed within a day")
	}
	if got := QuoteOfDay(morning); got != quotes[3] {
		t.Fatalf("unexpected quote for 2024004: %q", got)
	}
	if QuoteOfDay(morning) == QuoteOfDay(morning.AddDate(0, 0, 1)) {
		t.Fatalf("expected a different quote on the next day")
	}
}

func TestStatusLine(t *testing.T) {
	s, err := cycle.New("advanced", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("new cycle: %v", err)
	}
	got, err := StatusLine(s, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("status line: %v", err)
	}
	if got != "Day 9 · Phase 9 · Tue, Jan 09" {
		t.Fatalf("unexpected status line: %q", got)
	}
}
