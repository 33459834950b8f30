package stats

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/cleanse369/internal/cycle"
)

const (
	sparkChars = " .:-=+*#%@"
	medalGlyph = "🥇"
	// MaxMedals is how many medal glyphs are drawn before "+".
	MaxMedals = 12
)

var quotes = []string{
	"Artichoke contain phytochemicals that stop the growth of tumors and cysts",
	"Eat foods that love you back",
	"You deserve to heal. You deserve to be happy. You deserve to feel whole",
	"At times when you doubt yourself and things are difficult, think of nature",
	"Your heart serves as the compass for your actions, guiding you to do the right thing when your soul becomes lost",
	"Food is meant to be a joyful part of your life. Healthful eating isn’t meant to be an exercise in deprivation.",
	"Your body loves you",
	"Your body is fighting for you",
	"Rising out of the ashes",
}

// Sparkline renders ratios in [0,1] as one character per value.
func Sparkline(ratios []float64) string {
	if len(ratios) == 0 {
		return ""
	}
	var b strings.Builder
	for _, v := range ratios {
		idx := int(math.Round(v * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// DayRatios returns the completion ratio of every program day in order.
func DayRatios(tallies []cycle.DayTally) []float64 {
	out := make([]float64, len(tallies))
	for i, t := range tallies {
		if t.Total > 0 {
			out[i] = float64(t.Done) / float64(t.Total)
		}
	}
	return out
}

// Medals draws up to MaxMedals glyphs, then "+".
func Medals(count int) string {
	if count <= 0 {
		return ""
	}
	n := count
	if n > MaxMedals {
		n = MaxMedals
	}
	out := strings.Repeat(medalGlyph, n)
	if count > MaxMedals {
		out += " +"
	}
	return out
}

// QuoteOfDay picks the same quote for the whole calendar day.
func QuoteOfDay(now time.Time) string {
	seed := now.Year()*1000 + now.YearDay()
	return quotes[seed%len(quotes)]
}

// FormatDay renders a calendar date like "Mon, Jan 02".
func FormatDay(t time.Time) string {
	return t.Format("Mon, Jan 02")
}

// StatusLine summarizes where the cycle stands on now, e.g.
// "Day 4 · Phase 4–6 · Thu, Jan 04".
func StatusLine(s *cycle.State, now time.Time) (string, error) {
	day, phase, err := s.Today(now)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Day %d · Phase %s · %s", day, phase.Label(), FormatDay(s.DateForDay(day))), nil
}
