package cycle

import (
	"fmt"
	"strings"
	"time"
)

// Quick start choices.
const (
	StartYesterday = "yesterday"
	StartToday     = "today"
	StartTomorrow  = "tomorrow"
)

// ParseStart resolves a quick start choice or a YYYY-MM-DD date relative
// to now. An empty value means today.
func ParseStart(value string, now time.Time) (time.Time, error) {
	today := DateOf(now)
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", StartToday:
		return today, nil
	case StartYesterday:
		return today.AddDate(0, 0, -1), nil
	case StartTomorrow:
		return today.AddDate(0, 0, 1), nil
	}
	t, err := ParseDate(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start %q (use yesterday, today, tomorrow or YYYY-MM-DD)", value)
	}
	return t, nil
}
