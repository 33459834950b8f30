package cycle

import (
	"time"

	"github.com/verte-zerg/cleanse369/internal/catalog"
)

// DayIndex maps today onto a program day, clamped to 1..9. Days before the
// start are day 1 and the cycle never expires past day 9.
func DayIndex(start, today time.Time) int {
	days := int(DateOf(today).Sub(DateOf(start)).Hours()/24) + 1
	if days < catalog.FirstDay {
		return catalog.FirstDay
	}
	if days > catalog.LastDay {
		return catalog.LastDay
	}
	return days
}

// PhaseForDay returns the key of the phase containing day. When no phase
// covers it the last phase key is returned along with a ConfigurationError.
func PhaseForDay(p catalog.Program, day int) (string, error) {
	for _, ph := range p.Phases {
		for _, d := range ph.Days() {
			if d == day {
				return ph.Key, nil
			}
		}
	}
	last := ""
	if len(p.Phases) > 0 {
		last = p.Phases[len(p.Phases)-1].Key
	}
	return last, &ConfigurationError{Program: p.Key, Day: day}
}

// Today resolves the current day and phase of the cycle.
func (s *State) Today(now time.Time) (int, catalog.Phase, error) {
	p, err := s.Program()
	if err != nil {
		return 0, catalog.Phase{}, err
	}
	day := DayIndex(s.StartDate, now)
	key, err := PhaseForDay(p, day)
	ph, _ := p.Phase(key)
	return day, ph, err
}
