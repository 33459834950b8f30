// Package cycle models one cleanse attempt and the arithmetic around it.
package cycle

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/verte-zerg/cleanse369/internal/catalog"
)

// DateLayout is the on-wire form of a start date.
const DateLayout = "2006-01-02"

// InvalidProgramError reports a program key missing from the catalog.
type InvalidProgramError struct {
	Key string
}

func (e *InvalidProgramError) Error() string {
	return fmt.Sprintf("unknown program %q (available: %v)", e.Key, catalog.Keys())
}

// ConfigurationError reports a program whose phases do not cover every day.
type ConfigurationError struct {
	Program string
	Day     int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("program %q has no phase for day %d", e.Program, e.Day)
}

// ErrUnknownItem is returned for checklist coordinates outside the program.
var ErrUnknownItem = errors.New("no such checklist item")

// State is one in-progress cycle. Completed holds only checked identities.
type State struct {
	ProgramKey string
	StartDate  time.Time
	ID         string
	Completed  map[string]struct{}
}

// New starts an empty cycle for the program on the given date.
func New(programKey string, start time.Time) (*State, error) {
	if _, ok := catalog.Lookup(programKey); !ok {
		return nil, &InvalidProgramError{Key: programKey}
	}
	start = DateOf(start)
	return &State{
		ProgramKey: programKey,
		StartDate:  start,
		ID:         ID(programKey, start),
		Completed:  map[string]struct{}{},
	}, nil
}

// ID derives the composite cycle identity, so restarting the same
// program on the same date resumes the same cycle.
func ID(programKey string, start time.Time) string {
	return programKey + "|" + FormatDate(start)
}

// DateOf drops the clock and zone, keeping the calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// StartISO is the start date in wire form.
func (s *State) StartISO() string {
	return FormatDate(s.StartDate)
}

// Program returns the catalog entry for the cycle.
func (s *State) Program() (catalog.Program, error) {
	p, ok := catalog.Lookup(s.ProgramKey)
	if !ok {
		return catalog.Program{}, &InvalidProgramError{Key: s.ProgramKey}
	}
	return p, nil
}

// Done reports whether the identity is checked.
func (s *State) Done(identity string) bool {
	_, ok := s.Completed[identity]
	return ok
}

// Set marks or clears an identity and reports whether anything changed.
func (s *State) Set(identity string, done bool) bool {
	if s.Completed == nil {
		s.Completed = map[string]struct{}{}
	}
	_, present := s.Completed[identity]
	switch {
	case done && !present:
		s.Completed[identity] = struct{}{}
		return true
	case !done && present:
		delete(s.Completed, identity)
		return true
	default:
		return false
	}
}

// Checks returns the checked identities in sorted order.
func (s *State) Checks() []string {
	out := make([]string, 0, len(s.Completed))
	for id := range s.Completed {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Completed = make(map[string]struct{}, len(s.Completed))
	for id := range s.Completed {
		c.Completed[id] = struct{}{}
	}
	return &c
}

// DateForDay returns the calendar date of a program day.
func (s *State) DateForDay(day int) time.Time {
	return s.StartDate.AddDate(0, 0, day-1)
}
