// Package catalog holds the immutable program definitions.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FirstDay and LastDay bound every program.
const (
	FirstDay = 1
	LastDay  = 9
)

// Section is a named, ordered group of tasks.
type Section struct {
	Name  string
	Items []string
}

// Phase covers one or more consecutive days sharing the same checklist.
type Phase struct {
	Key      string
	Sections []Section
}

// Program is a full 9-day regimen. Phases are kept in display order.
type Program struct {
	Key    string
	Label  string
	Phases []Phase
}

// Lookup returns the program with the given key.
func Lookup(key string) (Program, bool) {
	p, ok := programs[key]
	return p, ok
}

// Keys returns the catalog keys in menu order.
func Keys() []string {
	out := make([]string, len(programOrder))
	copy(out, programOrder)
	return out
}

// All returns the programs in menu order.
func All() []Program {
	out := make([]Program, 0, len(programOrder))
	for _, key := range programOrder {
		out = append(out, programs[key])
	}
	return out
}

// Days parses a phase key ("4-6" or "9") into the inclusive list of days it covers.
func Days(phaseKey string) ([]int, error) {
	first, last, err := bounds(phaseKey)
	if err != nil {
		return nil, err
	}
	days := make([]int, 0, last-first+1)
	for d := first; d <= last; d++ {
		days = append(days, d)
	}
	return days, nil
}

func bounds(phaseKey string) (int, int, error) {
	if a, b, ok := strings.Cut(phaseKey, "-"); ok {
		first, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid phase key %q: %w", phaseKey, err)
		}
		last, err := strconv.Atoi(strings.TrimSpace(b))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid phase key %q: %w", phaseKey, err)
		}
		if last < first {
			return 0, 0, fmt.Errorf("invalid phase key %q: empty range", phaseKey)
		}
		return first, last, nil
	}
	day, err := strconv.Atoi(strings.TrimSpace(phaseKey))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid phase key %q: %w", phaseKey, err)
	}
	return day, day, nil
}

// Days returns the days covered by the phase.
func (p Phase) Days() []int {
	days, err := Days(p.Key)
	if err != nil {
		return nil
	}
	return days
}

// ItemCount is the number of tasks on a single day of the phase.
func (p Phase) ItemCount() int {
	n := 0
	for _, s := range p.Sections {
		n += len(s.Items)
	}
	return n
}

// Label formats the phase key for display ("1–3").
func (p Phase) Label() string {
	return strings.ReplaceAll(p.Key, "-", "–")
}

// TabLabel formats the phase as a tab title ("Days 1–3" or "Day 9").
func (p Phase) TabLabel() string {
	if strings.Contains(p.Key, "-") {
		return "Days " + p.Label()
	}
	return "Day " + p.Key
}

// Phase returns the phase with the given key.
func (p Program) Phase(key string) (Phase, bool) {
	for _, ph := range p.Phases {
		if ph.Key == key {
			return ph, true
		}
	}
	return Phase{}, false
}

// Validate checks that the phases cover FirstDay..LastDay exactly once.
func (p Program) Validate() error {
	if len(p.Phases) == 0 {
		return fmt.Errorf("program %q has no phases", p.Key)
	}
	seen := map[int]string{}
	for _, ph := range p.Phases {
		days, err := Days(ph.Key)
		if err != nil {
			return fmt.Errorf("program %q: %w", p.Key, err)
		}
		for _, d := range days {
			if d < FirstDay || d > LastDay {
				return fmt.Errorf("program %q: phase %q covers day %d outside %d-%d", p.Key, ph.Key, d, FirstDay, LastDay)
			}
			if other, ok := seen[d]; ok {
				return fmt.Errorf("program %q: day %d covered by both %q and %q", p.Key, d, other, ph.Key)
			}
			seen[d] = ph.Key
		}
	}
	var missing []int
	for d := FirstDay; d <= LastDay; d++ {
		if _, ok := seen[d]; !ok {
			missing = append(missing, d)
		}
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		return fmt.Errorf("program %q: days %v not covered", p.Key, missing)
	}
	return nil
}

// Validate checks every catalog program.
func Validate() error {
	for _, p := range All() {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}
