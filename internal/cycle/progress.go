package cycle

import (
	"github.com/verte-zerg/cleanse369/internal/catalog"
)

// EarlyFinishRatio is the completion ratio above which a cycle may be
// finished without confirmation.
const EarlyFinishRatio = 0.80

// DayTally counts tasks for one program day.
type DayTally struct {
	Day   int
	Phase string
	Total int
	Done  int
}

// CountTasks walks every identity the program defines for this cycle.
// Checked identities that the program does not define are not counted.
func CountTasks(s *State) (total, done int) {
	for _, t := range DayTallies(s) {
		total += t.Total
		done += t.Done
	}
	return total, done
}

// DayTallies returns per-day counts in day order.
func DayTallies(s *State) []DayTally {
	if s == nil {
		return nil
	}
	p, ok := catalog.Lookup(s.ProgramKey)
	if !ok {
		return nil
	}
	tallies := make([]DayTally, 0, catalog.LastDay)
	for _, ph := range p.Phases {
		for _, day := range ph.Days() {
			t := DayTally{Day: day, Phase: ph.Key}
			for si, section := range ph.Sections {
				for ii := range section.Items {
					t.Total++
					if s.Done(Identity(s.ID, day, si, ii)) {
						t.Done++
					}
				}
			}
			tallies = append(tallies, t)
		}
	}
	return tallies
}

// CompletionRatio is done/total, or 0 for an empty program.
func CompletionRatio(s *State) float64 {
	total, done := CountTasks(s)
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}

// IsComplete reports whether every task of the program is checked.
func IsComplete(s *State) bool {
	total, done := CountTasks(s)
	return total > 0 && done == total
}

// CanFinish applies the finish rule: complete cycles and cycles at or above
// EarlyFinishRatio finish directly, anything below needs force.
func CanFinish(s *State, force bool) (bool, float64) {
	ratio := CompletionRatio(s)
	if IsComplete(s) || ratio >= EarlyFinishRatio {
		return true, ratio
	}
	return force, ratio
}

// Percent rounds a ratio to a whole percentage.
func Percent(ratio float64) int {
	return int(ratio*100 + 0.5)
}
