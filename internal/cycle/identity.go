package cycle

import (
	"fmt"

	"github.com/verte-zerg/cleanse369/internal/catalog"
)

// Identity addresses one checkbox. Every day of a multi-day phase gets its
// own identity even though the task text repeats.
func Identity(cycleID string, day, sectionIndex, itemIndex int) string {
	return fmt.Sprintf("%s|d%d|s%d|i%d", cycleID, day, sectionIndex, itemIndex)
}

// ItemIdentity validates the coordinates against the program and returns the
// identity. Section and item indexes are zero-based.
func (s *State) ItemIdentity(day, sectionIndex, itemIndex int) (string, error) {
	p, err := s.Program()
	if err != nil {
		return "", err
	}
	if day < catalog.FirstDay || day > catalog.LastDay {
		return "", fmt.Errorf("day %d: %w", day, ErrUnknownItem)
	}
	key, err := PhaseForDay(p, day)
	if err != nil {
		return "", err
	}
	ph, _ := p.Phase(key)
	if sectionIndex < 0 || sectionIndex >= len(ph.Sections) {
		return "", fmt.Errorf("day %d section %d: %w", day, sectionIndex+1, ErrUnknownItem)
	}
	if itemIndex < 0 || itemIndex >= len(ph.Sections[sectionIndex].Items) {
		return "", fmt.Errorf("day %d section %d item %d: %w", day, sectionIndex+1, itemIndex+1, ErrUnknownItem)
	}
	return Identity(s.ID, day, sectionIndex, itemIndex), nil
}
