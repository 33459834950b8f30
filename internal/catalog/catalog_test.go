package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogValid(t *testing.T) {
	require.NoError(t, Validate())
	assert.Equal(t, []string{"original", "simplified", "advanced"}, Keys())
}

func TestPhasesPartitionDays(t *testing.T) {
	for _, p := range All() {
		covered := map[int]int{}
		for _, ph := range p.Phases {
			for _, d := range ph.Days() {
				covered[d]++
			}
		}
		for d := FirstDay; d <= LastDay; d++ {
			assert.Equalf(t, 1, covered[d], "program %s day %d", p.Key, d)
		}
		assert.Len(t, covered, LastDay)
	}
}

func TestDays(t *testing.T) {
	days, err := Days("4-6")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 6}, days)

	days, err = Days("9")
	require.NoError(t, err)
	assert.Equal(t, []int{9}, days)

	_, err = Days("x-3")
	assert.Error(t, err)
	_, err = Days("5-2")
	assert.Error(t, err)
}

func TestValidateRejectsGapsAndOverlaps(t *testing.T) {
	gap := Program{Key: "gap", Phases: []Phase{{Key: "1-3"}, {Key: "5-9"}}}
	assert.ErrorContains(t, gap.Validate(), "not covered")

	overlap := Program{Key: "overlap", Phases: []Phase{{Key: "1-5"}, {Key: "5-9"}}}
	assert.ErrorContains(t, overlap.Validate(), "covered by both")

	outside := Program{Key: "outside", Phases: []Phase{{Key: "1-10"}}}
	assert.ErrorContains(t, outside.Validate(), "outside")
}

func TestLabels(t *testing.T) {
	p, ok := Lookup("original")
	require.True(t, ok)
	assert.Equal(t, "Original 369", p.Label)
	assert.Equal(t, "Days 1–3", p.Phases[0].TabLabel())
	assert.Equal(t, "Day 9", p.Phases[3].TabLabel())
	assert.Equal(t, "7–8", p.Phases[2].Label())
	assert.Equal(t, 11, p.Phases[0].ItemCount())

	_, ok = Lookup("keto")
	assert.False(t, ok)
}
