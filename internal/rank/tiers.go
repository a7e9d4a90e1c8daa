// Package rank maps third-party rank data onto the community ladder.
//
// The ladder has 16 ordered tiers. TierValue alone decides which of two tiers is
// higher. Every tier owns a contiguous 200-point MMR band; the top tier is open-ended.
package rank

import "strings"

// LadderVersion identifies the tier table below. Version 1 had 15 tiers capped at X
// with a placement cap of 1499; version 2 adds ABSOLUTE above X and caps placement at
// the GRNDS V midpoint. Stored tier names from version 1 are still valid version 2 names
// except that CHALLENGER now has four divisions, so stored rows are re-derived from MMR.
const LadderVersion = 2

const (
	bandWidth = 200
	// PlacementCap is the midpoint of the fifth tier (GRNDS V).
	PlacementCap = 4*bandWidth + bandWidth/2
)

type Tier struct {
	Name      string
	TierValue int
	BaseMMR   int
}

// MinMMR is the inclusive lower bound of the tier's band.
func (t Tier) MinMMR() int {
	return (t.TierValue - 1) * bandWidth
}

// MaxMMR is the inclusive upper bound of the tier's band, -1 for the open top band.
func (t Tier) MaxMMR() int {
	if t.TierValue == len(Ladder) {
		return -1
	}
	return t.TierValue*bandWidth - 1
}

func (t Tier) Higher(o Tier) bool {
	return t.TierValue > o.TierValue
}

var Ladder = buildLadder([]string{
	"GRNDS I", "GRNDS II", "GRNDS III", "GRNDS IV", "GRNDS V",
	"BREAKPOINT I", "BREAKPOINT II", "BREAKPOINT III", "BREAKPOINT IV", "BREAKPOINT V",
	"CHALLENGER I", "CHALLENGER II", "CHALLENGER III", "CHALLENGER IV",
	"X",
	"ABSOLUTE",
})

func buildLadder(names []string) []Tier {
	tiers := make([]Tier, len(names))
	for i, name := range names {
		tiers[i] = Tier{
			Name:      name,
			TierValue: i + 1,
			BaseMMR:   i*bandWidth + bandWidth/2,
		}
	}
	return tiers
}

func Lowest() Tier {
	return Ladder[0]
}

func Highest() Tier {
	return Ladder[len(Ladder)-1]
}

// ByValue returns the tier for a 1-based tier value.
func ByValue(v int) (Tier, bool) {
	if v < 1 || v > len(Ladder) {
		return Tier{}, false
	}
	return Ladder[v-1], true
}

// ByName looks a tier up by its canonical name, ignoring case and surrounding space.
func ByName(name string) (Tier, bool) {
	name = strings.ToUpper(strings.Join(strings.Fields(name), " "))
	for _, t := range Ladder {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}
