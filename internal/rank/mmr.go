package rank

import "math"

// MMRForRank returns the band midpoint for a canonical tier name, or 0 when the name
// is not on the ladder.
func MMRForRank(name string) int {
	t, ok := ByName(name)
	if !ok {
		return 0
	}
	return t.BaseMMR
}

// ForMMR is total: negative input resolves to the lowest tier and anything past the
// last bounded band resolves to the open top tier.
func ForMMR(mmr int) Tier {
	if mmr < 0 {
		return Lowest()
	}
	idx := mmr / bandWidth
	if idx >= len(Ladder) {
		idx = len(Ladder) - 1
	}
	return Ladder[idx]
}

func RankForMMR(mmr int) string {
	return ForMMR(mmr).Name
}

// CapPlacement clamps an MMR derived from account linking rather than ranked match
// history.
func CapPlacement(mmr int) int {
	if mmr > PlacementCap {
		return PlacementCap
	}
	if mmr < 0 {
		return 0
	}
	return mmr
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
