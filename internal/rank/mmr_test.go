package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLadderShape(t *testing.T) {
	require.Len(t, Ladder, 16)
	for i, tier := range Ladder {
		assert.Equal(t, i+1, tier.TierValue, tier.Name)
		if i > 0 {
			assert.True(t, tier.Higher(Ladder[i-1]))
			assert.Equal(t, Ladder[i-1].MaxMMR()+1, tier.MinMMR(), "bands must be contiguous")
		}
	}
	assert.Equal(t, "GRNDS I", Lowest().Name)
	assert.Equal(t, "ABSOLUTE", Highest().Name)
	assert.Equal(t, -1, Highest().MaxMMR())
}

func TestRankForMMRTotalAndMonotonic(t *testing.T) {
	prev := 0
	for m := 0; m <= 10000; m++ {
		tier := ForMMR(m)
		_, ok := ByName(tier.Name)
		require.True(t, ok, "mmr %d gave off-ladder tier %q", m, tier.Name)
		require.GreaterOrEqual(t, tier.TierValue, prev, "mmr %d", m)
		prev = tier.TierValue
	}
}

func TestRankForMMR(t *testing.T) {
	tests := []struct {
		mmr  int
		want string
	}{
		{-50, "GRNDS I"},
		{0, "GRNDS I"},
		{199, "GRNDS I"},
		{200, "GRNDS II"},
		{900, "GRNDS V"},
		{1000, "BREAKPOINT I"},
		{2599, "CHALLENGER III"},
		{2999, "X"},
		{3000, "ABSOLUTE"},
		{99999, "ABSOLUTE"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RankForMMR(tt.mmr), "mmr %d", tt.mmr)
	}
}

func TestMMRForRank(t *testing.T) {
	for _, tier := range Ladder {
		m := MMRForRank(tier.Name)
		assert.GreaterOrEqual(t, m, 0)
		assert.Equal(t, tier.Name, RankForMMR(m), "midpoint must round-trip")
	}
	assert.Equal(t, 500, MMRForRank("grnds  iii"))
	assert.Equal(t, 0, MMRForRank("Radiant"))
}

func TestCapPlacement(t *testing.T) {
	assert.Equal(t, 900, PlacementCap)
	assert.Equal(t, "GRNDS V", RankForMMR(PlacementCap))
	assert.Equal(t, 900, CapPlacement(3100))
	assert.Equal(t, 450, CapPlacement(450))
	assert.Equal(t, 0, CapPlacement(-3))
}
