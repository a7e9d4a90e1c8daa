package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValorantTierID(t *testing.T) {
	tests := map[string]int{
		"Iron 1":     3,
		"Iron 3":     5,
		"Gold 2":     13,
		"Diamond 1":  18,
		"Immortal 3": 26,
		"Radiant":    27,
		"Unrated":    0,
		"":           0,
		"ascendant":  21,
	}
	for name, want := range tests {
		assert.Equal(t, want, ValorantTierID(name), name)
	}
}

func TestBridgeMMR(t *testing.T) {
	tests := []struct {
		name string
		id   int
		tier string
		elo  int
		want int
	}{
		{"bottom of band", 13, "", 0, 1000},
		{"top of band", 13, "", 5000, 1099},
		{"interpolated", 13, "", 2500, 1050},
		{"elo clamped high", 24, "", 9000, 2299},
		{"elo clamped low", 24, "", -40, 2100},
		{"name when id missing", 0, "Gold 2", 1100, 1022},
		{"radiant", 27, "Radiant", 1000, 2880},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BridgeMMR(tt.id, tt.tier, tt.elo)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := BridgeMMR(0, "Unrated", 300)
	assert.False(t, ok)
}

func TestBridgePlacementIsCapped(t *testing.T) {
	got, ok := BridgePlacement(27, "Radiant", 5000)
	require.True(t, ok)
	assert.Equal(t, PlacementCap, got)

	got, ok = BridgePlacement(5, "Iron 3", 0)
	require.True(t, ok)
	assert.Equal(t, 200, got)
}

func TestPlacementSource(t *testing.T) {
	history := []HistoryPoint{
		{TierID: 0, TierName: "Unrated", ELO: 0},
		{TierID: 0, TierName: "Platinum 1", ELO: 1210},
		{TierID: 11, TierName: "Silver 3", ELO: 880},
	}

	src, ok := PlacementSource(14, "Gold 3", 1150, history)
	require.True(t, ok)
	assert.Equal(t, 14, src.TierID)
	assert.Equal(t, 1150, src.ELO)

	src, ok = PlacementSource(0, "Unrated", 0, history)
	require.True(t, ok)
	assert.Equal(t, 15, src.TierID)
	assert.Equal(t, 1210, src.ELO)

	_, ok = PlacementSource(0, "Unrated", 0, history[:1])
	assert.False(t, ok)
}
