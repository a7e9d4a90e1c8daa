package rank

import (
	"ladder-tracker/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func state(game domain.Game, value, mmr int) domain.PlayerRankState {
	t, _ := ByValue(value)
	return domain.PlayerRankState{
		PlayerID:  "p1",
		Game:      game,
		Rank:      t.Name,
		RankValue: value,
		MMR:       mmr,
		PeakMMR:   mmr,
	}
}

func TestReconcileHighest(t *testing.T) {
	val := state(domain.GameValorant, 6, 1100)
	riv := state(domain.GameRivals, 8, 1500)

	assert.Equal(t, riv, Reconcile(ModeHighest, domain.GameValorant, val, riv))
	assert.Equal(t, riv, Reconcile(ModeHighest, domain.GameValorant, riv, val))

	sameTierHigherMMR := state(domain.GameRivals, 6, 1150)
	assert.Equal(t, sameTierHigherMMR, Reconcile(ModeHighest, domain.GameValorant, val, sameTierHigherMMR))
}

func TestReconcileTieIsStable(t *testing.T) {
	a := state(domain.GameValorant, 6, 1100)
	b := state(domain.GameRivals, 6, 1100)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a, Reconcile(ModeHighest, domain.GameRivals, a, b))
	}
}

func TestReconcilePrimary(t *testing.T) {
	val := state(domain.GameValorant, 2, 300)
	riv := state(domain.GameRivals, 12, 2300)

	assert.Equal(t, val, Reconcile(ModePrimary, domain.GameValorant, val, riv))
	assert.Equal(t, val, Reconcile(ModePrimary, domain.GameValorant, riv, val))
	assert.Equal(t, riv, Reconcile(ModePrimary, domain.GameRivals, val, riv))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("primary")
	assert.NoError(t, err)
	assert.Equal(t, ModePrimary, m)

	_, err = ParseMode("lowest")
	assert.Error(t, err)
}
