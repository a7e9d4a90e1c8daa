package config

import (
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/rank"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HDEV_API_KEY", "key")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, rank.ModeHighest, cfg.RankMode)
	assert.Equal(t, domain.GameValorant, cfg.PrimaryGame)
	assert.Equal(t, 30, cfg.UpstreamRateLimit)
	assert.Equal(t, time.Minute, cfg.UpstreamRateWindow)
	assert.Equal(t, 6*time.Hour, cfg.RefreshInterval)
	assert.Empty(t, cfg.DiscordRankRoles)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("HDEV_API_KEY", "")
	_, err := Load(zerolog.Nop())
	assert.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("HDEV_API_KEY", "key")

	t.Setenv("RANK_MODE", "lowest")
	_, err := Load(zerolog.Nop())
	assert.Error(t, err)

	t.Setenv("RANK_MODE", "primary")
	t.Setenv("PRIMARY_GAME", "chess")
	_, err = Load(zerolog.Nop())
	assert.Error(t, err)

	t.Setenv("PRIMARY_GAME", "rivals")
	t.Setenv("VALORANT_REFRESH_INTERVAL", "daily")
	_, err = Load(zerolog.Nop())
	assert.Error(t, err)
}

func TestParseRoles(t *testing.T) {
	roles, err := parseRoles("grnds i=111, X=222")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"GRNDS I": "111", "X": "222"}, roles)

	_, err = parseRoles("Radiant=1")
	assert.Error(t, err)

	_, err = parseRoles("GRNDS I")
	assert.Error(t, err)
}
