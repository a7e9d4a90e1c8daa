package database

import (
	"context"
	"database/sql"
	"errors"
	"ladder-tracker/internal/config"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "ladder.db")}
	db, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewRunsMigrations(t *testing.T) {
	db := openTemp(t)

	for _, table := range []string{"players", "rank_states", "rank_history", "matches", "match_players"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestRankHistoryIsAppendOnly(t *testing.T) {
	db := openTemp(t)
	now := time.Now()

	_, err := db.Exec(`INSERT INTO players (id, created_at, updated_at) VALUES ('p1', ?, ?)`, now, now)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO rank_history (id, player_id, game, old_rank, new_rank, old_mmr, new_mmr, reason, created_at)
		VALUES ('h1', 'p1', 'valorant', 'GRNDS I', 'GRNDS II', 100, 300, 'match', ?)`, now)
	require.NoError(t, err)

	_, err = db.Exec(`UPDATE rank_history SET new_mmr = 0 WHERE id = 'h1'`)
	assert.ErrorContains(t, err, "append-only")

	_, err = db.Exec(`DELETE FROM rank_history WHERE id = 'h1'`)
	assert.ErrorContains(t, err, "append-only")

	_, err = db.Exec(`DELETE FROM players WHERE id = 'p1'`)
	assert.Error(t, err, "a player with history cannot be removed")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM rank_history WHERE player_id = 'p1'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestForeignKeysEnforced(t *testing.T) {
	db := openTemp(t)

	_, err := db.Exec(`INSERT INTO rank_states (player_id, game, rank, rank_value, mmr, peak_mmr, updated_at)
		VALUES ('ghost', 'rivals', 'GRNDS I', 1, 100, 100, ?)`, time.Now())
	assert.Error(t, err)
}

func TestInTxRollsBackOnError(t *testing.T) {
	db := openTemp(t)
	boom := errors.New("boom")

	err := InTx(context.Background(), db, zerolog.Nop(), func(tx *sql.Tx) error {
		now := time.Now()
		if _, err := tx.Exec(`INSERT INTO players (id, created_at, updated_at) VALUES ('p1', ?, ?)`, now, now); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM players`).Scan(&n))
	assert.Zero(t, n)
}

func TestInTxRetriesBusy(t *testing.T) {
	db := openTemp(t)

	attempts := 0
	err := InTx(context.Background(), db, zerolog.Nop(), func(tx *sql.Tx) error {
		attempts++
		if attempts == 1 {
			return sqlite3.Error{Code: sqlite3.ErrBusy}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestInTxDoesNotRetryOtherErrors(t *testing.T) {
	db := openTemp(t)
	boom := errors.New("boom")

	attempts := 0
	err := InTx(context.Background(), db, zerolog.Nop(), func(tx *sql.Tx) error {
		attempts++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}

func TestIsBusy(t *testing.T) {
	assert.True(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrLocked}))
	assert.True(t, IsBusy(errors.Join(errors.New("wrapped"), sqlite3.Error{Code: sqlite3.ErrBusy})))
	assert.False(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.False(t, IsBusy(nil))
}
