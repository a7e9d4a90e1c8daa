package db

import (
	"context"
	"database/sql"
	"time"
)

const getRankState = `-- name: GetRankState :one
SELECT player_id, game, rank, rank_value, mmr, peak_mmr, placed, updated_at
FROM rank_states
WHERE player_id = ? AND game = ?
`

type GetRankStateParams struct {
	PlayerID string
	Game     string
}

func (q *Queries) GetRankState(ctx context.Context, arg GetRankStateParams) (RankState, error) {
	row := q.db.QueryRowContext(ctx, getRankState, arg.PlayerID, arg.Game)
	var i RankState
	err := row.Scan(
		&i.PlayerID,
		&i.Game,
		&i.Rank,
		&i.RankValue,
		&i.Mmr,
		&i.PeakMmr,
		&i.Placed,
		&i.UpdatedAt,
	)
	return i, err
}

const listRankStates = `-- name: ListRankStates :many
SELECT player_id, game, rank, rank_value, mmr, peak_mmr, placed, updated_at
FROM rank_states
WHERE player_id = ?
ORDER BY game
`

func (q *Queries) ListRankStates(ctx context.Context, playerID string) ([]RankState, error) {
	rows, err := q.db.QueryContext(ctx, listRankStates, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RankState
	for rows.Next() {
		var i RankState
		if err := rows.Scan(
			&i.PlayerID,
			&i.Game,
			&i.Rank,
			&i.RankValue,
			&i.Mmr,
			&i.PeakMmr,
			&i.Placed,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertRankState = `-- name: UpsertRankState :exec
INSERT INTO rank_states (player_id, game, rank, rank_value, mmr, peak_mmr, placed, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (player_id, game) DO UPDATE SET
    rank       = excluded.rank,
    rank_value = excluded.rank_value,
    mmr        = excluded.mmr,
    peak_mmr   = excluded.peak_mmr,
    placed     = excluded.placed,
    updated_at = excluded.updated_at
`

type UpsertRankStateParams struct {
	PlayerID  string
	Game      string
	Rank      string
	RankValue int64
	Mmr       int64
	PeakMmr   int64
	Placed    bool
	UpdatedAt time.Time
}

func (q *Queries) UpsertRankState(ctx context.Context, arg UpsertRankStateParams) error {
	_, err := q.db.ExecContext(ctx, upsertRankState,
		arg.PlayerID,
		arg.Game,
		arg.Rank,
		arg.RankValue,
		arg.Mmr,
		arg.PeakMmr,
		arg.Placed,
		arg.UpdatedAt,
	)
	return err
}

const resetRankStatePeak = `-- name: ResetRankStatePeak :execrows
UPDATE rank_states
SET peak_mmr = mmr, updated_at = ?
WHERE player_id = ? AND game = ?
`

type ResetRankStatePeakParams struct {
	UpdatedAt time.Time
	PlayerID  string
	Game      string
}

func (q *Queries) ResetRankStatePeak(ctx context.Context, arg ResetRankStatePeakParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, resetRankStatePeak, arg.UpdatedAt, arg.PlayerID, arg.Game)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const insertRankHistory = `-- name: InsertRankHistory :exec
INSERT INTO rank_history (id, player_id, game, old_rank, new_rank, old_mmr, new_mmr, reason, match_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertRankHistoryParams struct {
	ID        string
	PlayerID  string
	Game      string
	OldRank   string
	NewRank   string
	OldMmr    int64
	NewMmr    int64
	Reason    string
	MatchID   sql.NullString
	CreatedAt time.Time
}

func (q *Queries) InsertRankHistory(ctx context.Context, arg InsertRankHistoryParams) error {
	_, err := q.db.ExecContext(ctx, insertRankHistory,
		arg.ID,
		arg.PlayerID,
		arg.Game,
		arg.OldRank,
		arg.NewRank,
		arg.OldMmr,
		arg.NewMmr,
		arg.Reason,
		arg.MatchID,
		arg.CreatedAt,
	)
	return err
}

const listRankHistory = `-- name: ListRankHistory :many
SELECT id, player_id, game, old_rank, new_rank, old_mmr, new_mmr, reason, match_id, created_at
FROM rank_history
WHERE player_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT ?
`

type ListRankHistoryParams struct {
	PlayerID string
	Limit    int64
}

func (q *Queries) ListRankHistory(ctx context.Context, arg ListRankHistoryParams) ([]RankHistory, error) {
	rows, err := q.db.QueryContext(ctx, listRankHistory, arg.PlayerID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RankHistory
	for rows.Next() {
		var i RankHistory
		if err := rows.Scan(
			&i.ID,
			&i.PlayerID,
			&i.Game,
			&i.OldRank,
			&i.NewRank,
			&i.OldMmr,
			&i.NewMmr,
			&i.Reason,
			&i.MatchID,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
