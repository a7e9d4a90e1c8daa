package db

import (
	"context"
	"database/sql"
	"time"
)

const createMatch = `-- name: CreateMatch :exec
INSERT INTO matches (id, game, status, winner, created_at, reported_at)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreateMatchParams struct {
	ID         string
	Game       string
	Status     string
	Winner     string
	CreatedAt  time.Time
	ReportedAt sql.NullTime
}

func (q *Queries) CreateMatch(ctx context.Context, arg CreateMatchParams) error {
	_, err := q.db.ExecContext(ctx, createMatch,
		arg.ID,
		arg.Game,
		arg.Status,
		arg.Winner,
		arg.CreatedAt,
		arg.ReportedAt,
	)
	return err
}

const getMatch = `-- name: GetMatch :one
SELECT id, game, status, winner, created_at, reported_at
FROM matches
WHERE id = ?
`

func (q *Queries) GetMatch(ctx context.Context, id string) (Match, error) {
	row := q.db.QueryRowContext(ctx, getMatch, id)
	var i Match
	err := row.Scan(
		&i.ID,
		&i.Game,
		&i.Status,
		&i.Winner,
		&i.CreatedAt,
		&i.ReportedAt,
	)
	return i, err
}

const completeMatch = `-- name: CompleteMatch :execrows
UPDATE matches
SET status = 'completed', winner = ?, reported_at = ?
WHERE id = ? AND status = 'pending'
`

type CompleteMatchParams struct {
	Winner     string
	ReportedAt sql.NullTime
	ID         string
}

func (q *Queries) CompleteMatch(ctx context.Context, arg CompleteMatchParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, completeMatch, arg.Winner, arg.ReportedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listRecentMatches = `-- name: ListRecentMatches :many
SELECT id, game, status, winner, created_at, reported_at
FROM matches
ORDER BY created_at DESC, id
LIMIT ?
`

func (q *Queries) ListRecentMatches(ctx context.Context, limit int64) ([]Match, error) {
	rows, err := q.db.QueryContext(ctx, listRecentMatches, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Match
	for rows.Next() {
		var i Match
		if err := rows.Scan(
			&i.ID,
			&i.Game,
			&i.Status,
			&i.Winner,
			&i.CreatedAt,
			&i.ReportedAt,
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

const upsertMatchPlayer = `-- name: UpsertMatchPlayer :exec
INSERT INTO match_players (match_id, player_id, side, position, kills, deaths, assists, mvp, delta)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (match_id, player_id) DO UPDATE SET
    side     = excluded.side,
    position = excluded.position,
    kills    = excluded.kills,
    deaths   = excluded.deaths,
    assists  = excluded.assists,
    mvp      = excluded.mvp,
    delta    = excluded.delta
`

type UpsertMatchPlayerParams struct {
	MatchID  string
	PlayerID string
	Side     string
	Position int64
	Kills    int64
	Deaths   int64
	Assists  int64
	Mvp      bool
	Delta    sql.NullInt64
}

func (q *Queries) UpsertMatchPlayer(ctx context.Context, arg UpsertMatchPlayerParams) error {
	_, err := q.db.ExecContext(ctx, upsertMatchPlayer,
		arg.MatchID,
		arg.PlayerID,
		arg.Side,
		arg.Position,
		arg.Kills,
		arg.Deaths,
		arg.Assists,
		arg.Mvp,
		arg.Delta,
	)
	return err
}

const listMatchPlayers = `-- name: ListMatchPlayers :many
SELECT match_id, player_id, side, position, kills, deaths, assists, mvp, delta
FROM match_players
WHERE match_id = ?
ORDER BY side, position
`

func (q *Queries) ListMatchPlayers(ctx context.Context, matchID string) ([]MatchPlayer, error) {
	rows, err := q.db.QueryContext(ctx, listMatchPlayers, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MatchPlayer
	for rows.Next() {
		var i MatchPlayer
		if err := rows.Scan(
			&i.MatchID,
			&i.PlayerID,
			&i.Side,
			&i.Position,
			&i.Kills,
			&i.Deaths,
			&i.Assists,
			&i.Mvp,
			&i.Delta,
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
