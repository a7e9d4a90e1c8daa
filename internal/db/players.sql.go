package db

import (
	"context"
	"time"
)

const getPlayer = `-- name: GetPlayer :one
SELECT id, display_name, riot_name, riot_tag, riot_puuid, riot_region, riot_tier, riot_elo, rivals_name, discord_rank, discord_mmr, created_at, updated_at
FROM players
WHERE id = ?
`

func (q *Queries) GetPlayer(ctx context.Context, id string) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayer, id)
	var i Player
	err := row.Scan(
		&i.ID,
		&i.DisplayName,
		&i.RiotName,
		&i.RiotTag,
		&i.RiotPuuid,
		&i.RiotRegion,
		&i.RiotTier,
		&i.RiotElo,
		&i.RivalsName,
		&i.DiscordRank,
		&i.DiscordMmr,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertPlayer = `-- name: UpsertPlayer :exec
INSERT INTO players (id, display_name, riot_name, riot_tag, riot_puuid, riot_region, riot_tier, riot_elo, rivals_name, discord_rank, discord_mmr, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    display_name = excluded.display_name,
    riot_name    = excluded.riot_name,
    riot_tag     = excluded.riot_tag,
    riot_puuid   = excluded.riot_puuid,
    riot_region  = excluded.riot_region,
    riot_tier    = excluded.riot_tier,
    riot_elo     = excluded.riot_elo,
    rivals_name  = excluded.rivals_name,
    updated_at   = excluded.updated_at
`

type UpsertPlayerParams struct {
	ID          string
	DisplayName string
	RiotName    string
	RiotTag     string
	RiotPuuid   string
	RiotRegion  string
	RiotTier    string
	RiotElo     int64
	RivalsName  string
	DiscordRank string
	DiscordMmr  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpsertPlayer never overwrites the discord rank of an existing row; that is owned by
// UpdatePlayerDiscordRank.
func (q *Queries) UpsertPlayer(ctx context.Context, arg UpsertPlayerParams) error {
	_, err := q.db.ExecContext(ctx, upsertPlayer,
		arg.ID,
		arg.DisplayName,
		arg.RiotName,
		arg.RiotTag,
		arg.RiotPuuid,
		arg.RiotRegion,
		arg.RiotTier,
		arg.RiotElo,
		arg.RivalsName,
		arg.DiscordRank,
		arg.DiscordMmr,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const updatePlayerDiscordRank = `-- name: UpdatePlayerDiscordRank :exec
UPDATE players
SET discord_rank = ?, discord_mmr = ?, updated_at = ?
WHERE id = ?
`

type UpdatePlayerDiscordRankParams struct {
	DiscordRank string
	DiscordMmr  int64
	UpdatedAt   time.Time
	ID          string
}

func (q *Queries) UpdatePlayerDiscordRank(ctx context.Context, arg UpdatePlayerDiscordRankParams) error {
	_, err := q.db.ExecContext(ctx, updatePlayerDiscordRank,
		arg.DiscordRank,
		arg.DiscordMmr,
		arg.UpdatedAt,
		arg.ID,
	)
	return err
}

const listLeaderboard = `-- name: ListLeaderboard :many
SELECT id, display_name, riot_name, riot_tag, riot_puuid, riot_region, riot_tier, riot_elo, rivals_name, discord_rank, discord_mmr, created_at, updated_at
FROM players
WHERE discord_rank != ''
ORDER BY discord_mmr DESC, id ASC
LIMIT ?
`

func (q *Queries) ListLeaderboard(ctx context.Context, limit int64) ([]Player, error) {
	rows, err := q.db.QueryContext(ctx, listLeaderboard, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Player
	for rows.Next() {
		var i Player
		if err := rows.Scan(
			&i.ID,
			&i.DisplayName,
			&i.RiotName,
			&i.RiotTag,
			&i.RiotPuuid,
			&i.RiotRegion,
			&i.RiotTier,
			&i.RiotElo,
			&i.RivalsName,
			&i.DiscordRank,
			&i.DiscordMmr,
			&i.CreatedAt,
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

const listPlayersWithRiot = `-- name: ListPlayersWithRiot :many
SELECT id
FROM players
WHERE riot_puuid != ''
ORDER BY id
`

func (q *Queries) ListPlayersWithRiot(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listPlayersWithRiot)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
