package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ladder-tracker/internal/db"
	"ladder-tracker/internal/domain"
	"time"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *PlayerRepository) Get(ctx context.Context, id string) (*domain.Player, error) {
	player, err := r.queries.GetPlayer(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	p := toPlayer(player)
	return &p, nil
}

// Upsert writes profile fields. The displayed discord rank is only changed through
// RankRepository.SaveUpdate.
func (r *PlayerRepository) Upsert(ctx context.Context, player *domain.Player) error {
	now := time.Now().UTC()
	if player.CreatedAt.IsZero() {
		player.CreatedAt = now
	}
	player.UpdatedAt = now

	err := r.queries.UpsertPlayer(ctx, db.UpsertPlayerParams{
		ID:          player.ID,
		DisplayName: player.DisplayName,
		RiotName:    player.RiotName,
		RiotTag:     player.RiotTag,
		RiotPuuid:   player.RiotPuuid,
		RiotRegion:  player.RiotRegion,
		RiotTier:    player.RiotTier,
		RiotElo:     int64(player.RiotELO),
		RivalsName:  player.RivalsName,
		DiscordRank: player.DiscordRank,
		DiscordMmr:  int64(player.DiscordMMR),
		CreatedAt:   player.CreatedAt,
		UpdatedAt:   player.UpdatedAt,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("player_id", player.ID).Msg("failed to upsert player")
		return fmt.Errorf("failed to upsert player: %w", err)
	}
	return nil
}

func (r *PlayerRepository) Leaderboard(ctx context.Context, limit int) ([]domain.Player, error) {
	rows, err := r.queries.ListLeaderboard(ctx, int64(limit))
	if err != nil {
		return nil, err
	}

	result := make([]domain.Player, len(rows))
	for i, p := range rows {
		result[i] = toPlayer(p)
	}
	return result, nil
}

// RiotLinked lists players that have a linked Valorant account.
func (r *PlayerRepository) RiotLinked(ctx context.Context) ([]string, error) {
	return r.queries.ListPlayersWithRiot(ctx)
}

func toPlayer(p db.Player) domain.Player {
	return domain.Player{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		RiotName:    p.RiotName,
		RiotTag:     p.RiotTag,
		RiotPuuid:   p.RiotPuuid,
		RiotRegion:  p.RiotRegion,
		RiotTier:    p.RiotTier,
		RiotELO:     int(p.RiotElo),
		RivalsName:  p.RivalsName,
		DiscordRank: p.DiscordRank,
		DiscordMMR:  int(p.DiscordMmr),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
