package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ladder-tracker/internal/database"
	"ladder-tracker/internal/db"
	"ladder-tracker/internal/domain"
	"time"

	"github.com/rs/zerolog"
)

type RankRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewRankRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *RankRepository {
	return &RankRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *RankRepository) State(ctx context.Context, playerID string, game domain.Game) (domain.PlayerRankState, error) {
	row, err := r.queries.GetRankState(ctx, db.GetRankStateParams{
		PlayerID: playerID,
		Game:     string(game),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PlayerRankState{}, fmt.Errorf("%s rank for %s: %w", game, playerID, ErrNotFound)
	}
	if err != nil {
		return domain.PlayerRankState{}, err
	}
	return toRankState(row), nil
}

// States returns every game the player has a standing in.
func (r *RankRepository) States(ctx context.Context, playerID string) (map[domain.Game]domain.PlayerRankState, error) {
	rows, err := r.queries.ListRankStates(ctx, playerID)
	if err != nil {
		return nil, err
	}

	states := make(map[domain.Game]domain.PlayerRankState, len(rows))
	for _, row := range rows {
		s := toRankState(row)
		states[s.Game] = s
	}
	return states, nil
}

type RankUpdate struct {
	State domain.PlayerRankState
	// History is appended in the same transaction when set.
	History *domain.RankHistoryEntry
	// Discord, when set, replaces the player's displayed rank.
	Discord *domain.PlayerRankState
}

// SaveUpdate writes the rank state, then the history entry, then the displayed rank as one
// transaction.
func (r *RankRepository) SaveUpdate(ctx context.Context, update RankUpdate) error {
	now := time.Now().UTC()
	state := update.State
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = now
	}

	err := database.InTx(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		qtx := r.queries.WithTx(tx)

		err := qtx.UpsertRankState(ctx, db.UpsertRankStateParams{
			PlayerID:  state.PlayerID,
			Game:      string(state.Game),
			Rank:      state.Rank,
			RankValue: int64(state.RankValue),
			Mmr:       int64(state.MMR),
			PeakMmr:   int64(state.PeakMMR),
			Placed:    state.Placed,
			UpdatedAt: state.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to save rank state: %w", err)
		}

		if update.History != nil {
			if err := appendHistory(ctx, qtx, update.History, now); err != nil {
				return err
			}
		}

		if update.Discord != nil {
			err := qtx.UpdatePlayerDiscordRank(ctx, db.UpdatePlayerDiscordRankParams{
				DiscordRank: update.Discord.Rank,
				DiscordMmr:  int64(update.Discord.MMR),
				UpdatedAt:   now,
				ID:          state.PlayerID,
			})
			if err != nil {
				return fmt.Errorf("failed to update discord rank: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("player_id", state.PlayerID).
			Str("game", string(state.Game)).
			Msg("rank update rolled back")
		return err
	}
	return nil
}

// ResetPeak lowers the peak to the current MMR. It is the only write that may decrease it.
func (r *RankRepository) ResetPeak(ctx context.Context, playerID string, game domain.Game) error {
	n, err := r.queries.ResetRankStatePeak(ctx, db.ResetRankStatePeakParams{
		UpdatedAt: time.Now().UTC(),
		PlayerID:  playerID,
		Game:      string(game),
	})
	if err != nil {
		return fmt.Errorf("failed to reset peak: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s rank for %s: %w", game, playerID, ErrNotFound)
	}
	return nil
}

func toRankState(row db.RankState) domain.PlayerRankState {
	return domain.PlayerRankState{
		PlayerID:  row.PlayerID,
		Game:      domain.Game(row.Game),
		Rank:      row.Rank,
		RankValue: int(row.RankValue),
		MMR:       int(row.Mmr),
		PeakMMR:   int(row.PeakMmr),
		Placed:    row.Placed,
		UpdatedAt: row.UpdatedAt,
	}
}
