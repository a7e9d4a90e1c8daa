package service

import (
	"context"
	"errors"
	"fmt"
	"ladder-tracker/internal/constants"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/repository"

	"github.com/rs/zerolog"
)

type AdminService struct {
	ranker *Ranker
	logger zerolog.Logger
}

func NewAdminService(ranker *Ranker, logger zerolog.Logger) *AdminService {
	return &AdminService{ranker: ranker, logger: logger}
}

// ResetPeak drops a player's peak to their current MMR. It does not touch MMR or rank, so
// no history entry is written.
func (s *AdminService) ResetPeak(ctx context.Context, playerID string, game domain.Game) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if !game.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownGame, game)
	}

	if err := s.ranker.ResetPeak(ctx, playerID, game); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", playerID, ErrPlayerNotFound)
		}
		s.logger.Error().Err(err).Str("player_id", playerID).Msg("failed to reset peak")
		return err
	}

	s.logger.Info().Str("player_id", playerID).Str("game", string(game)).Msg("peak mmr reset")
	return nil
}
