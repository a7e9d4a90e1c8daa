package service

import (
	"context"
	"errors"
	"fmt"
	"ladder-tracker/internal/constants"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// LeaderboardService serves the dashboard's read models. Nothing here recomputes ranks.
type LeaderboardService struct {
	players *repository.PlayerRepository
	ranks   *repository.RankRepository
	matches *repository.MatchRepository
	logger  zerolog.Logger
}

func NewLeaderboardService(players *repository.PlayerRepository, ranks *repository.RankRepository, matches *repository.MatchRepository, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{players: players, ranks: ranks, matches: matches, logger: logger}
}

type PlayerProfile struct {
	Player domain.Player
	States map[domain.Game]domain.PlayerRankState
}

func (s *LeaderboardService) Leaderboard(ctx context.Context, limit int) ([]domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if limit <= 0 || limit > constants.LeaderboardLimit {
		limit = constants.LeaderboardLimit
	}
	return s.players.Leaderboard(ctx, limit)
}

func (s *LeaderboardService) Player(ctx context.Context, playerID string) (*PlayerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var (
		player *domain.Player
		states map[domain.Game]domain.PlayerRankState
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		player, err = s.players.Get(gctx, playerID)
		return err
	})
	g.Go(func() error {
		var err error
		states, err = s.ranks.States(gctx, playerID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", playerID, ErrPlayerNotFound)
		}
		s.logger.Error().Err(err).Str("player_id", playerID).Msg("failed to load player profile")
		return nil, err
	}

	return &PlayerProfile{Player: *player, States: states}, nil
}

func (s *LeaderboardService) History(ctx context.Context, playerID string, limit int) ([]domain.RankHistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if limit <= 0 || limit > constants.HistoryLimit {
		limit = constants.HistoryLimit
	}
	return s.ranks.History(ctx, playerID, limit)
}

func (s *LeaderboardService) Match(ctx context.Context, matchID string) (*domain.MatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	m, err := s.matches.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *LeaderboardService) RecentMatches(ctx context.Context) ([]domain.MatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.matches.Recent(ctx, constants.RecentMatchesLimit)
}
