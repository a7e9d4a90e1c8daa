package service

import (
	"context"
	"errors"
	"fmt"
	"ladder-tracker/internal/balance"
	"ladder-tracker/internal/constants"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/mmr"
	"ladder-tracker/internal/repository"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// parallel rank writes per report; sqlite serializes them anyway
const reportConcurrency = 4

type MatchService struct {
	matches *repository.MatchRepository
	players *repository.PlayerRepository
	ranker  *Ranker
	logger  zerolog.Logger

	balanceMu sync.Mutex
	balancer  *balance.Balancer
}

func NewMatchService(matches *repository.MatchRepository, players *repository.PlayerRepository, ranker *Ranker, balancer *balance.Balancer, logger zerolog.Logger) *MatchService {
	return &MatchService{
		matches:  matches,
		players:  players,
		ranker:   ranker,
		balancer: balancer,
		logger:   logger,
	}
}

// CreateFromQueue balances the queued players into two teams and stores a pending match.
// Players without a standing in the game count as unranked.
func (s *MatchService) CreateFromQueue(ctx context.Context, game domain.Game, playerIDs []string, mode balance.Mode) (*domain.MatchResult, balance.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if !game.Valid() {
		return nil, balance.Result{}, fmt.Errorf("%w: %q", ErrUnknownGame, game)
	}
	if len(playerIDs) < 2 {
		return nil, balance.Result{}, fmt.Errorf("%w: need at least 2 players, got %d", ErrInvalidQueue, len(playerIDs))
	}
	if ids := mapset.NewThreadUnsafeSet(playerIDs...); ids.Cardinality() != len(playerIDs) {
		return nil, balance.Result{}, fmt.Errorf("%w: duplicate players", ErrInvalidQueue)
	}

	pool := make([]balance.Player, len(playerIDs))
	for i, id := range playerIDs {
		if _, err := s.players.Get(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, balance.Result{}, fmt.Errorf("%s: %w", id, ErrPlayerNotFound)
			}
			return nil, balance.Result{}, err
		}
		st, found, err := s.ranker.Current(ctx, id, game)
		if err != nil {
			return nil, balance.Result{}, err
		}
		pool[i] = balance.Player{ID: id}
		if found {
			pool[i].RankValue = st.RankValue
		}
	}

	s.balanceMu.Lock()
	teams := s.balancer.Balance(pool, mode)
	s.balanceMu.Unlock()

	match := &domain.MatchResult{
		Game:  game,
		TeamA: teams.TeamA.IDs(),
		TeamB: teams.TeamB.IDs(),
	}
	if err := s.matches.Create(ctx, match); err != nil {
		s.logger.Error().Err(err).Msg("failed to create match")
		return nil, balance.Result{}, fmt.Errorf("failed to create match: %w", err)
	}

	s.logger.Info().
		Str("match_id", match.MatchID).
		Str("mode", string(mode)).
		Float64("avg_a", teams.TeamA.AverageRankValue).
		Float64("avg_b", teams.TeamB.AverageRankValue).
		Msg("match created from queue")

	return match, teams, nil
}

// Report validates and records a match result, then applies each player's MMR delta in
// its own transaction. A pending match from CreateFromQueue must be reported with the
// same rosters.
func (s *MatchService) Report(ctx context.Context, result domain.MatchResult) (*domain.MatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if err := validateResult(&result); err != nil {
		return nil, err
	}

	if result.MatchID != "" {
		existing, err := s.matches.Get(ctx, result.MatchID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case err != nil:
			return nil, err
		case existing.Status == domain.MatchCompleted:
			return nil, fmt.Errorf("%s: %w", result.MatchID, ErrMatchReported)
		default:
			if !sameRosters(existing, &result) {
				return nil, fmt.Errorf("%w: rosters differ from the queued match", ErrInvalidMatch)
			}
			if result.Game == "" {
				result.Game = existing.Game
			}
		}
	}
	if !result.Game.Valid() {
		return nil, fmt.Errorf("%w: unknown game %q", ErrInvalidMatch, result.Game)
	}

	ids := append(append([]string{}, result.TeamA...), result.TeamB...)
	for _, id := range ids {
		if _, err := s.players.Get(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", id, ErrPlayerNotFound)
			}
			return nil, err
		}
	}

	deltas, err := s.computeDeltas(ctx, &result, ids)
	if err != nil {
		return nil, err
	}
	result.Deltas = deltas

	if err := s.matches.Record(ctx, &result); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", result.MatchID, ErrMatchReported)
		}
		return nil, fmt.Errorf("failed to record match: %w", err)
	}

	g := new(errgroup.Group)
	g.SetLimit(reportConcurrency)
	for _, id := range ids {
		delta := deltas[id]
		g.Go(func() error {
			_, err := s.ranker.Update(ctx, id, result.Game, result.MatchID, func(prev domain.PlayerRankState, _ bool) (domain.PlayerRankState, domain.HistoryReason, bool) {
				return mmr.Apply(prev, delta), domain.ReasonMatch, true
			})
			if err != nil {
				s.logger.Error().Err(err).Str("match_id", result.MatchID).Str("player_id", id).Msg("failed to apply match delta")
				return fmt.Errorf("player %s: %w", id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &result, err
	}

	s.logger.Info().Str("match_id", result.MatchID).Str("winner", string(result.Winner)).Int("players", len(ids)).Msg("match reported")
	return &result, nil
}

// computeDeltas reads every player's current MMR concurrently and runs the delta engine.
func (s *MatchService) computeDeltas(ctx context.Context, result *domain.MatchResult, ids []string) (map[string]int, error) {
	deltas := make([]int, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			st, _, err := s.ranker.Current(gctx, id, result.Game)
			if err != nil {
				return fmt.Errorf("failed to load rank for %s: %w", id, err)
			}

			side, _ := result.SideOf(id)
			stats := result.PerPlayerStats[id]
			b := mmr.Compute(mmr.Input{
				Won:        side == result.Winner,
				Kills:      stats.Kills,
				Deaths:     stats.Deaths,
				Assists:    stats.Assists,
				MVP:        stats.MVP,
				CurrentMMR: st.MMR,
			})
			if b.Fallback {
				s.logger.Warn().Str("player_id", id).Interface("stats", stats).Msg("unusable stats, base points applied")
			}
			deltas[i] = b.Delta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]int, len(ids))
	for i, id := range ids {
		out[id] = deltas[i]
	}
	return out, nil
}

func validateResult(m *domain.MatchResult) error {
	if len(m.TeamA) == 0 || len(m.TeamB) == 0 {
		return fmt.Errorf("%w: both teams need players", ErrInvalidMatch)
	}
	if m.Winner != domain.TeamA && m.Winner != domain.TeamB {
		return fmt.Errorf("%w: winner must be %q or %q", ErrInvalidMatch, domain.TeamA, domain.TeamB)
	}

	a := mapset.NewThreadUnsafeSet(m.TeamA...)
	b := mapset.NewThreadUnsafeSet(m.TeamB...)
	if a.Cardinality() != len(m.TeamA) || b.Cardinality() != len(m.TeamB) {
		return fmt.Errorf("%w: player listed twice on a team", ErrInvalidMatch)
	}
	if both := a.Intersect(b); both.Cardinality() > 0 {
		return fmt.Errorf("%w: players on both teams: %v", ErrInvalidMatch, both.ToSlice())
	}
	if a.Contains("") || b.Contains("") {
		return fmt.Errorf("%w: empty player id", ErrInvalidMatch)
	}

	roster := a.Union(b)
	for id := range m.PerPlayerStats {
		if !roster.Contains(id) {
			return fmt.Errorf("%w: stats for %s who did not play", ErrInvalidMatch, id)
		}
	}
	return nil
}

func sameRosters(stored, reported *domain.MatchResult) bool {
	storedSet := mapset.NewThreadUnsafeSet(stored.TeamA...)
	reportedSet := mapset.NewThreadUnsafeSet(reported.TeamA...)
	if !storedSet.Equal(reportedSet) {
		return false
	}
	return mapset.NewThreadUnsafeSet(stored.TeamB...).Equal(mapset.NewThreadUnsafeSet(reported.TeamB...))
}
