package service

import (
	"context"
	"errors"
	"fmt"
	"ladder-tracker/internal/constants"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/rank"
	"ladder-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// upstream calls are throttled by the client limiter; this only bounds goroutines
const refreshConcurrency = 4

type RefreshService struct {
	valorant ValorantAPI
	players  *repository.PlayerRepository
	ranker   *Ranker
	logger   zerolog.Logger
}

func NewRefreshService(valorant ValorantAPI, players *repository.PlayerRepository, ranker *Ranker, logger zerolog.Logger) *RefreshService {
	return &RefreshService{
		valorant: valorant,
		players:  players,
		ranker:   ranker,
		logger:   logger,
	}
}

// RefreshValorant re-reads a linked account and bridges it onto the ladder without the
// placement cap. The local MMR only ever moves up here: a higher bridge value is applied
// as a boost, otherwise a changed upstream tier is recorded without touching MMR. When the
// upstream is unavailable or has nothing rated, the current rank is kept.
func (s *RefreshService) RefreshValorant(ctx context.Context, playerID string) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	player, err := s.players.Get(ctx, playerID)
	if errors.Is(err, repository.ErrNotFound) {
		return Outcome{}, fmt.Errorf("%s: %w", playerID, ErrPlayerNotFound)
	}
	if err != nil {
		return Outcome{}, err
	}
	if player.RiotPuuid == "" {
		return Outcome{}, fmt.Errorf("%s: %w", playerID, ErrNotLinked)
	}

	log := s.logger.With().Str("player_id", playerID).Str("puuid", player.RiotPuuid).Logger()

	src, ok, err := valorantSource(ctx, s.valorant, player.RiotRegion, player.RiotPuuid, log)
	if err != nil || !ok {
		log.Info().Msg("no usable upstream rank, keeping current")
		cur, _, curErr := s.ranker.Current(ctx, playerID, domain.GameValorant)
		return Outcome{Previous: cur, Current: cur}, curErr
	}

	bridged, ok := rank.BridgeMMR(src.TierID, src.TierName, src.ELO)
	if !ok {
		log.Warn().Int("tier_id", src.TierID).Str("tier", src.TierName).Msg("tier outside bridge table")
		cur, _, curErr := s.ranker.Current(ctx, playerID, domain.GameValorant)
		return Outcome{Previous: cur, Current: cur}, curErr
	}

	tierChanged := src.TierName != player.RiotTier || src.ELO != player.RiotELO

	out, err := s.ranker.Update(ctx, playerID, domain.GameValorant, "", func(prev domain.PlayerRankState, found bool) (domain.PlayerRankState, domain.HistoryReason, bool) {
		if !found {
			// first placement goes through verification and its cap
			return prev, "", false
		}
		if bridged > prev.MMR {
			next := prev.WithMMR(bridged)
			t := rank.ForMMR(next.MMR)
			next.Rank = t.Name
			next.RankValue = t.TierValue
			next.Placed = true
			return next, domain.ReasonValorantRefreshBoost, true
		}
		if tierChanged {
			return prev, domain.ReasonValorantRefresh, true
		}
		return prev, "", false
	})
	if err != nil {
		return Outcome{}, err
	}

	if tierChanged {
		player.RiotTier = src.TierName
		player.RiotELO = src.ELO
		if err := s.players.Upsert(ctx, player); err != nil {
			log.Warn().Err(err).Msg("failed to store upstream tier")
		}
	}

	log.Debug().
		Int("bridged", bridged).
		Int("mmr", out.Current.MMR).
		Bool("written", out.Written).
		Msg("valorant refresh")
	return out, nil
}

type RefreshSummary struct {
	Checked int
	Boosted int
	Failed  int
}

// RefreshAll refreshes every linked player. Individual failures are logged and counted.
func (s *RefreshService) RefreshAll(ctx context.Context) (RefreshSummary, error) {
	ids, err := s.players.RiotLinked(ctx)
	if err != nil {
		return RefreshSummary{}, fmt.Errorf("failed to list linked players: %w", err)
	}

	outcomes := make([]Outcome, len(ids))
	failed := make([]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			out, err := s.RefreshValorant(gctx, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.Warn().Err(err).Str("player_id", id).Msg("refresh failed")
				failed[i] = true
				return nil
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RefreshSummary{}, err
	}

	sum := RefreshSummary{Checked: len(ids)}
	for i := range ids {
		switch {
		case failed[i]:
			sum.Failed++
		case outcomes[i].Written && outcomes[i].Current.MMR > outcomes[i].Previous.MMR:
			sum.Boosted++
		}
	}
	s.logger.Info().Int("checked", sum.Checked).Int("boosted", sum.Boosted).Int("failed", sum.Failed).Msg("valorant refresh finished")
	return sum, nil
}
