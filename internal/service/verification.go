package service

import (
	"context"
	"errors"
	"fmt"
	"ladder-tracker/internal/api"
	"ladder-tracker/internal/constants"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/rank"
	"ladder-tracker/internal/repository"
	"strings"

	"github.com/rs/zerolog"
)

type VerificationService struct {
	valorant ValorantAPI
	rivals   RivalsAPI
	players  *repository.PlayerRepository
	ranker   *Ranker
	logger   zerolog.Logger
}

func NewVerificationService(valorant ValorantAPI, rivals RivalsAPI, players *repository.PlayerRepository, ranker *Ranker, logger zerolog.Logger) *VerificationService {
	return &VerificationService{
		valorant: valorant,
		rivals:   rivals,
		players:  players,
		ranker:   ranker,
		logger:   logger,
	}
}

// Link ties an upstream account to the player and places them from its rank. Valorant
// accounts are given as "name#tag", brawler accounts by username. The placement is capped.
// ErrRankUnknown means no rank could be read and the player has to use ManualEntry.
func (s *VerificationService) Link(ctx context.Context, playerID string, game domain.Game, account string) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if strings.TrimSpace(account) == "" {
		return Outcome{}, fmt.Errorf("%w: empty", ErrInvalidAccount)
	}

	player, err := s.ensurePlayer(ctx, playerID)
	if err != nil {
		return Outcome{}, err
	}

	s.logger.Info().Str("player_id", playerID).Str("game", string(game)).Str("account", account).Msg("linking account")

	var mmr int
	switch game {
	case domain.GameValorant:
		mmr, err = s.linkValorant(ctx, player, account)
	case domain.GameRivals:
		mmr, err = s.linkRivals(ctx, player, account)
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownGame, game)
	}
	if errors.Is(err, errUpstream) || errors.Is(err, errUnrated) {
		// keep a previous placement rather than failing a re-verification
		cur, found, curErr := s.ranker.Current(ctx, playerID, game)
		if curErr == nil && found {
			s.logger.Warn().Err(err).Str("player_id", playerID).Msg("no usable upstream rank, keeping current")
			return Outcome{Previous: cur, Current: cur}, nil
		}
		if errors.Is(err, ErrRankUnknown) {
			return Outcome{}, err
		}
		return Outcome{}, fmt.Errorf("%w: %v", ErrRankUnknown, err)
	}
	if err != nil {
		return Outcome{}, err
	}

	if err := s.players.Upsert(ctx, player); err != nil {
		return Outcome{}, err
	}

	return s.ranker.Update(ctx, playerID, game, "", func(prev domain.PlayerRankState, found bool) (domain.PlayerRankState, domain.HistoryReason, bool) {
		return placed(prev, found, mmr), domain.ReasonVerification, true
	})
}

// ManualEntry places a player from a self-reported rank. The rank has to be recognizable;
// free text that matches nothing is rejected rather than defaulted.
func (s *VerificationService) ManualEntry(ctx context.Context, playerID string, game domain.Game, rankName string) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if !game.Valid() {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownGame, game)
	}

	res := rank.CanonicalizeString(rankName, 0, game)
	if !res.Matched {
		return Outcome{}, fmt.Errorf("%w: %q", ErrRankUnknown, rankName)
	}

	if _, err := s.ensurePlayer(ctx, playerID); err != nil {
		return Outcome{}, err
	}

	mmr := rank.CapPlacement(res.Tier.BaseMMR)
	s.logger.Info().
		Str("player_id", playerID).
		Str("game", string(game)).
		Str("reported", rankName).
		Str("tier", res.Tier.Name).
		Int("mmr", mmr).
		Msg("manual rank entry")

	return s.ranker.Update(ctx, playerID, game, "", func(prev domain.PlayerRankState, found bool) (domain.PlayerRankState, domain.HistoryReason, bool) {
		return placed(prev, found, mmr), domain.ReasonManualVerification, true
	})
}

func (s *VerificationService) ensurePlayer(ctx context.Context, playerID string) (*domain.Player, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, fmt.Errorf("%w: empty id", ErrPlayerNotFound)
	}

	player, err := s.players.Get(ctx, playerID)
	if errors.Is(err, repository.ErrNotFound) {
		player = &domain.Player{ID: playerID}
		if err := s.players.Upsert(ctx, player); err != nil {
			return nil, err
		}
		return player, nil
	}
	return player, err
}

func (s *VerificationService) linkValorant(ctx context.Context, player *domain.Player, account string) (int, error) {
	name, tag, ok := strings.Cut(account, "#")
	name, tag = strings.TrimSpace(name), strings.TrimSpace(tag)
	if !ok || name == "" || tag == "" {
		return 0, fmt.Errorf("%w: %q is not name#tag", ErrInvalidAccount, account)
	}

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	acc, err := s.valorant.GetAccount(apiCtx, name, tag)
	if err != nil {
		s.logger.Warn().Err(err).Str("name", name).Str("tag", tag).Msg("failed to fetch account")
		return 0, fmt.Errorf("%w: account lookup: %v", errUpstream, err)
	}

	player.RiotName = acc.Data.Name
	player.RiotTag = acc.Data.Tag
	player.RiotPuuid = acc.Data.Puuid
	player.RiotRegion = acc.Data.Region
	if player.DisplayName == "" {
		player.DisplayName = acc.Data.Name
	}

	src, ok, err := valorantSource(ctx, s.valorant, player.RiotRegion, player.RiotPuuid, s.logger)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errUpstream, err)
	}
	if !ok {
		s.logger.Warn().Str("puuid", player.RiotPuuid).Msg("account has no rated tier in live data or history")
		return 0, fmt.Errorf("%w: %w", ErrRankUnknown, errUnrated)
	}

	mmr, ok := rank.BridgePlacement(src.TierID, src.TierName, src.ELO)
	if !ok {
		return 0, fmt.Errorf("%w: unknown tier %q", ErrRankUnknown, src.TierName)
	}
	player.RiotTier = src.TierName
	player.RiotELO = src.ELO
	return mmr, nil
}

func (s *VerificationService) linkRivals(ctx context.Context, player *domain.Player, account string) (int, error) {
	account = strings.TrimSpace(account)

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	doc, err := s.rivals.GetPlayer(apiCtx, account)
	if err != nil {
		s.logger.Warn().Err(err).Str("account", account).Msg("failed to fetch brawler profile")
		return 0, fmt.Errorf("%w: profile lookup: %v", errUpstream, err)
	}

	res, ok := rank.Canonicalize(doc, domain.GameRivals)
	if !ok {
		s.logger.Warn().Str("account", account).Msg("no rank string in brawler profile")
		return 0, fmt.Errorf("%w: profile has no rank", ErrRankUnknown)
	}
	if !res.Matched {
		s.logger.Warn().Str("account", account).Str("source", res.Source).Msg("unrecognized rank, placing at lowest tier")
	}

	player.RivalsName = account
	if player.DisplayName == "" {
		player.DisplayName = account
	}
	return rank.CapPlacement(res.Tier.BaseMMR), nil
}

// valorantSource returns the tier data to bridge from, walking MMR history while the
// account is in placement. ok is false when nothing rated exists.
func valorantSource(ctx context.Context, valorant ValorantAPI, region, puuid string, logger zerolog.Logger) (rank.HistoryPoint, bool, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	live, err := valorant.GetMMR(apiCtx, region, puuid)
	if err != nil {
		logger.Warn().Err(err).Str("puuid", puuid).Msg("failed to fetch mmr")
		return rank.HistoryPoint{}, false, fmt.Errorf("failed to fetch mmr: %w", err)
	}
	cur := live.Data.Current

	var history []rank.HistoryPoint
	if live.Data.InPlacement() {
		logger.Debug().Str("puuid", puuid).Int("games_needed", cur.GamesNeededForRating).Msg("account in placement, reading history")

		histCtx, histCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
		defer histCancel()

		resp, err := valorant.GetMMRHistory(histCtx, region, puuid)
		if err != nil {
			logger.Warn().Err(err).Str("puuid", puuid).Msg("failed to fetch mmr history")
		} else {
			history = historyPoints(resp.Data)
		}

		src, ok := rank.PlacementSource(0, "", 0, history)
		return src, ok, nil
	}

	src, ok := rank.PlacementSource(cur.Tier.ID, cur.Tier.Name, cur.Elo, nil)
	return src, ok, nil
}

func historyPoints(items []api.MMRHistoryItem) []rank.HistoryPoint {
	n := len(items)
	if n > constants.MMRHistoryLookback {
		n = constants.MMRHistoryLookback
	}
	points := make([]rank.HistoryPoint, n)
	for i := 0; i < n; i++ {
		points[i] = rank.HistoryPoint{
			TierID:   items[i].CurrentTier,
			TierName: items[i].CurrentTierPatched,
			ELO:      items[i].Elo,
		}
	}
	return points
}
