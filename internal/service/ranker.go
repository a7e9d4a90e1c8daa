package service

import (
	"context"
	"errors"
	"fmt"
	"ladder-tracker/internal/config"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/events"
	"ladder-tracker/internal/rank"
	"ladder-tracker/internal/repository"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Transition derives a player's next state in one game from the stored one. found is false
// when the player has no standing in that game yet. Returning ok=false writes nothing.
type Transition func(prev domain.PlayerRankState, found bool) (next domain.PlayerRankState, reason domain.HistoryReason, ok bool)

type Outcome struct {
	Previous  domain.PlayerRankState
	Current   domain.PlayerRankState
	Written   bool
	Displayed domain.PlayerRankState
	// DisplayedChanged is true when the player's discord rank moved to a different tier.
	DisplayedChanged bool
}

// Ranker is the single write path for rank state. Writes for one player are serialized;
// every write appends history and re-reconciles the displayed rank.
type Ranker struct {
	players *repository.PlayerRepository
	ranks   *repository.RankRepository
	events  events.Publisher
	mode    rank.Mode
	primary domain.Game
	logger  zerolog.Logger

	mu    sync.Mutex
	locks map[string]*playerLock
}

type playerLock struct {
	mu   sync.Mutex
	refs int
}

func NewRanker(players *repository.PlayerRepository, ranks *repository.RankRepository, publisher events.Publisher, cfg *config.Config, logger zerolog.Logger) *Ranker {
	return &Ranker{
		players: players,
		ranks:   ranks,
		events:  publisher,
		mode:    cfg.RankMode,
		primary: cfg.PrimaryGame,
		logger:  logger,
		locks:   make(map[string]*playerLock),
	}
}

func (r *Ranker) Update(ctx context.Context, playerID string, game domain.Game, matchID string, tr Transition) (Outcome, error) {
	unlock := r.lock(playerID)
	defer unlock()

	player, err := r.players.Get(ctx, playerID)
	if errors.Is(err, repository.ErrNotFound) {
		return Outcome{}, fmt.Errorf("%s: %w", playerID, ErrPlayerNotFound)
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to load player: %w", err)
	}

	prev, err := r.ranks.State(ctx, playerID, game)
	found := err == nil
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return Outcome{}, fmt.Errorf("failed to load rank state: %w", err)
	}
	if !found {
		prev = domain.PlayerRankState{PlayerID: playerID, Game: game}
	}

	next, reason, ok := tr(prev, found)
	if !ok {
		return Outcome{Previous: prev, Current: prev}, nil
	}
	next.PlayerID = playerID
	next.Game = game
	next.UpdatedAt = time.Now().UTC()
	if next.PeakMMR < prev.PeakMMR {
		next.PeakMMR = prev.PeakMMR
	}
	next = next.WithMMR(next.MMR)

	displayed, err := r.displayed(ctx, next)
	if err != nil {
		return Outcome{}, err
	}

	update := repository.RankUpdate{
		State: next,
		History: &domain.RankHistoryEntry{
			PlayerID: playerID,
			Game:     game,
			OldRank:  prev.Rank,
			NewRank:  next.Rank,
			OldMMR:   prev.MMR,
			NewMMR:   next.MMR,
			Reason:   reason,
			MatchID:  matchID,
		},
	}
	changed := displayed.Rank != player.DiscordRank
	if changed || displayed.MMR != player.DiscordMMR {
		update.Discord = &displayed
	}

	if err := r.ranks.SaveUpdate(ctx, update); err != nil {
		return Outcome{}, err
	}

	r.logger.Info().
		Str("player_id", playerID).
		Str("game", string(game)).
		Str("reason", string(reason)).
		Int("old_mmr", prev.MMR).
		Int("new_mmr", next.MMR).
		Str("new_rank", next.Rank).
		Str("discord_rank", displayed.Rank).
		Msg("rank updated")

	if changed {
		r.publish(ctx, domain.RankChanged{
			PlayerID: playerID,
			OldRank:  player.DiscordRank,
			NewRank:  displayed.Rank,
			Reason:   string(reason),
			At:       next.UpdatedAt,
		})
	}

	return Outcome{
		Previous:         prev,
		Current:          next,
		Written:          true,
		Displayed:        displayed,
		DisplayedChanged: changed,
	}, nil
}

// ResetPeak lowers the stored peak to the current MMR under the player lock, so a
// concurrent Update cannot write the old peak back.
func (r *Ranker) ResetPeak(ctx context.Context, playerID string, game domain.Game) error {
	unlock := r.lock(playerID)
	defer unlock()
	return r.ranks.ResetPeak(ctx, playerID, game)
}

// Current returns the stored state without taking the player lock.
func (r *Ranker) Current(ctx context.Context, playerID string, game domain.Game) (domain.PlayerRankState, bool, error) {
	st, err := r.ranks.State(ctx, playerID, game)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.PlayerRankState{}, false, nil
	}
	if err != nil {
		return domain.PlayerRankState{}, false, err
	}
	return st, true, nil
}

// displayed reconciles next against the player's standing in the other game. The
// valorant state is always passed first, so exact ties go to valorant.
func (r *Ranker) displayed(ctx context.Context, next domain.PlayerRankState) (domain.PlayerRankState, error) {
	other, err := r.ranks.State(ctx, next.PlayerID, next.Game.Other())
	if errors.Is(err, repository.ErrNotFound) {
		return next, nil
	}
	if err != nil {
		return domain.PlayerRankState{}, fmt.Errorf("failed to load %s rank state: %w", next.Game.Other(), err)
	}

	if next.Game == domain.GameValorant {
		return rank.Reconcile(r.mode, r.primary, next, other), nil
	}
	return rank.Reconcile(r.mode, r.primary, other, next), nil
}

// publish is best-effort: the rank write has already committed.
func (r *Ranker) publish(ctx context.Context, ev domain.RankChanged) {
	if r.events == nil {
		return
	}
	if err := r.events.PublishRankChanged(ctx, ev); err != nil {
		r.logger.Warn().Err(err).Str("player_id", ev.PlayerID).Msg("failed to publish rank change")
	}
}

func (r *Ranker) lock(playerID string) func() {
	r.mu.Lock()
	l, ok := r.locks[playerID]
	if !ok {
		l = &playerLock{}
		r.locks[playerID] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, playerID)
		}
		r.mu.Unlock()
	}
}

// placed builds a verified state at mmr, re-deriving the rank. Re-verification never lowers
// an existing rating.
func placed(prev domain.PlayerRankState, found bool, mmr int) domain.PlayerRankState {
	if found && prev.MMR > mmr {
		mmr = prev.MMR
	}
	next := prev.WithMMR(mmr)
	t := rank.ForMMR(next.MMR)
	next.Rank = t.Name
	next.RankValue = t.TierValue
	next.Placed = true
	return next
}
