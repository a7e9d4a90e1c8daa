package notifier

import (
	"context"
	"fmt"
	"ladder-tracker/internal/config"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/events"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// RoleManager is the slice of the Discord REST API the syncer needs. *discordgo.Session
// satisfies it.
type RoleManager interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// RoleSyncer keeps each member's rank role in line with their displayed rank. Player ids
// are Discord user ids.
type RoleSyncer struct {
	roles     RoleManager
	guildID   string
	rankRoles map[string]string
	logger    zerolog.Logger
}

func NewRoleSyncer(roles RoleManager, guildID string, rankRoles map[string]string, logger zerolog.Logger) *RoleSyncer {
	return &RoleSyncer{
		roles:     roles,
		guildID:   guildID,
		rankRoles: rankRoles,
		logger:    logger,
	}
}

// FromConfig opens a bot session when a token is configured. Without one the returned
// syncer is disabled.
func FromConfig(cfg *config.Config, logger zerolog.Logger) (*RoleSyncer, error) {
	if cfg.DiscordBotToken == "" || cfg.DiscordGuildID == "" {
		logger.Info().Msg("discord role sync disabled")
		return NewRoleSyncer(nil, "", nil, logger), nil
	}

	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return NewRoleSyncer(session, cfg.DiscordGuildID, cfg.DiscordRankRoles, logger), nil
}

func (r *RoleSyncer) Enabled() bool {
	return r.roles != nil
}

// Run consumes rank changes until ctx is cancelled.
func (r *RoleSyncer) Run(ctx context.Context, sub events.Subscriber) error {
	if !r.Enabled() {
		return nil
	}
	return sub.SubscribeRankChanged(ctx, r.Handle)
}

// Handle swaps the old rank role for the new one. Failures are logged and not retried.
func (r *RoleSyncer) Handle(ev domain.RankChanged) {
	if !r.Enabled() || ev.OldRank == ev.NewRank {
		return
	}

	log := r.logger.With().
		Str("player_id", ev.PlayerID).
		Str("old_rank", ev.OldRank).
		Str("new_rank", ev.NewRank).
		Logger()

	if roleID, ok := r.rankRoles[ev.OldRank]; ok {
		if err := r.roles.GuildMemberRoleRemove(r.guildID, ev.PlayerID, roleID); err != nil {
			log.Warn().Err(err).Str("role_id", roleID).Msg("failed to remove rank role")
		}
	}

	roleID, ok := r.rankRoles[ev.NewRank]
	if !ok {
		log.Debug().Msg("no role mapped for rank")
		return
	}
	if err := r.roles.GuildMemberRoleAdd(r.guildID, ev.PlayerID, roleID); err != nil {
		log.Warn().Err(err).Str("role_id", roleID).Msg("failed to add rank role")
		return
	}
	log.Info().Str("role_id", roleID).Msg("rank role updated")
}
