package notifier

import (
	"context"
	"errors"
	"ladder-tracker/internal/config"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/events"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRoles struct {
	mock.Mock
}

func (m *mockRoles) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	return m.Called(guildID, userID, roleID).Error(0)
}

func (m *mockRoles) GuildMemberRoleRemove(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	return m.Called(guildID, userID, roleID).Error(0)
}

var rankRoles = map[string]string{
	"GRNDS V":      "role-grnds-5",
	"BREAKPOINT I": "role-bp-1",
}

func TestHandleSwapsRoles(t *testing.T) {
	roles := new(mockRoles)
	roles.On("GuildMemberRoleRemove", "guild", "u1", "role-grnds-5").Return(nil).Once()
	roles.On("GuildMemberRoleAdd", "guild", "u1", "role-bp-1").Return(nil).Once()

	s := NewRoleSyncer(roles, "guild", rankRoles, zerolog.Nop())
	s.Handle(domain.RankChanged{PlayerID: "u1", OldRank: "GRNDS V", NewRank: "BREAKPOINT I"})

	roles.AssertExpectations(t)
}

func TestHandleAddsEvenWhenRemoveFails(t *testing.T) {
	roles := new(mockRoles)
	roles.On("GuildMemberRoleRemove", "guild", "u1", "role-grnds-5").Return(errors.New("missing access")).Once()
	roles.On("GuildMemberRoleAdd", "guild", "u1", "role-bp-1").Return(nil).Once()

	s := NewRoleSyncer(roles, "guild", rankRoles, zerolog.Nop())
	s.Handle(domain.RankChanged{PlayerID: "u1", OldRank: "GRNDS V", NewRank: "BREAKPOINT I"})

	roles.AssertExpectations(t)
}

func TestHandleSkipsUnmappedAndUnchanged(t *testing.T) {
	roles := new(mockRoles)
	s := NewRoleSyncer(roles, "guild", rankRoles, zerolog.Nop())

	s.Handle(domain.RankChanged{PlayerID: "u1", OldRank: "", NewRank: "X"})
	s.Handle(domain.RankChanged{PlayerID: "u1", OldRank: "GRNDS V", NewRank: "GRNDS V"})

	roles.AssertNotCalled(t, "GuildMemberRoleAdd", mock.Anything, mock.Anything, mock.Anything)
	roles.AssertNotCalled(t, "GuildMemberRoleRemove", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunConsumesBus(t *testing.T) {
	roles := new(mockRoles)
	added := make(chan struct{})
	var once sync.Once
	roles.On("GuildMemberRoleAdd", "guild", "u2", "role-grnds-5").Return(nil).Run(func(mock.Arguments) {
		once.Do(func() { close(added) })
	})

	bus := events.NewChannelBus(zerolog.Nop())
	defer bus.Close()
	s := NewRoleSyncer(roles, "guild", rankRoles, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, bus) //nolint:errcheck

	ev := domain.RankChanged{PlayerID: "u2", NewRank: "GRNDS V"}
	require.Eventually(t, func() bool {
		_ = bus.PublishRankChanged(ctx, ev)
		select {
		case <-added:
			return true
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)
}

func TestFromConfigWithoutTokenIsDisabled(t *testing.T) {
	s, err := FromConfig(&config.Config{}, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, s.Enabled())
	assert.NoError(t, s.Run(context.Background(), events.NewChannelBus(zerolog.Nop())))
}
