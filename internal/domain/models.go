package domain

import (
	"time"
)

type Game string

const (
	GameValorant Game = "valorant"
	GameRivals   Game = "rivals"
)

func (g Game) Valid() bool {
	return g == GameValorant || g == GameRivals
}

func (g Game) Other() Game {
	if g == GameValorant {
		return GameRivals
	}
	return GameValorant
}

type Player struct {
	ID          string // opaque, the bot uses the discord user id
	DisplayName string
	RiotName    string
	RiotTag     string
	RiotPuuid   string
	RiotRegion  string
	// RiotTier and RiotELO are the last upstream values a refresh saw.
	RiotTier    string
	RiotELO     int
	RivalsName  string
	DiscordRank string
	DiscordMMR  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PlayerRankState is one player's standing in one game.
type PlayerRankState struct {
	PlayerID  string
	Game      Game
	Rank      string
	RankValue int
	MMR       int
	PeakMMR   int
	// Placed is false until the first verification or manual entry.
	Placed    bool
	UpdatedAt time.Time
}

// WithMMR returns a copy moved to mmr, clamped at zero, with the peak carried forward.
// Rank fields are left to the caller.
func (s PlayerRankState) WithMMR(mmr int) PlayerRankState {
	if mmr < 0 {
		mmr = 0
	}
	s.MMR = mmr
	if mmr > s.PeakMMR {
		s.PeakMMR = mmr
	}
	return s
}

type TeamSide string

const (
	TeamA TeamSide = "A"
	TeamB TeamSide = "B"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchCompleted MatchStatus = "completed"
)

type MatchPlayerStats struct {
	Kills   int
	Deaths  int
	Assists int
	MVP     bool
}

type MatchResult struct {
	MatchID        string
	Game           Game
	Status         MatchStatus
	TeamA          []string
	TeamB          []string
	Winner         TeamSide
	PerPlayerStats map[string]MatchPlayerStats
	// Deltas is filled in when the result is processed.
	Deltas     map[string]int
	CreatedAt  time.Time
	ReportedAt time.Time
}

func (m *MatchResult) SideOf(playerID string) (TeamSide, bool) {
	for _, id := range m.TeamA {
		if id == playerID {
			return TeamA, true
		}
	}
	for _, id := range m.TeamB {
		if id == playerID {
			return TeamB, true
		}
	}
	return "", false
}

type HistoryReason string

const (
	ReasonMatch                HistoryReason = "match"
	ReasonVerification         HistoryReason = "verification"
	ReasonManualVerification   HistoryReason = "manual_verification"
	ReasonValorantRefresh      HistoryReason = "valorant_refresh"
	ReasonValorantRefreshBoost HistoryReason = "valorant_refresh_boost"
)

type RankHistoryEntry struct {
	ID        string // nanoid
	PlayerID  string
	Game      Game
	OldRank   string
	NewRank   string
	OldMMR    int
	NewMMR    int
	Reason    HistoryReason
	MatchID   string
	Timestamp time.Time
}

// RankChanged is emitted whenever a player's displayed (discord) rank changes.
type RankChanged struct {
	PlayerID string    `json:"player_id"`
	OldRank  string    `json:"old_rank"`
	NewRank  string    `json:"new_rank"`
	Reason   string    `json:"reason"`
	At       time.Time `json:"at"`
}
