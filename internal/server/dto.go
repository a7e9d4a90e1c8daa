package server

import (
	"ladder-tracker/internal/balance"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/service"
	"time"
)

type playerStatsJSON struct {
	Kills   int  `json:"kills"`
	Deaths  int  `json:"deaths"`
	Assists int  `json:"assists"`
	MVP     bool `json:"mvp"`
}

type reportRequest struct {
	MatchID string                     `json:"match_id"`
	Game    string                     `json:"game"`
	TeamA   []string                   `json:"team_a" binding:"required"`
	TeamB   []string                   `json:"team_b" binding:"required"`
	Winner  string                     `json:"winner" binding:"required"`
	Stats   map[string]playerStatsJSON `json:"stats"`
}

func (r reportRequest) toDomain() domain.MatchResult {
	m := domain.MatchResult{
		MatchID:        r.MatchID,
		Game:           domain.Game(r.Game),
		TeamA:          r.TeamA,
		TeamB:          r.TeamB,
		Winner:         domain.TeamSide(r.Winner),
		PerPlayerStats: make(map[string]domain.MatchPlayerStats, len(r.Stats)),
	}
	for id, s := range r.Stats {
		m.PerPlayerStats[id] = domain.MatchPlayerStats{
			Kills:   s.Kills,
			Deaths:  s.Deaths,
			Assists: s.Assists,
			MVP:     s.MVP,
		}
	}
	return m
}

type queueRequest struct {
	Game    string   `json:"game" binding:"required"`
	Players []string `json:"players" binding:"required"`
	Mode    string   `json:"mode"`
}

type verifyRequest struct {
	Game    string `json:"game" binding:"required"`
	Account string `json:"account" binding:"required"`
}

type manualRankRequest struct {
	Game string `json:"game" binding:"required"`
	Rank string `json:"rank" binding:"required"`
}

type playerJSON struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	RiotName    string    `json:"riot_name,omitempty"`
	RiotTag     string    `json:"riot_tag,omitempty"`
	RivalsName  string    `json:"rivals_name,omitempty"`
	Rank        string    `json:"rank"`
	MMR         int       `json:"mmr"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toPlayerJSON(p domain.Player) playerJSON {
	return playerJSON{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		RiotName:    p.RiotName,
		RiotTag:     p.RiotTag,
		RivalsName:  p.RivalsName,
		Rank:        p.DiscordRank,
		MMR:         p.DiscordMMR,
		UpdatedAt:   p.UpdatedAt,
	}
}

type rankStateJSON struct {
	Game      string    `json:"game"`
	Rank      string    `json:"rank"`
	RankValue int       `json:"rank_value"`
	MMR       int       `json:"mmr"`
	PeakMMR   int       `json:"peak_mmr"`
	Placed    bool      `json:"placed"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRankStateJSON(s domain.PlayerRankState) rankStateJSON {
	return rankStateJSON{
		Game:      string(s.Game),
		Rank:      s.Rank,
		RankValue: s.RankValue,
		MMR:       s.MMR,
		PeakMMR:   s.PeakMMR,
		Placed:    s.Placed,
		UpdatedAt: s.UpdatedAt,
	}
}

type profileJSON struct {
	playerJSON
	Games map[string]rankStateJSON `json:"games"`
}

func toProfileJSON(p *service.PlayerProfile) profileJSON {
	out := profileJSON{
		playerJSON: toPlayerJSON(p.Player),
		Games:      make(map[string]rankStateJSON, len(p.States)),
	}
	for g, s := range p.States {
		out.Games[string(g)] = toRankStateJSON(s)
	}
	return out
}

type historyJSON struct {
	ID        string    `json:"id"`
	Game      string    `json:"game"`
	OldRank   string    `json:"old_rank"`
	NewRank   string    `json:"new_rank"`
	OldMMR    int       `json:"old_mmr"`
	NewMMR    int       `json:"new_mmr"`
	Reason    string    `json:"reason"`
	MatchID   string    `json:"match_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func toHistoryJSON(entries []domain.RankHistoryEntry) []historyJSON {
	out := make([]historyJSON, len(entries))
	for i, e := range entries {
		out[i] = historyJSON{
			ID:        e.ID,
			Game:      string(e.Game),
			OldRank:   e.OldRank,
			NewRank:   e.NewRank,
			OldMMR:    e.OldMMR,
			NewMMR:    e.NewMMR,
			Reason:    string(e.Reason),
			MatchID:   e.MatchID,
			Timestamp: e.Timestamp,
		}
	}
	return out
}

type matchJSON struct {
	MatchID    string                     `json:"match_id"`
	Game       string                     `json:"game"`
	Status     string                     `json:"status"`
	TeamA      []string                   `json:"team_a"`
	TeamB      []string                   `json:"team_b"`
	Winner     string                     `json:"winner,omitempty"`
	Stats      map[string]playerStatsJSON `json:"stats,omitempty"`
	Deltas     map[string]int             `json:"deltas,omitempty"`
	CreatedAt  time.Time                  `json:"created_at"`
	ReportedAt *time.Time                 `json:"reported_at,omitempty"`
}

func toMatchJSON(m *domain.MatchResult) matchJSON {
	out := matchJSON{
		MatchID:   m.MatchID,
		Game:      string(m.Game),
		Status:    string(m.Status),
		TeamA:     m.TeamA,
		TeamB:     m.TeamB,
		Winner:    string(m.Winner),
		Deltas:    m.Deltas,
		CreatedAt: m.CreatedAt,
	}
	if len(m.PerPlayerStats) > 0 {
		out.Stats = make(map[string]playerStatsJSON, len(m.PerPlayerStats))
		for id, s := range m.PerPlayerStats {
			out.Stats[id] = playerStatsJSON{Kills: s.Kills, Deaths: s.Deaths, Assists: s.Assists, MVP: s.MVP}
		}
	}
	if !m.ReportedAt.IsZero() {
		t := m.ReportedAt
		out.ReportedAt = &t
	}
	return out
}

type teamJSON struct {
	Players          []string `json:"players"`
	AverageRankValue float64  `json:"average_rank_value"`
}

type balanceJSON struct {
	Match    matchJSON `json:"match"`
	TeamA    teamJSON  `json:"team_a"`
	TeamB    teamJSON  `json:"team_b"`
	CaptainA string    `json:"captain_a,omitempty"`
	CaptainB string    `json:"captain_b,omitempty"`
}

func toBalanceJSON(m *domain.MatchResult, r balance.Result) balanceJSON {
	return balanceJSON{
		Match:    toMatchJSON(m),
		TeamA:    teamJSON{Players: r.TeamA.IDs(), AverageRankValue: r.TeamA.AverageRankValue},
		TeamB:    teamJSON{Players: r.TeamB.IDs(), AverageRankValue: r.TeamB.AverageRankValue},
		CaptainA: r.CaptainA,
		CaptainB: r.CaptainB,
	}
}

type outcomeJSON struct {
	Game          string        `json:"game"`
	Previous      rankStateJSON `json:"previous"`
	Current       rankStateJSON `json:"current"`
	Changed       bool          `json:"changed"`
	DiscordRank   string        `json:"discord_rank,omitempty"`
	DiscordChange bool          `json:"discord_changed"`
}

func toOutcomeJSON(game domain.Game, o service.Outcome) outcomeJSON {
	return outcomeJSON{
		Game:          string(game),
		Previous:      toRankStateJSON(o.Previous),
		Current:       toRankStateJSON(o.Current),
		Changed:       o.Written,
		DiscordRank:   o.Displayed.Rank,
		DiscordChange: o.DisplayedChanged,
	}
}
