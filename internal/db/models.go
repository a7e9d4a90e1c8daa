package db

import (
	"database/sql"
	"time"
)

type Player struct {
	ID          string
	DisplayName string
	RiotName    string
	RiotTag     string
	RiotPuuid   string
	RiotRegion  string
	RiotTier    string
	RiotElo     int64
	RivalsName  string
	DiscordRank string
	DiscordMmr  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type RankState struct {
	PlayerID  string
	Game      string
	Rank      string
	RankValue int64
	Mmr       int64
	PeakMmr   int64
	Placed    bool
	UpdatedAt time.Time
}

type RankHistory struct {
	ID        string
	PlayerID  string
	Game      string
	OldRank   string
	NewRank   string
	OldMmr    int64
	NewMmr    int64
	Reason    string
	MatchID   sql.NullString
	CreatedAt time.Time
}

type Match struct {
	ID         string
	Game       string
	Status     string
	Winner     string
	CreatedAt  time.Time
	ReportedAt sql.NullTime
}

type MatchPlayer struct {
	MatchID  string
	PlayerID string
	Side     string
	Position int64
	Kills    int64
	Deaths   int64
	Assists  int64
	Mvp      bool
	Delta    sql.NullInt64
}
