package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	UpstreamRateLimit  = 30
	UpstreamRateWindow = 60 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBusyRetries     = 3
)

const (
	ShutdownTimeout         = 5 * time.Second
	ValorantRefreshInterval = 6 * time.Hour
)

const (
	LeaderboardLimit   = 50
	HistoryLimit       = 100
	RecentMatchesLimit = 20
	MMRHistoryLookback = 20
)

const (
	RankChangedSubject = "ladder.rank_changed"
)
