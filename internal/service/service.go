package service

import (
	"context"
	"errors"
	"ladder-tracker/internal/api"
)

var (
	ErrInvalidMatch   = errors.New("invalid match")
	ErrMatchReported  = errors.New("match already reported")
	ErrInvalidQueue   = errors.New("invalid queue")
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidAccount = errors.New("invalid account reference")
	ErrNotLinked      = errors.New("no linked account")
	ErrUnknownGame    = errors.New("unknown game")
	// ErrRankUnknown means no rank could be read for the player; they have to self-report
	// through manual entry.
	ErrRankUnknown = errors.New("rank could not be determined")

	errUpstream = errors.New("upstream unavailable")
	errUnrated  = errors.New("account is unrated")
)

// ValorantAPI is implemented by *api.HDevClient.
type ValorantAPI interface {
	GetAccount(ctx context.Context, name, tag string) (*api.AccountResponse, error)
	GetMMR(ctx context.Context, region, puuid string) (*api.MMRResponse, error)
	GetMMRHistory(ctx context.Context, region, puuid string) (*api.MMRHistoryResponse, error)
}

// RivalsAPI is implemented by *api.BrawlerClient.
type RivalsAPI interface {
	GetPlayer(ctx context.Context, player string) (map[string]any, error)
}
