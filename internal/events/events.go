package events

import (
	"context"
	"ladder-tracker/internal/config"
	"ladder-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type Publisher interface {
	PublishRankChanged(ctx context.Context, ev domain.RankChanged) error
}

type Subscriber interface {
	// SubscribeRankChanged delivers events to f until ctx is cancelled.
	SubscribeRankChanged(ctx context.Context, f func(domain.RankChanged)) error
}

type Bus interface {
	Publisher
	Subscriber
	Close()
}

// New connects to NATS when NATS_URL is set and falls back to in-process delivery.
func New(cfg *config.Config, logger zerolog.Logger) (Bus, error) {
	if cfg.NATSURL == "" {
		logger.Info().Msg("NATS_URL not set, using in-process events")
		return NewChannelBus(logger), nil
	}
	return NewNATSBus(cfg.NATSURL, logger)
}
