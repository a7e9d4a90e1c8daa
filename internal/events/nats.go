package events

import (
	"context"
	"encoding/json"
	"fmt"
	"ladder-tracker/internal/constants"
	"ladder-tracker/internal/domain"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

type NATSBus struct {
	nc     *nats.Conn
	logger zerolog.Logger
}

func NewNATSBus(url string, logger zerolog.Logger, options ...nats.Option) (*NATSBus, error) {
	options = append([]nats.Option{nats.Name("ladder-tracker")}, options...)
	nc, err := nats.Connect(url, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	logger.Info().Str("url", nc.ConnectedUrl()).Msg("connected to nats")
	return &NATSBus{nc: nc, logger: logger}, nil
}

func (b *NATSBus) PublishRankChanged(_ context.Context, ev domain.RankChanged) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode rank change: %w", err)
	}
	return b.nc.Publish(constants.RankChangedSubject, data)
}

func (b *NATSBus) SubscribeRankChanged(ctx context.Context, f func(domain.RankChanged)) error {
	sub, err := b.nc.Subscribe(constants.RankChangedSubject, func(m *nats.Msg) {
		var ev domain.RankChanged
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			b.logger.Warn().Err(err).Str("data", string(m.Data)).Msg("dropping malformed rank change")
			return
		}
		f(ev)
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	_ = sub.Unsubscribe()
	return nil
}

func (b *NATSBus) Close() {
	_ = b.nc.Drain()
}
