package events

import (
	"context"
	"ladder-tracker/internal/domain"
	"sync"

	"github.com/rs/zerolog"
)

const subscriberBuffer = 64

// ChannelBus delivers events in-process. Publishing never blocks: a subscriber whose buffer
// is full misses the event.
type ChannelBus struct {
	mu     sync.RWMutex
	subs   map[chan domain.RankChanged]struct{}
	closed bool
	logger zerolog.Logger
}

func NewChannelBus(logger zerolog.Logger) *ChannelBus {
	return &ChannelBus{
		subs:   make(map[chan domain.RankChanged]struct{}),
		logger: logger,
	}
}

func (b *ChannelBus) PublishRankChanged(_ context.Context, ev domain.RankChanged) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.logger.Warn().Str("player_id", ev.PlayerID).Msg("subscriber full, rank change dropped")
		}
	}
	return nil
}

func (b *ChannelBus) SubscribeRankChanged(ctx context.Context, f func(domain.RankChanged)) error {
	ch := make(chan domain.RankChanged, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			f(ev)
		}
	}
}

func (b *ChannelBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
	}
	b.subs = make(map[chan domain.RankChanged]struct{})
}
