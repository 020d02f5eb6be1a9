package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"inkchat/pkg/logger"
)

// RedisBroker distributes events over Redis pub/sub so every running
// instance observes the same change stream.
type RedisBroker struct {
	Client *redis.Client
	log    *logger.Logger
}

func NewRedisBroker(client *redis.Client, log *logger.Logger) *RedisBroker {
	return &RedisBroker{Client: client, log: log}
}

func (b *RedisBroker) Publish(ctx context.Context, channel string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return b.Client.Publish(ctx, channel, data).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, channel string, handler Handler) (Subscription, error) {
	pubsub := b.Client.Subscribe(ctx, channel)
	sub := &redisSubscription{pubsub: pubsub}

	go func() {
		ch := pubsub.Channel()
		for msg := range ch {
			if sub.closed.Load() {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				if b.log != nil {
					b.log.Errorf("broker: unmarshal event on %s: %v", channel, err)
				}
				continue
			}
			if err := handler(ctx, event); err != nil && b.log != nil {
				b.log.Errorf("broker: handle event on %s: %v", channel, err)
			}
		}
	}()

	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	closed atomic.Bool
	once   sync.Once
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		err = s.pubsub.Close()
	})
	return err
}
