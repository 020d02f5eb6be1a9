package events

import (
	"context"
	"sync"
	"sync/atomic"
)

// MemoryBroker is an in-process broker for tests and single-node mode.
type MemoryBroker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]*memorySubscription
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[int]*memorySubscription)}
}

func (b *MemoryBroker) Publish(ctx context.Context, channel string, event Event) error {
	b.mu.RLock()
	targets := make([]*memorySubscription, 0, len(b.subs[channel]))
	for _, sub := range b.subs[channel] {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		if sub.closed.Load() {
			continue
		}
		_ = sub.handler(ctx, event)
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, channel string, handler Handler) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &memorySubscription{
		broker:  b,
		channel: channel,
		id:      b.nextID,
		handler: handler,
	}
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[int]*memorySubscription)
	}
	b.subs[channel][sub.id] = sub
	return sub, nil
}

type memorySubscription struct {
	broker  *MemoryBroker
	channel string
	id      int
	handler Handler
	closed  atomic.Bool
	once    sync.Once
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.closed.Store(true)
		s.broker.mu.Lock()
		delete(s.broker.subs[s.channel], s.id)
		s.broker.mu.Unlock()
	})
	return nil
}
