package bridge

import (
	"context"
	"sync"
	"sync/atomic"

	"inkchat/internal/store"
	"inkchat/pkg/logger"
)

// Invalidator marks cached views stale. Satisfied by *cache.Cache.
type Invalidator interface {
	Invalidate(prefix string) int
}

// NotifyFunc forwards an invalidation signal to connected clients.
type NotifyFunc func(collection string, action store.Action)

// Bridge translates store change events into cache invalidation. It pushes
// no data itself: it marks views stale so the next read recomputes, which
// sidesteps merging partial event payloads into cache shape.
type Bridge struct {
	store  store.Store
	cache  Invalidator
	notify NotifyFunc
	log    *logger.Logger

	mu     sync.Mutex
	subs   []store.Subscription
	closed atomic.Bool
	once   sync.Once
}

func New(st store.Store, cache Invalidator, notify NotifyFunc, log *logger.Logger) *Bridge {
	return &Bridge{store: st, cache: cache, notify: notify, log: log}
}

// Start subscribes to the messages and conversations change streams.
func (b *Bridge) Start(ctx context.Context) error {
	msgSub, err := b.store.Subscribe(ctx, store.CollectionMessages, b.onMessageEvent)
	if err != nil {
		return err
	}
	convSub, err := b.store.Subscribe(ctx, store.CollectionConversations, b.onConversationEvent)
	if err != nil {
		_ = msgSub.Close()
		return err
	}

	b.mu.Lock()
	b.subs = append(b.subs, msgSub, convSub)
	b.mu.Unlock()
	return nil
}

func (b *Bridge) onMessageEvent(e store.Event) {
	if b.closed.Load() {
		return
	}
	switch e.Action {
	case store.ActionCreate:
		// A new message changes all three views.
		b.cache.Invalidate("messages:")
		b.cache.Invalidate("conversations:")
		b.cache.Invalidate("unread:")
	case store.ActionUpdate:
		// An update is a read-flag flip; ordering and previews are intact.
		b.cache.Invalidate("messages:")
		b.cache.Invalidate("unread:")
	default:
		return
	}
	b.forward(e)
}

func (b *Bridge) onConversationEvent(e store.Event) {
	if b.closed.Load() {
		return
	}
	switch e.Action {
	case store.ActionCreate, store.ActionUpdate:
		b.cache.Invalidate("conversations:")
	default:
		return
	}
	b.forward(e)
}

func (b *Bridge) forward(e store.Event) {
	if b.notify != nil {
		b.notify(e.Collection, e.Action)
	}
}

// Close stops both channel listeners. Idempotent; no invalidation fires
// after it returns.
func (b *Bridge) Close() error {
	var err error
	b.once.Do(func() {
		b.closed.Store(true)
		b.mu.Lock()
		subs := b.subs
		b.subs = nil
		b.mu.Unlock()
		for _, sub := range subs {
			if cerr := sub.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}
