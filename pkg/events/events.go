package events

import (
	"context"
	"encoding/json"
)

type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

type Handler func(ctx context.Context, event Event) error

// Subscription is a live channel subscription. Close is idempotent and no
// handler is invoked after it returns.
type Subscription interface {
	Close() error
}

type Publisher interface {
	Publish(ctx context.Context, channel string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handler Handler) (Subscription, error)
}

type Broker interface {
	Publisher
	Subscriber
}
