package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBroker_PublishSubscribe(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()

	var received []Event
	sub, err := b.Subscribe(ctx, "store.messages", func(ctx context.Context, e Event) error {
		received = append(received, e)
		return nil
	})
	require.NoError(t, err)

	event := Event{
		Type:      "store.create",
		Payload:   json.RawMessage(`{"id":"m1"}`),
		Timestamp: time.Now().Unix(),
	}
	require.NoError(t, b.Publish(ctx, "store.messages", event))
	require.NoError(t, b.Publish(ctx, "store.conversations", event))

	require.Len(t, received, 1, "only the subscribed channel is delivered")
	assert.Equal(t, "store.create", received[0].Type)
	assert.JSONEq(t, `{"id":"m1"}`, string(received[0].Payload))

	require.NoError(t, sub.Close())
	require.NoError(t, b.Publish(ctx, "store.messages", event))
	assert.Len(t, received, 1, "nothing is delivered after close")

	require.NoError(t, sub.Close())
}

func TestMemoryBroker_MultipleSubscribers(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()

	var first, second int
	_, err := b.Subscribe(ctx, "store.messages", func(ctx context.Context, e Event) error {
		first++
		return nil
	})
	require.NoError(t, err)
	_, err = b.Subscribe(ctx, "store.messages", func(ctx context.Context, e Event) error {
		second++
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "store.messages", Event{Type: "store.create"}))

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}
