package bridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkchat/internal/store"
	"inkchat/pkg/logger"
)

// recordingInvalidator captures invalidated prefixes in order.
type recordingInvalidator struct {
	prefixes []string
}

func (r *recordingInvalidator) Invalidate(prefix string) int {
	r.prefixes = append(r.prefixes, prefix)
	return 1
}

func (r *recordingInvalidator) reset() { r.prefixes = nil }

type signal struct {
	collection string
	action     store.Action
}

func newTestBridge(t *testing.T) (*store.MemoryStore, *recordingInvalidator, *[]signal, *Bridge) {
	t.Helper()
	st := store.NewMemoryStore()
	inv := &recordingInvalidator{}
	var signals []signal
	b := New(st, inv, func(collection string, action store.Action) {
		signals = append(signals, signal{collection, action})
	}, logger.NewNop())
	require.NoError(t, b.Start(context.Background()))
	return st, inv, &signals, b
}

func TestBridge_MessageCreateInvalidatesAllViews(t *testing.T) {
	ctx := context.Background()
	st, inv, signals, b := newTestBridge(t)
	defer b.Close()

	_, err := st.Create(ctx, store.CollectionMessages, map[string]any{"content": "hi"})
	require.NoError(t, err)

	assert.Equal(t, []string{"messages:", "conversations:", "unread:"}, inv.prefixes)
	require.Len(t, *signals, 1)
	assert.Equal(t, store.CollectionMessages, (*signals)[0].collection)
	assert.Equal(t, store.ActionCreate, (*signals)[0].action)
}

func TestBridge_MessageUpdateLeavesConversationsCached(t *testing.T) {
	ctx := context.Background()
	st, inv, _, b := newTestBridge(t)
	defer b.Close()

	created, err := st.Create(ctx, store.CollectionMessages, map[string]any{"read": false})
	require.NoError(t, err)
	inv.reset()

	_, err = st.Update(ctx, store.CollectionMessages, created.ID, map[string]any{"read": true})
	require.NoError(t, err)

	assert.Equal(t, []string{"messages:", "unread:"}, inv.prefixes)
}

func TestBridge_MessageDeleteIgnored(t *testing.T) {
	ctx := context.Background()
	st, inv, signals, b := newTestBridge(t)
	defer b.Close()

	created, err := st.Create(ctx, store.CollectionMessages, map[string]any{"content": "hi"})
	require.NoError(t, err)
	inv.reset()
	*signals = nil

	require.NoError(t, st.Delete(ctx, store.CollectionMessages, created.ID))

	assert.Empty(t, inv.prefixes)
	assert.Empty(t, *signals)
}

func TestBridge_ConversationEvents(t *testing.T) {
	ctx := context.Background()
	st, inv, _, b := newTestBridge(t)
	defer b.Close()

	created, err := st.Create(ctx, store.CollectionConversations, map[string]any{"lastMessage": ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"conversations:"}, inv.prefixes)

	inv.reset()
	_, err = st.Update(ctx, store.CollectionConversations, created.ID, map[string]any{"lastMessage": "hi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"conversations:"}, inv.prefixes)
}

func TestBridge_CloseStopsInvalidation(t *testing.T) {
	ctx := context.Background()
	st, inv, _, b := newTestBridge(t)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, err := st.Create(ctx, store.CollectionMessages, map[string]any{"content": "hi"})
	require.NoError(t, err)

	assert.Empty(t, inv.prefixes, "no invalidation after close")
}
