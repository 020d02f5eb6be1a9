package chatapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkchat/internal/bridge"
	"inkchat/internal/cache"
	"inkchat/internal/services"
	"inkchat/internal/store"
	"inkchat/pkg/logger"
)

func newTestAPI(t *testing.T) (*store.MemoryStore, *cache.Cache, *ChatAPI) {
	t.Helper()
	st := store.NewMemoryStore()
	log := logger.NewNop()
	queryCache := cache.New()

	users := services.NewUserService(st, log)
	unread := services.NewUnreadService(st, log)
	messages := services.NewMessageService(st, log)
	directory := services.NewDirectoryService(st, users, unread, log)
	api := New(directory, messages, unread, queryCache, log)

	liveBridge := bridge.New(st, queryCache, nil, log)
	require.NoError(t, liveBridge.Start(context.Background()))
	t.Cleanup(func() { liveBridge.Close() })

	return st, queryCache, api
}

func TestChatAPI_SendInvalidatesCachedMessages(t *testing.T) {
	ctx := context.Background()
	_, _, api := newTestAPI(t)

	conv, err := api.StartConversation(ctx, "alice", "bob")
	require.NoError(t, err)

	_, err = api.SendMessage(ctx, conv.ID, "alice", "bob", "first")
	require.NoError(t, err)

	// Prime the cached view.
	list, err := api.Messages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// The store event invalidates the cached list, so the next read sees
	// the new message well inside the freshness window.
	_, err = api.SendMessage(ctx, conv.ID, "bob", "alice", "second")
	require.NoError(t, err)

	list, err = api.Messages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Content)
}

func TestChatAPI_UnreadFollowsReadMarking(t *testing.T) {
	ctx := context.Background()
	_, _, api := newTestAPI(t)

	conv, err := api.StartConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = api.SendMessage(ctx, conv.ID, "bob", "alice", "hi")
	require.NoError(t, err)

	assert.EqualValues(t, 1, api.GlobalUnread(ctx, "alice"))
	assert.EqualValues(t, 1, api.ConversationUnread(ctx, conv.ID, "alice"))

	require.NoError(t, api.MarkConversationRead(ctx, conv.ID, "alice"))

	// The read-flag flips invalidated the unread views.
	assert.EqualValues(t, 0, api.GlobalUnread(ctx, "alice"))
	assert.EqualValues(t, 0, api.ConversationUnread(ctx, conv.ID, "alice"))
}

func TestChatAPI_ConversationsCachedUntilChange(t *testing.T) {
	ctx := context.Background()
	_, queryCache, api := newTestAPI(t)

	conv, err := api.StartConversation(ctx, "alice", "bob")
	require.NoError(t, err)

	list, err := api.Conversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)

	// The listing is now served from cache.
	_, ok := queryCache.Get("conversations:alice")
	assert.True(t, ok)

	// A new message bumps the conversation and drops the cached listing.
	_, err = api.SendMessage(ctx, conv.ID, "alice", "bob", "hello")
	require.NoError(t, err)

	_, ok = queryCache.Get("conversations:alice")
	assert.False(t, ok)

	list, err = api.Conversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "hello", list[0].LastMessage)
}
