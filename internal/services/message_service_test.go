package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkchat/internal/domain/chat"
	"inkchat/internal/store"
	inkchat_errors "inkchat/pkg/errors"
)

func TestMessageService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("appends unread and mirrors the preview", func(t *testing.T) {
		env := newTestEnv()
		conv, err := env.directory.GetOrCreate(ctx, "alice", "bob")
		require.NoError(t, err)

		msg, err := env.messages.Send(ctx, conv.ID, "alice", "bob", "hello bob")
		require.NoError(t, err)
		assert.False(t, msg.Read, "a new message starts unread")
		assert.Equal(t, "hello bob", msg.Content)
		assert.Equal(t, "alice", msg.SenderID)
		assert.Equal(t, "bob", msg.ReceiverID)

		doc, err := env.store.Get(ctx, store.CollectionConversations, conv.ID)
		require.NoError(t, err)
		updated, err := chat.DecodeConversation(doc)
		require.NoError(t, err)
		assert.Equal(t, "hello bob", updated.LastMessage)
		assert.False(t, updated.LastMessageTime.IsZero())
	})

	t.Run("preview keeps the first 100 characters, the message all of them", func(t *testing.T) {
		env := newTestEnv()
		conv, err := env.directory.GetOrCreate(ctx, "alice", "bob")
		require.NoError(t, err)

		content := strings.Repeat("x", 150)
		msg, err := env.messages.Send(ctx, conv.ID, "alice", "bob", content)
		require.NoError(t, err)
		assert.Len(t, msg.Content, 150)

		doc, err := env.store.Get(ctx, store.CollectionConversations, conv.ID)
		require.NoError(t, err)
		updated, err := chat.DecodeConversation(doc)
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("x", 100), updated.LastMessage)
	})

	t.Run("rejects blank content", func(t *testing.T) {
		env := newTestEnv()
		conv, err := env.directory.GetOrCreate(ctx, "alice", "bob")
		require.NoError(t, err)

		_, err = env.messages.Send(ctx, conv.ID, "alice", "bob", "   \n\t")
		assert.ErrorIs(t, err, inkchat_errors.ErrInvalidInput)
	})

	t.Run("rejects a sender or receiver outside the pair", func(t *testing.T) {
		env := newTestEnv()
		conv, err := env.directory.GetOrCreate(ctx, "alice", "bob")
		require.NoError(t, err)

		_, err = env.messages.Send(ctx, conv.ID, "mallory", "bob", "hi")
		assert.ErrorIs(t, err, inkchat_errors.ErrForbidden)

		_, err = env.messages.Send(ctx, conv.ID, "alice", "alice", "hi")
		assert.ErrorIs(t, err, inkchat_errors.ErrForbidden)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.messages.Send(ctx, "missing", "alice", "bob", "hi")
		assert.ErrorIs(t, err, inkchat_errors.ErrNotFound)
	})
}

func TestMessageService_List(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	conv, err := env.directory.GetOrCreate(ctx, "alice", "bob")
	require.NoError(t, err)
	other, err := env.directory.GetOrCreate(ctx, "alice", "carol")
	require.NoError(t, err)

	for _, content := range []string{"first", "second", "third"} {
		_, err := env.messages.Send(ctx, conv.ID, "alice", "bob", content)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
	_, err = env.messages.Send(ctx, other.ID, "alice", "carol", "elsewhere")
	require.NoError(t, err)

	messages, err := env.messages.List(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3, "other conversations stay out")

	// Newest first.
	assert.Equal(t, "third", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
	assert.Equal(t, "first", messages[2].Content)
}

func TestMessageService_MarkRead(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	conv, err := env.directory.GetOrCreate(ctx, "alice", "bob")
	require.NoError(t, err)

	_, err = env.messages.Send(ctx, conv.ID, "bob", "alice", "to alice 1")
	require.NoError(t, err)
	_, err = env.messages.Send(ctx, conv.ID, "bob", "alice", "to alice 2")
	require.NoError(t, err)
	_, err = env.messages.Send(ctx, conv.ID, "alice", "bob", "to bob")
	require.NoError(t, err)

	require.NoError(t, env.messages.MarkRead(ctx, conv.ID, "alice"))

	messages, err := env.messages.List(ctx, conv.ID)
	require.NoError(t, err)
	for _, msg := range messages {
		if msg.ReceiverID == "alice" {
			assert.True(t, msg.Read)
		} else {
			assert.False(t, msg.Read, "only the reader's incoming messages flip")
		}
	}

	assert.EqualValues(t, 0, env.unread.ForConversation(ctx, conv.ID, "alice"))
	assert.EqualValues(t, 1, env.unread.ForConversation(ctx, conv.ID, "bob"))

	// A second pass has nothing left to flip.
	require.NoError(t, env.messages.MarkRead(ctx, conv.ID, "alice"))
}
