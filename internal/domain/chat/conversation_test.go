package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkchat/internal/store"
	inkchat_errors "inkchat/pkg/errors"
)

func TestCanonicalPair(t *testing.T) {
	assert.Equal(t, []string{"alice", "bob"}, CanonicalPair("bob", "alice"))
	assert.Equal(t, []string{"alice", "bob"}, CanonicalPair("alice", "bob"))
}

func TestConversation_IsExactPair(t *testing.T) {
	pair := Conversation{ParticipantIDs: []string{"alice", "bob"}}
	assert.True(t, pair.IsExactPair("alice", "bob"))
	assert.True(t, pair.IsExactPair("bob", "alice"))
	assert.False(t, pair.IsExactPair("alice", "carol"))

	triple := Conversation{ParticipantIDs: []string{"alice", "bob", "carol"}}
	assert.False(t, triple.IsExactPair("alice", "bob"))
}

func TestConversation_OtherParticipant(t *testing.T) {
	conv := Conversation{ParticipantIDs: []string{"alice", "bob"}}
	assert.Equal(t, "bob", conv.OtherParticipant("alice"))
	assert.Equal(t, "alice", conv.OtherParticipant("bob"))
}

func TestTruncatePreview(t *testing.T) {
	assert.Equal(t, "short", TruncatePreview("short"))

	long := strings.Repeat("x", 150)
	assert.Equal(t, strings.Repeat("x", 100), TruncatePreview(long))

	// Clipping counts runes, never splitting a multi-byte character.
	wide := strings.Repeat("é", 150)
	clipped := TruncatePreview(wide)
	assert.Equal(t, strings.Repeat("é", 100), clipped)
}

func TestDecodeConversation(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid document", func(t *testing.T) {
		conv, err := DecodeConversation(store.Document{
			ID:         "c1",
			Collection: store.CollectionConversations,
			Fields: map[string]any{
				"participantIds":  []any{"alice", "bob"},
				"lastMessage":     "hi",
				"lastMessageTime": now.Format(time.RFC3339Nano),
				"createdAt":       now.Format(time.RFC3339Nano),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "c1", conv.ID)
		assert.Equal(t, []string{"alice", "bob"}, conv.ParticipantIDs)
		assert.Equal(t, "hi", conv.LastMessage)
	})

	t.Run("preview fields are optional", func(t *testing.T) {
		conv, err := DecodeConversation(store.Document{
			ID: "c2",
			Fields: map[string]any{
				"participantIds": []any{"alice", "bob"},
				"createdAt":      now.Format(time.RFC3339Nano),
			},
		})
		require.NoError(t, err)
		assert.Empty(t, conv.LastMessage)
		assert.True(t, conv.LastMessageTime.IsZero())
	})

	t.Run("participant count other than two fails", func(t *testing.T) {
		_, err := DecodeConversation(store.Document{
			ID:         "c3",
			Collection: store.CollectionConversations,
			Fields: map[string]any{
				"participantIds": []any{"alice"},
				"createdAt":      now.Format(time.RFC3339Nano),
			},
		})
		require.Error(t, err)
		var decodeErr *inkchat_errors.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, "participantIds", decodeErr.Field)
		assert.Equal(t, "c3", decodeErr.DocumentID)
	})

	t.Run("wrong field shape fails", func(t *testing.T) {
		_, err := DecodeConversation(store.Document{
			ID: "c4",
			Fields: map[string]any{
				"participantIds": "alice,bob",
				"createdAt":      now.Format(time.RFC3339Nano),
			},
		})
		require.Error(t, err)
		var decodeErr *inkchat_errors.DecodeError
		assert.ErrorAs(t, err, &decodeErr)
	})
}

func TestDecodeMessage(t *testing.T) {
	now := time.Now().UTC()

	msg, err := DecodeMessage(store.Document{
		ID: "m1",
		Fields: map[string]any{
			"conversationId": "c1",
			"senderId":       "alice",
			"receiverId":     "bob",
			"content":        "hi",
			"read":           false,
			"createdAt":      now.Format(time.RFC3339Nano),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", msg.ConversationID)
	assert.False(t, msg.Read)

	_, err = DecodeMessage(store.Document{
		ID: "m2",
		Fields: map[string]any{
			"conversationId": "c1",
			"senderId":       "alice",
			"receiverId":     "bob",
			"content":        "hi",
			"read":           "nope",
			"createdAt":      now.Format(time.RFC3339Nano),
		},
	})
	require.Error(t, err)
	assert.True(t, inkchat_errors.IsDecodeError(err))
}

func TestPlaceholderName(t *testing.T) {
	assert.Equal(t, "User 64c2f1aa", PlaceholderName("64c2f1aa0b8e"))
	assert.Equal(t, "User ab", PlaceholderName("ab"))
}
