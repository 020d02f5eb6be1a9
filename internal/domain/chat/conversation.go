package chat

import (
	"sort"
	"time"

	"inkchat/internal/store"
)

const (
	// PreviewLength caps the conversation's lastMessage mirror.
	PreviewLength = 100
	// PageLimit caps conversation and message listings.
	PageLimit = 100
)

// Conversation pairs exactly two users for messaging. ParticipantIDs are
// kept sorted ascending; the sorted pair is the deduplication key.
type Conversation struct {
	ID              string
	ParticipantIDs  []string
	LastMessage     string
	LastMessageTime time.Time
	CreatedAt       time.Time
}

// CanonicalPair returns the two ids sorted ascending.
func CanonicalPair(a, b string) []string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair
}

// IsExactPair reports whether the conversation has exactly these two
// members. Guards against a broader contains filter returning supersets.
func (c Conversation) IsExactPair(a, b string) bool {
	if len(c.ParticipantIDs) != 2 {
		return false
	}
	return c.hasParticipant(a) && c.hasParticipant(b)
}

// OtherParticipant returns the peer id for the given user.
func (c Conversation) OtherParticipant(userID string) string {
	for _, id := range c.ParticipantIDs {
		if id != userID {
			return id
		}
	}
	return ""
}

func (c Conversation) hasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// EnrichedConversation is the presentation-facing view: the conversation
// plus the resolved peer and its unread count.
type EnrichedConversation struct {
	Conversation
	Peer        Peer
	UnreadCount int64
}

type Peer struct {
	ID    string
	Name  string
	Email string
}

func DecodeConversation(doc store.Document) (Conversation, error) {
	d := newDecoder(doc)
	conv := Conversation{
		ID:              doc.ID,
		ParticipantIDs:  d.stringSlice("participantIds", true),
		LastMessage:     d.string_("lastMessage", false),
		LastMessageTime: d.time_("lastMessageTime", false),
		CreatedAt:       d.time_("createdAt", true),
	}
	if err := d.err(); err != nil {
		return Conversation{}, err
	}
	if len(conv.ParticipantIDs) != 2 {
		return Conversation{}, d.fail("participantIds", "expected exactly two participants")
	}
	return conv, nil
}

// EncodeConversationFields produces the field map for a new conversation.
func EncodeConversationFields(participantIDs []string, createdAt time.Time) map[string]any {
	return map[string]any{
		"participantIds": participantIDs,
		"lastMessage":    "",
		"createdAt":      createdAt.UTC().Format(time.RFC3339Nano),
	}
}

// EncodePreviewFields produces the partial update applied after a send.
func EncodePreviewFields(preview string, at time.Time) map[string]any {
	return map[string]any{
		"lastMessage":     preview,
		"lastMessageTime": at.UTC().Format(time.RFC3339Nano),
	}
}

// TruncatePreview clips message content to the preview cap.
func TruncatePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLength {
		return content
	}
	return string(runes[:PreviewLength])
}
