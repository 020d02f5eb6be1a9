package chat

import (
	"time"

	"inkchat/internal/store"
)

// Message is one direct message. Read flips false to true exactly once,
// via the read-marking operation, and only for the receiver.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	ReceiverID     string
	Content        string
	Read           bool
	CreatedAt      time.Time
}

func DecodeMessage(doc store.Document) (Message, error) {
	d := newDecoder(doc)
	msg := Message{
		ID:             doc.ID,
		ConversationID: d.string_("conversationId", true),
		SenderID:       d.string_("senderId", true),
		ReceiverID:     d.string_("receiverId", true),
		Content:        d.string_("content", true),
		Read:           d.bool_("read", true),
		CreatedAt:      d.time_("createdAt", true),
	}
	if err := d.err(); err != nil {
		return Message{}, err
	}
	return msg, nil
}

func EncodeMessageFields(conversationID, senderID, receiverID, content string, createdAt time.Time) map[string]any {
	return map[string]any{
		"conversationId": conversationID,
		"senderId":       senderID,
		"receiverId":     receiverID,
		"content":        content,
		"read":           false,
		"createdAt":      createdAt.UTC().Format(time.RFC3339Nano),
	}
}
