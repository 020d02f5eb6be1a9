package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inkchat/internal/domain/chat"
	"inkchat/internal/store"
	inkchat_errors "inkchat/pkg/errors"
	"inkchat/pkg/logger"
)

// MessageService appends to and reads the message log of a conversation.
type MessageService struct {
	store store.Store
	log   *logger.Logger
}

func NewMessageService(st store.Store, log *logger.Logger) *MessageService {
	return &MessageService{store: st, log: log}
}

// Send appends a message and mirrors its content into the parent
// conversation's preview. The two writes are not transactional: if the
// preview update fails after the message is written, the stale preview is
// accepted and heals on the next message.
func (s *MessageService) Send(ctx context.Context, conversationID, senderID, receiverID, content string) (chat.Message, error) {
	if strings.TrimSpace(content) == "" {
		return chat.Message{}, fmt.Errorf("%w: empty message content", inkchat_errors.ErrInvalidInput)
	}

	doc, err := s.store.Get(ctx, store.CollectionConversations, conversationID)
	if err != nil {
		return chat.Message{}, err
	}
	conv, err := chat.DecodeConversation(doc)
	if err != nil {
		return chat.Message{}, err
	}
	if !conv.IsExactPair(senderID, receiverID) || senderID == receiverID {
		return chat.Message{}, fmt.Errorf("%w: sender and receiver must be the conversation's participants", inkchat_errors.ErrForbidden)
	}

	now := time.Now().UTC()
	created, err := s.store.Create(ctx, store.CollectionMessages,
		chat.EncodeMessageFields(conversationID, senderID, receiverID, content, now))
	if err != nil {
		return chat.Message{}, err
	}
	msg, err := chat.DecodeMessage(created)
	if err != nil {
		return chat.Message{}, err
	}

	preview := chat.TruncatePreview(content)
	if _, err := s.store.Update(ctx, store.CollectionConversations, conversationID,
		chat.EncodePreviewFields(preview, now)); err != nil {
		// Message exists; the preview stays stale until the next send.
		s.log.Warnf("messages: preview update for conversation %s failed: %v", conversationID, err)
	}

	return msg, nil
}

// List returns the conversation's messages newest first, capped at 100.
func (s *MessageService) List(ctx context.Context, conversationID string) ([]chat.Message, error) {
	page, err := s.store.List(ctx, store.CollectionMessages, store.Query{
		Filters: []store.Filter{store.Equal("conversationId", conversationID)},
		Order:   []store.Order{store.OrderDesc("createdAt")},
		Limit:   chat.PageLimit,
	})
	if err != nil {
		return nil, err
	}

	messages := make([]chat.Message, 0, len(page.Documents))
	for _, doc := range page.Documents {
		msg, err := chat.DecodeMessage(doc)
		if err != nil {
			s.log.Warnf("messages: skip malformed message %s: %v", doc.ID, err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// MarkRead flips read on every unread message addressed to the user in the
// conversation. Updates are independent per message; one that arrives while
// this runs is picked up by the next invocation, so callers re-invoke it on
// every change to the active conversation's message list.
func (s *MessageService) MarkRead(ctx context.Context, conversationID, userID string) error {
	page, err := s.store.List(ctx, store.CollectionMessages, store.Query{
		Filters: []store.Filter{
			store.Equal("conversationId", conversationID),
			store.Equal("receiverId", userID),
			store.Equal("read", false),
		},
		Limit: chat.PageLimit,
	})
	if err != nil {
		return err
	}

	var firstErr error
	for _, doc := range page.Documents {
		if _, err := s.store.Update(ctx, store.CollectionMessages, doc.ID, map[string]any{"read": true}); err != nil {
			s.log.Warnf("messages: mark read %s: %v", doc.ID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
