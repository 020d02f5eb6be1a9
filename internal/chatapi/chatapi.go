// Package chatapi is the consumer-facing contract of the messaging core:
// cached queries over conversations, messages and unread counts, plus the
// start/send/mark-read commands. Cached views are derived and disposable;
// the realtime bridge invalidates them and the freshness windows bound
// their staleness when no signal arrives.
package chatapi

import (
	"context"
	"fmt"

	"inkchat/internal/cache"
	"inkchat/internal/domain/chat"
	"inkchat/internal/services"
	"inkchat/pkg/logger"
)

type ChatAPI struct {
	directory *services.DirectoryService
	messages  *services.MessageService
	unread    *services.UnreadService
	cache     *cache.Cache
	log       *logger.Logger
}

func New(directory *services.DirectoryService, messages *services.MessageService, unread *services.UnreadService, c *cache.Cache, log *logger.Logger) *ChatAPI {
	return &ChatAPI{directory: directory, messages: messages, unread: unread, cache: c, log: log}
}

// --- Queries ---

func (a *ChatAPI) Conversations(ctx context.Context, userID string) ([]chat.EnrichedConversation, error) {
	key := "conversations:" + userID
	if v, ok := a.cache.Get(key); ok {
		if items, ok := v.([]chat.EnrichedConversation); ok {
			return items, nil
		}
	}
	items, err := a.directory.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	a.cache.Set(key, items, cache.ConversationsTTL)
	return items, nil
}

func (a *ChatAPI) Messages(ctx context.Context, conversationID string) ([]chat.Message, error) {
	key := "messages:" + conversationID
	if v, ok := a.cache.Get(key); ok {
		if items, ok := v.([]chat.Message); ok {
			return items, nil
		}
	}
	items, err := a.messages.List(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	a.cache.Set(key, items, cache.MessagesTTL)
	return items, nil
}

func (a *ChatAPI) GlobalUnread(ctx context.Context, userID string) int64 {
	key := "unread:" + userID
	if v, ok := a.cache.Get(key); ok {
		if count, ok := v.(int64); ok {
			return count
		}
	}
	count := a.unread.Global(ctx, userID)
	a.cache.Set(key, count, cache.UnreadTTL)
	return count
}

func (a *ChatAPI) ConversationUnread(ctx context.Context, conversationID, userID string) int64 {
	key := fmt.Sprintf("unread:%s:%s", userID, conversationID)
	if v, ok := a.cache.Get(key); ok {
		if count, ok := v.(int64); ok {
			return count
		}
	}
	count := a.unread.ForConversation(ctx, conversationID, userID)
	a.cache.Set(key, count, cache.UnreadTTL)
	return count
}

// --- Commands ---

// StartConversation resolves or lazily creates the conversation with the
// other user.
func (a *ChatAPI) StartConversation(ctx context.Context, currentUserID, otherUserID string) (chat.Conversation, error) {
	return a.directory.GetOrCreate(ctx, currentUserID, otherUserID)
}

// SendMessage appends to the log. The resulting store event flows back
// through the bridge and invalidates the affected cached views.
func (a *ChatAPI) SendMessage(ctx context.Context, conversationID, senderID, receiverID, content string) (chat.Message, error) {
	return a.messages.Send(ctx, conversationID, senderID, receiverID, content)
}

func (a *ChatAPI) MarkConversationRead(ctx context.Context, conversationID, userID string) error {
	return a.messages.MarkRead(ctx, conversationID, userID)
}
