package services

import (
	"context"

	"inkchat/internal/domain/chat"
	"inkchat/internal/store"
	"inkchat/pkg/logger"
)

// UnreadService computes unread-message counts.
//
// Error-swallowing policy, on purpose: unread badges are decorative and must
// never block chat usage, so every failure here is logged and reported as
// zero instead of propagating.
type UnreadService struct {
	store store.Store
	log   *logger.Logger
}

func NewUnreadService(st store.Store, log *logger.Logger) *UnreadService {
	return &UnreadService{store: st, log: log}
}

// Global counts unread messages addressed to the user across all
// conversations. The count is the store's total for the filtered query, not
// the fetched page size.
func (s *UnreadService) Global(ctx context.Context, userID string) int64 {
	page, err := s.store.List(ctx, store.CollectionMessages, store.Query{
		Filters: []store.Filter{
			store.Equal("receiverId", userID),
			store.Equal("read", false),
		},
		Limit: chat.PageLimit,
	})
	if err != nil {
		s.log.Warnf("unread: global count for %s failed, reporting 0: %v", userID, err)
		return 0
	}
	return page.Total
}

// ForConversation is Global scoped to a single conversation, with the same
// fail-to-zero policy.
func (s *UnreadService) ForConversation(ctx context.Context, conversationID, userID string) int64 {
	page, err := s.store.List(ctx, store.CollectionMessages, store.Query{
		Filters: []store.Filter{
			store.Equal("conversationId", conversationID),
			store.Equal("receiverId", userID),
			store.Equal("read", false),
		},
		Limit: chat.PageLimit,
	})
	if err != nil {
		s.log.Warnf("unread: conversation count for %s failed, reporting 0: %v", conversationID, err)
		return 0
	}
	return page.Total
}
