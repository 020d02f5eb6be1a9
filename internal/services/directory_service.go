package services

import (
	"context"
	"sync"
	"time"

	"inkchat/internal/domain/chat"
	"inkchat/internal/store"
	inkchat_errors "inkchat/pkg/errors"
	"inkchat/pkg/logger"
)

// DirectoryService resolves and lists the unique conversation between a
// pair of users.
type DirectoryService struct {
	store  store.Store
	users  *UserService
	unread *UnreadService
	log    *logger.Logger
}

func NewDirectoryService(st store.Store, users *UserService, unread *UnreadService, log *logger.Logger) *DirectoryService {
	return &DirectoryService{store: st, users: users, unread: unread, log: log}
}

// GetOrCreate returns the conversation between the two users, creating it
// on first message intent. Symmetric in its arguments: the pair is
// canonicalized by ascending sort before lookup.
//
// Two concurrent callers can both miss the existence check and create
// duplicate conversations; the store enforces no uniqueness on the sorted
// pair. Known correctness gap. Closing it means either a store-level unique
// constraint or a deterministic document id derived from the sorted pair.
func (s *DirectoryService) GetOrCreate(ctx context.Context, currentUserID, otherUserID string) (chat.Conversation, error) {
	if currentUserID == "" || otherUserID == "" || currentUserID == otherUserID {
		return chat.Conversation{}, inkchat_errors.ErrInvalidInput
	}

	pair := chat.CanonicalPair(currentUserID, otherUserID)

	page, err := s.store.List(ctx, store.CollectionConversations, store.Query{
		Filters: []store.Filter{
			store.Equal("participantIds", pair[0]),
			store.Equal("participantIds", pair[1]),
		},
		Limit: store.DefaultListLimit,
	})
	if err != nil {
		return chat.Conversation{}, err
	}

	// The membership filter can return conversations with more than two
	// participants; keep only the exact pair.
	for _, doc := range page.Documents {
		conv, err := chat.DecodeConversation(doc)
		if err != nil {
			s.log.Warnf("directory: skip malformed conversation %s: %v", doc.ID, err)
			continue
		}
		if conv.IsExactPair(pair[0], pair[1]) {
			return conv, nil
		}
	}

	doc, err := s.store.Create(ctx, store.CollectionConversations, chat.EncodeConversationFields(pair, time.Now().UTC()))
	if err != nil {
		return chat.Conversation{}, err
	}
	return chat.DecodeConversation(doc)
}

// List returns the user's conversations by recency, enriched with the
// peer's profile and per-conversation unread count. Profile lookups that
// fail fall back to a name synthesized from the id prefix.
func (s *DirectoryService) List(ctx context.Context, userID string) ([]chat.EnrichedConversation, error) {
	page, err := s.store.List(ctx, store.CollectionConversations, store.Query{
		Filters: []store.Filter{store.Contains("participantIds", userID)},
		Order:   []store.Order{store.OrderDesc("lastMessageTime")},
		Limit:   chat.PageLimit,
	})
	if err != nil {
		return nil, err
	}

	conversations := make([]chat.Conversation, 0, len(page.Documents))
	for _, doc := range page.Documents {
		conv, err := chat.DecodeConversation(doc)
		if err != nil {
			s.log.Warnf("directory: skip malformed conversation %s: %v", doc.ID, err)
			continue
		}
		conversations = append(conversations, conv)
	}

	enriched := make([]chat.EnrichedConversation, len(conversations))
	var wg sync.WaitGroup
	for i, conv := range conversations {
		wg.Add(1)
		go func(i int, conv chat.Conversation) {
			defer wg.Done()
			enriched[i] = s.enrich(ctx, userID, conv)
		}(i, conv)
	}
	wg.Wait()

	return enriched, nil
}

func (s *DirectoryService) enrich(ctx context.Context, userID string, conv chat.Conversation) chat.EnrichedConversation {
	peerID := conv.OtherParticipant(userID)
	peer := chat.Peer{ID: peerID, Name: chat.PlaceholderName(peerID)}

	profile, err := s.users.Get(ctx, peerID)
	if err != nil {
		s.log.Warnf("directory: profile lookup for %s: %v", peerID, err)
	} else if profile != nil {
		peer.Name = profile.Name
		peer.Email = profile.Email
	}

	return chat.EnrichedConversation{
		Conversation: conv,
		Peer:         peer,
		UnreadCount:  s.unread.ForConversation(ctx, conv.ID, userID),
	}
}
