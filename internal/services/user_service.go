package services

import (
	"context"
	"errors"
	"time"

	"inkchat/internal/domain/chat"
	"inkchat/internal/store"
	inkchat_errors "inkchat/pkg/errors"
	"inkchat/pkg/logger"
)

// ProfileStore is the store surface the user directory needs: the generic
// contract plus caller-chosen ids (profile documents use the account id).
type ProfileStore interface {
	store.Store
	store.IDCreator
}

// UserService is the user directory: profile bootstrap after signup and the
// lookups behind display names and the new-chat picker.
type UserService struct {
	store ProfileStore
	log   *logger.Logger
}

func NewUserService(st ProfileStore, log *logger.Logger) *UserService {
	return &UserService{store: st, log: log}
}

func (s *UserService) CreateProfile(ctx context.Context, userID, name, email string) (chat.Profile, error) {
	if userID == "" || name == "" {
		return chat.Profile{}, inkchat_errors.ErrInvalidInput
	}
	doc, err := s.store.CreateWithID(ctx, store.CollectionUsers, userID,
		chat.EncodeProfileFields(userID, name, email, time.Now().UTC()))
	if err != nil {
		return chat.Profile{}, err
	}
	return chat.DecodeProfile(doc)
}

// Get returns the user's profile, or nil when none was ever created. A
// missing profile is a soft absence; callers substitute a placeholder.
func (s *UserService) Get(ctx context.Context, userID string) (*chat.Profile, error) {
	doc, err := s.store.Get(ctx, store.CollectionUsers, userID)
	if err != nil {
		if errors.Is(err, inkchat_errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	profile, err := chat.DecodeProfile(doc)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Search finds profiles by name. Terms shorter than two characters return
// nothing; lookup failures degrade to an empty result.
func (s *UserService) Search(ctx context.Context, term string) []chat.Profile {
	if len(term) < 2 {
		return nil
	}
	page, err := s.store.List(ctx, store.CollectionUsers, store.Query{
		Filters: []store.Filter{store.Search("name", term)},
		Limit:   20,
	})
	if err != nil {
		s.log.Warnf("users: search %q failed: %v", term, err)
		return nil
	}
	return s.decodeProfiles(page.Documents)
}

// ListAll returns every profile except the caller's, newest first. Lookup
// failures degrade to an empty result.
func (s *UserService) ListAll(ctx context.Context, currentUserID string) []chat.Profile {
	page, err := s.store.List(ctx, store.CollectionUsers, store.Query{
		Filters: []store.Filter{store.NotEqual("userId", currentUserID)},
		Order:   []store.Order{store.OrderDesc("createdAt")},
		Limit:   chat.PageLimit,
	})
	if err != nil {
		s.log.Warnf("users: list failed: %v", err)
		return nil
	}
	return s.decodeProfiles(page.Documents)
}

func (s *UserService) decodeProfiles(docs []store.Document) []chat.Profile {
	profiles := make([]chat.Profile, 0, len(docs))
	for _, doc := range docs {
		p, err := chat.DecodeProfile(doc)
		if err != nil {
			s.log.Warnf("users: skip malformed profile %s: %v", doc.ID, err)
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles
}
