package httpdto

import (
	"time"

	"inkchat/internal/domain/chat"
)

type StartConversationRequest struct {
	OtherUserID string `json:"other_user_id" binding:"required"`
}

type SendMessageRequest struct {
	ConversationID string `json:"conversation_id" binding:"required"`
	ReceiverID     string `json:"receiver_id" binding:"required"`
	Content        string `json:"content" binding:"required"`
}

type CreateProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email,omitempty"`
}

type ConversationDTO struct {
	ID              string   `json:"id"`
	ParticipantIDs  []string `json:"participant_ids"`
	LastMessage     string   `json:"last_message,omitempty"`
	LastMessageTime string   `json:"last_message_time,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

type PeerDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type EnrichedConversationDTO struct {
	ConversationDTO
	Peer        PeerDTO `json:"peer"`
	UnreadCount int64   `json:"unread_count"`
}

type ListConversationsResponse struct {
	Conversations []EnrichedConversationDTO `json:"conversations"`
}

type MessageDTO struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	ReceiverID     string `json:"receiver_id"`
	Content        string `json:"content"`
	Read           bool   `json:"read"`
	CreatedAt      string `json:"created_at"`
}

type ListMessagesResponse struct {
	Messages []MessageDTO `json:"messages"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type ProfileDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
}

type ListProfilesResponse struct {
	Users []ProfileDTO `json:"users"`
}

func FromConversation(c chat.Conversation) ConversationDTO {
	dto := ConversationDTO{
		ID:             c.ID,
		ParticipantIDs: c.ParticipantIDs,
		LastMessage:    c.LastMessage,
		CreatedAt:      c.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if !c.LastMessageTime.IsZero() {
		dto.LastMessageTime = c.LastMessageTime.UTC().Format(time.RFC3339Nano)
	}
	return dto
}

func FromEnrichedConversation(c chat.EnrichedConversation) EnrichedConversationDTO {
	return EnrichedConversationDTO{
		ConversationDTO: FromConversation(c.Conversation),
		Peer:            PeerDTO{ID: c.Peer.ID, Name: c.Peer.Name, Email: c.Peer.Email},
		UnreadCount:     c.UnreadCount,
	}
}

func FromEnrichedConversationSlice(items []chat.EnrichedConversation) []EnrichedConversationDTO {
	out := make([]EnrichedConversationDTO, 0, len(items))
	for _, item := range items {
		out = append(out, FromEnrichedConversation(item))
	}
	return out
}

func FromMessage(m chat.Message) MessageDTO {
	return MessageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		ReceiverID:     m.ReceiverID,
		Content:        m.Content,
		Read:           m.Read,
		CreatedAt:      m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func FromMessageSlice(items []chat.Message) []MessageDTO {
	out := make([]MessageDTO, 0, len(items))
	for _, item := range items {
		out = append(out, FromMessage(item))
	}
	return out
}

func FromProfile(p chat.Profile) ProfileDTO {
	return ProfileDTO{
		ID:        p.ID,
		UserID:    p.UserID,
		Name:      p.Name,
		Email:     p.Email,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func FromProfileSlice(items []chat.Profile) []ProfileDTO {
	out := make([]ProfileDTO, 0, len(items))
	for _, item := range items {
		out = append(out, FromProfile(item))
	}
	return out
}
