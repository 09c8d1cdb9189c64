package dto

import (
	"time"

	"esperit-be/internal/entity"

	"github.com/google/uuid"
)

type ConversationResponse struct {
	Id                uuid.UUID  `json:"id"`
	PersonaId         uuid.UUID  `json:"persona_id"`
	IsGuestSession    bool       `json:"is_guest_session"`
	GuestMessageCount int        `json:"guest_message_count"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

func ToConversationResponse(conversation *entity.Conversation) *ConversationResponse {
	return &ConversationResponse{
		Id:                conversation.Id,
		PersonaId:         conversation.PersonaId,
		IsGuestSession:    conversation.IsGuestSession,
		GuestMessageCount: conversation.GuestMessageCount,
		CreatedAt:         conversation.CreatedAt,
		UpdatedAt:         conversation.UpdatedAt,
	}
}

type ConversationListResponse struct {
	Conversations []*ConversationResponse `json:"conversations"`
	Total         int                     `json:"total"`
}
