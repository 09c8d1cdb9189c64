package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendChatRequest struct {
	Message        string     `json:"message" validate:"required,min=1,max=4000"`
	PersonaId      *uuid.UUID `json:"persona_id"`
	PersonaSlug    string     `json:"persona_slug"`
	ConversationId *uuid.UUID `json:"conversation_id"`
	SessionKey     string     `json:"session_key" validate:"required,min=8,max=128"`
}

type ChatPersonaInfo struct {
	Id               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	AvatarURL        *string   `json:"avatar_url"`
	ShortDescription string    `json:"short_description"`
}

type SendChatResponse struct {
	Message        string          `json:"message"`
	ConversationId uuid.UUID       `json:"conversation_id"`
	Timestamp      time.Time       `json:"timestamp"`
	Persona        ChatPersonaInfo `json:"persona"`
	GuestLimit     *GuestLimitInfo `json:"guest_limit,omitempty"`
}

type ChatHistoryItem struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
