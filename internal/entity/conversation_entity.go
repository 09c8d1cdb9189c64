package entity

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is one ongoing chat between a visitor and a persona.
//
// Guest-accounting fields follow a one-way state machine: a record starts
// with IsGuestSession=true, UserId=nil and GuestMessageCount=0; accepted
// guest messages bump the counter; migration sets UserId and flips
// IsGuestSession to false exactly once, after which the counter is frozen.
// SessionKey is kept after migration for audit, so "active guest" queries
// must filter on IsGuestSession rather than the presence of SessionKey.
type Conversation struct {
	Id                uuid.UUID
	SessionKey        *string
	UserId            *uuid.UUID
	PersonaId         uuid.UUID
	IsGuestSession    bool
	GuestMessageCount int
	CreatedAt         time.Time
	UpdatedAt         *time.Time
	DeletedAt         *time.Time
	IsDeleted         bool
}

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           MessageRole
	Content        string
	CreatedAt      time.Time
}
