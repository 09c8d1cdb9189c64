package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySessionKey matches conversations owned by an anonymous session.
type BySessionKey struct {
	SessionKey string
}

func (s BySessionKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_key = ?", s.SessionKey)
}

// GuestOnly restricts to records still in the guest state. Migrated records
// keep their session_key, so guest queries must always combine this with
// BySessionKey instead of relying on session_key presence.
type GuestOnly struct{}

func (s GuestOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_guest_session = ?", true)
}

// ByUserID matches conversations owned by an authenticated user.
type ByUserID struct {
	UserID uuid.UUID
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// ByPersonaID matches conversations with a given persona.
type ByPersonaID struct {
	PersonaID uuid.UUID
}

func (s ByPersonaID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("persona_id = ?", s.PersonaID)
}

// ByConversationID filters messages belonging to one conversation.
type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}
