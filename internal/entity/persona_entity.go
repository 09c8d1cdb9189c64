package entity

import (
	"time"

	"github.com/google/uuid"
)

// Persona is a configured chat character. The chat core treats it as an
// opaque prompt source; traits are free-form key/value pairs rendered into
// the system prompt.
type Persona struct {
	Id               uuid.UUID
	Slug             string
	Name             string
	ShortDescription string
	AvatarURL        *string
	Category         string
	SystemPrompt     string
	Traits           map[string]string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}
