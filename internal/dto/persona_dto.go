package dto

import (
	"time"

	"esperit-be/internal/entity"

	"github.com/google/uuid"
)

// CreatePersonaRequest carries a user-authored persona. Name and system
// prompt are the minimum viable character; everything else is presentation.
type CreatePersonaRequest struct {
	Name             string            `json:"name" validate:"required,min=2,max=100"`
	SystemPrompt     string            `json:"system_prompt" validate:"required,min=10"`
	ShortDescription string            `json:"short_description" validate:"max=300"`
	Category         string            `json:"category" validate:"max=50"`
	AvatarURL        *string           `json:"avatar_url" validate:"omitempty,url"`
	Traits           map[string]string `json:"traits"`
}

type PersonaResponse struct {
	Id               uuid.UUID         `json:"id"`
	Slug             string            `json:"slug"`
	Name             string            `json:"name"`
	ShortDescription string            `json:"short_description"`
	AvatarURL        *string           `json:"avatar_url"`
	Category         string            `json:"category"`
	Traits           map[string]string `json:"traits,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

func ToPersonaResponse(persona *entity.Persona) *PersonaResponse {
	return &PersonaResponse{
		Id:               persona.Id,
		Slug:             persona.Slug,
		Name:             persona.Name,
		ShortDescription: persona.ShortDescription,
		AvatarURL:        persona.AvatarURL,
		Category:         persona.Category,
		Traits:           persona.Traits,
		CreatedAt:        persona.CreatedAt,
	}
}
