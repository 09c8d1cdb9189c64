package mapper

import (
	"encoding/json"
	"time"

	"esperit-be/internal/entity"
	"esperit-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PersonaMapper struct{}

func NewPersonaMapper() *PersonaMapper {
	return &PersonaMapper{}
}

func (m *PersonaMapper) PersonaToEntity(p *model.Persona) *entity.Persona {
	if p == nil {
		return nil
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	traits := map[string]string{}
	if len(p.Traits) > 0 {
		// Malformed traits are treated as absent rather than failing a read.
		_ = json.Unmarshal(p.Traits, &traits)
	}

	return &entity.Persona{
		Id:               p.Id,
		Slug:             p.Slug,
		Name:             p.Name,
		ShortDescription: p.ShortDescription,
		AvatarURL:        p.AvatarURL,
		Category:         p.Category,
		SystemPrompt:     p.SystemPrompt,
		Traits:           traits,
		IsActive:         p.IsActive,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *PersonaMapper) PersonaToModel(p *entity.Persona) *model.Persona {
	if p == nil {
		return nil
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	var traits datatypes.JSON
	if len(p.Traits) > 0 {
		if raw, err := json.Marshal(p.Traits); err == nil {
			traits = raw
		}
	}

	return &model.Persona{
		Id:               p.Id,
		Slug:             p.Slug,
		Name:             p.Name,
		ShortDescription: p.ShortDescription,
		AvatarURL:        p.AvatarURL,
		Category:         p.Category,
		SystemPrompt:     p.SystemPrompt,
		Traits:           traits,
		IsActive:         p.IsActive,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        updatedAt,
		DeletedAt:        gorm.DeletedAt{},
	}
}
