package service

import (
	"context"
	"testing"

	"esperit-be/internal/dto"
	"esperit-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePersona(t *testing.T) {
	factory := newFakeFactory()
	svc := NewPersonaService(factory)

	created, err := svc.Create(context.Background(), &dto.CreatePersonaRequest{
		Name:         "My Future Self!",
		SystemPrompt: "You are the caller, ten years from now.",
	})
	require.NoError(t, err)

	assert.Equal(t, "my-future-self", created.Slug)
	assert.Equal(t, "custom", created.Category)
	assert.True(t, created.IsActive)
	require.Len(t, factory.uow.personas.personas, 1)

	fetched, err := svc.GetBySlug(context.Background(), "my-future-self")
	require.NoError(t, err)
	assert.Equal(t, created.Id, fetched.Id)
}

func TestCreatePersonaServesFreshCacheEntry(t *testing.T) {
	factory := newFakeFactory()
	svc := NewPersonaService(factory)

	created, err := svc.Create(context.Background(), &dto.CreatePersonaRequest{
		Name:         "Calm Mentor",
		SystemPrompt: "You answer slowly and kindly.",
	})
	require.NoError(t, err)

	// Reads right after creation must not depend on a store round trip.
	factory.uow.personas.personas = nil

	fetched, err := svc.GetBySlug(context.Background(), created.Slug)
	require.NoError(t, err)
	assert.Equal(t, created.Id, fetched.Id)

	fetched, err = svc.GetById(context.Background(), created.Id)
	require.NoError(t, err)
	assert.Equal(t, created.Slug, fetched.Slug)
}

func TestCreatePersonaRejectsDuplicateName(t *testing.T) {
	factory := newFakeFactory()
	factory.uow.personas.personas = append(factory.uow.personas.personas, &entity.Persona{
		Slug:     "future-self",
		Name:     "Future Self",
		IsActive: true,
	})
	svc := NewPersonaService(factory)

	_, err := svc.Create(context.Background(), &dto.CreatePersonaRequest{
		Name:         "Future  Self",
		SystemPrompt: "You are the caller, ten years from now.",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersonaExists)
}

func TestCreatePersonaRejectsUnusableName(t *testing.T) {
	factory := newFakeFactory()
	svc := NewPersonaService(factory)

	_, err := svc.Create(context.Background(), &dto.CreatePersonaRequest{
		Name:         "!!! ***",
		SystemPrompt: "Prompt long enough to pass validation.",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersonaInvalid)
	assert.Empty(t, factory.uow.personas.personas)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Inner Critic", "inner-critic"},
		{"punctuation collapsed", "Dr. Who?!", "dr-who"},
		{"leading and trailing trimmed", "  --Creative Muse--  ", "creative-muse"},
		{"digits kept", "Mentor 2", "mentor-2"},
		{"nothing usable", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.in))
		})
	}
}
