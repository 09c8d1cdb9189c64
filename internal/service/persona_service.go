package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"esperit-be/internal/dto"
	"esperit-be/internal/entity"
	"esperit-be/internal/repository/specification"
	"esperit-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type IPersonaService interface {
	List(ctx context.Context, category string) ([]*dto.PersonaResponse, error)
	GetById(ctx context.Context, id uuid.UUID) (*entity.Persona, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Persona, error)
	Create(ctx context.Context, req *dto.CreatePersonaRequest) (*entity.Persona, error)
}

// personaService caches persona reads. Personas are reference data edited
// out-of-band by the seeder, so a short in-process cache is safe here in a
// way it would not be for guest counters.
type personaService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *cache.Cache
}

func NewPersonaService(uowFactory unitofwork.RepositoryFactory) IPersonaService {
	return &personaService{
		uowFactory: uowFactory,
		cache:      cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *personaService) List(ctx context.Context, category string) ([]*dto.PersonaResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.ActiveOnly{},
		specification.OrderBy{Field: "name"},
	}
	if category != "" {
		specs = append(specs, specification.ByCategory{Category: category})
	}

	personas, err := uow.PersonaRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.PersonaResponse, len(personas))
	for i, p := range personas {
		responses[i] = &dto.PersonaResponse{
			Id:               p.Id,
			Slug:             p.Slug,
			Name:             p.Name,
			ShortDescription: p.ShortDescription,
			AvatarURL:        p.AvatarURL,
			Category:         p.Category,
			Traits:           p.Traits,
			CreatedAt:        p.CreatedAt,
		}
	}
	return responses, nil
}

func (s *personaService) GetById(ctx context.Context, id uuid.UUID) (*entity.Persona, error) {
	cacheKey := "id:" + id.String()
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(*entity.Persona), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	persona, err := uow.PersonaRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ActiveOnly{},
	)
	if err != nil {
		return nil, err
	}
	if persona == nil {
		return nil, fmt.Errorf("%w: %s", ErrPersonaNotFound, id)
	}

	s.cache.Set(cacheKey, persona, cache.DefaultExpiration)
	return persona, nil
}

func (s *personaService) Create(ctx context.Context, req *dto.CreatePersonaRequest) (*entity.Persona, error) {
	slug := slugify(req.Name)
	if slug == "" {
		return nil, fmt.Errorf("%w: name %q has no usable characters", ErrPersonaInvalid, req.Name)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.PersonaRepository().FindOne(ctx, specification.BySlug{Slug: slug})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrPersonaExists, slug)
	}

	category := req.Category
	if category == "" {
		category = "custom"
	}

	persona := &entity.Persona{
		Id:               uuid.New(),
		Slug:             slug,
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		AvatarURL:        req.AvatarURL,
		Category:         category,
		SystemPrompt:     req.SystemPrompt,
		Traits:           req.Traits,
		IsActive:         true,
	}
	if err := uow.PersonaRepository().Create(ctx, persona); err != nil {
		return nil, err
	}

	// Prime both cache keys so the creator's immediate fetch never races a
	// stale miss.
	s.cache.Set("slug:"+persona.Slug, persona, cache.DefaultExpiration)
	s.cache.Set("id:"+persona.Id.String(), persona, cache.DefaultExpiration)

	return persona, nil
}

// slugify mirrors the seeder's naming: lowercase, runs of non-alphanumerics
// collapsed to single hyphens, no leading or trailing hyphen.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func (s *personaService) GetBySlug(ctx context.Context, slug string) (*entity.Persona, error) {
	cacheKey := "slug:" + slug
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(*entity.Persona), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	persona, err := uow.PersonaRepository().FindOne(ctx,
		specification.BySlug{Slug: slug},
		specification.ActiveOnly{},
	)
	if err != nil {
		return nil, err
	}
	if persona == nil {
		return nil, fmt.Errorf("%w: %s", ErrPersonaNotFound, slug)
	}

	s.cache.Set(cacheKey, persona, cache.DefaultExpiration)
	return persona, nil
}
