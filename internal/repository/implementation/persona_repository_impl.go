package implementation

import (
	"context"
	"errors"

	"esperit-be/internal/entity"
	"esperit-be/internal/mapper"
	"esperit-be/internal/model"
	"esperit-be/internal/repository/contract"
	"esperit-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PersonaRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PersonaMapper
}

func NewPersonaRepository(db *gorm.DB) contract.PersonaRepository {
	return &PersonaRepositoryImpl{
		db:     db,
		mapper: mapper.NewPersonaMapper(),
	}
}

func (r *PersonaRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PersonaRepositoryImpl) Create(ctx context.Context, persona *entity.Persona) error {
	m := r.mapper.PersonaToModel(persona)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*persona = *r.mapper.PersonaToEntity(m)
	return nil
}

func (r *PersonaRepositoryImpl) Update(ctx context.Context, persona *entity.Persona) error {
	m := r.mapper.PersonaToModel(persona)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*persona = *r.mapper.PersonaToEntity(m)
	return nil
}

func (r *PersonaRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Persona{}, id).Error
}

func (r *PersonaRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Persona, error) {
	var m model.Persona
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PersonaToEntity(&m), nil
}

func (r *PersonaRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Persona, error) {
	var models []*model.Persona
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Persona, len(models))
	for i, m := range models {
		entities[i] = r.mapper.PersonaToEntity(m)
	}
	return entities, nil
}

func (r *PersonaRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Persona{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
