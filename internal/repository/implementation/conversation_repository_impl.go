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

// ErrNotGuestConversation is returned when a guest-only mutation targets a
// conversation that does not exist or has already been migrated.
var ErrNotGuestConversation = errors.New("conversation is not an active guest session")

type ConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *ConversationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ConversationRepositoryImpl) Create(ctx context.Context, conversation *entity.Conversation) error {
	m := r.mapper.ConversationToModel(conversation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*conversation = *r.mapper.ConversationToEntity(m)
	return nil
}

func (r *ConversationRepositoryImpl) Update(ctx context.Context, conversation *entity.Conversation) error {
	m := r.mapper.ConversationToModel(conversation)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*conversation = *r.mapper.ConversationToEntity(m)
	return nil
}

func (r *ConversationRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Conversation{}, id).Error
}

func (r *ConversationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	var m model.Conversation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ConversationToEntity(&m), nil
}

func (r *ConversationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	var models []*model.Conversation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Conversation, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ConversationToEntity(m)
	}
	return entities, nil
}

func (r *ConversationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Conversation{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// IncrementGuestCount is a single UPDATE with an arithmetic expression, not a
// read-then-write, so two tabs hammering the same conversation cannot lose a
// count. The is_guest_session guard freezes the counter once migrated.
func (r *ConversationRepositoryImpl) IncrementGuestCount(ctx context.Context, id uuid.UUID) (int, error) {
	var newCount int
	res := r.db.WithContext(ctx).Raw(
		`UPDATE conversations
		 SET guest_message_count = guest_message_count + 1, updated_at = NOW()
		 WHERE id = ? AND is_guest_session = TRUE AND deleted_at IS NULL
		 RETURNING guest_message_count`,
		id,
	).Scan(&newCount)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotGuestConversation
	}
	return newCount, nil
}

// MigrateGuestSession flips ownership in one statement. The filter repeats
// is_guest_session = true so a second call over the same key matches nothing.
func (r *ConversationRepositoryImpl) MigrateGuestSession(ctx context.Context, sessionKey string, userId uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("session_key = ? AND is_guest_session = ?", sessionKey, true).
		Updates(map[string]interface{}{
			"user_id":          userId,
			"is_guest_session": false,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
