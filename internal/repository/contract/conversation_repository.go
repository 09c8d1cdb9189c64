package contract

import (
	"context"

	"esperit-be/internal/entity"
	"esperit-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	Update(ctx context.Context, conversation *entity.Conversation) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// IncrementGuestCount atomically bumps guest_message_count by one and
	// returns the new value. It only touches rows still in the guest state;
	// a missing or already-migrated conversation yields ErrNotGuestConversation.
	IncrementGuestCount(ctx context.Context, id uuid.UUID) (int, error)

	// MigrateGuestSession reassigns every guest conversation under sessionKey
	// to userId in a single bulk update and returns the number of rows
	// changed. Re-running it matches zero rows, which keeps it idempotent.
	MigrateGuestSession(ctx context.Context, sessionKey string, userId uuid.UUID) (int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
