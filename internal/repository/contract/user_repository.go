package contract

import (
	"context"

	"esperit-be/internal/entity"
	"esperit-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	FindById(ctx context.Context, id uuid.UUID) (*entity.User, error)
	SaveUserProvider(ctx context.Context, provider *entity.UserProvider) error
}
