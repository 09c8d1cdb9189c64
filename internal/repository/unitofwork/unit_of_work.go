package unitofwork

import (
	"context"

	"esperit-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	PersonaRepository() contract.PersonaRepository
	ConversationRepository() contract.ConversationRepository
	MessageRepository() contract.MessageRepository
}
