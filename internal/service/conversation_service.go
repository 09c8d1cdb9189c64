package service

import (
	"context"
	"time"

	"esperit-be/internal/dto"
	"esperit-be/internal/entity"
	"esperit-be/internal/pkg/logger"
	"esperit-be/internal/repository/specification"
	"esperit-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IConversationService interface {
	List(ctx context.Context, identity entity.Identity) ([]*dto.ConversationResponse, error)
	Delete(ctx context.Context, identity entity.Identity, conversationId uuid.UUID) error
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewConversationService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IConversationService {
	return &conversationService{uowFactory: uowFactory, log: log}
}

func (s *conversationService) List(ctx context.Context, identity entity.Identity) ([]*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OrderBy{Field: "updated_at", Desc: true},
	}
	if identity.IsGuest() {
		specs = append(specs,
			specification.BySessionKey{SessionKey: identity.SessionKey},
			specification.GuestOnly{},
		)
	} else {
		specs = append(specs, specification.ByUserID{UserID: identity.Auth.UserId})
	}

	conversations, err := uow.ConversationRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ConversationResponse, len(conversations))
	for i, conversation := range conversations {
		responses[i] = dto.ToConversationResponse(conversation)
	}
	return responses, nil
}

func (s *conversationService) Delete(ctx context.Context, identity entity.Identity, conversationId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ConversationRepository()

	conversation, err := repo.FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return err
	}
	if conversation == nil || !ownsConversation(identity, conversation) {
		return ErrConversationNotFound
	}

	now := time.Now()
	conversation.IsDeleted = true
	conversation.DeletedAt = &now
	if err := repo.Update(ctx, conversation); err != nil {
		return err
	}

	s.log.Info("conversation", "conversation deleted", map[string]interface{}{
		"conversation_id": conversationId.String(),
	})
	return nil
}
