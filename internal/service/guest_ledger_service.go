package service

import (
	"context"
	"errors"
	"fmt"

	"esperit-be/internal/dto"
	"esperit-be/internal/entity"
	"esperit-be/internal/pkg/logger"
	"esperit-be/internal/repository/implementation"
	"esperit-be/internal/repository/specification"
	"esperit-be/internal/repository/unitofwork"
	"esperit-be/pkg/events"

	"github.com/google/uuid"
)

// IGuestLedgerService accounts guest message volume per anonymous session
// and performs the one-time handover of guest history at sign-in.
//
// There is deliberately no in-process cache of counts: every status check
// recomputes from the datastore so multiple server instances stay correct
// without coordination.
type IGuestLedgerService interface {
	// CheckStatus sums guest_message_count over all active guest
	// conversations for sessionKey.
	CheckStatus(ctx context.Context, sessionKey string) (*dto.GuestSessionStatus, error)

	// StatusFor resolves the status for a classified request. Authenticated
	// identities get the unlimited sentinel without touching the datastore.
	StatusFor(ctx context.Context, identity entity.Identity) (*dto.GuestSessionStatus, error)

	// Increment adds one accepted guest message to a conversation and
	// returns the new count. Calling it for a migrated or unknown
	// conversation fails with ErrPrecondition.
	Increment(ctx context.Context, conversationId uuid.UUID) (int, error)

	// Migrate reassigns every guest conversation under guestSessionKey to
	// the authenticated identity. Idempotent; returns the number of records
	// moved, 0 when there is no guest history.
	Migrate(ctx context.Context, identity entity.AuthenticatedIdentity, guestSessionKey string) (int64, error)

	Limit() int
}

type guestLedgerService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IEventPublisher
	log        logger.ILogger
	limit      int
}

func NewGuestLedgerService(
	uowFactory unitofwork.RepositoryFactory,
	publisher IEventPublisher,
	log logger.ILogger,
	messageLimit int,
) IGuestLedgerService {
	return &guestLedgerService{
		uowFactory: uowFactory,
		publisher:  publisher,
		log:        log,
		limit:      messageLimit,
	}
}

func (s *guestLedgerService) Limit() int {
	return s.limit
}

func (s *guestLedgerService) CheckStatus(ctx context.Context, sessionKey string) (*dto.GuestSessionStatus, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.BySessionKey{SessionKey: sessionKey},
		specification.GuestOnly{},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerQuery, err)
	}

	messageCount := 0
	conversationIds := make([]uuid.UUID, 0, len(conversations))
	for _, conv := range conversations {
		messageCount += conv.GuestMessageCount
		conversationIds = append(conversationIds, conv.Id)
	}

	remaining := s.limit - messageCount
	if remaining < 0 {
		remaining = 0
	}

	return &dto.GuestSessionStatus{
		IsGuest:           true,
		MessageCount:      messageCount,
		RemainingMessages: remaining,
		Limit:             s.limit,
		ConversationIds:   conversationIds,
	}, nil
}

func (s *guestLedgerService) StatusFor(ctx context.Context, identity entity.Identity) (*dto.GuestSessionStatus, error) {
	if !identity.IsGuest() {
		return &dto.GuestSessionStatus{
			IsGuest:           false,
			MessageCount:      0,
			RemainingMessages: dto.UnlimitedMessages,
			Limit:             s.limit,
			ConversationIds:   []uuid.UUID{},
		}, nil
	}
	return s.CheckStatus(ctx, identity.SessionKey)
}

func (s *guestLedgerService) Increment(ctx context.Context, conversationId uuid.UUID) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	newCount, err := uow.ConversationRepository().IncrementGuestCount(ctx, conversationId)
	if err != nil {
		if errors.Is(err, implementation.ErrNotGuestConversation) {
			return 0, fmt.Errorf("%w: increment on non-guest conversation %s", ErrPrecondition, conversationId)
		}
		return 0, fmt.Errorf("%w: %v", ErrLedgerUpdate, err)
	}

	return newCount, nil
}

func (s *guestLedgerService) Migrate(ctx context.Context, identity entity.AuthenticatedIdentity, guestSessionKey string) (int64, error) {
	if identity.UserId == uuid.Nil {
		return 0, fmt.Errorf("%w: migrate requires a verified identity", ErrPrecondition)
	}
	if guestSessionKey == "" {
		return 0, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	migrated, err := uow.ConversationRepository().MigrateGuestSession(ctx, guestSessionKey, identity.UserId)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMigration, err)
	}

	if migrated > 0 {
		s.log.Info("guest_ledger", "migrated guest conversations", map[string]interface{}{
			"user_id":  identity.UserId.String(),
			"migrated": migrated,
		})
		if s.publisher != nil {
			s.publisher.Publish(ctx, events.NewGuestMigrated(guestSessionKey, identity.UserId.String(), migrated))
		}
	}

	return migrated, nil
}
