package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"esperit-be/internal/dto"
	"esperit-be/internal/entity"
	"esperit-be/internal/pkg/logger"
	"esperit-be/internal/repository/specification"
	"esperit-be/internal/repository/unitofwork"
	"esperit-be/pkg/events"
	"esperit-be/pkg/llm"

	"github.com/google/uuid"
)

const historyWindow = 10

const defaultSystemPrompt = `You are the user's future self who has achieved success and peace. You speak in first person, sharing wisdom from your journey. Keep responses conversational and insightful, typically 2-4 sentences unless asked for details. Be warm, authentic, and encouraging.`

type IChatService interface {
	SendChat(ctx context.Context, identity entity.Identity, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetHistory(ctx context.Context, identity entity.Identity, conversationId uuid.UUID) ([]*dto.ChatHistoryItem, error)
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	personaService IPersonaService
	ledger         IGuestLedgerService
	provider       llm.Provider
	moderator      llm.Moderator // nil when the provider has no moderation endpoint
	publisher      IEventPublisher
	log            logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	personaService IPersonaService,
	ledger IGuestLedgerService,
	provider llm.Provider,
	moderator llm.Moderator,
	publisher IEventPublisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		personaService: personaService,
		ledger:         ledger,
		provider:       provider,
		moderator:      moderator,
		publisher:      publisher,
		log:            log,
	}
}

func (s *chatService) SendChat(ctx context.Context, identity entity.Identity, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	// Gate before any work. A ledger read failure propagates here, which
	// denies the message: fail closed, or transient DB errors would let
	// guests sail past the limit.
	status, err := s.ledger.StatusFor(ctx, identity)
	if err != nil {
		return nil, err
	}

	if status.IsGuest && status.RemainingMessages == 0 {
		s.publisher.Publish(ctx, events.NewGuestLimitReached(identity.SessionKey, status.MessageCount, status.Limit))
		return nil, ErrGuestLimitReached
	}

	persona, err := s.resolvePersona(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.moderator != nil {
		flagged, modErr := s.moderator.Moderate(ctx, req.Message)
		if modErr != nil {
			// Moderation outage is non-fatal; the message proceeds.
			s.log.Warn("chat", "moderation check failed", map[string]interface{}{"error": modErr.Error()})
		} else if flagged {
			return nil, ErrModerationFlagged
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := s.resolveConversation(ctx, uow, identity, persona.Id, req.ConversationId)
	if err != nil {
		return nil, err
	}

	userMsg := &entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Role:           entity.MessageRoleUser,
		Content:        req.Message,
		CreatedAt:      time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	history, err := s.loadHistory(ctx, uow, conversation.Id)
	if err != nil {
		// Degrade to an empty context window rather than failing the chat.
		s.log.Warn("chat", "failed to load history", map[string]interface{}{"error": err.Error()})
		history = nil
	}

	systemPrompt := buildSystemPrompt(persona)

	reply, err := s.provider.GenerateReply(ctx, systemPrompt, history, req.Message)
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	assistantMsg := &entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Role:           entity.MessageRoleAssistant,
		Content:        reply,
		CreatedAt:      time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, assistantMsg); err != nil {
		// The visitor still gets the reply; only persistence lagged.
		s.log.Warn("chat", "failed to save assistant message", map[string]interface{}{"error": err.Error()})
	}

	var guestLimit *dto.GuestLimitInfo
	if status.IsGuest {
		newCount := status.MessageCount
		if count, incErr := s.ledger.Increment(ctx, conversation.Id); incErr != nil {
			// Not durably counted. Accept the undercount instead of blocking
			// the response the visitor already earned.
			s.log.Warn("chat", "failed to increment guest count", map[string]interface{}{
				"conversation_id": conversation.Id.String(),
				"error":           incErr.Error(),
			})
		} else {
			newCount = count
		}

		remaining := status.Limit - newCount
		if remaining < 0 {
			remaining = 0
		}
		guestLimit = &dto.GuestLimitInfo{
			Current:           newCount,
			Max:               status.Limit,
			RemainingMessages: remaining,
			IsGuest:           true,
		}
	}

	return &dto.SendChatResponse{
		Message:        reply,
		ConversationId: conversation.Id,
		Timestamp:      time.Now(),
		Persona: dto.ChatPersonaInfo{
			Id:               persona.Id,
			Name:             persona.Name,
			Slug:             persona.Slug,
			AvatarURL:        persona.AvatarURL,
			ShortDescription: persona.ShortDescription,
		},
		GuestLimit: guestLimit,
	}, nil
}

func (s *chatService) GetHistory(ctx context.Context, identity entity.Identity, conversationId uuid.UUID) ([]*dto.ChatHistoryItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conversation == nil || !ownsConversation(identity, conversation) {
		return nil, ErrConversationNotFound
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ChatHistoryItem, len(messages))
	for i, msg := range messages {
		items[i] = &dto.ChatHistoryItem{
			Id:        msg.Id,
			Role:      string(msg.Role),
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		}
	}
	return items, nil
}

func (s *chatService) resolvePersona(ctx context.Context, req *dto.SendChatRequest) (*entity.Persona, error) {
	if req.PersonaId != nil {
		return s.personaService.GetById(ctx, *req.PersonaId)
	}
	if req.PersonaSlug != "" {
		return s.personaService.GetBySlug(ctx, req.PersonaSlug)
	}
	return nil, fmt.Errorf("%w: persona id or slug required", ErrPersonaNotFound)
}

// resolveConversation finds the caller's conversation with this persona,
// creating it on first contact. Explicit conversation ids are checked
// against the classified identity so one visitor cannot append into
// another's history.
func (s *chatService) resolveConversation(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	identity entity.Identity,
	personaId uuid.UUID,
	explicitId *uuid.UUID,
) (*entity.Conversation, error) {
	repo := uow.ConversationRepository()

	if explicitId != nil {
		conversation, err := repo.FindOne(ctx, specification.ByID{ID: *explicitId})
		if err != nil {
			return nil, err
		}
		if conversation == nil || !ownsConversation(identity, conversation) {
			return nil, ErrConversationNotFound
		}
		return conversation, nil
	}

	specs := []specification.Specification{specification.ByPersonaID{PersonaID: personaId}}
	if identity.IsGuest() {
		specs = append(specs,
			specification.BySessionKey{SessionKey: identity.SessionKey},
			specification.GuestOnly{},
		)
	} else {
		specs = append(specs, specification.ByUserID{UserID: identity.Auth.UserId})
	}

	conversation, err := repo.FindOne(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if conversation != nil {
		return conversation, nil
	}

	conversation = &entity.Conversation{
		Id:        uuid.New(),
		PersonaId: personaId,
		CreatedAt: time.Now(),
	}
	if identity.IsGuest() {
		key := identity.SessionKey
		conversation.SessionKey = &key
		conversation.IsGuestSession = true
	} else {
		userId := identity.Auth.UserId
		conversation.UserId = &userId
		conversation.IsGuestSession = false
	}

	if err := repo.Create(ctx, conversation); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conversation, nil
}

func (s *chatService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, conversationId uuid.UUID) ([]llm.Message, error) {
	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: historyWindow, Offset: 0},
	)
	if err != nil {
		return nil, err
	}

	// Fetched newest-first; the provider wants chronological order.
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	history := make([]llm.Message, 0, len(messages))
	for _, msg := range messages {
		history = append(history, llm.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return history, nil
}

func ownsConversation(identity entity.Identity, conversation *entity.Conversation) bool {
	if identity.IsGuest() {
		return conversation.IsGuestSession &&
			conversation.SessionKey != nil &&
			*conversation.SessionKey == identity.SessionKey
	}
	return conversation.UserId != nil && *conversation.UserId == identity.Auth.UserId
}

// buildSystemPrompt renders the persona into the provider's system prompt.
func buildSystemPrompt(persona *entity.Persona) string {
	if persona.SystemPrompt == "" {
		return defaultSystemPrompt
	}

	var b strings.Builder
	b.WriteString(persona.SystemPrompt)

	if len(persona.Traits) > 0 {
		keys := make([]string, 0, len(persona.Traits))
		for k := range persona.Traits {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("\n\nCharacter traits:")
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("\n- %s: %s", k, persona.Traits[k]))
		}
	}

	return b.String()
}
