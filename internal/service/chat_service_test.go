package service

import (
	"context"
	"errors"
	"testing"

	"esperit-be/internal/dto"
	"esperit-be/internal/entity"
	"esperit-be/pkg/events"
	"esperit-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	reply string
	err   error
	calls int
}

func (p *stubProvider) GenerateReply(ctx context.Context, systemPrompt string, history []llm.Message, userMessage string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

type stubModerator struct {
	flagged bool
	err     error
}

func (m *stubModerator) Moderate(ctx context.Context, input string) (bool, error) {
	return m.flagged, m.err
}

type chatFixture struct {
	factory   *fakeRepositoryFactory
	publisher *capturingPublisher
	provider  *stubProvider
	moderator *stubModerator
	persona   *entity.Persona
	chat      IChatService
}

func newChatFixture(t *testing.T, limit int) *chatFixture {
	t.Helper()

	factory := newFakeFactory()
	publisher := &capturingPublisher{}
	provider := &stubProvider{reply: "hello from the other side"}
	moderator := &stubModerator{}

	persona := &entity.Persona{
		Id:           uuid.New(),
		Slug:         "future-self",
		Name:         "Future Self",
		SystemPrompt: "You are the user's future self.",
		IsActive:     true,
	}
	factory.uow.personas.personas = append(factory.uow.personas.personas, persona)

	ledger := NewGuestLedgerService(factory, publisher, noopLogger{}, limit)
	personaService := NewPersonaService(factory)

	chat := NewChatService(factory, personaService, ledger, provider, moderator, publisher, noopLogger{})

	return &chatFixture{
		factory:   factory,
		publisher: publisher,
		provider:  provider,
		moderator: moderator,
		persona:   persona,
		chat:      chat,
	}
}

func guestIdentity(key string) entity.Identity {
	return entity.Guest(key)
}

func (f *chatFixture) request(msg string) *dto.SendChatRequest {
	return &dto.SendChatRequest{
		Message:    msg,
		PersonaId:  &f.persona.Id,
		SessionKey: "session-abc",
	}
}

func TestSendChatGuestFlow(t *testing.T) {
	f := newChatFixture(t, 10)

	res, err := f.chat.SendChat(context.Background(), guestIdentity("session-abc"), f.request("hi"))
	require.NoError(t, err)

	assert.Equal(t, "hello from the other side", res.Message)
	require.NotNil(t, res.GuestLimit)
	assert.Equal(t, 1, res.GuestLimit.Current)
	assert.Equal(t, 10, res.GuestLimit.Max)
	assert.Equal(t, 9, res.GuestLimit.RemainingMessages)
	assert.True(t, res.GuestLimit.IsGuest)

	// One user message, one assistant message.
	assert.Len(t, f.factory.uow.messages.messages, 2)
	// The counter moved exactly once.
	assert.Equal(t, 1, f.factory.uow.conversations.incrementCalls)
}

func TestSendChatReusesConversationPerPersona(t *testing.T) {
	f := newChatFixture(t, 10)
	identity := guestIdentity("session-abc")

	res1, err := f.chat.SendChat(context.Background(), identity, f.request("first"))
	require.NoError(t, err)
	res2, err := f.chat.SendChat(context.Background(), identity, f.request("second"))
	require.NoError(t, err)

	assert.Equal(t, res1.ConversationId, res2.ConversationId)
	assert.Len(t, f.factory.uow.conversations.conversations, 1)
	assert.Equal(t, 2, res2.GuestLimit.Current)
}

func TestSendChatRejectsAtLimit(t *testing.T) {
	f := newChatFixture(t, 10)
	seedGuestConversation(f.factory.uow.conversations, "session-abc", f.persona.Id, 10)

	_, err := f.chat.SendChat(context.Background(), guestIdentity("session-abc"), f.request("one more"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGuestLimitReached)

	// Nothing ran: no model call, no persisted message, no counter change.
	assert.Equal(t, 0, f.provider.calls)
	assert.Empty(t, f.factory.uow.messages.messages)
	assert.Equal(t, 0, f.factory.uow.conversations.incrementCalls)

	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, events.TypeGuestLimitReached, f.publisher.published[0].EventType())
}

func TestSendChatLimitSpansConversations(t *testing.T) {
	f := newChatFixture(t, 10)
	// The allowance is per session, so usage spread across personas still
	// adds up to a rejection.
	seedGuestConversation(f.factory.uow.conversations, "session-abc", uuid.New(), 6)
	seedGuestConversation(f.factory.uow.conversations, "session-abc", uuid.New(), 4)

	_, err := f.chat.SendChat(context.Background(), guestIdentity("session-abc"), f.request("hi"))
	assert.ErrorIs(t, err, ErrGuestLimitReached)
}

func TestSendChatLastAllowedMessageGoesThrough(t *testing.T) {
	f := newChatFixture(t, 10)
	seedGuestConversation(f.factory.uow.conversations, "session-abc", f.persona.Id, 9)

	res, err := f.chat.SendChat(context.Background(), guestIdentity("session-abc"), f.request("last one"))
	require.NoError(t, err)
	assert.Equal(t, 10, res.GuestLimit.Current)
	assert.Equal(t, 0, res.GuestLimit.RemainingMessages)

	// The next attempt is the one that gets rejected.
	_, err = f.chat.SendChat(context.Background(), guestIdentity("session-abc"), f.request("over"))
	assert.ErrorIs(t, err, ErrGuestLimitReached)
}

func TestSendChatFailsClosedOnLedgerOutage(t *testing.T) {
	f := newChatFixture(t, 10)
	f.factory.uow.conversations.findErr = errors.New("connection refused")

	_, err := f.chat.SendChat(context.Background(), guestIdentity("session-abc"), f.request("hi"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLedgerQuery)
	assert.Equal(t, 0, f.provider.calls)
}

func TestSendChatAuthenticatedIsUnlimited(t *testing.T) {
	f := newChatFixture(t, 10)
	identity := entity.Authenticated(uuid.New())

	for i := 0; i < 15; i++ {
		res, err := f.chat.SendChat(context.Background(), identity, f.request("msg"))
		require.NoError(t, err)
		assert.Nil(t, res.GuestLimit)
	}

	assert.Equal(t, 0, f.factory.uow.conversations.incrementCalls)
}

func TestSendChatIncrementFailureStillReturnsReply(t *testing.T) {
	f := newChatFixture(t, 10)
	conv := seedGuestConversation(f.factory.uow.conversations, "session-abc", f.persona.Id, 3)
	f.factory.uow.conversations.incrementErr = errors.New("deadlock detected")

	res, err := f.chat.SendChat(context.Background(), guestIdentity("session-abc"), f.request("hi"))
	require.NoError(t, err)

	assert.Equal(t, "hello from the other side", res.Message)
	// The response falls back to the pre-send count.
	assert.Equal(t, 3, res.GuestLimit.Current)
	assert.Equal(t, 3, conv.GuestMessageCount)
}

func TestSendChatModerationFlagged(t *testing.T) {
	f := newChatFixture(t, 10)
	f.moderator.flagged = true

	_, err := f.chat.SendChat(context.Background(), guestIdentity("session-abc"), f.request("bad input"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModerationFlagged)
	assert.Equal(t, 0, f.provider.calls)
}

func TestSendChatModerationOutageIsNonFatal(t *testing.T) {
	f := newChatFixture(t, 10)
	f.moderator.err = errors.New("moderation endpoint down")

	res, err := f.chat.SendChat(context.Background(), guestIdentity("session-abc"), f.request("hi"))
	require.NoError(t, err)
	assert.Equal(t, "hello from the other side", res.Message)
}

func TestSendChatUnknownPersona(t *testing.T) {
	f := newChatFixture(t, 10)
	unknown := uuid.New()
	req := f.request("hi")
	req.PersonaId = &unknown

	_, err := f.chat.SendChat(context.Background(), guestIdentity("session-abc"), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersonaNotFound)
}

func TestSendChatExplicitConversationOwnershipCheck(t *testing.T) {
	f := newChatFixture(t, 10)
	other := seedGuestConversation(f.factory.uow.conversations, "session-other", f.persona.Id, 2)

	req := f.request("hi")
	req.ConversationId = &other.Id

	_, err := f.chat.SendChat(context.Background(), guestIdentity("session-abc"), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestGetHistoryOwnershipCheck(t *testing.T) {
	f := newChatFixture(t, 10)
	conv := seedGuestConversation(f.factory.uow.conversations, "session-abc", f.persona.Id, 0)

	_, err := f.chat.SendChat(context.Background(), guestIdentity("session-abc"), f.request("hi"))
	require.NoError(t, err)

	items, err := f.chat.GetHistory(context.Background(), guestIdentity("session-abc"), conv.Id)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = f.chat.GetHistory(context.Background(), guestIdentity("session-stranger"), conv.Id)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}
