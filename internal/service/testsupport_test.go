package service

import (
	"context"

	"esperit-be/internal/entity"
	"esperit-be/internal/repository/contract"
	"esperit-be/internal/repository/implementation"
	"esperit-be/internal/repository/specification"
	"esperit-be/internal/repository/unitofwork"
	"esperit-be/pkg/events"

	"github.com/google/uuid"
)

// noopLogger satisfies logger.ILogger for tests.
type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error { return nil }

// capturingPublisher records every published event.
type capturingPublisher struct {
	published []events.Event
}

func (p *capturingPublisher) Publish(ctx context.Context, event events.Event) {
	p.published = append(p.published, event)
}

// fakeConversationRepo is an in-memory ConversationRepository with
// programmable failures.
type fakeConversationRepo struct {
	conversations map[uuid.UUID]*entity.Conversation

	findErr      error
	createErr    error
	incrementErr error
	migrateErr   error

	incrementCalls int
	migrateCalls   int
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: map[uuid.UUID]*entity.Conversation{}}
}

func (r *fakeConversationRepo) Create(ctx context.Context, c *entity.Conversation) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.conversations[c.Id] = c
	return nil
}

func (r *fakeConversationRepo) Update(ctx context.Context, c *entity.Conversation) error {
	r.conversations[c.Id] = c
	return nil
}

func (r *fakeConversationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.conversations, id)
	return nil
}

func (r *fakeConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	matches, err := r.FindAll(ctx, specs...)
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	return matches[0], nil
}

func (r *fakeConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []*entity.Conversation
	for _, c := range r.conversations {
		if c.IsDeleted {
			continue
		}
		if matchesConversation(c, specs) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := r.FindAll(ctx, specs...)
	return int64(len(matches)), err
}

func (r *fakeConversationRepo) IncrementGuestCount(ctx context.Context, id uuid.UUID) (int, error) {
	r.incrementCalls++
	if r.incrementErr != nil {
		return 0, r.incrementErr
	}
	c, ok := r.conversations[id]
	if !ok || !c.IsGuestSession || c.IsDeleted {
		return 0, implementation.ErrNotGuestConversation
	}
	c.GuestMessageCount++
	return c.GuestMessageCount, nil
}

func (r *fakeConversationRepo) MigrateGuestSession(ctx context.Context, sessionKey string, userId uuid.UUID) (int64, error) {
	r.migrateCalls++
	if r.migrateErr != nil {
		return 0, r.migrateErr
	}
	var migrated int64
	for _, c := range r.conversations {
		if c.IsGuestSession && c.SessionKey != nil && *c.SessionKey == sessionKey {
			c.UserId = &userId
			c.IsGuestSession = false
			migrated++
		}
	}
	return migrated, nil
}

// matchesConversation interprets the subset of specifications the services
// actually use against a fake row.
func matchesConversation(c *entity.Conversation, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if c.Id != s.ID {
				return false
			}
		case specification.BySessionKey:
			if c.SessionKey == nil || *c.SessionKey != s.SessionKey {
				return false
			}
		case specification.GuestOnly:
			if !c.IsGuestSession {
				return false
			}
		case specification.ByUserID:
			if c.UserId == nil || *c.UserId != s.UserID {
				return false
			}
		case specification.ByPersonaID:
			if c.PersonaId != s.PersonaID {
				return false
			}
		}
	}
	return true
}

type fakeMessageRepo struct {
	messages  []*entity.Message
	createErr error
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *entity.Message) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.messages = append(r.messages, m)
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	var out []*entity.Message
	for _, m := range r.messages {
		matched := true
		for _, spec := range specs {
			if s, ok := spec.(specification.ByConversationID); ok && m.ConversationId != s.ConversationID {
				matched = false
			}
		}
		if matched {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := r.FindAll(ctx, specs...)
	return int64(len(matches)), err
}

type fakePersonaRepo struct {
	personas []*entity.Persona
}

func (r *fakePersonaRepo) Create(ctx context.Context, p *entity.Persona) error {
	r.personas = append(r.personas, p)
	return nil
}

func (r *fakePersonaRepo) Update(ctx context.Context, p *entity.Persona) error { return nil }
func (r *fakePersonaRepo) Delete(ctx context.Context, id uuid.UUID) error      { return nil }

func (r *fakePersonaRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Persona, error) {
	for _, p := range r.personas {
		matched := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByID:
				if p.Id != s.ID {
					matched = false
				}
			case specification.BySlug:
				if p.Slug != s.Slug {
					matched = false
				}
			case specification.ActiveOnly:
				if !p.IsActive {
					matched = false
				}
			}
		}
		if matched {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePersonaRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Persona, error) {
	return r.personas, nil
}

func (r *fakePersonaRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.personas)), nil
}

type fakeUserRepo struct {
	users     []*entity.User
	providers []*entity.UserProvider
}

func (r *fakeUserRepo) Create(ctx context.Context, u *entity.User) error {
	r.users = append(r.users, u)
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *entity.User) error { return nil }

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, u := range r.users {
		matched := true
		for _, spec := range specs {
			if s, ok := spec.(specification.ByEmail); ok && u.Email != s.Email {
				matched = false
			}
		}
		if matched {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	for _, u := range r.users {
		if u.Id == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) SaveUserProvider(ctx context.Context, p *entity.UserProvider) error {
	r.providers = append(r.providers, p)
	return nil
}

// fakeUnitOfWork wires the fakes into the unitofwork contract.
type fakeUnitOfWork struct {
	conversations *fakeConversationRepo
	messages      *fakeMessageRepo
	personas      *fakePersonaRepo
	users         *fakeUserRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository         { return u.users }
func (u *fakeUnitOfWork) PersonaRepository() contract.PersonaRepository   { return u.personas }
func (u *fakeUnitOfWork) MessageRepository() contract.MessageRepository   { return u.messages }
func (u *fakeUnitOfWork) ConversationRepository() contract.ConversationRepository {
	return u.conversations
}

type fakeRepositoryFactory struct {
	uow *fakeUnitOfWork
}

func newFakeFactory() *fakeRepositoryFactory {
	return &fakeRepositoryFactory{
		uow: &fakeUnitOfWork{
			conversations: newFakeConversationRepo(),
			messages:      &fakeMessageRepo{},
			personas:      &fakePersonaRepo{},
			users:         &fakeUserRepo{},
		},
	}
}

func (f *fakeRepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// seedGuestConversation inserts a guest conversation with a given count.
func seedGuestConversation(repo *fakeConversationRepo, sessionKey string, personaId uuid.UUID, count int) *entity.Conversation {
	key := sessionKey
	c := &entity.Conversation{
		Id:                uuid.New(),
		SessionKey:        &key,
		PersonaId:         personaId,
		IsGuestSession:    true,
		GuestMessageCount: count,
	}
	repo.conversations[c.Id] = c
	return c
}
