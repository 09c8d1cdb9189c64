package entity

import "github.com/google/uuid"

// AuthenticatedIdentity is the proof of a successful credential check. It is
// only ever constructed by the session classifier, and operations that change
// ownership (conversation migration) require it instead of a bare user id so
// a caller cannot claim another visitor's history.
type AuthenticatedIdentity struct {
	UserId uuid.UUID
}

// Identity is the classification of one inbound request: either an
// authenticated user or an anonymous guest addressed by its session key.
type Identity struct {
	Auth       *AuthenticatedIdentity
	SessionKey string
}

func (i Identity) IsGuest() bool {
	return i.Auth == nil
}

func Authenticated(userId uuid.UUID) Identity {
	return Identity{Auth: &AuthenticatedIdentity{UserId: userId}}
}

func Guest(sessionKey string) Identity {
	return Identity{SessionKey: sessionKey}
}
