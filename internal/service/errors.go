package service

import "errors"

// Domain error taxonomy. Services wrap underlying failures with these
// sentinels; the HTTP error handler maps them to response codes with
// errors.Is, so quota rejections stay distinguishable from outages.
var (
	// ErrIdentityProviderUnavailable: the identity provider could not be
	// reached during classification. Never downgraded to guest, otherwise a
	// transient outage would bill a signed-in user against the guest limit.
	ErrIdentityProviderUnavailable = errors.New("identity provider unavailable")

	// ErrInvalidCredential: a credential was presented but failed
	// verification.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrLedgerQuery / ErrLedgerUpdate: datastore failures while reading or
	// writing guest usage counters. Gating callers fail closed on these.
	ErrLedgerQuery  = errors.New("guest ledger query failed")
	ErrLedgerUpdate = errors.New("guest ledger update failed")

	// ErrMigration: datastore failure during the bulk guest-to-user
	// reassignment. Non-fatal to sign-in; safe to retry since migration is
	// idempotent.
	ErrMigration = errors.New("guest conversation migration failed")

	// ErrPrecondition marks programmer-error calls, e.g. incrementing the
	// guest counter of a migrated conversation.
	ErrPrecondition = errors.New("precondition violation")

	// ErrGuestLimitReached: the session has exhausted its message allowance.
	ErrGuestLimitReached = errors.New("guest message limit reached")

	ErrPersonaNotFound      = errors.New("persona not found")
	ErrPersonaExists        = errors.New("persona already exists")
	ErrPersonaInvalid       = errors.New("invalid persona")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrModerationFlagged    = errors.New("message flagged by moderation")
)
