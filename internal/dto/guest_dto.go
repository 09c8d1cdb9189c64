// DTOs for guest session accounting
package dto

import "github.com/google/uuid"

// UnlimitedMessages is the sentinel RemainingMessages value for
// authenticated callers, who are never guest-limited.
const UnlimitedMessages = -1

// GuestSessionStatus is returned by GET /api/guest/v1/status.
type GuestSessionStatus struct {
	IsGuest           bool        `json:"is_guest"`
	MessageCount      int         `json:"message_count"`
	RemainingMessages int         `json:"remaining_messages"` // -1 = unlimited
	Limit             int         `json:"limit"`
	ConversationIds   []uuid.UUID `json:"conversation_ids"`
}

// GuestLimitInfo is embedded in chat responses for guest callers so the
// client can render the remaining-allowance banner without a second call.
type GuestLimitInfo struct {
	Current           int  `json:"current"`
	Max               int  `json:"max"`
	RemainingMessages int  `json:"remaining_messages"`
	IsGuest           bool `json:"is_guest"`
}
