package dto

import "github.com/google/uuid"

type UserDTO struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      string    `json:"role"`
}

type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	User        UserDTO `json:"user"`
	// MigratedConversations is how many guest conversations were folded into
	// this account during sign-in. Zero for visitors with no guest history.
	MigratedConversations int64 `json:"migrated_conversations"`
}
