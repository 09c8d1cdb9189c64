package llm

import "context"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of prior conversation handed to the provider.
type Message struct {
	Role    string
	Content string
}

// Provider generates persona replies. Moderation support is optional; the
// factory returns a nil Moderator for providers without it.
type Provider interface {
	GenerateReply(ctx context.Context, systemPrompt string, history []Message, userMessage string) (string, error)
}

// Moderator screens user input before generation. Callers treat moderator
// outages as non-fatal and continue without a verdict.
type Moderator interface {
	Moderate(ctx context.Context, input string) (flagged bool, err error)
}
