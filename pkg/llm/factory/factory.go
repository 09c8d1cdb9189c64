package factory

import (
	"fmt"

	"esperit-be/pkg/llm"
	"esperit-be/pkg/llm/gemini"
	"esperit-be/pkg/llm/openai"
)

// NewProvider builds the configured LLM provider. The returned Moderator is
// nil for providers without a moderation endpoint.
func NewProvider(providerName, model, geminiKey, openaiKey string) (llm.Provider, llm.Moderator, error) {
	switch providerName {
	case "gemini":
		return gemini.NewProvider(geminiKey, model), nil, nil
	case "openai":
		p := openai.NewProvider(openaiKey, model)
		return p, p, nil
	default:
		return nil, nil, fmt.Errorf("unsupported LLM provider: %s", providerName)
	}
}
