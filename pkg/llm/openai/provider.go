package openai

import (
	"context"
	"fmt"

	"esperit-be/pkg/llm"

	goopenai "github.com/sashabaranov/go-openai"
)

// Provider generates replies through the OpenAI chat completions API and
// also implements llm.Moderator via the moderations endpoint.
type Provider struct {
	client *goopenai.Client
	model  string
}

func NewProvider(apiKey, model string) *Provider {
	return &Provider{
		client: goopenai.NewClient(apiKey),
		model:  model,
	}
}

func (p *Provider) GenerateReply(ctx context.Context, systemPrompt string, history []llm.Message, userMessage string) (string, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, msg := range history {
		role := goopenai.ChatMessageRoleUser
		if msg.Role == llm.RoleAssistant {
			role = goopenai.ChatMessageRoleAssistant
		}
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: userMessage,
	})

	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) Moderate(ctx context.Context, input string) (bool, error) {
	resp, err := p.client.Moderations(ctx, goopenai.ModerationRequest{
		Model: goopenai.ModerationTextStable,
		Input: input,
	})
	if err != nil {
		return false, err
	}
	for _, result := range resp.Results {
		if result.Flagged {
			return true, nil
		}
	}
	return false, nil
}
