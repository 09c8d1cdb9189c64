package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"esperit-be/pkg/llm"
)

type geminiChatParts struct {
	Text string `json:"text"`
}

type geminiChatContent struct {
	Parts []*geminiChatParts `json:"parts"`
	Role  string             `json:"role"`
}

type geminiSystemInstruction struct {
	Parts []*geminiChatParts `json:"parts"`
}

type geminiChatRequest struct {
	SystemInstruction *geminiSystemInstruction `json:"system_instruction,omitempty"`
	Contents          []*geminiChatContent     `json:"contents"`
}

type geminiChatCandidate struct {
	Content *geminiChatContent `json:"content"`
}

type geminiChatResponse struct {
	Candidates []*geminiChatCandidate `json:"candidates"`
}

const (
	roleUser  = "user"
	roleModel = "model"
)

// Provider calls the Google generative-language REST API.
type Provider struct {
	apiKey string
	model  string
	client *http.Client
}

func NewProvider(apiKey, model string) *Provider {
	return &Provider{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{},
	}
}

func (p *Provider) GenerateReply(ctx context.Context, systemPrompt string, history []llm.Message, userMessage string) (string, error) {
	contents := make([]*geminiChatContent, 0, len(history)+1)
	for _, msg := range history {
		role := roleUser
		if msg.Role == llm.RoleAssistant {
			role = roleModel
		}
		contents = append(contents, &geminiChatContent{
			Parts: []*geminiChatParts{{Text: msg.Content}},
			Role:  role,
		})
	}
	contents = append(contents, &geminiChatContent{
		Parts: []*geminiChatParts{{Text: userMessage}},
		Role:  roleUser,
	})

	payload := geminiChatRequest{
		Contents: contents,
	}
	if systemPrompt != "" {
		payload.SystemInstruction = &geminiSystemInstruction{
			Parts: []*geminiChatParts{{Text: systemPrompt}},
		}
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1/models/%s:generateContent", p.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", err
	}

	req.Header.Set("x-goog-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	var geminiRes geminiChatResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", err
	}

	if len(geminiRes.Candidates) == 0 || geminiRes.Candidates[0].Content == nil || len(geminiRes.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	return geminiRes.Candidates[0].Content.Parts[0].Text, nil
}
