// Package ai wraps the OpenAI chat-completion API behind the chat.Responder
// interface.  When no API key is configured the client degrades to a fixed
// dev-mode reply so local environments work without credentials.
package ai

import (
	"context"
	"errors"
	"log"

	openai "github.com/sashabaranov/go-openai"

	"github.com/finovai/finovai-backend/internal/chat"
)

// maxReplyTokens bounds generated replies; the persona prompt already asks
// for 2-4 paragraphs.
const maxReplyTokens = 500

const devModeReply = "Gracias por escribir. El asistente de FinovAI no está disponible en este entorno, pero tu mensaje quedó guardado."

// Client is the production chat.Responder.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient builds a Responder from configuration.  An empty API key
// returns a dev-mode client that logs and answers with fixed copy, the same
// posture the WhatsApp sender takes without credentials.
func NewClient(apiKey, baseURL, model string) *Client {
	if apiKey == "" {
		return &Client{model: model}
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

// Generate implements chat.Responder.
func (c *Client) Generate(ctx context.Context, turns []chat.Turn) (string, error) {
	if c.api == nil {
		log.Printf("ai: no API key configured, returning dev-mode reply")
		return devModeReply, nil
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		role := openai.ChatMessageRoleUser
		switch t.Role {
		case "system":
			role = openai.ChatMessageRoleSystem
		case "assistant":
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: maxReplyTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
