package llm

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultAnthropicModel = "claude-sonnet-4-20250514"

// AnthropicMessager es el subconjunto del SDK que usamos; permite mockear en tests.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicClient implementa Client con la Messages API.
type AnthropicClient struct {
	messages  AnthropicMessager
	model     string
	maxTokens int64
}

func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return newAnthropicClientWith(&c.Messages, model)
}

func newAnthropicClientWith(messages AnthropicMessager, model string) *AnthropicClient {
	if strings.TrimSpace(model) == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicClient{messages: messages, model: model, maxTokens: 2048}
}

func (a *AnthropicClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt))},
	}
	if strings.TrimSpace(systemPrompt) != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}
	resp, err := a.messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("anthropic empty response")
	}
	return sb.String(), nil
}
