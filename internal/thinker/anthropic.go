package thinker

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// defaultMaxTokens bounds the completion; a few sentences of reasoning plus
// the CHOICE line fit comfortably.
const defaultMaxTokens = 1024

// AnthropicGenerator implements TextGenerator against the Anthropic API.
type AnthropicGenerator struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicGenerator creates a generator for the given model. The API key
// may be empty, in which case the SDK falls back to ANTHROPIC_API_KEY.
func NewAnthropicGenerator(apiKey string, model string) *AnthropicGenerator {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &AnthropicGenerator{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(model),
		maxTokens: defaultMaxTokens,
	}
}

// Generate performs a single completion call. No retries: the caller's
// fallback handles failures.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model: g.model,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		MaxTokens:   g.maxTokens,
		Temperature: anthropic.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic generation failed: %w", err)
	}
	if message == nil || len(message.Content) == 0 {
		return "", errors.New("empty response from anthropic")
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}
