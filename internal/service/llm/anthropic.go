package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/litsalon/backend/internal/model/chat"
)

// AnthropicCompleter talks to the Anthropic Messages API directly.
type AnthropicCompleter struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature *float64
}

// NewAnthropicCompleter builds a completer for the given credentials.
// baseURL is optional and lets deployments route through a proxy.
func NewAnthropicCompleter(apiKey, baseURL, model string, maxTokens int, temperature *float64) *AnthropicCompleter {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &AnthropicCompleter{
		client:      anthropic.NewClient(opts...),
		model:       model,
		maxTokens:   int64(maxTokens),
		temperature: temperature,
	}
}

// Complete sends the conversation to the Messages API and concatenates the
// text blocks of the reply.
func (c *AnthropicCompleter) Complete(ctx context.Context, systemPrompt string, history []chat.Entry, userMessage string) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, entry := range history {
		switch entry.Role {
		case chat.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(entry.Content)))
		case chat.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(entry.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  messages,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
	}
	if c.temperature != nil {
		params.Temperature = anthropic.Float(*c.temperature)
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", classifyAnthropicErr(err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}

	log.Printf("[llm] anthropic completion ok, length=%d", out.Len())
	return out.String(), nil
}

// classifyAnthropicErr maps API status codes onto the coarse taxonomy the
// orchestrator surfaces to users.
func classifyAnthropicErr(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrAuth, err)
		case http.StatusBadRequest, http.StatusNotFound, http.StatusMethodNotAllowed:
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
	}
	return fmt.Errorf("anthropic completion: %w", err)
}
