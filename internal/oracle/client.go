// Package oracle wraps the external reasoning backend behind a small JSON
// completion client. Risk scoring, intake structuring, and prep enrichment all
// share this client with different prompts.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("clinictriage.internal.oracle")

// ErrUnavailable is returned by Complete when the backend is not configured.
// This is an expected state, not a transport failure.
var ErrUnavailable = errors.New("oracle: backend not configured")

// Config describes how to reach the reasoning backend. The client is built
// once during process assembly; there is no lazy global state.
type Config struct {
	Enabled bool
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ChatClient is the subset of the OpenAI client the oracle uses. Tests inject
// scripted implementations.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client issues JSON-mode completions against the reasoning backend.
type Client struct {
	chat  ChatClient
	model string
}

// New builds a client from config. When the backend is disabled or no
// credential is present the client is still returned, but Available reports
// false and Complete returns ErrUnavailable without any outbound call.
func New(cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	c := &Client{model: model}
	if !cfg.Enabled || strings.TrimSpace(cfg.APIKey) == "" {
		return c
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	c.chat = openai.NewClientWithConfig(clientCfg)
	return c
}

// NewWithChatClient builds a client around an injected chat implementation.
func NewWithChatClient(chat ChatClient, model string) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{chat: chat, model: model}
}

// Available reports whether the backend is configured.
func (c *Client) Available() bool {
	return c != nil && c.chat != nil
}

// Complete sends a system + user prompt pair and returns the raw response
// text. The backend is asked for a single JSON object; callers own parsing
// and validation of the result.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Available() {
		return "", ErrUnavailable
	}

	ctx, span := tracer.Start(ctx, "oracle.complete")
	defer span.End()

	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: 400,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("oracle: completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}
