package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Client wraps an OpenAI-compatible chat completion API. The base URL is
// configurable so the same client talks to Groq (the default) or OpenAI.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *log.Logger
}

// Config for the completion client.
type Config struct {
	APIKey      string
	BaseURL     string        // default: Groq's OpenAI-compatible endpoint
	Model       string        // default: llama3-70b-8192
	Temperature float32       // default: 0.75
	Timeout     time.Duration // default: 12s per request
}

// NewClient creates a completion client.
func NewClient(cfg Config, logger *log.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3-70b-8192"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.75
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 12 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Client{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
}

// ChatMessage represents a chat message
type ChatMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Chat sends the message history to the completion API and returns the
// assistant reply. The request is bounded by the configured timeout so a hung
// provider cannot stall a phone call turn indefinitely.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	converted := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		converted[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    converted,
		Temperature: c.temperature,
	})
	duration := time.Since(start)

	if err != nil {
		c.logger.Printf("❌ Chat completion failed: %v (duration: %v)", err, duration)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	c.logger.Printf("✅ Chat completion: %d messages, %d tokens (duration: %v)",
		len(messages), resp.Usage.TotalTokens, duration)

	return resp.Choices[0].Message.Content, nil
}

// Complete is a helper for single-prompt requests, with an optional system
// prompt.
func (c *Client) Complete(ctx context.Context, prompt string, systemPrompt ...string) (string, error) {
	var messages []ChatMessage
	if len(systemPrompt) > 0 && systemPrompt[0] != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: systemPrompt[0]})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: prompt})
	return c.Chat(ctx, messages)
}
