package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider constants for LLM provider selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderStub      = "stub"
)

// ErrEmptyCompletion is returned when the provider answers without any text.
var ErrEmptyCompletion = errors.New("completion returned no content")

// Config holds LLM client configuration.
type Config struct {
	Provider  string        // "openai", "anthropic" or "stub"
	APIKey    string        // Required for real providers
	BaseURL   string        // Optional: custom API endpoint
	Model     string        // Model name (e.g., "gpt-4o", "claude-sonnet-4-5-20250514")
	MaxTokens int           // Default max output tokens when a request leaves it unset
	Timeout   time.Duration // Upper bound for a single completion call; 0 disables
}

// Client is the completion capability: one system prompt and one user prompt in,
// one block of text out.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Model() string
}

type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  *float64 // nil = model default
}

type Response struct {
	Content          string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
}

// New creates a Client for cfg.Provider. Defaults to OpenAI if no provider is specified.
func New(cfg Config) (Client, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	if provider != ProviderStub && cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	var (
		c   Client
		err error
	)
	switch provider {
	case ProviderOpenAI:
		c, err = newOpenAIClient(cfg)
	case ProviderAnthropic:
		c, err = newAnthropicClient(cfg)
	case ProviderStub:
		c = NewStubClient()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Timeout > 0 {
		c = &timeoutClient{Client: c, timeout: cfg.Timeout}
	}
	return c, nil
}

// timeoutClient bounds every completion so a caller never waits indefinitely.
type timeoutClient struct {
	Client
	timeout time.Duration
}

func (c *timeoutClient) Complete(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.Client.Complete(ctx, req)
}

func Temp(t float64) *float64 {
	return &t
}
