package llm

import (
	"context"
	"fmt"
	"strings"
)

// StubClient answers every completion locally. Used for development without an API key.
type StubClient struct{}

func NewStubClient() *StubClient {
	return &StubClient{}
}

func (c *StubClient) Complete(_ context.Context, req Request) (*Response, error) {
	firstLine, _, _ := strings.Cut(strings.TrimSpace(req.UserPrompt), "\n")
	content := fmt.Sprintf("Stub analysis for: %s\n\n(No LLM provider configured.)", firstLine)
	return &Response{
		Content:          content,
		FinishReason:     "stop",
		PromptTokens:     len(strings.Fields(req.SystemPrompt)) + len(strings.Fields(req.UserPrompt)),
		CompletionTokens: len(strings.Fields(content)),
	}, nil
}

func (c *StubClient) Model() string {
	return "stub"
}
