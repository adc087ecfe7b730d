package analysis_test

import (
	"context"

	"briefroom.app/relay/common/llm"
	"briefroom.app/relay/internal/model"
)

type mockLLM struct {
	completeFn func(ctx context.Context, req llm.Request) (*llm.Response, error)
	requests   []llm.Request
}

func (m *mockLLM) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	m.requests = append(m.requests, req)
	if m.completeFn != nil {
		return m.completeFn(ctx, req)
	}
	return &llm.Response{Content: "analysis", PromptTokens: 10, CompletionTokens: 5}, nil
}

func (m *mockLLM) Model() string {
	return "test-model"
}

type mockAssembler struct {
	assembleFn func(ctx context.Context, docs []model.DocumentRef) string
}

func (m *mockAssembler) Assemble(ctx context.Context, docs []model.DocumentRef) string {
	if m.assembleFn != nil {
		return m.assembleFn(ctx, docs)
	}
	return ""
}
