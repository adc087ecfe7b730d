package service_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"briefroom.app/relay/common/llm"
	"briefroom.app/relay/internal/domain"
	"briefroom.app/relay/internal/store"
)

// mockLLM answers synthesis prompts with a brief carrying every section header
// and the number of the call, so successive versions differ.
type mockLLM struct {
	mu         sync.Mutex
	completeFn func(ctx context.Context, req llm.Request) (*llm.Response, error)
	requests   []llm.Request
}

func (m *mockLLM) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	n := len(m.requests)
	m.mu.Unlock()

	if m.completeFn != nil {
		return m.completeFn(ctx, req)
	}
	return &llm.Response{
		Content:          briefText(n),
		PromptTokens:     len(strings.Fields(req.UserPrompt)),
		CompletionTokens: 40,
	}, nil
}

func (m *mockLLM) Model() string {
	return "test-model"
}

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockLLM) last() llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

func briefText(n int) string {
	return "## Areas of Agreement\nBoth value the candidate.\n\n" +
		"## Areas of Conflict\nCompensation.\n\n" +
		"## Critical Points & Red Flags\nNotice period.\n\n" +
		"## Executive Summary & Recommendation\n**Verdict: CONDITIONAL** draft " + strconv.Itoa(n)
}

// mockSessionStore delegates to a real store unless a function field is set.
type mockSessionStore struct {
	store.SessionStore
	applyRevisionFn func(ctx context.Context, id string, expectedVersion int, update store.RevisionUpdate) error
	finalizeFn      func(ctx context.Context, id string, f store.Finalization) error
}

func (m *mockSessionStore) ApplyRevision(ctx context.Context, id string, expectedVersion int, update store.RevisionUpdate) error {
	if m.applyRevisionFn != nil {
		return m.applyRevisionFn(ctx, id, expectedVersion, update)
	}
	return m.SessionStore.ApplyRevision(ctx, id, expectedVersion, update)
}

func (m *mockSessionStore) Finalize(ctx context.Context, id string, f store.Finalization) error {
	if m.finalizeFn != nil {
		return m.finalizeFn(ctx, id, f)
	}
	return m.SessionStore.Finalize(ctx, id, f)
}

type mockProducer struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (m *mockProducer) Publish(_ context.Context, evt domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return m.err
}

func (m *mockProducer) Close() error {
	return nil
}

func (m *mockProducer) types() []domain.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EventType, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

var errUpstream = errors.New("provider returned 503")
