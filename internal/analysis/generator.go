package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"briefroom.app/relay/common/llm"
	"briefroom.app/relay/common/logger"
	"briefroom.app/relay/internal/domain"
	"briefroom.app/relay/internal/model"
	"briefroom.app/relay/internal/prompt"
)

// ContextAssembler renders uploaded documents into prompt text.
type ContextAssembler interface {
	Assemble(ctx context.Context, docs []model.DocumentRef) string
}

type MCRequest struct {
	Topic       string
	Context     string
	SessionType model.SessionType
	Documents   []model.DocumentRef
}

type CollaboratorRequest struct {
	Topic        string
	CustomPrompt string
	SessionType  model.SessionType
	Role         string
	Documents    []model.DocumentRef
}

type TokenUsage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

type Result struct {
	Text  string
	Usage TokenUsage
	Model string
}

// Generator runs one completion round trip for a single actor. It never retries.
type Generator struct {
	llm       llm.Client
	documents ContextAssembler
	maxTokens int
}

func NewGenerator(client llm.Client, documents ContextAssembler, maxTokens int) *Generator {
	return &Generator{llm: client, documents: documents, maxTokens: maxTokens}
}

// GenerateMC produces the MC's initial analysis. Hiring and performance
// sessions get reviewer guidance appended.
func (g *Generator) GenerateMC(ctx context.Context, req MCRequest) (*Result, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, domain.InvalidRequest("topic is required")
	}
	if strings.TrimSpace(req.Context) == "" {
		return nil, domain.InvalidRequest("context is required")
	}

	userPrompt := fmt.Sprintf("Decision topic: %s\n\nBackground:\n%s", strings.TrimSpace(req.Topic), strings.TrimSpace(req.Context))
	res, err := g.run(ctx, "analysis.mc", prompt.SystemPromptForAnalysis(req.SessionType), g.withDocuments(ctx, userPrompt, req.Documents))
	if err != nil {
		return nil, err
	}

	res.Text += prompt.PostAnalysisBoilerplate(req.SessionType)
	return res, nil
}

// GenerateCollaborator produces one collaborator's role-scoped analysis.
func (g *Generator) GenerateCollaborator(ctx context.Context, req CollaboratorRequest) (*Result, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, domain.InvalidRequest("topic is required")
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{Role: logger.Ptr(req.Role)})

	var b strings.Builder
	fmt.Fprintf(&b, "Decision topic: %s", strings.TrimSpace(req.Topic))
	if req.Role != "" {
		fmt.Fprintf(&b, "\n\nYour role: %s", req.Role)
	}
	if focus := strings.TrimSpace(req.CustomPrompt); focus != "" {
		fmt.Fprintf(&b, "\n\nFocus on the following:\n%s", focus)
	}

	return g.run(ctx, "analysis.collaborator",
		prompt.SystemPromptForCollaborator(req.SessionType, req.Role),
		g.withDocuments(ctx, b.String(), req.Documents))
}

func (g *Generator) withDocuments(ctx context.Context, userPrompt string, docs []model.DocumentRef) string {
	if g.documents == nil || len(docs) == 0 {
		return userPrompt
	}
	docContext := g.documents.Assemble(ctx, docs)
	if docContext == "" {
		return userPrompt
	}
	return userPrompt + "\n\nSupporting documents:\n\n" + docContext
}

func (g *Generator) run(ctx context.Context, spanName, systemPrompt, userPrompt string) (*Result, error) {
	sc := logger.StartSpan(ctx, spanName, attribute.String("llm.model", g.llm.Model()))
	defer sc.End()
	ctx = sc.Context()

	start := time.Now()
	resp, err := g.llm.Complete(ctx, llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    g.maxTokens,
	})
	if err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "analysis generation failed",
			"latency_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil, domain.UpstreamGenerationFailure("Failed to generate analysis: "+err.Error(), llm.IsRetryable(ctx, err), err)
	}

	sc.SetAttributes(
		attribute.Int("llm.prompt_tokens", resp.PromptTokens),
		attribute.Int("llm.completion_tokens", resp.CompletionTokens),
	)
	slog.InfoContext(ctx, "analysis generated",
		"latency_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens,
		"finish_reason", resp.FinishReason)

	return &Result{
		Text:  resp.Content,
		Usage: TokenUsage{InputTokens: resp.PromptTokens, OutputTokens: resp.CompletionTokens},
		Model: g.llm.Model(),
	}, nil
}
