package synthesis

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"briefroom.app/relay/common/llm"
	"briefroom.app/relay/common/logger"
	"briefroom.app/relay/internal/domain"
	"briefroom.app/relay/internal/model"
)

// Engine turns submissions (and later, feedback) into a brief. It only builds
// prompts and calls the model; versioning and persistence belong to the caller.
type Engine struct {
	llm       llm.Client
	maxTokens int
}

func NewEngine(client llm.Client, maxTokens int) *Engine {
	return &Engine{llm: client, maxTokens: maxTokens}
}

type Result struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

func (e *Engine) Generate(ctx context.Context, topic string, submissions []model.Submission, sessionType model.SessionType) (*Result, error) {
	if len(submissions) == 0 {
		return nil, domain.InvalidRequest("At least one submission is required to generate a synthesis")
	}
	res, err := e.complete(ctx, "synthesis.generate", BuildGeneratePrompt(topic, submissions, sessionType), "Failed to generate synthesis")
	if err != nil {
		return nil, err
	}
	warnOnMissingSections(ctx, res.Text, sessionType)
	return res, nil
}

func (e *Engine) Revise(ctx context.Context, in RevisionInput) (*Result, error) {
	if len(in.Feedback) == 0 {
		return nil, domain.InvalidRequest("No feedback to incorporate yet")
	}
	res, err := e.complete(ctx, "synthesis.revise", BuildRevisePrompt(in), "Failed to revise synthesis")
	if err != nil {
		return nil, err
	}
	warnOnMissingSections(ctx, res.Text, in.SessionType)
	return res, nil
}

// warnOnMissingSections logs briefs that drifted from the template. The text is still returned as is.
func warnOnMissingSections(ctx context.Context, text string, sessionType model.SessionType) {
	if HasAllSections(text, sessionType) {
		return
	}
	slog.WarnContext(ctx, "synthesis is missing template sections",
		"session_type", sessionType,
		"preview", logger.Truncate(text, 200))
}

func (e *Engine) complete(ctx context.Context, spanName, userPrompt, failure string) (*Result, error) {
	sc := logger.StartSpan(ctx, spanName, attribute.String("llm.model", e.llm.Model()))
	defer sc.End()
	ctx = sc.Context()

	start := time.Now()
	resp, err := e.llm.Complete(ctx, llm.Request{
		SystemPrompt: expertSystemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    e.maxTokens,
		Temperature:  llm.Temp(0.4),
	})
	if err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "synthesis completion failed",
			"span", spanName,
			"latency_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil, domain.UpstreamGenerationFailure(failure+": "+err.Error(), llm.IsRetryable(ctx, err), err)
	}

	sc.SetAttributes(
		attribute.Int("llm.prompt_tokens", resp.PromptTokens),
		attribute.Int("llm.completion_tokens", resp.CompletionTokens),
	)
	slog.InfoContext(ctx, "synthesis completion finished",
		"span", spanName,
		"latency_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens)

	return &Result{
		Text:             resp.Content,
		PromptTokens:     resp.PromptTokens,
		CompletionTokens: resp.CompletionTokens,
	}, nil
}
