package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"briefroom.app/relay/common/id"
	"briefroom.app/relay/common/logger"
	"briefroom.app/relay/internal/analysis"
	"briefroom.app/relay/internal/domain"
	"briefroom.app/relay/internal/lifecycle"
	"briefroom.app/relay/internal/model"
	"briefroom.app/relay/internal/queue"
	"briefroom.app/relay/internal/store"
	"briefroom.app/relay/internal/synthesis"
)

const component = "relay.service.decision"

// AnalysisGenerator produces a single actor's analysis.
type AnalysisGenerator interface {
	GenerateMC(ctx context.Context, req analysis.MCRequest) (*analysis.Result, error)
	GenerateCollaborator(ctx context.Context, req analysis.CollaboratorRequest) (*analysis.Result, error)
}

// SynthesisGenerator combines submissions into a brief and revises it.
type SynthesisGenerator interface {
	Generate(ctx context.Context, topic string, submissions []model.Submission, sessionType model.SessionType) (*synthesis.Result, error)
	Revise(ctx context.Context, in synthesis.RevisionInput) (*synthesis.Result, error)
}

type CreateSessionParams struct {
	Title         string
	Context       string
	SessionType   string
	MCName        string
	MCEmail       string
	MCRole        string
	SelectedRoles []string
	CustomRoles   []string
}

type MCAnalysisParams struct {
	SessionID   string // optional, for log correlation only
	Topic       string
	Context     string
	SessionType string
	Documents   []model.DocumentRef
}

type CollaboratorAnalysisParams struct {
	SessionID    string // optional, for log correlation only
	Topic        string
	CustomPrompt string
	SessionType  string
	Role         string
	Documents    []model.DocumentRef
}

type SubmitAnalysisParams struct {
	Role              string
	CollaboratorName  string
	CustomPrompt      string
	Analysis          string
	Iterations        []model.Iteration
	UploadedDocuments []model.DocumentRef
}

type ReviewParams struct {
	CollaboratorName string
	Role             string
	Rating           string
	Comment          string
}

type SynthesisResult struct {
	Synthesis   string
	Version     int
	GeneratedAt time.Time
}

type RevisionResult struct {
	Synthesis string
	Version   int
	Message   string
}

// DecisionService is the session workflow: collect analyses, synthesize,
// revise on feedback, finalize.
type DecisionService interface {
	CreateSession(ctx context.Context, params CreateSessionParams) (*model.Session, error)
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	GenerateMcAnalysis(ctx context.Context, params MCAnalysisParams) (*analysis.Result, error)
	GenerateCollaboratorAnalysis(ctx context.Context, params CollaboratorAnalysisParams) (*analysis.Result, error)
	SubmitAnalysis(ctx context.Context, sessionID string, params SubmitAnalysisParams) (*model.Submission, error)
	GenerateSynthesis(ctx context.Context, sessionID string) (*SynthesisResult, error)
	ReviseSynthesis(ctx context.Context, sessionID string, instructions string) (*RevisionResult, error)
	SubmitReview(ctx context.Context, sessionID string, params ReviewParams) (*model.Review, error)
	FinalizeSession(ctx context.Context, sessionID string, finalDecision *string) (*model.Session, error)
}

type decisionService struct {
	sessions  store.SessionStore
	analyses  AnalysisGenerator
	synthesis SynthesisGenerator
	events    queue.Producer
	now       func() time.Time
}

func NewDecisionService(sessions store.SessionStore, analyses AnalysisGenerator, synth SynthesisGenerator, events queue.Producer) DecisionService {
	if events == nil {
		events = queue.NoopProducer{}
	}
	return &decisionService{
		sessions:  sessions,
		analyses:  analyses,
		synthesis: synth,
		events:    events,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *decisionService) CreateSession(ctx context.Context, params CreateSessionParams) (*model.Session, error) {
	ctx = withOperation(ctx, "", "create_session")

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, domain.InvalidRequest("title is required")
	}
	if strings.TrimSpace(params.MCName) == "" {
		return nil, domain.InvalidRequest("mcName is required")
	}
	custom := cleanRoles(params.CustomRoles)
	if len(custom) > model.MaxCustomRoles {
		return nil, domain.InvalidRequest("at most %d custom roles are allowed", model.MaxCustomRoles)
	}

	session := &model.Session{
		ID:            id.NewString(),
		Title:         title,
		Context:       strings.TrimSpace(params.Context),
		SessionType:   model.ParseSessionType(params.SessionType),
		MCName:        strings.TrimSpace(params.MCName),
		MCEmail:       strings.TrimSpace(params.MCEmail),
		MCRole:        strings.TrimSpace(params.MCRole),
		SelectedRoles: mergeRoles(cleanRoles(params.SelectedRoles), custom),
		CustomRoles:   custom,
		Status:        model.SessionStatusActive,
		CreatedAt:     s.now(),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		slog.ErrorContext(ctx, "failed to create session", "error", err)
		return nil, fmt.Errorf("creating session: %w", err)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: logger.Ptr(session.ID)})
	slog.InfoContext(ctx, "session created", "roles", len(session.SelectedRoles))
	s.publish(ctx, session, domain.EventSessionCreated, session.MCName, 0)
	return session, nil
}

func (s *decisionService) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.load(withOperation(ctx, sessionID, "get_session"), sessionID)
}

func (s *decisionService) GenerateMcAnalysis(ctx context.Context, params MCAnalysisParams) (*analysis.Result, error) {
	sessionType := model.ParseSessionType(params.SessionType)
	ctx = withOperation(ctx, params.SessionID, "generate_mc_analysis")
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionType: logger.Ptr(string(sessionType))})

	return s.analyses.GenerateMC(ctx, analysis.MCRequest{
		Topic:       params.Topic,
		Context:     params.Context,
		SessionType: sessionType,
		Documents:   params.Documents,
	})
}

func (s *decisionService) GenerateCollaboratorAnalysis(ctx context.Context, params CollaboratorAnalysisParams) (*analysis.Result, error) {
	sessionType := model.ParseSessionType(params.SessionType)
	ctx = withOperation(ctx, params.SessionID, "generate_collaborator_analysis")
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionType: logger.Ptr(string(sessionType))})

	return s.analyses.GenerateCollaborator(ctx, analysis.CollaboratorRequest{
		Topic:        params.Topic,
		CustomPrompt: params.CustomPrompt,
		SessionType:  sessionType,
		Role:         params.Role,
		Documents:    params.Documents,
	})
}

func (s *decisionService) SubmitAnalysis(ctx context.Context, sessionID string, params SubmitAnalysisParams) (*model.Submission, error) {
	ctx = withOperation(ctx, sessionID, "submit_analysis")

	if strings.TrimSpace(params.CollaboratorName) == "" {
		return nil, domain.InvalidRequest("collaboratorName is required")
	}
	if strings.TrimSpace(params.Analysis) == "" {
		return nil, domain.InvalidRequest("analysis is required")
	}

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckCanSubmit(session); err != nil {
		return nil, err
	}

	sub := model.Submission{
		Role:              strings.TrimSpace(params.Role),
		CollaboratorName:  strings.TrimSpace(params.CollaboratorName),
		CustomPrompt:      params.CustomPrompt,
		Analysis:          params.Analysis,
		Iterations:        params.Iterations,
		UploadedDocuments: params.UploadedDocuments,
		SubmittedAt:       s.now(),
	}
	if err := s.sessions.AppendSubmission(ctx, sessionID, sub); err != nil {
		return nil, s.storeError(ctx, sessionID, err, "Session is finalized and no longer accepts submissions")
	}

	slog.InfoContext(ctx, "analysis submitted", "role", sub.Role, "iterations", len(sub.Iterations), "documents", len(sub.UploadedDocuments))
	s.publish(ctx, session, domain.EventSubmissionAdded, sub.CollaboratorName, 0)
	return &sub, nil
}

// GenerateSynthesis (re)generates version 1 from the stored submissions.
// Regenerating overwrites the text and keeps reviews and history.
func (s *decisionService) GenerateSynthesis(ctx context.Context, sessionID string) (*SynthesisResult, error) {
	ctx = withOperation(ctx, sessionID, "generate_synthesis")

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckCanGenerate(session, session.Submissions); err != nil {
		return nil, err
	}

	res, err := s.synthesis.Generate(ctx, session.Title, session.Submissions, session.SessionType)
	if err != nil {
		return nil, err
	}

	at := s.now()
	if err := s.sessions.SetSynthesis(ctx, sessionID, res.Text, at); err != nil {
		return nil, s.storeError(ctx, sessionID, err, "Session was finalized while the synthesis was being generated")
	}

	slog.InfoContext(ctx, "synthesis generated", "submissions", len(session.Submissions), "regenerated", session.HasSynthesis())
	s.publish(ctx, session, domain.EventSynthesisGenerated, session.MCName, 1)
	return &SynthesisResult{Synthesis: res.Text, Version: 1, GeneratedAt: at}, nil
}

// ReviseSynthesis folds the reviews on the current version into a new one.
// The write is conditional on the version read here, so a concurrent revision
// loses with InvalidState instead of overwriting.
func (s *decisionService) ReviseSynthesis(ctx context.Context, sessionID string, instructions string) (*RevisionResult, error) {
	ctx = withOperation(ctx, sessionID, "revise_synthesis")

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	next, err := lifecycle.CheckCanRevise(session, session.SynthesisReviews)
	if err != nil {
		slog.InfoContext(ctx, "revision rejected", "kind", domain.KindOf(err), "version", lifecycle.CurrentVersion(session))
		return nil, err
	}

	res, err := s.synthesis.Revise(ctx, synthesis.RevisionInput{
		Topic:        session.Title,
		SessionType:  session.SessionType,
		Previous:     session.CurrentSynthesis(),
		Feedback:     session.SynthesisReviews,
		Instructions: instructions,
		Submissions:  session.Submissions,
	})
	if err != nil {
		return nil, err
	}

	at := s.now()
	update := store.RevisionUpdate{
		Synthesis: res.Text,
		Version:   next,
		Snapshot:  lifecycle.Snapshot(session, at),
		RevisedAt: at,
	}
	if err := s.sessions.ApplyRevision(ctx, sessionID, lifecycle.CurrentVersion(session), update); err != nil {
		return nil, s.storeError(ctx, sessionID, err, "Synthesis changed while this revision was running; reload and try again")
	}

	slog.InfoContext(ctx, "synthesis revised", "version", next, "feedback", len(session.SynthesisReviews))
	s.publish(ctx, session, domain.EventSynthesisRevised, session.MCName, next)
	return &RevisionResult{Synthesis: res.Text, Version: next, Message: lifecycle.Advisory(next)}, nil
}

func (s *decisionService) SubmitReview(ctx context.Context, sessionID string, params ReviewParams) (*model.Review, error) {
	ctx = withOperation(ctx, sessionID, "submit_review")

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckCanReview(session); err != nil {
		return nil, err
	}

	if strings.TrimSpace(params.CollaboratorName) == "" {
		return nil, domain.InvalidRequest("collaboratorName is required")
	}
	rating, ok := model.ParseRating(params.Rating)
	if !ok {
		return nil, domain.InvalidRequest("rating must be one of helpful, needs_work")
	}

	review := model.Review{
		CollaboratorName: strings.TrimSpace(params.CollaboratorName),
		Role:             strings.TrimSpace(params.Role),
		Rating:           rating,
		Comment:          strings.TrimSpace(params.Comment),
		Timestamp:        s.now(),
	}
	if err := s.sessions.AppendReview(ctx, sessionID, review); err != nil {
		return nil, s.storeError(ctx, sessionID, err, "Session is finalized and no longer accepts reviews")
	}

	slog.InfoContext(ctx, "review submitted", "rating", rating, "version", lifecycle.CurrentVersion(session))
	s.publish(ctx, session, domain.EventReviewAdded, review.CollaboratorName, lifecycle.CurrentVersion(session))
	return &review, nil
}

// FinalizeSession locks the session. finalizedBy is the MC's display name;
// there is no caller identity to check against.
func (s *decisionService) FinalizeSession(ctx context.Context, sessionID string, finalDecision *string) (*model.Session, error) {
	ctx = withOperation(ctx, sessionID, "finalize_session")

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckCanFinalize(session); err != nil {
		return nil, err
	}

	if finalDecision != nil && strings.TrimSpace(*finalDecision) == "" {
		finalDecision = nil
	}
	f := store.Finalization{
		FinalizedAt:   s.now(),
		FinalizedBy:   session.MCName,
		FinalDecision: finalDecision,
	}
	if err := s.sessions.Finalize(ctx, sessionID, f); err != nil {
		return nil, s.storeError(ctx, sessionID, err, fmt.Sprintf("Session %s is already finalized", sessionID))
	}

	session.Status = model.SessionStatusFinalized
	session.FinalizedAt = &f.FinalizedAt
	session.FinalizedBy = &f.FinalizedBy
	session.FinalDecision = f.FinalDecision

	slog.InfoContext(ctx, "session finalized", "version", lifecycle.CurrentVersion(session), "has_decision", finalDecision != nil)
	s.publish(ctx, session, domain.EventSessionFinalized, session.MCName, lifecycle.CurrentVersion(session))
	return session, nil
}

func (s *decisionService) load(ctx context.Context, sessionID string) (*model.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, domain.InvalidRequest("sessionId is required")
	}
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.NotFound("Session %s not found", sessionID)
		}
		slog.ErrorContext(ctx, "failed to load session", "error", err)
		return nil, domain.Internal("failed to load session", err)
	}
	return session, nil
}

// storeError converts a failed conditional write. conflict is shown when the
// precondition no longer held at write time.
func (s *decisionService) storeError(ctx context.Context, sessionID string, err error, conflict string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.NotFound("Session %s not found", sessionID)
	case errors.Is(err, store.ErrConditionFailed):
		slog.WarnContext(ctx, "conditional session write lost", "error", err)
		return &domain.Error{Kind: domain.KindInvalidState, Message: conflict, Err: err}
	default:
		slog.ErrorContext(ctx, "session write failed", "error", err)
		return domain.Internal("failed to update session", err)
	}
}

// publish is best effort. A lost event never fails the operation.
func (s *decisionService) publish(ctx context.Context, session *model.Session, typ domain.EventType, actor string, version int) {
	evt := domain.Event{
		Type:        typ,
		SessionID:   session.ID,
		SessionType: string(session.SessionType),
		Actor:       actor,
		Version:     version,
		OccurredAt:  s.now(),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		evt.TraceID = logger.Ptr(sc.TraceID().String())
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		slog.WarnContext(ctx, "failed to publish session event", "event_type", typ, "error", err)
	}
}

func withOperation(ctx context.Context, sessionID, op string) context.Context {
	fields := logger.LogFields{Operation: logger.Ptr(op), Component: component}
	if sessionID != "" {
		fields.SessionID = logger.Ptr(sessionID)
	}
	return logger.WithLogFields(ctx, fields)
}

func cleanRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r != "" && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}

func mergeRoles(selected, custom []string) []string {
	out := slices.Clone(selected)
	for _, r := range custom {
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
