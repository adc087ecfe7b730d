package handler_test

import (
	"context"

	"briefroom.app/relay/internal/analysis"
	"briefroom.app/relay/internal/model"
	"briefroom.app/relay/internal/service"
)

type mockDecisionService struct {
	createSessionFn     func(ctx context.Context, params service.CreateSessionParams) (*model.Session, error)
	getSessionFn        func(ctx context.Context, sessionID string) (*model.Session, error)
	mcAnalysisFn        func(ctx context.Context, params service.MCAnalysisParams) (*analysis.Result, error)
	collaboratorFn      func(ctx context.Context, params service.CollaboratorAnalysisParams) (*analysis.Result, error)
	submitAnalysisFn    func(ctx context.Context, sessionID string, params service.SubmitAnalysisParams) (*model.Submission, error)
	generateSynthesisFn func(ctx context.Context, sessionID string) (*service.SynthesisResult, error)
	reviseSynthesisFn   func(ctx context.Context, sessionID string, instructions string) (*service.RevisionResult, error)
	submitReviewFn      func(ctx context.Context, sessionID string, params service.ReviewParams) (*model.Review, error)
	finalizeSessionFn   func(ctx context.Context, sessionID string, finalDecision *string) (*model.Session, error)
}

func (m *mockDecisionService) CreateSession(ctx context.Context, params service.CreateSessionParams) (*model.Session, error) {
	if m.createSessionFn != nil {
		return m.createSessionFn(ctx, params)
	}
	return nil, nil
}

func (m *mockDecisionService) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if m.getSessionFn != nil {
		return m.getSessionFn(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockDecisionService) GenerateMcAnalysis(ctx context.Context, params service.MCAnalysisParams) (*analysis.Result, error) {
	if m.mcAnalysisFn != nil {
		return m.mcAnalysisFn(ctx, params)
	}
	return nil, nil
}

func (m *mockDecisionService) GenerateCollaboratorAnalysis(ctx context.Context, params service.CollaboratorAnalysisParams) (*analysis.Result, error) {
	if m.collaboratorFn != nil {
		return m.collaboratorFn(ctx, params)
	}
	return nil, nil
}

func (m *mockDecisionService) SubmitAnalysis(ctx context.Context, sessionID string, params service.SubmitAnalysisParams) (*model.Submission, error) {
	if m.submitAnalysisFn != nil {
		return m.submitAnalysisFn(ctx, sessionID, params)
	}
	return nil, nil
}

func (m *mockDecisionService) GenerateSynthesis(ctx context.Context, sessionID string) (*service.SynthesisResult, error) {
	if m.generateSynthesisFn != nil {
		return m.generateSynthesisFn(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockDecisionService) ReviseSynthesis(ctx context.Context, sessionID string, instructions string) (*service.RevisionResult, error) {
	if m.reviseSynthesisFn != nil {
		return m.reviseSynthesisFn(ctx, sessionID, instructions)
	}
	return nil, nil
}

func (m *mockDecisionService) SubmitReview(ctx context.Context, sessionID string, params service.ReviewParams) (*model.Review, error) {
	if m.submitReviewFn != nil {
		return m.submitReviewFn(ctx, sessionID, params)
	}
	return nil, nil
}

func (m *mockDecisionService) FinalizeSession(ctx context.Context, sessionID string, finalDecision *string) (*model.Session, error) {
	if m.finalizeSessionFn != nil {
		return m.finalizeSessionFn(ctx, sessionID, finalDecision)
	}
	return nil, nil
}
