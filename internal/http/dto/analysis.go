package dto

import (
	"briefroom.app/relay/internal/analysis"
	"briefroom.app/relay/internal/model"
)

type MCAnalysisRequest struct {
	SessionID   string              `json:"sessionId"`
	Topic       string              `json:"topic"`
	Context     string              `json:"context"`
	SessionType string              `json:"sessionType"`
	Documents   []model.DocumentRef `json:"documents"`
}

type CollaboratorAnalysisRequest struct {
	SessionID    string              `json:"sessionId"`
	Topic        string              `json:"topic"`
	CustomPrompt string              `json:"customPrompt"`
	SessionType  string              `json:"sessionType"`
	Role         string              `json:"role"`
	Documents    []model.DocumentRef `json:"documents"`
}

type AnalysisResponse struct {
	Analysis string              `json:"analysis"`
	Usage    analysis.TokenUsage `json:"usage"`
	Model    string              `json:"model"`
}

func ToAnalysisResponse(r *analysis.Result) AnalysisResponse {
	return AnalysisResponse{Analysis: r.Text, Usage: r.Usage, Model: r.Model}
}
