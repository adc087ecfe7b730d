package dto

import (
	"time"

	"briefroom.app/relay/internal/model"
	"briefroom.app/relay/internal/synthesis"
)

type CreateSessionRequest struct {
	Title         string   `json:"title" binding:"required,max=500"`
	Context       string   `json:"context" binding:"max=20000"`
	SessionType   string   `json:"sessionType"`
	MCName        string   `json:"mcName" binding:"required,max=255"`
	MCEmail       string   `json:"mcEmail" binding:"omitempty,email,max=255"`
	MCRole        string   `json:"mcRole" binding:"max=255"`
	SelectedRoles []string `json:"selectedRoles"`
	CustomRoles   []string `json:"customRoles"`
}

type SubmitAnalysisRequest struct {
	Role              string              `json:"role"`
	CollaboratorName  string              `json:"collaboratorName" binding:"required"`
	CustomPrompt      string              `json:"customPrompt"`
	Analysis          string              `json:"analysis" binding:"required"`
	Iterations        []model.Iteration   `json:"iterations"`
	UploadedDocuments []model.DocumentRef `json:"uploadedDocuments"`
}

type SubmissionResponse struct {
	Submission *model.Submission `json:"submission"`
}

type ReviewRequest struct {
	CollaboratorName string `json:"collaboratorName" binding:"required"`
	Role             string `json:"role"`
	Rating           string `json:"rating" binding:"required"`
	Comment          string `json:"comment"`
}

type FinalizeRequest struct {
	FinalDecision *string `json:"finalDecision"`
}

type ReviseSynthesisRequest struct {
	RevisionInstructions string `json:"revisionInstructions"`
}

type SynthesisResponse struct {
	Synthesis   string    `json:"synthesis"`
	Version     int       `json:"version"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type RevisionResponse struct {
	Synthesis string `json:"synthesis"`
	Version   int    `json:"version"`
	Message   string `json:"message"`
}

// SynthesisView is the read model for the synthesis page.
type SynthesisView struct {
	Status         model.SessionStatus     `json:"status"`
	Synthesis      *string                 `json:"synthesis"`
	Version        int                     `json:"version"`
	GeneratedAt    *time.Time              `json:"generatedAt,omitempty"`
	Sections       []synthesis.Section     `json:"sections"`
	Reviews        []model.Review          `json:"reviews"`
	VersionHistory []model.VersionSnapshot `json:"versionHistory"`
	CanRevise      bool                    `json:"canRevise"`
}
