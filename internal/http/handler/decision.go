package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"briefroom.app/relay/internal/http/dto"
	"briefroom.app/relay/internal/lifecycle"
	"briefroom.app/relay/internal/model"
	"briefroom.app/relay/internal/service"
	"briefroom.app/relay/internal/synthesis"
)

type DecisionHandler struct {
	service service.DecisionService
}

func NewDecisionHandler(service service.DecisionService) *DecisionHandler {
	return &DecisionHandler{service: service}
}

func (h *DecisionHandler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.service.CreateSession(c.Request.Context(), service.CreateSessionParams{
		Title:         req.Title,
		Context:       req.Context,
		SessionType:   req.SessionType,
		MCName:        req.MCName,
		MCEmail:       req.MCEmail,
		MCRole:        req.MCRole,
		SelectedRoles: req.SelectedRoles,
		CustomRoles:   req.CustomRoles,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *DecisionHandler) GetSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *DecisionHandler) GenerateMCAnalysis(c *gin.Context) {
	var req dto.MCAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.service.GenerateMcAnalysis(c.Request.Context(), service.MCAnalysisParams{
		SessionID:   req.SessionID,
		Topic:       req.Topic,
		Context:     req.Context,
		SessionType: req.SessionType,
		Documents:   req.Documents,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAnalysisResponse(res))
}

func (h *DecisionHandler) GenerateCollaboratorAnalysis(c *gin.Context) {
	var req dto.CollaboratorAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.service.GenerateCollaboratorAnalysis(c.Request.Context(), service.CollaboratorAnalysisParams{
		SessionID:    req.SessionID,
		Topic:        req.Topic,
		CustomPrompt: req.CustomPrompt,
		SessionType:  req.SessionType,
		Role:         req.Role,
		Documents:    req.Documents,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAnalysisResponse(res))
}

func (h *DecisionHandler) SubmitAnalysis(c *gin.Context) {
	var req dto.SubmitAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sub, err := h.service.SubmitAnalysis(c.Request.Context(), c.Param("id"), service.SubmitAnalysisParams{
		Role:              req.Role,
		CollaboratorName:  req.CollaboratorName,
		CustomPrompt:      req.CustomPrompt,
		Analysis:          req.Analysis,
		Iterations:        req.Iterations,
		UploadedDocuments: req.UploadedDocuments,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.SubmissionResponse{Submission: sub})
}

func (h *DecisionHandler) GenerateSynthesis(c *gin.Context) {
	res, err := h.service.GenerateSynthesis(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SynthesisResponse{
		Synthesis:   res.Synthesis,
		Version:     res.Version,
		GeneratedAt: res.GeneratedAt,
	})
}

func (h *DecisionHandler) GetSynthesis(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	view := dto.SynthesisView{
		Status:         session.Status,
		Synthesis:      session.Synthesis,
		Version:        lifecycle.CurrentVersion(session),
		GeneratedAt:    session.SynthesisGeneratedAt,
		Sections:       []synthesis.Section{},
		Reviews:        session.SynthesisReviews,
		VersionHistory: session.VersionHistory,
	}
	if session.HasSynthesis() {
		if sections := synthesis.ParseSections(session.CurrentSynthesis()); sections != nil {
			view.Sections = sections
		}
		view.CanRevise = session.Status == model.SessionStatusActive && view.Version < lifecycle.MaxSynthesisVersions
	}
	c.JSON(http.StatusOK, view)
}

func (h *DecisionHandler) ReviseSynthesis(c *gin.Context) {
	var req dto.ReviseSynthesisRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	res, err := h.service.ReviseSynthesis(c.Request.Context(), c.Param("id"), req.RevisionInstructions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.RevisionResponse{
		Synthesis: res.Synthesis,
		Version:   res.Version,
		Message:   res.Message,
	})
}

func (h *DecisionHandler) SubmitReview(c *gin.Context) {
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	review, err := h.service.SubmitReview(c.Request.Context(), c.Param("id"), service.ReviewParams{
		CollaboratorName: req.CollaboratorName,
		Role:             req.Role,
		Rating:           req.Rating,
		Comment:          req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *DecisionHandler) FinalizeSession(c *gin.Context) {
	var req dto.FinalizeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	session, err := h.service.FinalizeSession(c.Request.Context(), c.Param("id"), req.FinalDecision)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
