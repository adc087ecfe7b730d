package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"briefroom.app/relay/internal/analysis"
	"briefroom.app/relay/internal/domain"
	"briefroom.app/relay/internal/http/handler"
	"briefroom.app/relay/internal/model"
	"briefroom.app/relay/internal/service"
)

var _ = Describe("DecisionHandler", func() {
	var (
		router *gin.Engine
		svc    *mockDecisionService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockDecisionService{}
		h := handler.NewDecisionHandler(svc)
		router.POST("/sessions", h.CreateSession)
		router.GET("/sessions/:id", h.GetSession)
		router.POST("/analysis/mc", h.GenerateMCAnalysis)
		router.POST("/analysis/collaborator", h.GenerateCollaboratorAnalysis)
		router.POST("/sessions/:id/submissions", h.SubmitAnalysis)
		router.POST("/sessions/:id/synthesis", h.GenerateSynthesis)
		router.GET("/sessions/:id/synthesis", h.GetSynthesis)
		router.POST("/sessions/:id/synthesis/revise", h.ReviseSynthesis)
		router.POST("/sessions/:id/reviews", h.SubmitReview)
		router.POST("/sessions/:id/finalize", h.FinalizeSession)
	})

	do := func(method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
		var buf *bytes.Buffer
		if body != nil {
			b, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			buf = bytes.NewBuffer(b)
		} else {
			buf = &bytes.Buffer{}
		}
		req := httptest.NewRequest(method, path, buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp map[string]any
		if w.Body.Len() > 0 {
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		}
		return w, resp
	}

	Describe("CreateSession", func() {
		It("returns 201 with the stored session format", func() {
			svc.createSessionFn = func(_ context.Context, p service.CreateSessionParams) (*model.Session, error) {
				Expect(p.SessionType).To(Equal("hiring"))
				Expect(p.CustomRoles).To(Equal([]string{"Security"}))
				return &model.Session{ID: "42", Title: p.Title, SessionType: model.SessionTypeHiring, MCName: p.MCName, Status: model.SessionStatusActive}, nil
			}

			w, resp := do(http.MethodPost, "/sessions", map[string]any{
				"title":       "Hire Ada?",
				"sessionType": "hiring",
				"mcName":      "Morgan",
				"customRoles": []string{"Security"},
			})

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(resp["id"]).To(Equal("42"))
			Expect(resp["sessionType"]).To(Equal("hiring"))
			Expect(resp["status"]).To(Equal("active"))
			Expect(resp).To(HaveKey("synthesis"))
			Expect(resp["synthesis"]).To(BeNil())
		})

		It("returns 400 when required fields are missing", func() {
			w, resp := do(http.MethodPost, "/sessions", map[string]any{"title": "t"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(resp["code"]).To(Equal("invalid_request"))
		})
	})

	Describe("error mapping", func() {
		DescribeTable("maps error kinds to status codes",
			func(err error, status int, code string) {
				svc.getSessionFn = func(context.Context, string) (*model.Session, error) {
					return nil, err
				}
				w, resp := do(http.MethodGet, "/sessions/42", nil)
				Expect(w.Code).To(Equal(status))
				Expect(resp["code"]).To(Equal(code))
			},
			Entry("invalid request", domain.InvalidRequest("bad"), http.StatusBadRequest, "invalid_request"),
			Entry("not found", domain.NotFound("Session 42 not found"), http.StatusNotFound, "not_found"),
			Entry("invalid state", domain.InvalidState("finalized"), http.StatusConflict, "invalid_state"),
			Entry("version limit", domain.VersionLimitExceeded("limit"), http.StatusConflict, "version_limit_exceeded"),
			Entry("upstream", domain.UpstreamGenerationFailure("failed", true, errors.New("503")), http.StatusBadGateway, "upstream_generation_failure"),
			Entry("internal", domain.Internal("failed to load session", errors.New("conn reset")), http.StatusInternalServerError, "internal"),
			Entry("untyped", errors.New("boom"), http.StatusInternalServerError, "internal"),
		)

		It("includes retryable for upstream failures and hides internal causes", func() {
			svc.getSessionFn = func(context.Context, string) (*model.Session, error) {
				return nil, domain.UpstreamGenerationFailure("Failed to generate analysis: 429", true, errors.New("429"))
			}
			_, resp := do(http.MethodGet, "/sessions/42", nil)
			Expect(resp["retryable"]).To(BeTrue())

			svc.getSessionFn = func(context.Context, string) (*model.Session, error) {
				return nil, domain.Internal("failed to load session", errors.New("password=secret"))
			}
			_, resp = do(http.MethodGet, "/sessions/42", nil)
			Expect(resp["error"]).To(Equal("internal server error"))
		})
	})

	Describe("analysis endpoints", func() {
		It("returns analysis text with token usage", func() {
			svc.mcAnalysisFn = func(_ context.Context, p service.MCAnalysisParams) (*analysis.Result, error) {
				Expect(p.Topic).To(Equal("Hire Ada?"))
				Expect(p.Documents).To(HaveLen(1))
				return &analysis.Result{Text: "text", Usage: analysis.TokenUsage{InputTokens: 12, OutputTokens: 34}, Model: "gpt-4o"}, nil
			}

			w, resp := do(http.MethodPost, "/analysis/mc", map[string]any{
				"topic":       "Hire Ada?",
				"context":     "final round",
				"sessionType": "hiring",
				"documents":   []map[string]any{{"name": "cv.pdf", "url": "https://files/cv.pdf", "type": "application/pdf", "size": 1024}},
			})

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(resp["analysis"]).To(Equal("text"))
			Expect(resp["usage"]).To(Equal(map[string]any{"inputTokens": float64(12), "outputTokens": float64(34)}))
		})

		It("passes the collaborator role through", func() {
			svc.collaboratorFn = func(_ context.Context, p service.CollaboratorAnalysisParams) (*analysis.Result, error) {
				Expect(p.Role).To(Equal("Legal"))
				return &analysis.Result{Text: "legal view"}, nil
			}
			w, resp := do(http.MethodPost, "/analysis/collaborator", map[string]any{"topic": "t", "role": "Legal"})
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(resp["analysis"]).To(Equal("legal view"))
		})
	})

	Describe("SubmitAnalysis", func() {
		It("returns 201 with the stored submission", func() {
			svc.submitAnalysisFn = func(_ context.Context, id string, p service.SubmitAnalysisParams) (*model.Submission, error) {
				Expect(id).To(Equal("42"))
				Expect(p.Iterations).To(HaveLen(1))
				return &model.Submission{CollaboratorName: p.CollaboratorName, Analysis: p.Analysis, Iterations: p.Iterations}, nil
			}
			w, resp := do(http.MethodPost, "/sessions/42/submissions", map[string]any{
				"collaboratorName": "Zoe",
				"role":             "Engineering",
				"analysis":         "final",
				"iterations":       []map[string]any{{"prompt": "p", "analysis": "final"}},
			})
			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(resp).To(HaveKey("submission"))
		})
	})

	Describe("synthesis endpoints", func() {
		It("returns the generated version", func() {
			svc.generateSynthesisFn = func(context.Context, string) (*service.SynthesisResult, error) {
				return &service.SynthesisResult{Synthesis: "brief", Version: 1}, nil
			}
			w, resp := do(http.MethodPost, "/sessions/42/synthesis", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(resp["version"]).To(Equal(float64(1)))
		})

		It("returns parsed sections for the current synthesis", func() {
			text := "## Areas of Agreement\nyes\n## Areas of Conflict\nno"
			svc.getSessionFn = func(context.Context, string) (*model.Session, error) {
				return &model.Session{ID: "42", Status: model.SessionStatusActive, Synthesis: &text, SynthesisVersion: 2}, nil
			}
			w, resp := do(http.MethodGet, "/sessions/42/synthesis", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(resp["version"]).To(Equal(float64(2)))
			Expect(resp["canRevise"]).To(BeTrue())
			Expect(resp["sections"]).To(HaveLen(2))
		})

		It("revises with optional instructions and an empty body", func() {
			var got string
			svc.reviseSynthesisFn = func(_ context.Context, _ string, instructions string) (*service.RevisionResult, error) {
				got = instructions
				return &service.RevisionResult{Synthesis: "v2", Version: 2, Message: "First revision complete."}, nil
			}

			w, resp := do(http.MethodPost, "/sessions/42/synthesis/revise", map[string]any{"revisionInstructions": "shorter"})
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got).To(Equal("shorter"))
			Expect(resp["message"]).To(Equal("First revision complete."))

			w, _ = do(http.MethodPost, "/sessions/42/synthesis/revise", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got).To(BeEmpty())
		})

		It("returns 409 when the version limit is reached", func() {
			svc.reviseSynthesisFn = func(context.Context, string, string) (*service.RevisionResult, error) {
				return nil, domain.VersionLimitExceeded("Maximum of 3 synthesis versions reached - time to make a decision")
			}
			w, resp := do(http.MethodPost, "/sessions/42/synthesis/revise", nil)
			Expect(w.Code).To(Equal(http.StatusConflict))
			Expect(resp["error"]).To(ContainSubstring("time to make a decision"))
		})
	})

	Describe("SubmitReview", func() {
		It("returns 201", func() {
			svc.submitReviewFn = func(_ context.Context, _ string, p service.ReviewParams) (*model.Review, error) {
				Expect(p.Rating).To(Equal("thumbs_down"))
				return &model.Review{CollaboratorName: p.CollaboratorName, Rating: model.RatingNeedsWork}, nil
			}
			w, resp := do(http.MethodPost, "/sessions/42/reviews", map[string]any{"collaboratorName": "Ana", "rating": "thumbs_down"})
			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(resp["rating"]).To(Equal("needs_work"))
		})

		It("returns 400 without a rating", func() {
			w, _ := do(http.MethodPost, "/sessions/42/reviews", map[string]any{"collaboratorName": "Ana"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("FinalizeSession", func() {
		It("passes the final decision through", func() {
			svc.finalizeSessionFn = func(_ context.Context, _ string, decision *string) (*model.Session, error) {
				Expect(*decision).To(Equal("Proceed with candidate"))
				return &model.Session{ID: "42", Status: model.SessionStatusFinalized, FinalDecision: decision}, nil
			}
			w, resp := do(http.MethodPost, "/sessions/42/finalize", map[string]any{"finalDecision": "Proceed with candidate"})
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(resp["status"]).To(Equal("finalized"))
			Expect(resp["finalDecision"]).To(Equal("Proceed with candidate"))
		})

		It("returns 409 on a second finalize", func() {
			svc.finalizeSessionFn = func(context.Context, string, *string) (*model.Session, error) {
				return nil, domain.InvalidState("Session 42 is already finalized")
			}
			w, _ := do(http.MethodPost, "/sessions/42/finalize", nil)
			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})
})
