package router

import (
	"github.com/gin-gonic/gin"

	"briefroom.app/relay/internal/http/handler"
	"briefroom.app/relay/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		decisionHandler := handler.NewDecisionHandler(services.Decisions())
		SessionRouter(v1.Group("/sessions"), decisionHandler)
		AnalysisRouter(v1.Group("/analysis"), decisionHandler)
	}
}

func SessionRouter(rg *gin.RouterGroup, h *handler.DecisionHandler) {
	rg.POST("", h.CreateSession)
	rg.GET("/:id", h.GetSession)
	rg.POST("/:id/submissions", h.SubmitAnalysis)
	rg.POST("/:id/synthesis", h.GenerateSynthesis)
	rg.GET("/:id/synthesis", h.GetSynthesis)
	rg.POST("/:id/synthesis/revise", h.ReviseSynthesis)
	rg.POST("/:id/reviews", h.SubmitReview)
	rg.POST("/:id/finalize", h.FinalizeSession)
}

func AnalysisRouter(rg *gin.RouterGroup, h *handler.DecisionHandler) {
	rg.POST("/mc", h.GenerateMCAnalysis)
	rg.POST("/collaborator", h.GenerateCollaboratorAnalysis)
}
