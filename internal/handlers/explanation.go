package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calebdunn/studypath-backend/internal/services"
)

type ExplanationHandler struct {
	explanationService services.ExplanationService
}

func NewExplanationHandler(explanationService services.ExplanationService) *ExplanationHandler {
	return &ExplanationHandler{explanationService: explanationService}
}

func (eh *ExplanationHandler) Explain(c *gin.Context) {
	var req services.ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	explanation, err := eh.explanationService.Explain(c.Request.Context(), req)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "explain_failed", err)
		return
	}
	RespondOK(c, explanation)
}
