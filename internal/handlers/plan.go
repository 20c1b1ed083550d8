package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calebdunn/studypath-backend/internal/services"
)

type PlanHandler struct {
	planService services.PlanService
	generation  services.GenerationService
}

func NewPlanHandler(planService services.PlanService, generation services.GenerationService) *PlanHandler {
	return &PlanHandler{planService: planService, generation: generation}
}

func (ph *PlanHandler) Generate(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "not_authenticated", err)
		return
	}
	var req services.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	plan, doc, err := ph.generation.Generate(c.Request.Context(), userID, req)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "generation_failed", err)
		return
	}
	RespondOK(c, gin.H{"plan": plan, "document": doc})
}

func (ph *PlanHandler) List(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "not_authenticated", err)
		return
	}
	plans, err := ph.planService.List(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"plans": plans})
}

func (ph *PlanHandler) Get(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "not_authenticated", err)
		return
	}
	planID, err := planIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return
	}
	plan, err := ph.planService.Get(c.Request.Context(), userID, planID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return
	}
	if plan == nil {
		RespondError(c, http.StatusNotFound, "plan_not_found", nil)
		return
	}
	doc, err := ph.planService.DocumentOf(plan)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "document_corrupt", err)
		return
	}
	RespondOK(c, gin.H{"plan": plan, "document": doc})
}

func (ph *PlanHandler) Delete(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "not_authenticated", err)
		return
	}
	planID, err := planIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return
	}
	if err := ph.planService.Delete(c.Request.Context(), userID, planID); err != nil {
		RespondError(c, http.StatusNotFound, "delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": planID})
}
