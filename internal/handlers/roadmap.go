package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/calebdunn/studypath-backend/internal/services"
	"github.com/calebdunn/studypath-backend/internal/types"
)

// RoadmapHandler serves the built graph and the progress mutations on it.
type RoadmapHandler struct {
	planService     services.PlanService
	progressService services.ProgressService
}

func NewRoadmapHandler(planService services.PlanService, progressService services.ProgressService) *RoadmapHandler {
	return &RoadmapHandler{planService: planService, progressService: progressService}
}

func (rh *RoadmapHandler) Get(c *gin.Context) {
	userID, plan, doc, ok := rh.loadPlan(c)
	if !ok {
		return
	}
	store := rh.progressService.Load(c.Request.Context(), userID, plan.Title)
	RespondOK(c, rh.progressService.View(doc, store))
}

func (rh *RoadmapHandler) Toggle(c *gin.Context) {
	userID, plan, doc, ok := rh.loadPlan(c)
	if !ok {
		return
	}
	var req struct {
		NodeKey string `json:"nodeKey"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	view, err := rh.progressService.Toggle(c.Request.Context(), userID, plan, doc, req.NodeKey)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "toggle_failed", err)
		return
	}
	RespondOK(c, view)
}

func (rh *RoadmapHandler) Reset(c *gin.Context) {
	userID, plan, doc, ok := rh.loadPlan(c)
	if !ok {
		return
	}
	view, err := rh.progressService.Reset(c.Request.Context(), userID, plan, doc)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "reset_failed", err)
		return
	}
	RespondOK(c, view)
}

// loadPlan resolves the :id param to an owned plan and its document, writing
// the error response itself when that fails.
func (rh *RoadmapHandler) loadPlan(c *gin.Context) (uuid.UUID, *types.Plan, types.PlanDocument, bool) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "not_authenticated", err)
		return uuid.Nil, nil, types.PlanDocument{}, false
	}
	planID, err := planIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return uuid.Nil, nil, types.PlanDocument{}, false
	}
	plan, err := rh.planService.Get(c.Request.Context(), userID, planID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return uuid.Nil, nil, types.PlanDocument{}, false
	}
	if plan == nil {
		RespondError(c, http.StatusNotFound, "plan_not_found", nil)
		return uuid.Nil, nil, types.PlanDocument{}, false
	}
	doc, err := rh.planService.DocumentOf(plan)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "document_corrupt", err)
		return uuid.Nil, nil, types.PlanDocument{}, false
	}
	return userID, plan, doc, true
}
