package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calebdunn/studypath-backend/internal/services"
	"github.com/calebdunn/studypath-backend/internal/types"
)

type ExportHandler struct {
	planService   services.PlanService
	exportService services.ExportService
}

func NewExportHandler(planService services.PlanService, exportService services.ExportService) *ExportHandler {
	return &ExportHandler{planService: planService, exportService: exportService}
}

func (eh *ExportHandler) JSON(c *gin.Context) {
	doc, ok := eh.loadDocument(c)
	if !ok {
		return
	}
	raw, err := eh.exportService.JSON(doc)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "export_failed", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", eh.exportService.Filename(doc, "json")))
	c.Data(http.StatusOK, "application/json", raw)
}

func (eh *ExportHandler) Markdown(c *gin.Context) {
	doc, ok := eh.loadDocument(c)
	if !ok {
		return
	}
	md := eh.exportService.Markdown(doc)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", eh.exportService.Filename(doc, "md")))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
}

func (eh *ExportHandler) loadDocument(c *gin.Context) (types.PlanDocument, bool) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "not_authenticated", err)
		return types.PlanDocument{}, false
	}
	planID, err := planIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return types.PlanDocument{}, false
	}
	plan, err := eh.planService.Get(c.Request.Context(), userID, planID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return types.PlanDocument{}, false
	}
	if plan == nil {
		RespondError(c, http.StatusNotFound, "plan_not_found", nil)
		return types.PlanDocument{}, false
	}
	doc, err := eh.planService.DocumentOf(plan)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "document_corrupt", err)
		return types.PlanDocument{}, false
	}
	return doc, true
}
