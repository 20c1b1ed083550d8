package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/calebdunn/studypath-backend/internal/services"
)

type CommentHandler struct {
	planService    services.PlanService
	commentService services.CommentService
}

func NewCommentHandler(planService services.PlanService, commentService services.CommentService) *CommentHandler {
	return &CommentHandler{planService: planService, commentService: commentService}
}

func (ch *CommentHandler) List(c *gin.Context) {
	planID, ok := ch.ownedPlanID(c)
	if !ok {
		return
	}
	comments, err := ch.commentService.List(c.Request.Context(), planID, c.Param("nodeKey"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"comments": comments})
}

func (ch *CommentHandler) Add(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "not_authenticated", err)
		return
	}
	planID, ok := ch.ownedPlanID(c)
	if !ok {
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	comment, err := ch.commentService.Add(c.Request.Context(), userID, planID, c.Param("nodeKey"), req.Body)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "add_failed", err)
		return
	}
	RespondOK(c, comment)
}

func (ch *CommentHandler) Delete(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "not_authenticated", err)
		return
	}
	commentID, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_comment_id", err)
		return
	}
	if err := ch.commentService.Delete(c.Request.Context(), userID, commentID); err != nil {
		RespondError(c, http.StatusInternalServerError, "delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": commentID})
}

// ownedPlanID checks the :id param refers to one of the caller's plans.
func (ch *CommentHandler) ownedPlanID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "not_authenticated", err)
		return uuid.Nil, false
	}
	planID, err := planIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return uuid.Nil, false
	}
	plan, err := ch.planService.Get(c.Request.Context(), userID, planID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return uuid.Nil, false
	}
	if plan == nil {
		RespondError(c, http.StatusNotFound, "plan_not_found", nil)
		return uuid.Nil, false
	}
	return planID, true
}
