package handlers

import (
	"context"
	"net/http"

	"grovaapp/internal/backend"
	"grovaapp/internal/models"
	"grovaapp/internal/observability"
	"grovaapp/internal/services"

	"github.com/gin-gonic/gin"
)

// FeedbackHandler serves the feedback lists, status transitions and the
// derived inbox and overview views
type FeedbackHandler struct {
	feedbackService *services.FeedbackService
	logger          *observability.Logger
}

// NewFeedbackHandler creates a new FeedbackHandler instance
func NewFeedbackHandler(feedbackService *services.FeedbackService, logger *observability.Logger) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService, logger: logger}
}

// ListFeedback handles GET /v1/feedback?project_id=&status=
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_feedback")
	defer observability.FinishSpan(span, nil)

	projectID, ok := requiredQuery(c, "project_id")
	if !ok {
		return
	}
	status := models.FeedbackStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		HandleValidationError(c, "status", status, "must be pending, approved or denied")
		return
	}

	be, ok := currentBackend(c)
	if !ok {
		return
	}
	items, err := be.ListFeedback(ctx, projectID, status)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	if items == nil {
		items = []models.FeedbackItem{}
	}
	services.SortNewestFirst(items)
	c.JSON(http.StatusOK, items)
}

// TransitionResponse acknowledges a status change. Inbox is the updated
// status tab when the request named one with ?project_id=&status=.
type TransitionResponse struct {
	Success bool                `json:"success"`
	Inbox   *services.InboxView `json:"inbox,omitempty"`
}

// Approve handles POST /v1/feedback/:id/approve
func (h *FeedbackHandler) Approve(c *gin.Context) {
	h.transition(c, "approve_feedback", backend.Backend.Approve, (*services.Inbox).Approve)
}

// Deny handles POST /v1/feedback/:id/deny
func (h *FeedbackHandler) Deny(c *gin.Context) {
	h.transition(c, "deny_feedback", backend.Backend.Deny, (*services.Inbox).Deny)
}

// Restore handles POST /v1/feedback/:id/restore
func (h *FeedbackHandler) Restore(c *gin.Context) {
	h.transition(c, "restore_feedback", backend.Backend.Restore, (*services.Inbox).Restore)
}

func (h *FeedbackHandler) transition(c *gin.Context, name string, call func(backend.Backend, context.Context, string) error, op services.InboxOp) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), name,
		observability.AttributeFeedbackID(c.Param("id")),
	)
	defer observability.FinishSpan(span, nil)

	be, ok := currentBackend(c)
	if !ok {
		return
	}
	id := c.Param("id")

	resp := TransitionResponse{Success: true}
	if projectID := c.Query("project_id"); projectID != "" {
		view, err := h.feedbackService.Transition(ctx, be, projectID, models.FeedbackStatus(c.Query("status")), id, op)
		if err != nil {
			HandleAppError(c, err)
			return
		}
		resp.Inbox = &view
	} else if err := call(be, ctx, id); err != nil {
		HandleAppError(c, err)
		return
	}

	h.logger.Info(ctx, "Feedback status changed", map[string]interface{}{
		"feedback_id": id,
		"operation":   name,
		"backend":     be.Name(),
	})
	c.JSON(http.StatusOK, resp)
}

// Inbox handles GET /v1/inbox?project_id=&status=
func (h *FeedbackHandler) Inbox(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_inbox")
	defer observability.FinishSpan(span, nil)

	projectID, ok := requiredQuery(c, "project_id")
	if !ok {
		return
	}
	be, ok := currentBackend(c)
	if !ok {
		return
	}

	view, err := h.feedbackService.Inbox(ctx, be, projectID, models.FeedbackStatus(c.Query("status")))
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Overview handles GET /v1/overview?project_id=
func (h *FeedbackHandler) Overview(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_overview")
	defer observability.FinishSpan(span, nil)

	projectID, ok := requiredQuery(c, "project_id")
	if !ok {
		return
	}
	be, ok := currentBackend(c)
	if !ok {
		return
	}

	view, err := h.feedbackService.Overview(ctx, be, projectID)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
