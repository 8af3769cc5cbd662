package handlers

import (
	"net/http"

	"grovaapp/internal/models"
	"grovaapp/internal/observability"
	"grovaapp/internal/services"

	"github.com/gin-gonic/gin"
)

// ActionHandler lists, sends and drafts outbound actions
type ActionHandler struct {
	actionService *services.ActionService
	logger        *observability.Logger
}

// NewActionHandler creates a new ActionHandler instance
func NewActionHandler(actionService *services.ActionService, logger *observability.Logger) *ActionHandler {
	return &ActionHandler{actionService: actionService, logger: logger}
}

// ListActions handles GET /v1/actions?feedback_id=
func (h *ActionHandler) ListActions(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_actions")
	defer observability.FinishSpan(span, nil)

	feedbackID, ok := requiredQuery(c, "feedback_id")
	if !ok {
		return
	}
	be, ok := currentBackend(c)
	if !ok {
		return
	}
	actions, err := be.ListActions(ctx, feedbackID)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	if actions == nil {
		actions = []models.SentAction{}
	}
	c.JSON(http.StatusOK, actions)
}

// SendAction handles POST /v1/actions/send
func (h *ActionHandler) SendAction(c *gin.Context) {
	h.dispatch(c, "send_action", false)
}

// DraftAction handles POST /v1/actions/draft
func (h *ActionHandler) DraftAction(c *gin.Context) {
	h.dispatch(c, "draft_action", true)
}

func (h *ActionHandler) dispatch(c *gin.Context, name string, draft bool) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), name)
	defer observability.FinishSpan(span, nil)

	var req models.SendActionRequest
	if !bindJSON(c, &req) {
		return
	}
	be, ok := currentBackend(c)
	if !ok {
		return
	}

	resp, err := h.actionService.Dispatch(ctx, be, req, draft)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SendSuggested handles POST /v1/inbox/:feedback_id/actions/:index?project_id=.
// The body carries the operator's edits and may be empty.
func (h *ActionHandler) SendSuggested(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "send_suggested_action",
		observability.AttributeFeedbackID(c.Param("feedback_id")),
	)
	defer observability.FinishSpan(span, nil)

	projectID, ok := requiredQuery(c, "project_id")
	if !ok {
		return
	}
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	var edits services.ActionEdits
	if !bindOptionalJSON(c, &edits) {
		return
	}
	be, ok := currentBackend(c)
	if !ok {
		return
	}

	resp, err := h.actionService.SendSuggested(ctx, be, projectID, c.Param("feedback_id"), index, edits)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
