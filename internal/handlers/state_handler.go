package handlers

import (
	"net/http"

	"grovaapp/internal/middleware"
	"grovaapp/internal/models"
	"grovaapp/internal/observability"
	"grovaapp/internal/services"

	"github.com/gin-gonic/gin"
)

// StateHandler serves the dashboard's app state
type StateHandler struct {
	appStateService *services.AppStateService
	logger          *observability.Logger
}

// NewStateHandler creates a new StateHandler instance
func NewStateHandler(appStateService *services.AppStateService, logger *observability.Logger) *StateHandler {
	return &StateHandler{appStateService: appStateService, logger: logger}
}

// GetState handles GET /v1/state. ?business switches the track to the
// business dashboard; a demo session turns the demo flag on.
func (h *StateHandler) GetState(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_app_state")
	defer observability.FinishSpan(span, nil)

	scope, ok := preferenceScope(c)
	if !ok {
		return
	}
	_, business := c.GetQuery("business")
	state, err := h.appStateService.Load(ctx, scope, services.StateHints{
		Business: business,
		Demo:     middleware.IsDemo(c),
	})
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// UpdateState handles PUT /v1/state. Changing the demo flag also moves the
// session between the demo and live backends.
func (h *StateHandler) UpdateState(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "update_app_state")
	defer observability.FinishSpan(span, nil)

	var patch models.AppStatePatch
	if !bindJSON(c, &patch) {
		return
	}
	scope, ok := preferenceScope(c)
	if !ok {
		return
	}
	state, err := h.appStateService.Update(ctx, scope, patch)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	if patch.Demo != nil {
		if err := middleware.SetDemo(c, state.Demo); err != nil {
			HandleAppError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, state)
}
