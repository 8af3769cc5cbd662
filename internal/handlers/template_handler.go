package handlers

import (
	"net/http"

	"grovaapp/internal/middleware"
	"grovaapp/internal/models"
	"grovaapp/internal/observability"
	"grovaapp/internal/services"
	contextutils "grovaapp/internal/utils"

	"github.com/gin-gonic/gin"
)

// TemplateHandler lists, previews and test-sends email templates
type TemplateHandler struct {
	templateService *services.TemplateService
	settingsService *services.SettingsService
	logger          *observability.Logger
}

// NewTemplateHandler creates a new TemplateHandler instance
func NewTemplateHandler(templateService *services.TemplateService, settingsService *services.SettingsService, logger *observability.Logger) *TemplateHandler {
	return &TemplateHandler{templateService: templateService, settingsService: settingsService, logger: logger}
}

// PreviewRequest is the body of POST /v1/templates/:id/preview. ProjectID
// picks the branding and sender; without it the defaults are used.
type PreviewRequest struct {
	ProjectID string            `json:"project_id"`
	Variables map[string]string `json:"variables"`
}

// TestSendBody is the body of POST /v1/templates/:id/test-send
type TestSendBody struct {
	services.TestSendRequest
	ProjectID string `json:"project_id"`
}

// ListTemplates handles GET /v1/templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "list_templates")
	defer observability.FinishSpan(span, nil)

	c.JSON(http.StatusOK, h.templateService.List())
}

// Preview handles POST /v1/templates/:id/preview
func (h *TemplateHandler) Preview(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "preview_template",
		observability.AttributeTemplateID(c.Param("id")),
	)
	defer observability.FinishSpan(span, nil)

	var req PreviewRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	settings, ok := h.settingsFor(c, req.ProjectID)
	if !ok {
		return
	}

	preview, err := h.templateService.Preview(ctx, c.Param("id"), req.Variables, settings)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// TestSend handles POST /v1/templates/:id/test-send
func (h *TemplateHandler) TestSend(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "test_send_template",
		observability.AttributeTemplateID(c.Param("id")),
	)
	defer observability.FinishSpan(span, nil)

	// demo sessions are unauthenticated and must not reach real SMTP
	if middleware.IsDemo(c) {
		HandleAppError(c, contextutils.WrapError(contextutils.ErrDemoUnsupported, "test emails are not sent in demo mode"))
		return
	}

	var req TestSendBody
	if !bindJSON(c, &req) {
		return
	}
	settings, ok := h.settingsFor(c, req.ProjectID)
	if !ok {
		return
	}

	if err := h.templateService.TestSend(ctx, c.Param("id"), req.TestSendRequest, settings); err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AckResponse{Success: true})
}

func (h *TemplateHandler) settingsFor(c *gin.Context, projectID string) (models.ActionSettings, bool) {
	if projectID == "" {
		return models.DefaultActionSettings(""), true
	}
	be, ok := currentBackend(c)
	if !ok {
		return models.ActionSettings{}, false
	}
	settings, err := h.settingsService.Get(c.Request.Context(), be, projectID)
	if err != nil {
		HandleAppError(c, err)
		return models.ActionSettings{}, false
	}
	return settings, true
}
