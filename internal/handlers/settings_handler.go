package handlers

import (
	"net/http"

	"grovaapp/internal/models"
	"grovaapp/internal/observability"
	"grovaapp/internal/services"

	"github.com/gin-gonic/gin"
)

// SettingsHandler serves project action settings and the dashboard's own
// per-client preferences
type SettingsHandler struct {
	settingsService  *services.SettingsService
	feedbackService  *services.FeedbackService
	bizConfigService *services.BizConfigService
	contextService   *services.ProjectContextService
	logger           *observability.Logger
}

// NewSettingsHandler creates a new SettingsHandler instance
func NewSettingsHandler(
	settingsService *services.SettingsService,
	feedbackService *services.FeedbackService,
	bizConfigService *services.BizConfigService,
	contextService *services.ProjectContextService,
	logger *observability.Logger,
) *SettingsHandler {
	return &SettingsHandler{
		settingsService:  settingsService,
		feedbackService:  feedbackService,
		bizConfigService: bizConfigService,
		contextService:   contextService,
		logger:           logger,
	}
}

// AddCategoryRequest is the body of POST .../biz-config/categories
type AddCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// MoveCategoryRequest is the body of POST .../biz-config/categories/move
type MoveCategoryRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

// SetTypeRequest is the body of PUT .../biz-config/type
type SetTypeRequest struct {
	Type string `json:"type" binding:"required"`
}

// ProjectContextBody is the request and response of /v1/projects/:id/context
type ProjectContextBody struct {
	ProjectID string `json:"project_id"`
	Context   string `json:"context"`
}

// SnippetResponse is the response of GET /v1/projects/:id/snippet
type SnippetResponse struct {
	ProjectID string `json:"project_id"`
	Snippet   string `json:"snippet"`
}

// GetActionSettings handles GET /v1/projects/:id/action-settings
func (h *SettingsHandler) GetActionSettings(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_action_settings",
		observability.AttributeProjectID(c.Param("id")),
	)
	defer observability.FinishSpan(span, nil)

	be, ok := currentBackend(c)
	if !ok {
		return
	}
	settings, err := h.settingsService.Get(ctx, be, c.Param("id"))
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateActionSettings handles PUT /v1/projects/:id/action-settings
func (h *SettingsHandler) UpdateActionSettings(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "update_action_settings",
		observability.AttributeProjectID(c.Param("id")),
	)
	defer observability.FinishSpan(span, nil)

	var settings models.ActionSettings
	if !bindJSON(c, &settings) {
		return
	}
	be, ok := currentBackend(c)
	if !ok {
		return
	}
	saved, err := h.settingsService.Update(ctx, be, c.Param("id"), settings)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// GetBizConfig handles GET /v1/projects/:id/biz-config
func (h *SettingsHandler) GetBizConfig(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_biz_config")
	defer observability.FinishSpan(span, nil)

	scope, ok := preferenceScope(c)
	if !ok {
		return
	}
	cfg, err := h.bizConfigService.Get(ctx, scope, c.Param("id"))
	respondBizConfig(c, cfg, err)
}

// SaveBizConfig handles PUT /v1/projects/:id/biz-config
func (h *SettingsHandler) SaveBizConfig(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "save_biz_config")
	defer observability.FinishSpan(span, nil)

	var cfg models.BizConfig
	if !bindJSON(c, &cfg) {
		return
	}
	scope, ok := preferenceScope(c)
	if !ok {
		return
	}
	saved, err := h.bizConfigService.Save(ctx, scope, c.Param("id"), cfg)
	respondBizConfig(c, saved, err)
}

// SetBizType handles PUT /v1/projects/:id/biz-config/type
func (h *SettingsHandler) SetBizType(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "set_biz_type")
	defer observability.FinishSpan(span, nil)

	var req SetTypeRequest
	if !bindJSON(c, &req) {
		return
	}
	scope, ok := preferenceScope(c)
	if !ok {
		return
	}
	cfg, err := h.bizConfigService.SetType(ctx, scope, c.Param("id"), req.Type)
	respondBizConfig(c, cfg, err)
}

// AddCategory handles POST /v1/projects/:id/biz-config/categories
func (h *SettingsHandler) AddCategory(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "add_biz_category")
	defer observability.FinishSpan(span, nil)

	var req AddCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	scope, ok := preferenceScope(c)
	if !ok {
		return
	}
	cfg, err := h.bizConfigService.AddCategory(ctx, scope, c.Param("id"), req.Name)
	respondBizConfig(c, cfg, err)
}

// RemoveCategory handles DELETE /v1/projects/:id/biz-config/categories/:index
func (h *SettingsHandler) RemoveCategory(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "remove_biz_category")
	defer observability.FinishSpan(span, nil)

	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	scope, ok := preferenceScope(c)
	if !ok {
		return
	}
	cfg, err := h.bizConfigService.RemoveCategory(ctx, scope, c.Param("id"), index)
	respondBizConfig(c, cfg, err)
}

// MoveCategory handles POST /v1/projects/:id/biz-config/categories/move
func (h *SettingsHandler) MoveCategory(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "move_biz_category")
	defer observability.FinishSpan(span, nil)

	var req MoveCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	scope, ok := preferenceScope(c)
	if !ok {
		return
	}
	cfg, err := h.bizConfigService.MoveCategory(ctx, scope, c.Param("id"), *req.From, *req.To)
	respondBizConfig(c, cfg, err)
}

// ResetBizConfig handles POST /v1/projects/:id/biz-config/reset
func (h *SettingsHandler) ResetBizConfig(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "reset_biz_config")
	defer observability.FinishSpan(span, nil)

	scope, ok := preferenceScope(c)
	if !ok {
		return
	}
	cfg, err := h.bizConfigService.Reset(ctx, scope, c.Param("id"))
	respondBizConfig(c, cfg, err)
}

// GetSnippet handles GET /v1/projects/:id/snippet
func (h *SettingsHandler) GetSnippet(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_snippet",
		observability.AttributeProjectID(c.Param("id")),
	)
	defer observability.FinishSpan(span, nil)

	scope, ok := preferenceScope(c)
	if !ok {
		return
	}
	be, ok := currentBackend(c)
	if !ok {
		return
	}
	project, ok := resolveProject(c, h.feedbackService, be, c.Param("id"))
	if !ok {
		return
	}
	snippet, err := h.bizConfigService.Snippet(ctx, scope, project)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, SnippetResponse{ProjectID: project.ID, Snippet: snippet})
}

// GetProjectContext handles GET /v1/projects/:id/context
func (h *SettingsHandler) GetProjectContext(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_project_context")
	defer observability.FinishSpan(span, nil)

	scope, ok := preferenceScope(c)
	if !ok {
		return
	}
	text, err := h.contextService.Get(ctx, scope, c.Param("id"))
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProjectContextBody{ProjectID: c.Param("id"), Context: text})
}

// SetProjectContext handles PUT /v1/projects/:id/context
func (h *SettingsHandler) SetProjectContext(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "set_project_context")
	defer observability.FinishSpan(span, nil)

	var req ProjectContextBody
	if !bindJSON(c, &req) {
		return
	}
	scope, ok := preferenceScope(c)
	if !ok {
		return
	}
	text, err := h.contextService.Set(ctx, scope, c.Param("id"), req.Context)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProjectContextBody{ProjectID: c.Param("id"), Context: text})
}

func respondBizConfig(c *gin.Context, cfg models.BizConfig, err error) {
	if err != nil {
		HandleAppError(c, err)
		return
	}
	if cfg.Categories == nil {
		cfg.Categories = []string{}
	}
	c.JSON(http.StatusOK, cfg)
}
