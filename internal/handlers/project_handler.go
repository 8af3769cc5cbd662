package handlers

import (
	"net/http"

	"grovaapp/internal/models"
	"grovaapp/internal/observability"
	contextutils "grovaapp/internal/utils"

	"github.com/gin-gonic/gin"
)

// ProjectHandler mirrors the upstream project endpoints
type ProjectHandler struct {
	logger *observability.Logger
}

// NewProjectHandler creates a new ProjectHandler instance
func NewProjectHandler(logger *observability.Logger) *ProjectHandler {
	return &ProjectHandler{logger: logger}
}

// ListProjects handles GET /v1/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_projects")
	defer observability.FinishSpan(span, nil)

	be, ok := currentBackend(c)
	if !ok {
		return
	}
	projects, err := be.ListProjects(ctx)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	c.JSON(http.StatusOK, projects)
}

// CreateProject handles POST /v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "create_project")
	defer observability.FinishSpan(span, nil)

	var req models.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := contextutils.ValidateStruct(req); err != nil {
		HandleAppError(c, err)
		return
	}

	be, ok := currentBackend(c)
	if !ok {
		return
	}
	project, err := be.CreateProject(ctx, req)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	h.logger.Info(ctx, "Project created", map[string]interface{}{
		"project_id": project.ID,
		"mode":       project.Mode,
		"backend":    be.Name(),
	})
	c.JSON(http.StatusOK, project)
}
