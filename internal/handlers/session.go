package handlers

import (
	"grovaapp/internal/backend"
	"grovaapp/internal/middleware"
	"grovaapp/internal/models"
	"grovaapp/internal/services"
	contextutils "grovaapp/internal/utils"

	"github.com/gin-gonic/gin"
)

// currentBackend returns the backend the session was routed to
func currentBackend(c *gin.Context) (backend.Backend, bool) {
	be := middleware.BackendFrom(c)
	if be == nil {
		HandleAppError(c, contextutils.WrapError(contextutils.ErrServiceUnavailable, "no feedback backend is configured"))
		return nil, false
	}
	return be, true
}

// preferenceScope is the key dashboard preferences are stored under
func preferenceScope(c *gin.Context) (string, bool) {
	scope := middleware.ClientID(c)
	if scope == "" {
		HandleAppError(c, contextutils.WrapError(contextutils.ErrUnauthorized, "no client session"))
		return "", false
	}
	return scope, true
}

// resolveProject finds projectID among the session backend's projects
func resolveProject(c *gin.Context, fs *services.FeedbackService, be backend.Backend, projectID string) (models.Project, bool) {
	project, err := fs.ResolveProject(c.Request.Context(), be, projectID)
	if err != nil {
		HandleAppError(c, err)
		return models.Project{}, false
	}
	return project, true
}
