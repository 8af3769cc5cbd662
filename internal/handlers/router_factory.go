package handlers

import (
	"net/http"

	"grovaapp/internal/backend"
	"grovaapp/internal/config"
	"grovaapp/internal/middleware"
	"grovaapp/internal/observability"
	"grovaapp/internal/services"
	"grovaapp/internal/version"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// ServiceName identifies the dashboard in traces, logs and /health
const ServiceName = "grova-backend"

// When adding new API endpoints, add them to internal/middleware/openapi.yaml
// as well: responses are checked against it when validation is enabled.

// Services bundles what the router's handlers need
type Services struct {
	Selector       *backend.Selector
	Feedback       *services.FeedbackService
	Actions        *services.ActionService
	Settings       *services.SettingsService
	Billing        *services.BillingService
	Templates      *services.TemplateService
	BizConfig      *services.BizConfigService
	ProjectContext *services.ProjectContextService
	AppState       *services.AppStateService
	Schemas        *middleware.SchemaLoader
}

// NewRouter creates the gin engine with all middleware and routes
func NewRouter(cfg *config.Config, svc Services, logger *observability.Logger) *gin.Engine {
	if !cfg.IsTest {
		gin.SetMode(gin.ReleaseMode)
		if cfg.Server.Debug {
			gin.SetMode(gin.DebugMode)
		}
	}

	router := gin.New()
	router.Use(middleware.ErrorRecoveryMiddleware(logger))
	router.Use(observability.RequestLogger(logger))

	// Health check endpoint (defined before any middleware)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"service":     ServiceName,
			"demo_forced": svc.Selector.Forced(),
		})
	})

	router.Use(observability.GinMiddlewareWithErrorHandling(ServiceName))
	if cfg.Server.ValidateResponses && svc.Schemas != nil {
		router.Use(middleware.ResponseValidationMiddleware(svc.Schemas, logger))
	}

	// Disable automatic redirection for trailing slashes, which is better for APIs
	router.RedirectTrailingSlash = false

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	sessionOpts := sessions.Options{
		Path:     config.SessionPath,
		MaxAge:   int(config.SessionMaxAge.Seconds()),
		HttpOnly: config.SessionHTTPOnly,
		Secure:   config.SessionSecure,
	}
	if cfg.Server.Debug {
		sessionOpts.SameSite = http.SameSiteDefaultMode
	} else {
		sessionOpts.SameSite = http.SameSiteLaxMode
		sessionOpts.Secure = true
	}
	store.Options(sessionOpts)
	router.Use(sessions.Sessions(config.SessionName, store))

	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	router.Use(secure.New(secureConfig))

	router.Use(middleware.ClientSession())
	router.Use(middleware.SelectBackend(svc.Selector))

	projectHandler := NewProjectHandler(logger)
	feedbackHandler := NewFeedbackHandler(svc.Feedback, logger)
	actionHandler := NewActionHandler(svc.Actions, logger)
	settingsHandler := NewSettingsHandler(svc.Settings, svc.Feedback, svc.BizConfig, svc.ProjectContext, logger)
	billingHandler := NewBillingHandler(svc.Billing, svc.Feedback, logger)
	templateHandler := NewTemplateHandler(svc.Templates, svc.Settings, logger)
	stateHandler := NewStateHandler(svc.AppState, logger)

	v1 := router.Group("/v1")
	if svc.Schemas != nil {
		v1.Use(middleware.RequestValidationMiddleware(svc.Schemas, logger))
	}
	{
		v1.GET("/version", func(c *gin.Context) {
			c.JSON(http.StatusOK, version.Get(ServiceName))
		})

		// Dashboard-local state needs no upstream credentials
		v1.GET("/state", stateHandler.GetState)
		v1.PUT("/state", stateHandler.UpdateState)
		v1.GET("/templates", templateHandler.ListTemplates)
		v1.POST("/templates/:id/preview", templateHandler.Preview)

		local := v1.Group("/projects/:id")
		{
			local.GET("/biz-config", settingsHandler.GetBizConfig)
			local.PUT("/biz-config", settingsHandler.SaveBizConfig)
			local.PUT("/biz-config/type", settingsHandler.SetBizType)
			local.POST("/biz-config/categories", settingsHandler.AddCategory)
			local.DELETE("/biz-config/categories/:index", settingsHandler.RemoveCategory)
			local.POST("/biz-config/categories/move", settingsHandler.MoveCategory)
			local.POST("/biz-config/reset", settingsHandler.ResetBizConfig)
			local.GET("/context", settingsHandler.GetProjectContext)
			local.PUT("/context", settingsHandler.SetProjectContext)
		}

		// Everything below reaches the feedback API
		api := v1.Group("")
		api.Use(middleware.RequireBearer())
		{
			api.GET("/projects", projectHandler.ListProjects)
			api.POST("/projects", projectHandler.CreateProject)
			api.GET("/projects/:id/action-settings", settingsHandler.GetActionSettings)
			api.PUT("/projects/:id/action-settings", settingsHandler.UpdateActionSettings)
			api.GET("/projects/:id/snippet", settingsHandler.GetSnippet)

			api.GET("/feedback", feedbackHandler.ListFeedback)
			api.POST("/feedback/:id/approve", feedbackHandler.Approve)
			api.POST("/feedback/:id/deny", feedbackHandler.Deny)
			api.POST("/feedback/:id/restore", feedbackHandler.Restore)

			api.GET("/inbox", feedbackHandler.Inbox)
			api.POST("/inbox/:feedback_id/actions/:index", actionHandler.SendSuggested)
			api.GET("/overview", feedbackHandler.Overview)

			api.GET("/actions", actionHandler.ListActions)
			api.POST("/actions/send", actionHandler.SendAction)
			api.POST("/actions/draft", actionHandler.DraftAction)
			api.POST("/templates/:id/test-send", templateHandler.TestSend)

			api.GET("/billing/status", billingHandler.Status)
			api.GET("/billing/overview", billingHandler.Overview)
			api.GET("/billing/tiers", billingHandler.Tiers)
			api.POST("/billing/checkout", billingHandler.Checkout)
			api.POST("/billing/portal", billingHandler.Portal)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		StandardizeHTTPError(c, http.StatusNotFound, "Not found", c.Request.URL.Path)
	})

	routeListing := NewRouteListingHandler(ServiceName)
	router.GET("/", routeListing.Serve)
	routeListing.CollectRoutes(router)

	return router
}
