// Package di provides dependency injection container for managing service lifecycle and dependencies.
package di

import (
	"context"
	"database/sql"
	"sync"

	"grovaapp/internal/backend"
	"grovaapp/internal/config"
	"grovaapp/internal/database"
	"grovaapp/internal/demo"
	"grovaapp/internal/handlers"
	"grovaapp/internal/middleware"
	"grovaapp/internal/observability"
	"grovaapp/internal/services"
	"grovaapp/internal/services/mailer"
	contextutils "grovaapp/internal/utils"
)

// Service names registered in the container
const (
	ServiceFeedback       = "feedback"
	ServiceActions        = "actions"
	ServiceSettings       = "settings"
	ServiceBilling        = "billing"
	ServiceTemplates      = "templates"
	ServiceBizConfig      = "biz_config"
	ServiceProjectContext = "project_context"
	ServiceAppState       = "app_state"
	ServiceEmail          = "email"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetService(name string) (interface{}, error)
	GetFeedbackService() (*services.FeedbackService, error)
	GetActionService() (*services.ActionService, error)
	GetTemplateService() (*services.TemplateService, error)
	GetBizConfigService() (*services.BizConfigService, error)
	GetEmailService() (mailer.Mailer, error)
	GetSelector() *backend.Selector
	GetStore() database.Store
	GetDatabase() *sql.DB
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	RouterServices() (handlers.Services, error)
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ServiceContainer manages all service dependencies and lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	metrics       *observability.Metrics
	dbManager     *database.Manager
	db            *sql.DB
	store         database.Store
	selector      *backend.Selector
	schemas       *middleware.SchemaLoader
	services      map[string]interface{}
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

// NewServiceContainer creates a new dependency injection container. metrics
// may be nil when metrics export is disabled.
func NewServiceContainer(cfg *config.Config, logger *observability.Logger, metrics *observability.Metrics) *ServiceContainer {
	return &ServiceContainer{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		services: make(map[string]interface{}),
	}
}

// Initialize sets up the preference store, the backends and all services
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if err := sc.initializeStore(ctx); err != nil {
		return err
	}
	if err := sc.initializeBackends(ctx); err != nil {
		_ = sc.cleanup(ctx)
		return err
	}

	schemas, err := middleware.LoadEmbeddedSchemas()
	if err != nil {
		_ = sc.cleanup(ctx)
		return contextutils.WrapError(err, "failed to load API schemas")
	}
	sc.schemas = schemas

	sc.initializeServices(ctx)
	return nil
}

// initializeStore opens Postgres when a database URL is configured, then
// SQLite when a file path is, and falls back to process memory otherwise.
func (sc *ServiceContainer) initializeStore(ctx context.Context) error {
	if sc.cfg.Database.URL == "" && sc.cfg.Database.SQLitePath != "" {
		store, err := database.OpenSQLite(ctx, sc.cfg.Database.SQLitePath, sc.logger)
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to initialize sqlite store")
		}
		sc.store = store
		sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
			return store.Close()
		})
		return nil
	}
	if sc.cfg.Database.URL == "" {
		sc.logger.Info(ctx, "No database configured, keeping preferences in memory")
		sc.store = database.NewMemoryStore()
		return nil
	}

	sc.dbManager = database.NewManager(sc.logger)
	db, err := sc.dbManager.Open(ctx, sc.cfg.Database)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to initialize database")
	}
	sc.db = db
	sc.store = database.NewPostgresStore(db, sc.logger)
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
		return db.Close()
	})
	return nil
}

func (sc *ServiceContainer) initializeBackends(ctx context.Context) error {
	var live backend.Backend
	if sc.cfg.Upstream.BaseURL != "" {
		httpBackend, err := backend.NewHTTPBackend(sc.cfg.Upstream, sc.logger, sc.metrics)
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to create upstream client")
		}
		live = httpBackend
	}

	var demoBackend backend.Backend
	if sc.cfg.Demo.Enabled || live == nil {
		sim, err := demo.NewSimulator()
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to load demo fixtures")
		}
		demoBackend = backend.NewDemoBackend(sim)
	}

	sc.selector = backend.NewSelector(demoBackend, live, sc.cfg.Demo.Forced)
	sc.logger.Info(ctx, "Backends ready", map[string]interface{}{
		"upstream":    sc.cfg.Upstream.BaseURL,
		"demo":        demoBackend != nil,
		"demo_forced": sc.selector.Forced(),
	})
	return nil
}

// initializeServices sets up all service dependencies
func (sc *ServiceContainer) initializeServices(_ context.Context) {
	emailService := services.CreateEmailService(sc.cfg, sc.logger)
	sc.services[ServiceEmail] = emailService

	sc.services[ServiceFeedback] = services.NewFeedbackService(sc.logger, sc.metrics)
	actionService := services.NewActionService(sc.cfg.Actions, sc.logger, sc.metrics)
	sc.services[ServiceActions] = actionService
	sc.services[ServiceSettings] = services.NewSettingsService(sc.logger)
	sc.services[ServiceBilling] = services.NewBillingService(sc.logger)
	sc.services[ServiceTemplates] = services.NewTemplateService(emailService, actionService, sc.logger)
	sc.services[ServiceBizConfig] = services.NewBizConfigService(sc.store, sc.logger)
	sc.services[ServiceProjectContext] = services.NewProjectContextService(sc.store)
	sc.services[ServiceAppState] = services.NewAppStateService(sc.store, sc.logger, sc.selector.Forced())
}

// GetService retrieves a service by name with type assertion
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.ErrorWithContextf("service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.ErrorWithContextf("service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetFeedbackService returns the feedback service
func (sc *ServiceContainer) GetFeedbackService() (*services.FeedbackService, error) {
	return GetServiceAs[*services.FeedbackService](sc, ServiceFeedback)
}

// GetActionService returns the action service
func (sc *ServiceContainer) GetActionService() (*services.ActionService, error) {
	return GetServiceAs[*services.ActionService](sc, ServiceActions)
}

// GetTemplateService returns the template service
func (sc *ServiceContainer) GetTemplateService() (*services.TemplateService, error) {
	return GetServiceAs[*services.TemplateService](sc, ServiceTemplates)
}

// GetBizConfigService returns the business widget config service
func (sc *ServiceContainer) GetBizConfigService() (*services.BizConfigService, error) {
	return GetServiceAs[*services.BizConfigService](sc, ServiceBizConfig)
}

// GetEmailService returns the email service
func (sc *ServiceContainer) GetEmailService() (mailer.Mailer, error) {
	return GetServiceAs[mailer.Mailer](sc, ServiceEmail)
}

// GetSelector returns the demo/live backend selector
func (sc *ServiceContainer) GetSelector() *backend.Selector {
	return sc.selector
}

// GetStore returns the preference store
func (sc *ServiceContainer) GetStore() database.Store {
	return sc.store
}

// GetDatabase returns the database instance, nil when running on memory
func (sc *ServiceContainer) GetDatabase() *sql.DB {
	return sc.db
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// RouterServices collects everything handlers.NewRouter needs
func (sc *ServiceContainer) RouterServices() (handlers.Services, error) {
	feedback, err := sc.GetFeedbackService()
	if err != nil {
		return handlers.Services{}, err
	}
	actions, err := sc.GetActionService()
	if err != nil {
		return handlers.Services{}, err
	}
	settings, err := GetServiceAs[*services.SettingsService](sc, ServiceSettings)
	if err != nil {
		return handlers.Services{}, err
	}
	billing, err := GetServiceAs[*services.BillingService](sc, ServiceBilling)
	if err != nil {
		return handlers.Services{}, err
	}
	templates, err := sc.GetTemplateService()
	if err != nil {
		return handlers.Services{}, err
	}
	bizConfig, err := sc.GetBizConfigService()
	if err != nil {
		return handlers.Services{}, err
	}
	projectContext, err := GetServiceAs[*services.ProjectContextService](sc, ServiceProjectContext)
	if err != nil {
		return handlers.Services{}, err
	}
	appState, err := GetServiceAs[*services.AppStateService](sc, ServiceAppState)
	if err != nil {
		return handlers.Services{}, err
	}

	return handlers.Services{
		Selector:       sc.selector,
		Feedback:       feedback,
		Actions:        actions,
		Settings:       settings,
		Billing:        billing,
		Templates:      templates,
		BizConfig:      bizConfig,
		ProjectContext: projectContext,
		AppState:       appState,
		Schemas:        sc.schemas,
	}, nil
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.cleanup(ctx)
}

// cleanup runs shutdown functions in reverse order of registration
func (sc *ServiceContainer) cleanup(ctx context.Context) error {
	var errors []error
	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil {
			sc.logger.Error(ctx, "Shutdown step failed", err)
			errors = append(errors, err)
		}
	}
	sc.shutdownFuncs = nil

	if len(errors) > 0 {
		return contextutils.ErrorWithContextf("shutdown errors: %v", errors)
	}
	return nil
}
