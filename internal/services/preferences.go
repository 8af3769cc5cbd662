package services

import (
	"context"
	"encoding/json"
	"strings"

	"grovaapp/internal/database"
	"grovaapp/internal/models"
	"grovaapp/internal/observability"
	contextutils "grovaapp/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// Preference keys. Per-project keys carry the project id as a suffix.
const (
	BizConfigKeyPrefix = "grova-biz-config-"
	ContextKeyPrefix   = "grova-ctx-"
	AppStateKey        = "grova-app-state"
)

// MaxProjectContextLength bounds the free-text project context
const MaxProjectContextLength = 5000

// BizConfigKey is the preference key of a project's business config
func BizConfigKey(projectID string) string {
	return BizConfigKeyPrefix + projectID
}

// ContextKey is the preference key of a project's free-text context
func ContextKey(projectID string) string {
	return ContextKeyPrefix + projectID
}

// BizConfigService edits the business widget configuration of a project
type BizConfigService struct {
	store  database.Store
	logger *observability.Logger
}

// NewBizConfigService creates a new BizConfigService instance
func NewBizConfigService(store database.Store, logger *observability.Logger) *BizConfigService {
	return &BizConfigService{store: store, logger: logger}
}

// Get returns the stored config. A missing or corrupt value yields the default.
func (s *BizConfigService) Get(ctx context.Context, scope, projectID string) (result0 models.BizConfig, err error) {
	ctx, span := observability.TraceServiceFunction(ctx, "GetBizConfig",
		observability.AttributeProjectID(projectID),
	)
	defer observability.FinishSpan(span, &err)

	raw, ok, err := s.store.Get(ctx, scope, BizConfigKey(projectID))
	if err != nil {
		return models.BizConfig{}, err
	}
	if !ok {
		return models.DefaultBizConfig(), nil
	}

	var cfg models.BizConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil || cfg.Type == "" {
		s.logger.Warn(ctx, "Discarding unreadable biz config", map[string]interface{}{
			"project_id": projectID,
		})
		return models.DefaultBizConfig(), nil
	}
	if cfg.Categories == nil {
		cfg.Categories = []string{}
	}
	return cfg, nil
}

// Save validates and persists cfg
func (s *BizConfigService) Save(ctx context.Context, scope, projectID string, cfg models.BizConfig) (result0 models.BizConfig, err error) {
	ctx, span := observability.TraceServiceFunction(ctx, "SaveBizConfig",
		observability.AttributeProjectID(projectID),
		attribute.String("biz.type", cfg.Type),
	)
	defer observability.FinishSpan(span, &err)

	cfg = cfg.Clone()
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Categories == nil {
		cfg.Categories = []string{}
	}
	if err := contextutils.ValidateStruct(cfg); err != nil {
		return models.BizConfig{}, err
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return models.BizConfig{}, contextutils.WrapError(err, "failed to encode biz config")
	}
	if err := s.store.Set(ctx, scope, BizConfigKey(projectID), string(raw)); err != nil {
		return models.BizConfig{}, err
	}
	return cfg, nil
}

// AddCategory appends a category and saves
func (s *BizConfigService) AddCategory(ctx context.Context, scope, projectID, name string) (models.BizConfig, error) {
	return s.update(ctx, scope, projectID, func(c models.BizConfig) (models.BizConfig, error) {
		return c.AddCategory(name)
	})
}

// RemoveCategory drops the category at index and saves
func (s *BizConfigService) RemoveCategory(ctx context.Context, scope, projectID string, index int) (models.BizConfig, error) {
	return s.update(ctx, scope, projectID, func(c models.BizConfig) (models.BizConfig, error) {
		return c.RemoveCategory(index)
	})
}

// MoveCategory reorders categories and saves
func (s *BizConfigService) MoveCategory(ctx context.Context, scope, projectID string, from, to int) (models.BizConfig, error) {
	return s.update(ctx, scope, projectID, func(c models.BizConfig) (models.BizConfig, error) {
		return c.MoveCategory(from, to)
	})
}

// Reset restores the preset categories of the current business type
func (s *BizConfigService) Reset(ctx context.Context, scope, projectID string) (models.BizConfig, error) {
	return s.update(ctx, scope, projectID, func(c models.BizConfig) (models.BizConfig, error) {
		return c.ResetCategories(), nil
	})
}

// SetType switches the business type, replacing categories with its preset
func (s *BizConfigService) SetType(ctx context.Context, scope, projectID, businessType string) (models.BizConfig, error) {
	if !models.IsBusinessType(businessType) {
		return models.BizConfig{}, contextutils.WrapErrorf(contextutils.ErrInvalidInput,
			"unknown business type %q, expected one of %v", businessType, models.BusinessTypes)
	}
	return s.update(ctx, scope, projectID, func(c models.BizConfig) (models.BizConfig, error) {
		return c.WithType(businessType), nil
	})
}

// Snippet renders the widget embed code for the project
func (s *BizConfigService) Snippet(ctx context.Context, scope string, project models.Project) (string, error) {
	cfg, err := s.Get(ctx, scope, project.ID)
	if err != nil {
		return "", err
	}
	return cfg.EmbedSnippet(project), nil
}

func (s *BizConfigService) update(ctx context.Context, scope, projectID string, change func(models.BizConfig) (models.BizConfig, error)) (models.BizConfig, error) {
	cfg, err := s.Get(ctx, scope, projectID)
	if err != nil {
		return models.BizConfig{}, err
	}
	cfg, err = change(cfg)
	if err != nil {
		return models.BizConfig{}, err
	}
	return s.Save(ctx, scope, projectID, cfg)
}

// ProjectContextService stores the free-text description an operator keeps
// about a project.
type ProjectContextService struct {
	store database.Store
}

// NewProjectContextService creates a new ProjectContextService instance
func NewProjectContextService(store database.Store) *ProjectContextService {
	return &ProjectContextService{store: store}
}

// Get returns the stored context or an empty string
func (s *ProjectContextService) Get(ctx context.Context, scope, projectID string) (string, error) {
	v, _, err := s.store.Get(ctx, scope, ContextKey(projectID))
	return v, err
}

// Set stores text; blank text clears the value
func (s *ProjectContextService) Set(ctx context.Context, scope, projectID, text string) (string, error) {
	if len(text) > MaxProjectContextLength {
		return "", contextutils.WrapErrorf(contextutils.ErrInvalidInput, "context is longer than %d characters", MaxProjectContextLength)
	}
	if strings.TrimSpace(text) == "" {
		return "", s.store.Delete(ctx, scope, ContextKey(projectID))
	}
	if err := s.store.Set(ctx, scope, ContextKey(projectID), text); err != nil {
		return "", err
	}
	return text, nil
}
