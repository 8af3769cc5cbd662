package services

import (
	"context"

	"grovaapp/internal/backend"
	"grovaapp/internal/models"
	"grovaapp/internal/observability"
	contextutils "grovaapp/internal/utils"
)

// SettingsService reads and writes per-project action settings. Values are
// normalized and validated here so the upstream only ever sees clean input.
type SettingsService struct {
	logger *observability.Logger
}

// NewSettingsService creates a new SettingsService instance
func NewSettingsService(logger *observability.Logger) *SettingsService {
	return &SettingsService{logger: logger}
}

// Get returns the project's settings
func (s *SettingsService) Get(ctx context.Context, be backend.Backend, projectID string) (result0 models.ActionSettings, err error) {
	ctx, span := observability.TraceServiceFunction(ctx, "GetActionSettings",
		observability.AttributeProjectID(projectID),
	)
	defer observability.FinishSpan(span, &err)

	return be.GetActionSettings(ctx, projectID)
}

// Update normalizes, validates and stores settings for the project
func (s *SettingsService) Update(ctx context.Context, be backend.Backend, projectID string, settings models.ActionSettings) (result0 models.ActionSettings, err error) {
	ctx, span := observability.TraceServiceFunction(ctx, "UpdateActionSettings",
		observability.AttributeProjectID(projectID),
	)
	defer observability.FinishSpan(span, &err)

	if projectID == "" {
		return models.ActionSettings{}, contextutils.WrapError(contextutils.ErrMissingRequired, "project id is required")
	}

	clean := settings.Normalize()
	clean.ProjectID = projectID
	if err := contextutils.ValidateStruct(clean); err != nil {
		s.logger.Warn(ctx, "Rejected action settings", map[string]interface{}{
			"project_id": projectID,
			"error":      err.Error(),
		})
		return models.ActionSettings{}, err
	}

	return be.PutActionSettings(ctx, projectID, clean)
}
