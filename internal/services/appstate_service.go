package services

import (
	"context"
	"encoding/json"

	"grovaapp/internal/database"
	"grovaapp/internal/models"
	"grovaapp/internal/observability"
	contextutils "grovaapp/internal/utils"
)

// StateHints are the URL hints a dashboard load may carry
type StateHints struct {
	// Business is set by the #business fragment
	Business bool
	// Demo is set by the ?demo query parameter
	Demo bool
}

// AppStateService loads and updates the per-client dashboard state.
// Load order: persisted value, then URL hints, then validation with defaults.
type AppStateService struct {
	store      database.Store
	logger     *observability.Logger
	forcedDemo bool
}

// NewAppStateService creates a new AppStateService instance. forcedDemo pins
// every client to the demo when no live backend is available.
func NewAppStateService(store database.Store, logger *observability.Logger, forcedDemo bool) *AppStateService {
	return &AppStateService{store: store, logger: logger, forcedDemo: forcedDemo}
}

// Load resolves the state for a client
func (s *AppStateService) Load(ctx context.Context, scope string, hints StateHints) (result0 models.AppState, err error) {
	ctx, span := observability.TraceServiceFunction(ctx, "LoadAppState")
	defer observability.FinishSpan(span, &err)

	state, err := s.persisted(ctx, scope)
	if err != nil {
		return models.AppState{}, err
	}

	if hints.Business {
		state.Track = models.TrackBiz
	}
	if hints.Demo {
		state.Demo = true
	}

	state = s.sanitize(state)

	if hints.Business || hints.Demo {
		if err := s.save(ctx, scope, state); err != nil {
			return models.AppState{}, err
		}
	}
	return state, nil
}

// Update applies patch to the client's state and persists the result
func (s *AppStateService) Update(ctx context.Context, scope string, patch models.AppStatePatch) (result0 models.AppState, err error) {
	ctx, span := observability.TraceServiceFunction(ctx, "UpdateAppState")
	defer observability.FinishSpan(span, &err)

	if err := contextutils.ValidateStruct(patch); err != nil {
		return models.AppState{}, err
	}

	state, err := s.persisted(ctx, scope)
	if err != nil {
		return models.AppState{}, err
	}
	if patch.Theme != nil {
		state.Theme = *patch.Theme
	}
	if patch.FontPreset != nil {
		state.FontPreset = *patch.FontPreset
	}
	if patch.Track != nil {
		state.Track = *patch.Track
	}
	if patch.ActiveProjectID != nil {
		state.ActiveProjectID = *patch.ActiveProjectID
	}
	if patch.Demo != nil {
		state.Demo = *patch.Demo
	}

	state = s.sanitize(state)
	if err := s.save(ctx, scope, state); err != nil {
		return models.AppState{}, err
	}
	return state, nil
}

func (s *AppStateService) persisted(ctx context.Context, scope string) (models.AppState, error) {
	state := models.DefaultAppState()
	raw, ok, err := s.store.Get(ctx, scope, AppStateKey)
	if err != nil {
		return models.AppState{}, err
	}
	if !ok {
		return state, nil
	}
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		s.logger.Warn(ctx, "Discarding unreadable app state", map[string]interface{}{
			"error": err.Error(),
		})
		return models.DefaultAppState(), nil
	}
	return state, nil
}

// sanitize replaces invalid values field by field with their defaults
func (s *AppStateService) sanitize(state models.AppState) models.AppState {
	def := models.DefaultAppState()
	if state.Theme != models.ThemeDark && state.Theme != models.ThemeLight {
		state.Theme = def.Theme
	}
	if state.FontPreset < 0 || state.FontPreset >= len(models.FontScales) {
		state.FontPreset = def.FontPreset
	}
	state.FontScale = models.FontScaleFor(state.FontPreset)
	if state.Track != models.TrackDev && state.Track != models.TrackBiz {
		state.Track = def.Track
	}
	if s.forcedDemo {
		state.Demo = true
	}
	return state
}

func (s *AppStateService) save(ctx context.Context, scope string, state models.AppState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return contextutils.WrapError(err, "failed to encode app state")
	}
	return s.store.Set(ctx, scope, AppStateKey, string(raw))
}
