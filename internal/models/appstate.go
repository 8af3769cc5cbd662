package models

// Themes
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Font size presets index FontScales
const (
	FontPresetSmall  = 0
	FontPresetNormal = 1
	FontPresetLarge  = 2
	FontPresetXLarge = 3
)

// FontScales maps a font preset to its root scale factor
var FontScales = []float64{0.88, 1.0, 1.14, 1.28}

// AppState is the per-client dashboard state: visual preferences, the
// selected project and whether the session runs against demo fixtures.
type AppState struct {
	Theme           string  `json:"theme" validate:"oneof=dark light"`
	FontPreset      int     `json:"font_preset" validate:"min=0,max=3"`
	FontScale       float64 `json:"font_scale"`
	Track           Track   `json:"track" validate:"oneof=dev biz"`
	ActiveProjectID string  `json:"active_project_id,omitempty"`
	Demo            bool    `json:"demo"`
}

// DefaultAppState is the state of a first visit
func DefaultAppState() AppState {
	return AppState{
		Theme:      ThemeDark,
		FontPreset: FontPresetNormal,
		FontScale:  FontScales[FontPresetNormal],
		Track:      TrackDev,
	}
}

// FontScaleFor returns the scale of a preset, clamping out-of-range presets
func FontScaleFor(preset int) float64 {
	if preset < 0 {
		preset = 0
	}
	if preset >= len(FontScales) {
		preset = len(FontScales) - 1
	}
	return FontScales[preset]
}

// AppStatePatch carries a partial update; nil fields are left unchanged
type AppStatePatch struct {
	Theme           *string `json:"theme,omitempty" validate:"omitempty,oneof=dark light"`
	FontPreset      *int    `json:"font_preset,omitempty" validate:"omitempty,min=0,max=3"`
	Track           *Track  `json:"track,omitempty" validate:"omitempty,oneof=dev biz"`
	ActiveProjectID *string `json:"active_project_id,omitempty" validate:"omitempty,max=120"`
	Demo            *bool   `json:"demo,omitempty"`
}
