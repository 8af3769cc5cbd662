package models

import (
	"strings"

	contextutils "grovaapp/internal/utils"
)

// Business types that drive category presets
const (
	BusinessTypeDefault    = "default"
	BusinessTypeRestaurant = "restaurant"
	BusinessTypeSalon      = "salon"
	BusinessTypeRetail     = "retail"
)

// WidgetScriptURL is the hosted business widget
const WidgetScriptURL = "https://grova.dev/grova-business-widget.js"

var categoryPresets = map[string][]string{
	BusinessTypeDefault:    {"Complaint", "Compliment", "Question", "Suggestion", "Other"},
	BusinessTypeRestaurant: {"Food quality", "Service", "Wait time", "Cleanliness", "Pricing", "Other"},
	BusinessTypeSalon:      {"Service quality", "Booking", "Staff", "Pricing", "Cleanliness", "Other"},
	BusinessTypeRetail:     {"Product", "Staff", "Checkout", "Returns", "Pricing", "Other"},
}

// BusinessTypes lists the selectable business types in display order
var BusinessTypes = []string{BusinessTypeRestaurant, BusinessTypeSalon, BusinessTypeRetail, BusinessTypeDefault}

// IsBusinessType reports whether t is one of BusinessTypes
func IsBusinessType(t string) bool {
	_, ok := categoryPresets[t]
	return ok
}

// PresetCategories returns a fresh copy of the preset for a business type,
// falling back to the default preset for unknown types.
func PresetCategories(businessType string) []string {
	preset, ok := categoryPresets[businessType]
	if !ok {
		preset = categoryPresets[BusinessTypeDefault]
	}
	return append([]string(nil), preset...)
}

// BizConfig is the business-mode widget customization for one project
type BizConfig struct {
	Name       string   `json:"name" validate:"max=120"`
	Type       string   `json:"type" validate:"required"`
	Categories []string `json:"categories" validate:"max=20,dive,required,max=60"`
}

// DefaultBizConfig returns the configuration a project starts with
func DefaultBizConfig() BizConfig {
	return BizConfig{
		Name:       "",
		Type:       BusinessTypeDefault,
		Categories: PresetCategories(BusinessTypeDefault),
	}
}

// Clone returns a deep copy
func (c BizConfig) Clone() BizConfig {
	out := c
	out.Categories = append([]string(nil), c.Categories...)
	return out
}

// WithType switches the business type and replaces the categories with its preset
func (c BizConfig) WithType(businessType string) BizConfig {
	out := c.Clone()
	out.Type = businessType
	out.Categories = PresetCategories(businessType)
	return out
}

// AddCategory appends a trimmed category. Empty names and duplicates are rejected.
func (c BizConfig) AddCategory(name string) (BizConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return c, contextutils.WrapError(contextutils.ErrMissingRequired, "category name is empty")
	}
	for _, existing := range c.Categories {
		if existing == name {
			return c, contextutils.WrapErrorf(contextutils.ErrRecordExists, "category %q already exists", name)
		}
	}
	out := c.Clone()
	out.Categories = append(out.Categories, name)
	return out, nil
}

// RemoveCategory drops the category at idx
func (c BizConfig) RemoveCategory(idx int) (BizConfig, error) {
	if idx < 0 || idx >= len(c.Categories) {
		return c, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "category index %d out of range", idx)
	}
	out := c.Clone()
	out.Categories = append(out.Categories[:idx], out.Categories[idx+1:]...)
	return out, nil
}

// MoveCategory moves the category at from so it lands at index to.
// Moving onto itself is a no-op.
func (c BizConfig) MoveCategory(from, to int) (BizConfig, error) {
	n := len(c.Categories)
	if from < 0 || from >= n || to < 0 || to >= n {
		return c, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "cannot move category %d to %d", from, to)
	}
	if from == to {
		return c.Clone(), nil
	}
	out := c.Clone()
	moved := out.Categories[from]
	cats := append(out.Categories[:from:from], out.Categories[from+1:]...)
	cats = append(cats[:to], append([]string{moved}, cats[to:]...)...)
	out.Categories = cats
	return out, nil
}

// ResetCategories restores the preset for the current business type
func (c BizConfig) ResetCategories() BizConfig {
	out := c.Clone()
	out.Categories = PresetCategories(c.Type)
	return out
}

// EmbedSnippet builds the widget script tag for a project
func (c BizConfig) EmbedSnippet(p Project) string {
	source := p.Source
	if source == "" {
		source = "your-business-id"
	}

	var b strings.Builder
	b.WriteString("<script\n  src=\"" + WidgetScriptURL + "\"\n  data-source=\"" + source + "\"")
	if p.APIKey != "" {
		b.WriteString("\n  data-key=\"" + p.APIKey + "\"")
	}
	if c.Type != "" && c.Type != BusinessTypeDefault {
		b.WriteString("\n  data-business-type=\"" + c.Type + "\"")
	}
	if c.Name != "" {
		b.WriteString("\n  data-name=\"" + strings.ReplaceAll(c.Name, `"`, "&quot;") + "\"")
	}
	if cats := strings.Join(c.Categories, ","); cats != "" {
		b.WriteString("\n  data-categories=\"" + cats + "\"")
	}
	b.WriteString(">\n</script>")
	return b.String()
}
