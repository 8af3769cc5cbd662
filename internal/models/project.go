package models

import (
	"encoding/json"
	"strings"
)

// Mode is the audience variant of a project. Everything that differs between
// developer and business projects hangs off the Mode value so callers resolve
// it once instead of branching on raw strings.
type Mode string

// Project modes
const (
	ModeDeveloper Mode = "developer"
	ModeBusiness  Mode = "business"
)

// Track is the marketing/dashboard audience: dev or biz
type Track string

// Tracks
const (
	TrackDev Track = "dev"
	TrackBiz Track = "biz"
)

// SubScoreField is one named sub-metric shown in the triage breakdown
type SubScoreField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var developerSubScores = []SubScoreField{
	{Key: "severity", Label: "Severity"},
	{Key: "actionability", Label: "Actionability"},
	{Key: "specificity", Label: "Specificity"},
	{Key: "technical_clarity", Label: "Technical clarity"},
	{Key: "user_effort", Label: "User effort"},
	{Key: "frequency_signal", Label: "Frequency"},
	{Key: "sentiment_intensity", Label: "Sentiment"},
	{Key: "scope_estimate", Label: "Scope"},
}

var businessSubScores = append(append([]SubScoreField{}, developerSubScores...),
	SubScoreField{Key: "revenue_proximity", Label: "Revenue proximity"},
	SubScoreField{Key: "public_visibility_risk", Label: "Public visibility risk"},
	SubScoreField{Key: "customer_retention_signal", Label: "Retention signal"},
)

// ParseMode resolves a raw mode string. Anything other than "business" is a
// developer project, matching how the dashboard has always treated the flag.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeBusiness)) {
		return ModeBusiness
	}
	return ModeDeveloper
}

// UnmarshalJSON normalizes the mode at the decoding boundary
func (m *Mode) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = ParseMode(raw)
	return nil
}

// IsBusiness reports whether m is the business variant
func (m Mode) IsBusiness() bool {
	return m == ModeBusiness
}

// SubScoreFields returns the ordered sub-metrics scored for this mode
func (m Mode) SubScoreFields() []SubScoreField {
	src := developerSubScores
	if m.IsBusiness() {
		src = businessSubScores
	}
	return append([]SubScoreField(nil), src...)
}

// Track returns the audience track matching the mode
func (m Mode) Track() Track {
	if m.IsBusiness() {
		return TrackBiz
	}
	return TrackDev
}

// Tiers returns the plan catalog offered to projects of this mode
func (m Mode) Tiers() []Tier {
	src := devTiers
	if m.IsBusiness() {
		src = bizTiers
	}
	return append([]Tier(nil), src...)
}

// FreeTier returns the entry-level plan id for this mode
func (m Mode) FreeTier() string {
	if m.IsBusiness() {
		return TierBizFree
	}
	return TierFree
}

// DefaultCategories returns the category preset new business projects start
// with. Developer projects categorize by submission type and have none.
func (m Mode) DefaultCategories() []string {
	if !m.IsBusiness() {
		return nil
	}
	return PresetCategories(BusinessTypeDefault)
}

// ModeForTrack maps an audience track back to a project mode
func ModeForTrack(t Track) Mode {
	if t == TrackBiz {
		return ModeBusiness
	}
	return ModeDeveloper
}

// Project is a tenant scope: one app or one business location
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Mode      Mode   `json:"mode"`
	APIKey    string `json:"api_key"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at"`
}

// CreateProjectRequest is the body of POST /projects
type CreateProjectRequest struct {
	Name   string `json:"name" binding:"required" validate:"required,max=120"`
	Mode   Mode   `json:"mode"`
	Source string `json:"source" validate:"omitempty,max=120"`
}

// DefaultSource derives a widget source id from a project name the way the
// onboarding wizard does: lowercased with whitespace runs turned into dashes.
func DefaultSource(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
