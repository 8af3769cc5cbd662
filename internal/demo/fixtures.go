// Package demo is a fixture-backed stand-in for the feedback API. Every
// response has the same shape as its production counterpart.
package demo

import (
	"embed"
	"encoding/json"
	"time"

	"grovaapp/internal/models"
	contextutils "grovaapp/internal/utils"
)

// Demo project ids
const (
	DevProjectID = "demo-dev"
	BizProjectID = "demo-biz"
	// APIKey is the key every demo project reports
	APIKey = "demo"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

// fixtureRow is one stored feedback item. Ages are relative so the inbox
// always looks fresh; created_at is stamped when the simulator is built.
type fixtureRow struct {
	ProjectID string              `json:"project_id"`
	HoursAgo  int                 `json:"hours_ago"`
	Item      models.FeedbackItem `json:"item"`
}

func loadFeedbackFixtures(anchor time.Time) (map[string][]models.FeedbackItem, error) {
	raw, err := fixtureFS.ReadFile("fixtures/feedback.json")
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to read demo fixtures")
	}

	var rows []fixtureRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, contextutils.WrapError(err, "failed to decode demo fixtures")
	}

	byProject := make(map[string][]models.FeedbackItem)
	for _, row := range rows {
		item := row.Item
		item.CreatedAt = contextutils.FormatTimestamp(anchor.Add(-time.Duration(row.HoursAgo) * time.Hour))
		byProject[row.ProjectID] = append(byProject[row.ProjectID], item)
	}
	return byProject, nil
}

func demoProjects() []models.Project {
	return []models.Project{
		{
			ID:        DevProjectID,
			Name:      "Acme SaaS",
			Mode:      models.ModeDeveloper,
			APIKey:    APIKey,
			Source:    "acme-saas",
			CreatedAt: "2026-01-15T00:00:00Z",
		},
		{
			ID:        BizProjectID,
			Name:      "Corner Bistro",
			Mode:      models.ModeBusiness,
			APIKey:    APIKey,
			Source:    "corner-bistro",
			CreatedAt: "2026-01-20T00:00:00Z",
		},
	}
}

func demoActionSettings() models.ActionSettings {
	return models.ActionSettings{
		ActionsEnabled:          true,
		OwnerName:               models.StringPtr("Demo Owner"),
		BrandColor:              models.DefaultBrandColor,
		PreferredReviewPlatform: "google",
		FollowUpEnabled:         true,
		FollowUpDelayDays:       7,
		DefaultOfferType:        models.OfferPercentageDiscount,
		DefaultOfferValue:       "15%",
		DefaultOfferExpiryDays:  30,
		Tone:                    "warm_casual",
	}
}
