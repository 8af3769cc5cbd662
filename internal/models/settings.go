package models

// Offer types for bounce-back offers
const (
	OfferPercentageDiscount = "percentage_discount"
	OfferFixedDiscount      = "fixed_discount"
	OfferFreeItem           = "free_item"
	OfferNone               = "none"
)

// DefaultBrandColor is the accent used when a project has not picked one
const DefaultBrandColor = "#00c87a"

// ActionSettings is the per-project outbound email configuration. Nullable
// fields are pointers so that null and empty round-trip distinctly.
type ActionSettings struct {
	ProjectID               string  `json:"project_id,omitempty"`
	ActionsEnabled          bool    `json:"actions_enabled"`
	DefaultOfferType        string  `json:"default_offer_type" validate:"required,oneof=percentage_discount fixed_discount free_item none"`
	DefaultOfferValue       string  `json:"default_offer_value" validate:"max=40"`
	DefaultOfferExpiryDays  int     `json:"default_offer_expiry_days" validate:"min=0,max=365"`
	OwnerName               *string `json:"owner_name" validate:"omitempty,max=120"`
	ReplyToEmail            *string `json:"reply_to_email" validate:"omitempty,email"`
	BrandColor              string  `json:"brand_color" validate:"required,hexcolor"`
	LogoURL                 *string `json:"logo_url" validate:"omitempty,url"`
	PreferredReviewPlatform string  `json:"preferred_review_platform" validate:"required,oneof=google yelp tripadvisor facebook other"`
	ReviewURL               *string `json:"review_url" validate:"omitempty,url"`
	FollowUpEnabled         bool    `json:"follow_up_enabled"`
	FollowUpDelayDays       int     `json:"follow_up_delay_days" validate:"min=1,max=90"`
	EscalationEmail         *string `json:"escalation_email" validate:"omitempty,email"`
	Tone                    string  `json:"tone" validate:"required,oneof=warm_casual professional friendly formal"`
}

// DefaultActionSettings returns the settings a new project starts with
func DefaultActionSettings(projectID string) ActionSettings {
	return ActionSettings{
		ProjectID:               projectID,
		ActionsEnabled:          true,
		DefaultOfferType:        OfferPercentageDiscount,
		DefaultOfferValue:       "15%",
		DefaultOfferExpiryDays:  30,
		BrandColor:              DefaultBrandColor,
		PreferredReviewPlatform: "google",
		FollowUpEnabled:         true,
		FollowUpDelayDays:       7,
		Tone:                    "warm_casual",
	}
}

// Clone returns a deep copy
func (s ActionSettings) Clone() ActionSettings {
	out := s
	out.OwnerName = cloneStringPtr(s.OwnerName)
	out.ReplyToEmail = cloneStringPtr(s.ReplyToEmail)
	out.LogoURL = cloneStringPtr(s.LogoURL)
	out.ReviewURL = cloneStringPtr(s.ReviewURL)
	out.EscalationEmail = cloneStringPtr(s.EscalationEmail)
	return out
}

// SenderName is the display name used on outbound mail
func (s ActionSettings) SenderName() string {
	if s.OwnerName != nil && *s.OwnerName != "" {
		return *s.OwnerName
	}
	return "The team"
}

// Normalize turns empty optional strings into nulls and fills the follow-up
// delay the way the settings form does when the field is cleared.
func (s ActionSettings) Normalize() ActionSettings {
	out := s.Clone()
	for _, p := range []**string{&out.OwnerName, &out.ReplyToEmail, &out.LogoURL, &out.ReviewURL, &out.EscalationEmail} {
		if *p != nil && **p == "" {
			*p = nil
		}
	}
	if out.FollowUpDelayDays <= 0 {
		out.FollowUpDelayDays = 7
	}
	if out.BrandColor == "" {
		out.BrandColor = DefaultBrandColor
	}
	return out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
