// Package models defines data structures used throughout the grova backend.
package models

// FeedbackStatus is the review state of a feedback item
type FeedbackStatus string

// Feedback statuses. Transitions only leave pending.
const (
	StatusPending  FeedbackStatus = "pending"
	StatusApproved FeedbackStatus = "approved"
	StatusDenied   FeedbackStatus = "denied"
)

// FeedbackStatuses lists every status in review order
var FeedbackStatuses = []FeedbackStatus{StatusPending, StatusApproved, StatusDenied}

// Valid reports whether s is a known status
func (s FeedbackStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied:
		return true
	}
	return false
}

// ConsoleError is a runtime error captured by the widget alongside a submission
type ConsoleError struct {
	Message   string `json:"message"`
	Source    string `json:"source"`
	Line      int    `json:"line"`
	Col       *int   `json:"col,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Metadata is the technical context the widget attaches to a submission.
// It is passed through untouched and never used in scoring.
type Metadata struct {
	Browser    string   `json:"browser,omitempty"`
	OS         string   `json:"os,omitempty"`
	DeviceType string   `json:"device_type,omitempty"`
	Viewport   string   `json:"viewport,omitempty"`
	Screen     string   `json:"screen,omitempty"`
	PixelRatio *float64 `json:"pixel_ratio,omitempty"`
	Language   string   `json:"language,omitempty"`
	Timezone   string   `json:"timezone,omitempty"`
	Referrer   string   `json:"referrer,omitempty"`
	Connection string   `json:"connection,omitempty"`
	Touch      *bool    `json:"touch,omitempty"`
	URL        string   `json:"url,omitempty"`
}

// SuggestedAction is an outbound action recommended by triage
type SuggestedAction struct {
	Type                  string            `json:"type"`
	Confidence            float64           `json:"confidence"`
	Headline              string            `json:"headline"`
	Reasoning             string            `json:"reasoning,omitempty"`
	Priority              string            `json:"priority,omitempty"`
	RequiresCustomerEmail bool              `json:"requires_customer_email,omitempty"`
	TemplateID            *string           `json:"template_id"`
	TemplateVariables     map[string]string `json:"template_variables,omitempty"`
}

// HasTemplate reports whether the action sends an email
func (a SuggestedAction) HasTemplate() bool {
	return a.TemplateID != nil && *a.TemplateID != ""
}

// Triage is the AI annotation attached to a feedback item. Produced upstream, read-only here.
type Triage struct {
	Score             float64            `json:"score"`
	Category          string             `json:"category,omitempty"`
	Summary           string             `json:"summary,omitempty"`
	PersonaType       string             `json:"persona_type,omitempty"`
	SignalCount       *int               `json:"signal_count,omitempty"`
	Reasoning         string             `json:"reasoning,omitempty"`
	RecommendedAction string             `json:"recommended_action,omitempty"`
	SuggestedReply    string             `json:"suggested_reply,omitempty"`
	SubScores         map[string]float64 `json:"sub_scores,omitempty"`
	SuggestedActions  []SuggestedAction  `json:"suggested_actions,omitempty"`
}

// FeedbackItem is one customer or user submission
type FeedbackItem struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Message       string         `json:"message"`
	Page          string         `json:"page,omitempty"`
	CreatedAt     string         `json:"created_at"`
	Status        FeedbackStatus `json:"status"`
	Email         string         `json:"email,omitempty"`
	Metadata      *Metadata      `json:"metadata,omitempty"`
	ConsoleErrors []ConsoleError `json:"console_errors,omitempty"`
	Screenshot    string         `json:"screenshot,omitempty"`
	Triage        *Triage        `json:"triage,omitempty"`
}

// Category is the triage category when present, otherwise the submission type
func (f FeedbackItem) Category() string {
	if f.Triage != nil && f.Triage.Category != "" {
		return f.Triage.Category
	}
	return f.Type
}

// NeedsReply reports whether a pending item has a drafted reply waiting
func (f FeedbackItem) NeedsReply() bool {
	return f.Status == StatusPending && f.Triage != nil && f.Triage.SuggestedReply != ""
}

// Clone returns a deep copy of the item
func (f FeedbackItem) Clone() FeedbackItem {
	out := f
	if f.Metadata != nil {
		md := *f.Metadata
		if md.PixelRatio != nil {
			v := *md.PixelRatio
			md.PixelRatio = &v
		}
		if md.Touch != nil {
			v := *md.Touch
			md.Touch = &v
		}
		out.Metadata = &md
	}
	if f.ConsoleErrors != nil {
		out.ConsoleErrors = make([]ConsoleError, len(f.ConsoleErrors))
		for i, ce := range f.ConsoleErrors {
			if ce.Col != nil {
				v := *ce.Col
				ce.Col = &v
			}
			out.ConsoleErrors[i] = ce
		}
	}
	if f.Triage != nil {
		t := f.Triage.Clone()
		out.Triage = &t
	}
	return out
}

// Clone returns a deep copy of the triage block
func (t Triage) Clone() Triage {
	out := t
	if t.SignalCount != nil {
		v := *t.SignalCount
		out.SignalCount = &v
	}
	if t.SubScores != nil {
		out.SubScores = make(map[string]float64, len(t.SubScores))
		for k, v := range t.SubScores {
			out.SubScores[k] = v
		}
	}
	if t.SuggestedActions != nil {
		out.SuggestedActions = make([]SuggestedAction, len(t.SuggestedActions))
		for i, a := range t.SuggestedActions {
			out.SuggestedActions[i] = a.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the action
func (a SuggestedAction) Clone() SuggestedAction {
	out := a
	if a.TemplateID != nil {
		v := *a.TemplateID
		out.TemplateID = &v
	}
	out.TemplateVariables = cloneStringMap(a.TemplateVariables)
	return out
}

// CloneFeedback deep-copies a slice of items
func CloneFeedback(items []FeedbackItem) []FeedbackItem {
	if items == nil {
		return nil
	}
	out := make([]FeedbackItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to i
func IntPtr(i int) *int {
	return &i
}
