package demo

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"grovaapp/internal/models"

	"github.com/google/uuid"
)

// Simulator answers feedback API requests from read-only fixtures. It keeps
// no state between calls: approvals and sends are acknowledged, never
// recorded, and every result is a fresh copy the caller may modify.
type Simulator struct {
	now      func() time.Time
	projects []models.Project
	feedback map[string][]models.FeedbackItem
	settings models.ActionSettings
}

// Option configures a Simulator
type Option func(*Simulator)

// WithClock replaces time.Now, which anchors fixture ages and synthesized ids
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) {
		s.now = now
	}
}

// NewSimulator loads the embedded fixtures, stamping their timestamps
// relative to the clock's current time.
func NewSimulator(opts ...Option) (*Simulator, error) {
	s := &Simulator{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	feedback, err := loadFeedbackFixtures(s.now())
	if err != nil {
		return nil, err
	}
	s.feedback = feedback
	s.projects = demoProjects()
	s.settings = demoActionSettings()
	return s, nil
}

// Projects returns the two demo projects
func (s *Simulator) Projects() []models.Project {
	return append([]models.Project(nil), s.projects...)
}

// Project looks up a demo project by id
func (s *Simulator) Project(id string) (models.Project, bool) {
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return models.Project{}, false
}

// Feedback returns the project's fixture items, optionally filtered by
// status. An empty status returns all of them; unknown projects and
// unknown statuses yield an empty list.
func (s *Simulator) Feedback(projectID string, status models.FeedbackStatus) []models.FeedbackItem {
	out := []models.FeedbackItem{}
	for _, item := range s.feedback[projectID] {
		if status == "" || item.Status == status {
			out = append(out, item.Clone())
		}
	}
	return out
}

// Actions always returns an empty list: demo sessions have no sent history
func (s *Simulator) Actions(string) []models.SentAction {
	return []models.SentAction{}
}

// ActionSettings returns the settings fixture, whichever project is asked for
func (s *Simulator) ActionSettings(string) models.ActionSettings {
	return s.settings.Clone()
}

// Ack acknowledges a feedback transition
func (s *Simulator) Ack() models.AckResponse {
	return models.AckResponse{Success: true}
}

// CreateProject synthesizes a project with a timestamp-derived id
func (s *Simulator) CreateProject(req models.CreateProjectRequest) models.Project {
	now := s.now()
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "New Project"
	}
	mode := req.Mode
	if mode == "" {
		mode = models.ModeDeveloper
	}
	source := req.Source
	if source == "" {
		source = models.DefaultSource(name)
	}
	return models.Project{
		ID:        "demo-new-" + strconv.FormatInt(now.UnixMilli(), 10),
		Name:      name,
		Mode:      mode,
		APIKey:    "gv_demo_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		Source:    source,
		CreatedAt: now.UTC().Format(time.RFC3339),
	}
}

// SendAction acknowledges a send, or a draft when draft is true
func (s *Simulator) SendAction(draft bool) models.SendActionResponse {
	prefix, status := "demo-action-", models.ActionSent
	if draft {
		prefix, status = "demo-draft-", models.ActionDraft
	}
	id := prefix + strconv.FormatInt(s.now().UnixMilli(), 10)
	return models.SendActionResponse{
		Success:  true,
		ActionID: &id,
		ResendID: nil,
		Status:   status,
	}
}

// BillingStatus reports the free plan of the project's mode with fixture usage
func (s *Simulator) BillingStatus(projectID string) models.BillingStatus {
	mode := models.ModeDeveloper
	if p, ok := s.Project(projectID); ok {
		mode = p.Mode
	}
	return models.BillingStatus{
		PlanTier:   mode.FreeTier(),
		PlanStatus: "active",
		Usage: models.BillingUsage{
			FeedbackCount: len(s.feedback[projectID]),
			FeedbackLimit: models.DefaultFeedbackLimit,
		},
	}
}

// Get routes a GET path with query string to the matching fixture. Unknown
// paths return an empty list.
func (s *Simulator) Get(path string) interface{} {
	segs, query := splitPath(path)

	switch {
	case matches(segs, "projects"):
		return s.Projects()
	case matches(segs, "actions"):
		return s.Actions(query.Get("feedback_id"))
	case matches(segs, "projects", "*", "action-settings"):
		return s.ActionSettings(segs[1])
	case matches(segs, "feedback"):
		return s.Feedback(query.Get("project_id"), models.FeedbackStatus(query.Get("status")))
	case matches(segs, "billing", "status"):
		return s.BillingStatus(query.Get("projectId"))
	}
	return []interface{}{}
}

// Post routes a POST path. The body is only consulted for project creation.
// Unknown paths return an empty object.
func (s *Simulator) Post(path string, body interface{}) interface{} {
	segs, _ := splitPath(path)

	switch {
	case len(segs) == 3 && segs[0] == "feedback" && isTransition(segs[2]):
		return s.Ack()
	case matches(segs, "projects"):
		req, _ := body.(models.CreateProjectRequest)
		if p, ok := body.(*models.CreateProjectRequest); ok && p != nil {
			req = *p
		}
		return s.CreateProject(req)
	case matches(segs, "actions", "send"):
		return s.SendAction(false)
	case matches(segs, "actions", "draft"):
		return s.SendAction(true)
	}
	return map[string]interface{}{}
}

// Put routes a PUT path. Action settings echo the fixture; nothing persists.
func (s *Simulator) Put(path string, _ interface{}) interface{} {
	segs, _ := splitPath(path)
	if matches(segs, "projects", "*", "action-settings") {
		return s.ActionSettings(segs[1])
	}
	return map[string]interface{}{}
}

func isTransition(verb string) bool {
	switch verb {
	case "approve", "deny", "restore":
		return true
	}
	return false
}

func splitPath(path string) ([]string, url.Values) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, url.Values{}
	}
	trimmed := strings.Trim(u.Path, "/")
	if trimmed == "" {
		return nil, u.Query()
	}
	return strings.Split(trimmed, "/"), u.Query()
}

// matches compares path segments against a pattern where "*" matches any
// single non-empty segment.
func matches(segs []string, pattern ...string) bool {
	if len(segs) != len(pattern) {
		return false
	}
	for i, p := range pattern {
		if p == "*" {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if segs[i] != p {
			return false
		}
	}
	return true
}
