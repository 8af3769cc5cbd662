// Package backend is the single seam between the dashboard and the feedback
// API. A session talks either to the fixture-backed demo or to the real API
// over HTTP; callers never branch on which.
package backend

import (
	"context"

	"grovaapp/internal/models"
)

// Backend names
const (
	NameDemo = "demo"
	NameHTTP = "http"
)

// Backend is every upstream capability the dashboard uses
type Backend interface {
	Name() string

	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, req models.CreateProjectRequest) (models.Project, error)

	// ListFeedback returns a project's items; an empty status means all of them
	ListFeedback(ctx context.Context, projectID string, status models.FeedbackStatus) ([]models.FeedbackItem, error)
	Approve(ctx context.Context, feedbackID string) error
	Deny(ctx context.Context, feedbackID string) error
	Restore(ctx context.Context, feedbackID string) error

	ListActions(ctx context.Context, feedbackID string) ([]models.SentAction, error)
	SendAction(ctx context.Context, req models.SendActionRequest) (models.SendActionResponse, error)
	DraftAction(ctx context.Context, req models.SendActionRequest) (models.SendActionResponse, error)

	GetActionSettings(ctx context.Context, projectID string) (models.ActionSettings, error)
	PutActionSettings(ctx context.Context, projectID string, settings models.ActionSettings) (models.ActionSettings, error)

	BillingStatus(ctx context.Context, projectID string) (models.BillingStatus, error)
	Checkout(ctx context.Context, req models.CheckoutRequest) (models.RedirectResponse, error)
	Portal(ctx context.Context, req models.PortalRequest) (models.RedirectResponse, error)
}

// Selector picks the backend for a session. The choice is made once from the
// session's demo flag; Forced pins every session to the demo.
type Selector struct {
	demo   Backend
	live   Backend
	forced bool
}

// NewSelector builds a selector. live may be nil when no upstream is
// configured, in which case every session is served by the demo. A nil demo
// disables demo mode and every session goes to live.
func NewSelector(demo, live Backend, forced bool) *Selector {
	if demo == nil {
		return &Selector{live: live}
	}
	return &Selector{demo: demo, live: live, forced: forced || live == nil}
}

// For returns the demo backend when the session is in demo mode
func (s *Selector) For(demo bool) Backend {
	if (demo || s.forced) && s.demo != nil {
		return s.demo
	}
	return s.live
}

// Forced reports whether every session is served from fixtures
func (s *Selector) Forced() bool {
	return s.forced
}
