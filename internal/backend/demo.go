package backend

import (
	"context"

	"grovaapp/internal/demo"
	"grovaapp/internal/models"
	contextutils "grovaapp/internal/utils"
)

// DemoBackend serves every call from the simulator. Transitions and sends are
// acknowledged without persisting anything.
type DemoBackend struct {
	sim *demo.Simulator
}

// NewDemoBackend wraps a simulator
func NewDemoBackend(sim *demo.Simulator) *DemoBackend {
	return &DemoBackend{sim: sim}
}

func (b *DemoBackend) Name() string { return NameDemo }

func (b *DemoBackend) ListProjects(context.Context) ([]models.Project, error) {
	return b.sim.Projects(), nil
}

func (b *DemoBackend) CreateProject(_ context.Context, req models.CreateProjectRequest) (models.Project, error) {
	return b.sim.CreateProject(req), nil
}

func (b *DemoBackend) ListFeedback(_ context.Context, projectID string, status models.FeedbackStatus) ([]models.FeedbackItem, error) {
	return b.sim.Feedback(projectID, status), nil
}

func (b *DemoBackend) Approve(context.Context, string) error { return nil }

func (b *DemoBackend) Deny(context.Context, string) error { return nil }

func (b *DemoBackend) Restore(context.Context, string) error { return nil }

func (b *DemoBackend) ListActions(_ context.Context, feedbackID string) ([]models.SentAction, error) {
	return b.sim.Actions(feedbackID), nil
}

func (b *DemoBackend) SendAction(context.Context, models.SendActionRequest) (models.SendActionResponse, error) {
	return b.sim.SendAction(false), nil
}

func (b *DemoBackend) DraftAction(context.Context, models.SendActionRequest) (models.SendActionResponse, error) {
	return b.sim.SendAction(true), nil
}

func (b *DemoBackend) GetActionSettings(_ context.Context, projectID string) (models.ActionSettings, error) {
	return b.sim.ActionSettings(projectID), nil
}

// PutActionSettings echoes the fixture; demo edits are not kept
func (b *DemoBackend) PutActionSettings(_ context.Context, projectID string, _ models.ActionSettings) (models.ActionSettings, error) {
	return b.sim.ActionSettings(projectID), nil
}

func (b *DemoBackend) BillingStatus(_ context.Context, projectID string) (models.BillingStatus, error) {
	return b.sim.BillingStatus(projectID), nil
}

func (b *DemoBackend) Checkout(context.Context, models.CheckoutRequest) (models.RedirectResponse, error) {
	return models.RedirectResponse{}, contextutils.ErrDemoUnsupported
}

func (b *DemoBackend) Portal(context.Context, models.PortalRequest) (models.RedirectResponse, error) {
	return models.RedirectResponse{}, contextutils.ErrDemoUnsupported
}
