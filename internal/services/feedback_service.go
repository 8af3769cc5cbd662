package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"grovaapp/internal/backend"
	"grovaapp/internal/models"
	"grovaapp/internal/observability"
	"grovaapp/internal/triage"
	contextutils "grovaapp/internal/utils"

	"golang.org/x/sync/errgroup"
)

// RecentLimit is how many items the overview shows as recent activity
const RecentLimit = 5

// FeedbackService loads feedback from a backend and derives the inbox and
// overview views the dashboard renders.
type FeedbackService struct {
	logger  *observability.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewFeedbackService creates a new FeedbackService instance
func NewFeedbackService(logger *observability.Logger, metrics *observability.Metrics) *FeedbackService {
	if logger == nil {
		panic("NewFeedbackService: logger is nil")
	}
	return &FeedbackService{logger: logger, metrics: metrics, now: time.Now}
}

// InboxView is one status tab of a project's inbox
type InboxView struct {
	Project models.Project        `json:"project"`
	Status  models.FeedbackStatus `json:"status"`
	Count   int                   `json:"count"`
	Items   []triage.View         `json:"items"`
}

// OverviewView is the project landing page
type OverviewView struct {
	Project  models.Project                `json:"project"`
	Summary  triage.Summary                `json:"summary"`
	Insights []string                      `json:"insights"`
	Recent   []triage.View                 `json:"recent"`
	Counts   map[models.FeedbackStatus]int `json:"counts"`
}

// ResolveProject finds a project by id among the backend's projects
func (s *FeedbackService) ResolveProject(ctx context.Context, be backend.Backend, projectID string) (result0 models.Project, err error) {
	ctx, span := observability.TraceServiceFunction(ctx, "ResolveProject",
		observability.AttributeProjectID(projectID),
	)
	defer observability.FinishSpan(span, &err)

	if projectID == "" {
		return models.Project{}, contextutils.WrapError(contextutils.ErrMissingRequired, "project_id is required")
	}
	projects, err := be.ListProjects(ctx)
	if err != nil {
		return models.Project{}, err
	}
	for _, p := range projects {
		if p.ID == projectID {
			return p, nil
		}
	}
	return models.Project{}, contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "project %s not found", projectID)
}

// NewInbox returns local state for one status tab of a project
func (s *FeedbackService) NewInbox(be backend.Backend, projectID string, status models.FeedbackStatus) *Inbox {
	return &Inbox{backend: be, projectID: projectID, status: status}
}

// LoadAll fetches every status concurrently and merges them newest first.
// An item reported under more than one status is kept once.
func (s *FeedbackService) LoadAll(ctx context.Context, be backend.Backend, projectID string) (result0 []models.FeedbackItem, err error) {
	ctx, span := observability.TraceServiceFunction(ctx, "LoadAll",
		observability.AttributeProjectID(projectID),
		observability.AttributeBackend(be.Name()),
	)
	defer observability.FinishSpan(span, &err)

	lists := make([][]models.FeedbackItem, len(models.FeedbackStatuses))
	g, gctx := errgroup.WithContext(ctx)
	for i, status := range models.FeedbackStatuses {
		g.Go(func() error {
			items, err := be.ListFeedback(gctx, projectID, status)
			if err != nil {
				return contextutils.WrapErrorf(err, "failed to load %s feedback", status)
			}
			lists[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	merged := make([]models.FeedbackItem, 0)
	for _, list := range lists {
		for _, item := range list {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			merged = append(merged, item)
		}
	}
	SortNewestFirst(merged)

	s.logger.Debug(ctx, "Loaded feedback for every status", map[string]interface{}{
		"project_id": projectID,
		"count":      len(merged),
	})
	return merged, nil
}

// Derive computes display values for items and records score metrics
func (s *FeedbackService) Derive(ctx context.Context, items []models.FeedbackItem, mode models.Mode) []triage.View {
	views := triage.DeriveAll(items, mode, s.now())
	for _, v := range views {
		s.metrics.RecordDerivation(ctx, string(mode), v.EffectiveScore)
	}
	return views
}

// Inbox loads one status tab and derives its views
func (s *FeedbackService) Inbox(ctx context.Context, be backend.Backend, projectID string, status models.FeedbackStatus) (result0 InboxView, err error) {
	ctx, span := observability.TraceServiceFunction(ctx, "Inbox",
		observability.AttributeProjectID(projectID),
		observability.AttributeStatus(status),
	)
	defer observability.FinishSpan(span, &err)

	project, inbox, err := s.loadInbox(ctx, be, projectID, status)
	if err != nil {
		return InboxView{}, err
	}
	return s.inboxView(ctx, project, inbox), nil
}

// InboxOp is a status transition run through an Inbox, such as (*Inbox).Approve
type InboxOp func(*Inbox, context.Context, string) error

// Transition loads a status tab, runs op on feedbackID through it and returns
// the tab as it stands afterwards. A failed transition leaves nothing changed.
func (s *FeedbackService) Transition(ctx context.Context, be backend.Backend, projectID string, status models.FeedbackStatus, feedbackID string, op InboxOp) (result0 InboxView, err error) {
	ctx, span := observability.TraceServiceFunction(ctx, "Transition",
		observability.AttributeProjectID(projectID),
		observability.AttributeFeedbackID(feedbackID),
		observability.AttributeStatus(status),
	)
	defer observability.FinishSpan(span, &err)

	project, inbox, err := s.loadInbox(ctx, be, projectID, status)
	if err != nil {
		return InboxView{}, err
	}
	if err := op(inbox, ctx, feedbackID); err != nil {
		return InboxView{}, err
	}
	return s.inboxView(ctx, project, inbox), nil
}

func (s *FeedbackService) loadInbox(ctx context.Context, be backend.Backend, projectID string, status models.FeedbackStatus) (models.Project, *Inbox, error) {
	if status == "" {
		status = models.StatusPending
	}
	if !status.Valid() {
		return models.Project{}, nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unknown status %q", status)
	}
	project, err := s.ResolveProject(ctx, be, projectID)
	if err != nil {
		return models.Project{}, nil, err
	}
	inbox := s.NewInbox(be, projectID, status)
	if err := inbox.Load(ctx); err != nil {
		return models.Project{}, nil, err
	}
	return project, inbox, nil
}

func (s *FeedbackService) inboxView(ctx context.Context, project models.Project, inbox *Inbox) InboxView {
	items := inbox.Items()
	return InboxView{
		Project: project,
		Status:  inbox.status,
		Count:   len(items),
		Items:   s.Derive(ctx, items, project.Mode),
	}
}

// Overview builds the summary, insight lines and recent activity for a project
func (s *FeedbackService) Overview(ctx context.Context, be backend.Backend, projectID string) (result0 OverviewView, err error) {
	ctx, span := observability.TraceServiceFunction(ctx, "Overview",
		observability.AttributeProjectID(projectID),
	)
	defer observability.FinishSpan(span, &err)

	project, err := s.ResolveProject(ctx, be, projectID)
	if err != nil {
		return OverviewView{}, err
	}
	items, err := s.LoadAll(ctx, be, projectID)
	if err != nil {
		return OverviewView{}, err
	}

	counts := make(map[models.FeedbackStatus]int, len(models.FeedbackStatuses))
	for _, status := range models.FeedbackStatuses {
		counts[status] = 0
	}
	for _, item := range items {
		counts[item.Status]++
	}

	now := s.now()
	recent := items
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	insights := triage.BuildInsightLines(items, now)
	if insights == nil {
		insights = []string{}
	}

	return OverviewView{
		Project:  project,
		Summary:  triage.Summarize(items, now),
		Insights: insights,
		Recent:   s.Derive(ctx, recent, project.Mode),
		Counts:   counts,
	}, nil
}

// SortNewestFirst orders items by created_at descending. Unparseable
// timestamps sort last; ties keep their incoming order.
func SortNewestFirst(items []models.FeedbackItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, okI := contextutils.ParseTimestamp(items[i].CreatedAt)
		tj, okJ := contextutils.ParseTimestamp(items[j].CreatedAt)
		switch {
		case okI && okJ:
			return ti.After(tj)
		case okI:
			return true
		default:
			return false
		}
	})
}

// Inbox is the local state of one inbox tab. Approve and Deny remove the
// item once the backend accepts the transition; a failed call leaves the
// list untouched.
type Inbox struct {
	backend   backend.Backend
	projectID string
	status    models.FeedbackStatus

	mu    sync.RWMutex
	items []models.FeedbackItem
}

// Load replaces the local items with the backend's, newest first
func (i *Inbox) Load(ctx context.Context) error {
	items, err := i.backend.ListFeedback(ctx, i.projectID, i.status)
	if err != nil {
		return err
	}
	items = models.CloneFeedback(items)
	if items == nil {
		items = []models.FeedbackItem{}
	}
	SortNewestFirst(items)

	i.mu.Lock()
	i.items = items
	i.mu.Unlock()
	return nil
}

// Items returns a copy of the current items
func (i *Inbox) Items() []models.FeedbackItem {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := models.CloneFeedback(i.items)
	if out == nil {
		out = []models.FeedbackItem{}
	}
	return out
}

// Approve approves id upstream and drops it from the tab
func (i *Inbox) Approve(ctx context.Context, id string) error {
	return i.transition(ctx, id, i.backend.Approve)
}

// Deny denies id upstream and drops it from the tab
func (i *Inbox) Deny(ctx context.Context, id string) error {
	return i.transition(ctx, id, i.backend.Deny)
}

// Restore moves id back to pending and drops it from the tab
func (i *Inbox) Restore(ctx context.Context, id string) error {
	return i.transition(ctx, id, i.backend.Restore)
}

func (i *Inbox) transition(ctx context.Context, id string, call func(context.Context, string) error) error {
	if err := call(ctx, id); err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	kept := i.items[:0]
	for _, item := range i.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	i.items = kept
	return nil
}
