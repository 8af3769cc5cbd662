package services

import (
	"context"
	"strings"

	"grovaapp/internal/backend"
	"grovaapp/internal/config"
	"grovaapp/internal/models"
	"grovaapp/internal/observability"
	"grovaapp/internal/templates"
	contextutils "grovaapp/internal/utils"

	"golang.org/x/time/rate"
)

// ActionEdits are the operator's changes in the send dialog. Empty fields
// keep the rendered template text.
type ActionEdits struct {
	EmailTo string `json:"email_to,omitempty" validate:"omitempty,email"`
	Subject string `json:"subject,omitempty" validate:"max=300"`
	Body    string `json:"body,omitempty" validate:"max=20000"`
	Draft   bool   `json:"draft,omitempty"`
}

// ActionService prepares and dispatches suggested actions
type ActionService struct {
	logger  *observability.Logger
	metrics *observability.Metrics
	limiter *rate.Limiter
}

// NewActionService creates an ActionService. Live sends are limited to
// cfg.SendsPerMinute with bursts of cfg.Burst; drafts are never limited.
func NewActionService(cfg config.ActionsConfig, logger *observability.Logger, metrics *observability.Metrics) *ActionService {
	perMinute := cfg.SendsPerMinute
	if perMinute <= 0 {
		perMinute = config.DefaultSendsPerMinute
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = config.DefaultSendBurst
	}
	return &ActionService{
		logger:  logger,
		metrics: metrics,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst),
	}
}

// SendLimiter gates outbound email. Action sends and template test sends
// share one budget.
type SendLimiter interface {
	AllowSend(ctx context.Context, kind string) error
}

// AllowSend takes one token from the send budget, or returns ErrRateLimit
func (s *ActionService) AllowSend(ctx context.Context, kind string) error {
	if s.limiter.Allow() {
		return nil
	}
	s.logger.Warn(ctx, "Outbound send rate limited", map[string]interface{}{"kind": kind})
	return contextutils.WrapError(contextutils.ErrRateLimit, "too many emails sent, try again shortly")
}

// FromSuggestion builds the send request for the suggested action at index
// of item. Internal templates go to the escalation address; everything else
// goes to the customer.
func (s *ActionService) FromSuggestion(item models.FeedbackItem, index int, settings models.ActionSettings) (models.SendActionRequest, error) {
	if item.Triage == nil || index < 0 || index >= len(item.Triage.SuggestedActions) {
		return models.SendActionRequest{}, contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "feedback %s has no suggested action %d", item.ID, index)
	}
	action := item.Triage.SuggestedActions[index]
	if !action.HasTemplate() {
		return models.SendActionRequest{}, contextutils.WrapErrorf(contextutils.ErrTemplateNotFound, "action %s has no email template", action.Type)
	}
	tpl, ok := templates.Get(*action.TemplateID)
	if !ok {
		return models.SendActionRequest{}, contextutils.WrapErrorf(contextutils.ErrTemplateNotFound, "unknown template %q", *action.TemplateID)
	}

	vars := make(map[string]string, len(action.TemplateVariables)+1)
	for k, v := range action.TemplateVariables {
		vars[k] = v
	}
	if _, set := vars["sender_name"]; !set {
		vars["sender_name"] = settings.SenderName()
	}

	req := models.SendActionRequest{
		FeedbackID:            item.ID,
		ActionType:            action.Type,
		TemplateID:            tpl.ID,
		TemplateVariables:     vars,
		RequiresCustomerEmail: action.RequiresCustomerEmail,
	}
	switch {
	case tpl.Internal && settings.EscalationEmail != nil:
		req.EmailTo = *settings.EscalationEmail
	case !tpl.Internal:
		req.EmailTo = item.Email
	}
	return req, nil
}

// ApplyEdits overlays the operator's edits on a prepared request
func ApplyEdits(req models.SendActionRequest, edits ActionEdits) models.SendActionRequest {
	if edits.EmailTo != "" {
		req.EmailTo = edits.EmailTo
	}
	if strings.TrimSpace(edits.Subject) != "" {
		req.Subject = edits.Subject
	}
	if strings.TrimSpace(edits.Body) != "" {
		req.Body = edits.Body
	}
	return req
}

// Prepare checks a request and fills subject and body from the template
// when the operator left them blank.
func (s *ActionService) Prepare(req models.SendActionRequest) (models.SendActionRequest, error) {
	if req.TemplateID == "" {
		return req, contextutils.WrapErrorf(contextutils.ErrTemplateNotFound, "action %s has no email template", req.ActionType)
	}
	tpl, ok := templates.Get(req.TemplateID)
	if !ok {
		return req, contextutils.WrapErrorf(contextutils.ErrTemplateNotFound, "unknown template %q", req.TemplateID)
	}
	req.EmailTo = strings.TrimSpace(req.EmailTo)
	if req.RequiresCustomerEmail && req.EmailTo == "" {
		return req, contextutils.WrapErrorf(contextutils.ErrCustomerEmailRequired, "action %s needs the customer's email address", req.ActionType)
	}
	if tpl.Internal && req.EmailTo == "" {
		return req, contextutils.WrapError(contextutils.ErrMissingRequired, "escalation email not configured")
	}
	if err := contextutils.ValidateStruct(req); err != nil {
		return req, err
	}

	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Body) == "" {
		rendered := templates.RenderEmail(tpl, req.TemplateVariables)
		if strings.TrimSpace(req.Subject) == "" {
			req.Subject = rendered.Subject
		}
		if strings.TrimSpace(req.Body) == "" {
			req.Body = rendered.Body
		}
	}
	return req, nil
}

// Dispatch prepares req and sends it, or saves it as a draft
func (s *ActionService) Dispatch(ctx context.Context, be backend.Backend, req models.SendActionRequest, draft bool) (result0 models.SendActionResponse, err error) {
	ctx, span := observability.TraceServiceFunction(ctx, "DispatchAction",
		observability.AttributeFeedbackID(req.FeedbackID),
		observability.AttributeActionType(req.ActionType),
		observability.AttributeTemplateID(req.TemplateID),
		observability.AttributeBackend(be.Name()),
	)
	defer observability.FinishSpan(span, &err)

	req, err = s.Prepare(req)
	if err != nil {
		return models.SendActionResponse{}, err
	}

	if draft {
		resp, err := be.DraftAction(ctx, req)
		if err != nil {
			return models.SendActionResponse{}, err
		}
		s.metrics.RecordActionSent(ctx, req.ActionType, string(resp.Status))
		return resp, nil
	}

	if err := s.AllowSend(ctx, "action:"+req.ActionType); err != nil {
		return models.SendActionResponse{}, err
	}

	resp, err := be.SendAction(ctx, req)
	if err != nil {
		s.metrics.RecordActionSent(ctx, req.ActionType, string(models.ActionFailed))
		return models.SendActionResponse{}, err
	}
	s.metrics.RecordActionSent(ctx, req.ActionType, string(resp.Status))

	s.logger.Info(ctx, "Action dispatched", map[string]interface{}{
		"feedback_id": req.FeedbackID,
		"action_type": req.ActionType,
		"template_id": req.TemplateID,
		"status":      resp.Status,
	})
	return resp, nil
}

// SendSuggested finds the feedback item, builds the request for its suggested
// action at index, applies the operator's edits and dispatches it.
func (s *ActionService) SendSuggested(ctx context.Context, be backend.Backend, projectID, feedbackID string, index int, edits ActionEdits) (result0 models.SendActionResponse, err error) {
	ctx, span := observability.TraceServiceFunction(ctx, "SendSuggestedAction",
		observability.AttributeProjectID(projectID),
		observability.AttributeFeedbackID(feedbackID),
	)
	defer observability.FinishSpan(span, &err)

	if err := contextutils.ValidateStruct(edits); err != nil {
		return models.SendActionResponse{}, err
	}

	item, err := findFeedback(ctx, be, projectID, feedbackID)
	if err != nil {
		return models.SendActionResponse{}, err
	}
	settings, err := be.GetActionSettings(ctx, projectID)
	if err != nil {
		return models.SendActionResponse{}, err
	}

	req, err := s.FromSuggestion(item, index, settings)
	if err != nil {
		return models.SendActionResponse{}, err
	}
	return s.Dispatch(ctx, be, ApplyEdits(req, edits), edits.Draft)
}

func findFeedback(ctx context.Context, be backend.Backend, projectID, feedbackID string) (models.FeedbackItem, error) {
	items, err := be.ListFeedback(ctx, projectID, "")
	if err != nil {
		return models.FeedbackItem{}, err
	}
	for _, item := range items {
		if item.ID == feedbackID {
			return item, nil
		}
	}
	return models.FeedbackItem{}, contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "feedback %s not found", feedbackID)
}
