package models

// ActionStatus is the delivery lifecycle of a sent action.
// It only moves forward and is advanced by the mail provider's webhooks upstream.
type ActionStatus string

// Action statuses in lifecycle order
const (
	ActionDraft     ActionStatus = "draft"
	ActionQueued    ActionStatus = "queued"
	ActionSent      ActionStatus = "sent"
	ActionDelivered ActionStatus = "delivered"
	ActionOpened    ActionStatus = "opened"
	ActionClicked   ActionStatus = "clicked"
	ActionBounced   ActionStatus = "bounced"
	ActionFailed    ActionStatus = "failed"
)

// Known action types
const (
	ActionTypeRecoveryEmail     = "recovery_email"
	ActionTypeEscalationAlert   = "escalation_alert"
	ActionTypeDirectReply       = "direct_reply"
	ActionTypeThankYouEmail     = "thank_you_email"
	ActionTypeFollowUpReminder  = "follow_up_reminder"
	ActionTypeInternalFlag      = "internal_flag"
	ActionTypeOperationalChange = "operational_change"
)

// SentAction is a record of a dispatched action
type SentAction struct {
	ID                string            `json:"id"`
	FeedbackID        string            `json:"feedback_id"`
	ProjectID         string            `json:"project_id"`
	ActionType        string            `json:"action_type"`
	TemplateID        string            `json:"template_id"`
	TemplateVariables map[string]string `json:"template_variables"`
	EmailTo           *string           `json:"email_to"`
	EmailSubject      string            `json:"email_subject"`
	EmailBodyHTML     string            `json:"email_body_html"`
	Status            ActionStatus      `json:"status"`
	ResendID          *string           `json:"resend_id"`
	SentAt            *string           `json:"sent_at"`
	OpenedAt          *string           `json:"opened_at"`
	ClickedAt         *string           `json:"clicked_at"`
	CreatedAt         string            `json:"created_at"`
}

// SendActionRequest is the body of POST /actions/send and /actions/draft
type SendActionRequest struct {
	FeedbackID        string            `json:"feedback_id" binding:"required" validate:"required"`
	ActionType        string            `json:"action_type" binding:"required" validate:"required"`
	TemplateID        string            `json:"template_id" validate:"required"`
	TemplateVariables map[string]string `json:"template_variables"`
	EmailTo           string            `json:"email_to,omitempty" validate:"omitempty,email"`
	Subject           string            `json:"subject"`
	Body              string            `json:"body"`

	// RequiresCustomerEmail mirrors the suggested action; such sends need EmailTo
	RequiresCustomerEmail bool `json:"requires_customer_email,omitempty"`
}

// SendActionResponse acknowledges a send or draft
type SendActionResponse struct {
	Success  bool         `json:"success"`
	ActionID *string      `json:"action_id"`
	ResendID *string      `json:"resend_id"`
	Status   ActionStatus `json:"status"`
	Warning  string       `json:"warning,omitempty"`
}

// AckResponse is the acknowledgement of a feedback transition
type AckResponse struct {
	Success bool `json:"success"`
}
