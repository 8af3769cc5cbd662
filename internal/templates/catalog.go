package templates

import (
	"sort"
)

// Template is an email template referenced by a suggested action
type Template struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Internal bool   `json:"internal"`
}

// Template ids
const (
	Recovery           = "recovery"
	FollowUp           = "follow_up"
	QuestionResponse   = "question_response"
	ThankYouReview     = "thank_you_review"
	BounceBack         = "bounce_back"
	EscalationInternal = "escalation_internal"
)

var catalog = map[string]Template{
	Recovery: {
		ID:      Recovery,
		Name:    "Recovery email",
		Subject: "We're sorry, {{customer_name}}",
		Body: "Hi {{customer_name}},\n\n" +
			"Thank you for telling us about {{issue_summary}}. That's not the experience we want you to have at {{business_name}}, and we're sorry.\n\n" +
			"We'd like to make it right with {{offer_type}} {{offer_value}}. Just mention this email on your next visit.\n\n" +
			"Warmly,\n{{sender_name}}",
	},
	FollowUp: {
		ID:      FollowUp,
		Name:    "Follow-up",
		Subject: "Following up from {{business_name}}",
		Body: "Hi {{customer_name}},\n\n" +
			"We wanted to follow up on {{issue_summary}}. Since we last spoke, {{resolution_detail}}.\n\n" +
			"We hope to see you again soon and would love to hear how your next visit goes.\n\n" +
			"Best,\n{{sender_name}}",
	},
	QuestionResponse: {
		ID:      QuestionResponse,
		Name:    "Question response",
		Subject: "Re: your question about {{topic}}",
		Body: "Hi {{customer_name}},\n\n" +
			"Thanks for reaching out to {{business_name}} about {{topic}}.\n\n" +
			"{{answer}}\n\n" +
			"Best,\n{{sender_name}}",
	},
	ThankYouReview: {
		ID:      ThankYouReview,
		Name:    "Thank you + review request",
		Subject: "Thank you from {{business_name}}!",
		Body: "Hi {{customer_name}},\n\n" +
			"Thank you so much for your kind words. We're thrilled {{positive_detail}}.\n\n" +
			"If you have a moment, a review on {{review_platform}} would mean the world to us: {{review_url}}\n\n" +
			"See you soon,\n{{sender_name}}",
	},
	BounceBack: {
		ID:      BounceBack,
		Name:    "Bounce-back offer",
		Subject: "A little something from {{business_name}}",
		Body: "Hi {{customer_name}},\n\n" +
			"Thanks for sharing your feedback with us. As a thank you, here's {{offer_type}} {{offer_value}} on your next visit, valid for {{offer_expiry_days}} days.\n\n" +
			"Cheers,\n{{sender_name}}",
	},
	EscalationInternal: {
		ID:       EscalationInternal,
		Name:     "Internal escalation",
		Subject:  "[{{severity}}] {{category}} escalation: {{feedback_id}}",
		Internal: true,
		Body: "A feedback item was escalated for immediate attention.\n\n" +
			"Severity: {{severity}}\nCategory: {{category}}\nFeedback: {{feedback_id}}\n\n" +
			"Customer said:\n\"{{customer_message}}\"\n\n" +
			"Recommended action:\n{{recommended_action}}",
	},
}

// Get returns the template with the given id
func Get(id string) (Template, bool) {
	t, ok := catalog[id]
	return t, ok
}

// All returns every template sorted by id
func All() []Template {
	out := make([]Template, 0, len(catalog))
	for _, t := range catalog {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Rendered is a template with its placeholders substituted
type Rendered struct {
	TemplateID string   `json:"template_id"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	Internal   bool     `json:"internal"`
	Missing    []string `json:"missing"`
}

// RenderEmail renders subject and body and reports any placeholders left unfilled
func RenderEmail(t Template, vars map[string]string) Rendered {
	missing := Missing(t.Subject+"\n"+t.Body, vars)
	return Rendered{
		TemplateID: t.ID,
		Subject:    Render(t.Subject, vars),
		Body:       Render(t.Body, vars),
		Internal:   t.Internal,
		Missing:    missing,
	}
}

// PlainText is the copy-to-clipboard form of a rendered email
func (r Rendered) PlainText() string {
	return "Subject: " + r.Subject + "\n\n" + r.Body
}
