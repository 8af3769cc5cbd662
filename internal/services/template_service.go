package services

import (
	"context"

	"grovaapp/internal/models"
	"grovaapp/internal/observability"
	"grovaapp/internal/services/mailer"
	"grovaapp/internal/templates"
	contextutils "grovaapp/internal/utils"
)

// TemplatePreview is a rendered template in every form the dashboard shows
type TemplatePreview struct {
	templates.Rendered
	HTML      string `json:"html"`
	PlainText string `json:"plain_text"`
}

// TestSendRequest asks for a rendered template to be mailed to the operator
type TestSendRequest struct {
	To        string            `json:"to" binding:"required" validate:"required,email"`
	Variables map[string]string `json:"variables"`
}

// TemplateService previews templates and mails test copies
type TemplateService struct {
	mailer  mailer.Mailer
	limiter SendLimiter
	logger  *observability.Logger
}

// NewTemplateService creates a new TemplateService instance. Test sends draw
// on limiter's budget; a nil limiter leaves them unlimited.
func NewTemplateService(m mailer.Mailer, limiter SendLimiter, logger *observability.Logger) *TemplateService {
	return &TemplateService{mailer: m, limiter: limiter, logger: logger}
}

// List returns the template catalog
func (s *TemplateService) List() []templates.Template {
	return templates.All()
}

// Preview renders a template with vars, branded with the project's settings
func (s *TemplateService) Preview(ctx context.Context, templateID string, vars map[string]string, settings models.ActionSettings) (result0 TemplatePreview, err error) {
	_, span := observability.TraceServiceFunction(ctx, "PreviewTemplate",
		observability.AttributeTemplateID(templateID),
	)
	defer observability.FinishSpan(span, &err)

	tpl, ok := templates.Get(templateID)
	if !ok {
		return TemplatePreview{}, contextutils.WrapErrorf(contextutils.ErrTemplateNotFound, "unknown template %q", templateID)
	}

	rendered := templates.RenderEmail(tpl, withSender(vars, settings))
	html, err := templates.RenderHTML(rendered, BrandingFor(settings))
	if err != nil {
		return TemplatePreview{}, err
	}
	if rendered.Missing == nil {
		rendered.Missing = []string{}
	}
	return TemplatePreview{
		Rendered:  rendered,
		HTML:      html,
		PlainText: rendered.PlainText(),
	}, nil
}

// TestSend mails a rendered preview to the operator. Subjects are marked so
// a test copy is never mistaken for a customer send.
func (s *TemplateService) TestSend(ctx context.Context, templateID string, req TestSendRequest, settings models.ActionSettings) (err error) {
	ctx, span := observability.TraceServiceFunction(ctx, "TestSendTemplate",
		observability.AttributeTemplateID(templateID),
	)
	defer observability.FinishSpan(span, &err)

	if err := contextutils.ValidateStruct(req); err != nil {
		return err
	}
	if s.mailer == nil || !s.mailer.IsEnabled() {
		return contextutils.WrapError(contextutils.ErrServiceUnavailable, "email sending is not configured")
	}

	preview, err := s.Preview(ctx, templateID, req.Variables, settings)
	if err != nil {
		return err
	}
	if s.limiter != nil {
		if err := s.limiter.AllowSend(ctx, "test_send"); err != nil {
			return err
		}
	}

	msg := mailer.Message{
		To:      req.To,
		Subject: mailer.TestSubject(preview.Subject),
		HTML:    preview.HTML,
		Text:    preview.Body,
	}
	if settings.ReplyToEmail != nil {
		msg.ReplyTo = *settings.ReplyToEmail
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return err
	}

	s.logger.Info(ctx, "Template test email sent", map[string]interface{}{
		"template_id": templateID,
	})
	return nil
}

// BrandingFor maps action settings onto the email layout branding
func BrandingFor(settings models.ActionSettings) templates.Branding {
	b := templates.Branding{
		BrandColor: settings.BrandColor,
		SenderName: settings.SenderName(),
	}
	if settings.LogoURL != nil {
		b.LogoURL = *settings.LogoURL
	}
	return b
}

func withSender(vars map[string]string, settings models.ActionSettings) map[string]string {
	out := make(map[string]string, len(vars)+1)
	for k, v := range vars {
		out[k] = v
	}
	if _, ok := out["sender_name"]; !ok {
		out["sender_name"] = settings.SenderName()
	}
	return out
}
