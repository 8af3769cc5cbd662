package templates

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	contextutils "grovaapp/internal/utils"
)

const defaultBrandColor = "#00c87a"

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Branding controls the HTML wrapper around a rendered email
type Branding struct {
	BrandColor   string
	LogoURL      string
	SenderName   string
	BusinessName string
	// Internal selects the muted team-facing variant instead of the customer one
	Internal bool
}

type layoutData struct {
	Subject      string
	Paragraphs   [][]string
	Accent       template.CSS
	LogoURL      string
	SenderName   string
	BusinessName string
	Internal     bool
}

var emailLayout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="margin:0;padding:0;background:#f4f4f2;font-family:-apple-system,Segoe UI,Helvetica,Arial,sans-serif;">
<table role="presentation" width="100%" cellpadding="0" cellspacing="0"><tr><td align="center" style="padding:24px;">
<table role="presentation" width="560" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:6px;overflow:hidden;">
{{- if .Internal}}
<tr><td class="variant-internal" style="background:#1f2328;color:#ffffff;padding:12px 24px;font-family:monospace;font-size:12px;letter-spacing:0.08em;text-transform:uppercase;">Internal alert</td></tr>
{{- else}}
<tr><td class="variant-customer" style="border-top:4px solid {{.Accent}};padding:24px 24px 0;">
{{- if .LogoURL}}<img src="{{.LogoURL}}" alt="{{.BusinessName}}" style="max-height:40px;">{{else if .BusinessName}}<strong style="color:{{.Accent}};font-size:18px;">{{.BusinessName}}</strong>{{end}}
</td></tr>
{{- end}}
<tr><td style="padding:24px;color:#1f2328;font-size:15px;line-height:1.6;">
{{- range .Paragraphs}}
<p style="margin:0 0 16px;">{{range $i, $line := .}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
{{- end}}
</td></tr>
<tr><td style="padding:0 24px 24px;color:#6e7781;font-size:12px;">
{{- if .Internal}}Sent by grova on behalf of {{.SenderName}}{{else}}Sent by {{.SenderName}}{{if .BusinessName}} at {{.BusinessName}}{{end}}{{end}}
</td></tr>
</table>
</td></tr></table>
</body>
</html>
`))

// RenderHTML wraps a rendered email in the branded layout. Text is escaped;
// blank lines separate paragraphs and single newlines become line breaks.
func RenderHTML(r Rendered, b Branding) (string, error) {
	accent := b.BrandColor
	if !hexColorPattern.MatchString(accent) {
		accent = defaultBrandColor
	}
	sender := strings.TrimSpace(b.SenderName)
	if sender == "" {
		sender = "The team"
	}

	data := layoutData{
		Subject:      r.Subject,
		Paragraphs:   paragraphs(r.Body),
		Accent:       template.CSS(accent),
		LogoURL:      b.LogoURL,
		SenderName:   sender,
		BusinessName: b.BusinessName,
		Internal:     b.Internal || r.Internal,
	}

	var buf bytes.Buffer
	if err := emailLayout.Execute(&buf, data); err != nil {
		return "", contextutils.WrapError(err, "failed to render email layout")
	}
	return buf.String(), nil
}

func paragraphs(body string) [][]string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	var out [][]string
	for _, block := range strings.Split(body, "\n\n") {
		block = strings.Trim(block, "\n")
		if strings.TrimSpace(block) == "" {
			continue
		}
		out = append(out, strings.Split(block, "\n"))
	}
	return out
}
