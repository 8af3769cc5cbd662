package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTML_CustomerVariant(t *testing.T) {
	r := Rendered{Subject: "Hi", Body: "Hello <b>Jane</b>,\n\nLine one\nLine two"}
	html, err := RenderHTML(r, Branding{BrandColor: "#ff6600", SenderName: "Demo Owner", BusinessName: "Corner Bistro"})
	require.NoError(t, err)

	assert.Contains(t, html, "variant-customer")
	assert.NotContains(t, html, "variant-internal")
	assert.Contains(t, html, "#ff6600")
	assert.Contains(t, html, "Hello &lt;b&gt;Jane&lt;/b&gt;,")
	assert.Contains(t, html, "Line one<br>Line two")
	assert.Contains(t, html, "Sent by Demo Owner at Corner Bistro")
}

func TestRenderHTML_InternalVariant(t *testing.T) {
	tpl, _ := Get(EscalationInternal)
	r := RenderEmail(tpl, map[string]string{"severity": "Critical", "category": "Bug", "feedback_id": "dd1"})

	html, err := RenderHTML(r, Branding{})
	require.NoError(t, err)
	assert.Contains(t, html, "variant-internal")
	assert.Contains(t, html, "Internal alert")
	assert.Contains(t, html, "The team")
}

func TestRenderHTML_BadColorFallsBack(t *testing.T) {
	html, err := RenderHTML(Rendered{Body: "x"}, Branding{BrandColor: "red;background:url(evil)"})
	require.NoError(t, err)
	assert.Contains(t, html, defaultBrandColor)
	assert.NotContains(t, html, "evil")
}

func TestRenderHTML_Logo(t *testing.T) {
	html, err := RenderHTML(Rendered{Body: "x"}, Branding{LogoURL: "https://cdn.example.com/logo.png", BusinessName: "Bistro"})
	require.NoError(t, err)
	assert.Contains(t, html, `src="https://cdn.example.com/logo.png"`)
}
