package page

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate(t *testing.T) {
	g := &Templator{}

	html, err := g.Template(context.Background(), Params{
		Image:   "data:image/png;base64,iVBORw0KGgo=",
		Prompt:  `a cat <script>alert("x")</script>`,
		Created: "2026-10-18T00:00:00Z",
	})
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, `src="data:image/png;base64,iVBORw0KGgo="`)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "2026-10-18T00:00:00Z")
}

func TestTemplateRelativeImage(t *testing.T) {
	g := &Templator{}

	html, err := g.Template(context.Background(), Params{Image: "20261018.png", Prompt: "a dog"})
	require.NoError(t, err)
	assert.Contains(t, string(html), `src="20261018.png"`)
	assert.NotContains(t, string(html), "<small>")
}

func TestTemplateUnsafeImage(t *testing.T) {
	g := &Templator{}

	for _, src := range []string{"javascript:alert(1)", "data:text/html;base64,PHNjcmlwdD4="} {
		html, err := g.Template(context.Background(), Params{Image: src, Prompt: "a dog"})
		require.NoError(t, err)
		assert.Contains(t, string(html), `src="#ZgotmplZ"`, src)
	}
}
