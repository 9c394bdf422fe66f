package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	html, meta, err := NewParser().Render([]byte("---\ntitle: Terms\n---\n\n## Uploads\n\nBe nice.\n"))
	require.NoError(t, err)

	assert.Equal(t, "Terms", meta["title"])
	assert.Contains(t, string(html), `<h2 id="uploads">Uploads</h2>`)
	assert.Contains(t, string(html), "<p>Be nice.</p>")
	assert.NotContains(t, string(html), "title:")
}

func TestRenderWithoutFrontmatter(t *testing.T) {
	html, meta, err := NewParser().Render([]byte("plain"))
	require.NoError(t, err)

	assert.Empty(t, meta)
	assert.Contains(t, string(html), "<p>plain</p>")
}
