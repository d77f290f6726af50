package cookbook_test

import (
	"testing"

	"github.com/fwojciec/cookbook"
	"github.com/stretchr/testify/assert"
)

func TestURLExtractionPrompt(t *testing.T) {
	t.Parallel()

	prompt := cookbook.URLExtractionPrompt("https://example.com/pie")

	assert.Contains(t, prompt, "https://example.com/pie")
	assert.Contains(t, prompt, `"cleanupTime": "cleanup time"`)
	assert.Contains(t, prompt, "return an empty object: {}")
}

func TestHTMLExtractionPrompt(t *testing.T) {
	t.Parallel()

	prompt := cookbook.HTMLExtractionPrompt("<article>pie</article>")

	assert.Contains(t, prompt, `"ingredients": ["ingredient 1", "ingredient 2"]`)
	assert.Contains(t, prompt, "HTML content:\n<article>pie</article>")
}
