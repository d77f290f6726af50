// Package trafilatura isolates the main content of recipe pages with
// go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/cookbook"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements cookbook.ContentExtractor at compile time.
var _ cookbook.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura. Reader comments are dropped, tables are
// kept.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback:  true,
			ExcludeComments: true,
			IncludeImages:   false,
		},
	}
}

// Extract returns the page's main content and its title, description and
// lead image.
func (e *Extractor) Extract(rawHTML string) (*cookbook.PageContent, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, cookbook.Errorf(cookbook.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, err
	}

	page := &cookbook.PageContent{
		Title:       result.Metadata.Title,
		Description: result.Metadata.Description,
		Image:       result.Metadata.Image,
	}
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, err
		}
		page.ContentHTML = buf.String()
	}
	return page, nil
}
