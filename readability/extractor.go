// Package readability isolates the main content of recipe pages with
// go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/cookbook"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements cookbook.ContentExtractor at compile time.
var _ cookbook.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-readability.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page's article content. The excerpt stands in for the
// description when the page has no meta description.
func (e *Extractor) Extract(rawHTML string) (*cookbook.PageContent, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, cookbook.Errorf(cookbook.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &cookbook.PageContent{
		Title:       article.Title,
		Description: strings.TrimSpace(article.Excerpt),
		Image:       article.Image,
		ContentHTML: article.Content,
	}, nil
}
