package mock

import (
	"context"

	"github.com/fwojciec/cookbook"
)

var _ cookbook.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor is a mock implementation of cookbook.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(html string) (*cookbook.PageContent, error)
}

func (e *ContentExtractor) Extract(html string) (*cookbook.PageContent, error) {
	return e.ExtractFn(html)
}

var _ cookbook.URLExtractor = (*URLExtractor)(nil)

// URLExtractor is a mock implementation of cookbook.URLExtractor.
type URLExtractor struct {
	ExtractURLFn func(ctx context.Context, pageURL string) (*cookbook.ModelResult, error)
}

func (e *URLExtractor) ExtractURL(ctx context.Context, pageURL string) (*cookbook.ModelResult, error) {
	return e.ExtractURLFn(ctx, pageURL)
}

var _ cookbook.HTMLExtractor = (*HTMLExtractor)(nil)

// HTMLExtractor is a mock implementation of cookbook.HTMLExtractor.
type HTMLExtractor struct {
	ExtractHTMLFn func(ctx context.Context, pageURL, content string) (*cookbook.ModelResult, error)
}

func (e *HTMLExtractor) ExtractHTML(ctx context.Context, pageURL, content string) (*cookbook.ModelResult, error) {
	return e.ExtractHTMLFn(ctx, pageURL, content)
}

var _ cookbook.RecipeExtractor = (*RecipeExtractor)(nil)

// RecipeExtractor is a mock implementation of cookbook.RecipeExtractor.
type RecipeExtractor struct {
	ExtractFn func(ctx context.Context, pageURL string, opts cookbook.ExtractOptions) (*cookbook.Extraction, error)
}

func (e *RecipeExtractor) Extract(ctx context.Context, pageURL string, opts cookbook.ExtractOptions) (*cookbook.Extraction, error) {
	return e.ExtractFn(ctx, pageURL, opts)
}

var _ cookbook.Sanitizer = (*Sanitizer)(nil)

// Sanitizer is a mock implementation of cookbook.Sanitizer.
type Sanitizer struct {
	SanitizeFn                func(html string) string
	HasRecipeStructuredDataFn func(html string) bool
	IsolateRecipeCardFn       func(html string) (string, bool)
}

func (s *Sanitizer) Sanitize(html string) string {
	return s.SanitizeFn(html)
}

func (s *Sanitizer) HasRecipeStructuredData(html string) bool {
	return s.HasRecipeStructuredDataFn(html)
}

func (s *Sanitizer) IsolateRecipeCard(html string) (string, bool) {
	return s.IsolateRecipeCardFn(html)
}
