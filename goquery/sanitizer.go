// Package goquery implements HTML sanitizing for recipe extraction using
// goquery.
package goquery

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/cookbook"
	"golang.org/x/net/html"
)

// Ensure Sanitizer implements cookbook.Sanitizer at compile time.
var _ cookbook.Sanitizer = (*Sanitizer)(nil)

// noiseSelectors match elements that never carry recipe content.
var noiseSelectors = strings.Join([]string{
	"script", "style", "noscript", "iframe", "template",
	"nav", "footer", "header", "aside",
	`[role="banner"]`, `[role="contentinfo"]`, `[role="navigation"]`, `[role="complementary"]`,
	".ad", ".ads", ".advertisement", ".social-share", ".comments", ".newsletter",
	"#comments", "#social", "#sidebar", "#ads",
}, ", ")

// recipeCardSelectors match the recipe blocks rendered by common recipe
// plugins and schema.org microdata, most specific first.
var recipeCardSelectors = []string{
	".wprm-recipe-container",
	".tasty-recipes",
	".mv-create-card",
	".easyrecipe",
	`[itemtype*="schema.org/Recipe"]`,
	".recipe-card",
	"article.recipe",
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// Sanitizer strips scripts, styles, navigation, landmarks, ads and comments
// from recipe pages.
type Sanitizer struct {
	keepStructuredData bool
}

// SanitizerOption configures a Sanitizer.
type SanitizerOption func(*Sanitizer)

// WithoutStructuredData drops JSON-LD recipe data along with other scripts.
func WithoutStructuredData() SanitizerOption {
	return func(s *Sanitizer) {
		s.keepStructuredData = false
	}
}

// NewSanitizer creates a new Sanitizer. JSON-LD recipe data is kept by default.
func NewSanitizer(opts ...SanitizerOption) *Sanitizer {
	s := &Sanitizer{keepStructuredData: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sanitize returns the cleaned body of the page with whitespace collapsed.
// JSON-LD recipe blocks are moved in front of the body. When nothing is left
// after cleaning, the input is returned unchanged.
func (s *Sanitizer) Sanitize(rawHTML string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return rawHTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	var structured []string
	if s.keepStructuredData {
		structured = recipeJSONLD(doc)
	}

	doc.Find(noiseSelectors).Remove()
	removeComments(doc)

	body, err := doc.Find("body").Html()
	if err != nil {
		return rawHTML
	}
	body = collapseWhitespace(body)
	if body == "" {
		return rawHTML
	}

	if len(structured) == 0 {
		return body
	}

	var sb strings.Builder
	for _, data := range structured {
		sb.WriteString(`<script type="application/ld+json">`)
		sb.WriteString(collapseWhitespace(data))
		sb.WriteString(`</script>`)
	}
	sb.WriteString(body)
	return sb.String()
}

// HasRecipeStructuredData reports whether the page embeds a JSON-LD Recipe.
func (s *Sanitizer) HasRecipeStructuredData(rawHTML string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return false
	}
	return len(recipeJSONLD(doc)) > 0
}

// IsolateRecipeCard returns the outer HTML of the first recipe card found
// on the page.
func (s *Sanitizer) IsolateRecipeCard(rawHTML string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", false
	}

	for _, selector := range recipeCardSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		card, err := goquery.OuterHtml(sel)
		if err != nil {
			continue
		}
		if card = collapseWhitespace(card); card != "" {
			return card, true
		}
	}
	return "", false
}

// recipeJSONLD returns the text of every JSON-LD block describing a Recipe.
func recipeJSONLD(doc *goquery.Document) []string {
	var blocks []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		var v any
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return
		}
		if containsRecipeType(v) {
			blocks = append(blocks, text)
		}
	})
	return blocks
}

// containsRecipeType walks decoded JSON-LD looking for "@type": "Recipe",
// including arrays of types and @graph containers.
func containsRecipeType(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		switch typ := t["@type"].(type) {
		case string:
			if typ == "Recipe" {
				return true
			}
		case []any:
			for _, item := range typ {
				if s, ok := item.(string); ok && s == "Recipe" {
					return true
				}
			}
		}
		if graph, ok := t["@graph"]; ok {
			return containsRecipeType(graph)
		}
	case []any:
		for _, item := range t {
			if containsRecipeType(item) {
				return true
			}
		}
	}
	return false
}

func removeComments(doc *goquery.Document) {
	doc.Find("*").Contents().FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return sel.Get(0).Type == html.CommentNode
	}).Remove()
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}
