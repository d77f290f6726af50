package cookbook

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// Strategy is the way a recipe is extracted from a page.
type Strategy string

// Strategy constants.
const (
	// StrategyURLDirect gives the model only the URL and lets it read the page.
	StrategyURLDirect Strategy = "URL_DIRECT"

	// StrategyHTMLFallback fetches and sanitizes the page before handing the
	// markup to the model.
	StrategyHTMLFallback Strategy = "HTML_FALLBACK"
)

// ParseStrategy parses a strategy name. Accepts the constant values and the
// lowercase "url-direct" and "html-fallback" aliases.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "url_direct", "url-direct":
		return StrategyURLDirect, nil
	case "html_fallback", "html-fallback":
		return StrategyHTMLFallback, nil
	}
	return "", Errorf(EINVALID, "unknown extraction strategy %q", s)
}

// KnownGoodDomains are recipe sites URL_DIRECT extraction handles reliably.
var KnownGoodDomains = []string{
	"allrecipes.com",
	"foodnetwork.com",
	"epicurious.com",
	"bonappetit.com",
	"seriouseats.com",
	"food.com",
	"delish.com",
	"tasteofhome.com",
	"simplyrecipes.com",
	"kitchn.com",
}

// IsKnownGoodDomain reports whether the URL's host belongs to a known-good
// recipe site.
func IsKnownGoodDomain(rawURL string) bool {
	host := DomainOf(rawURL)
	if host == "" {
		return false
	}
	for _, d := range KnownGoodDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// StrategyPolicy holds the inputs of the strategy decision.
type StrategyPolicy struct {
	// Forced pins the first strategy. A forced URL_DIRECT still falls back
	// once; a forced HTML_FALLBACK never tries URL_DIRECT.
	Forced Strategy

	// URLDirectEnabled is false when no URL-capable model is configured.
	URLDirectEnabled bool

	// KnownGoodOnly restricts URL_DIRECT to KnownGoodDomains.
	KnownGoodOnly bool
}

// ChooseStrategy returns the first strategy to try for a URL.
func ChooseStrategy(rawURL string, policy StrategyPolicy) Strategy {
	if policy.Forced != "" {
		return policy.Forced
	}
	if !policy.URLDirectEnabled {
		return StrategyHTMLFallback
	}
	if policy.KnownGoodOnly && !IsKnownGoodDomain(rawURL) {
		return StrategyHTMLFallback
	}
	return StrategyURLDirect
}

// NextStrategy returns the strategy to try after current failed. There is
// at most one hop, from URL_DIRECT to HTML_FALLBACK.
func NextStrategy(current Strategy, policy StrategyPolicy) (Strategy, bool) {
	if policy.Forced == StrategyHTMLFallback {
		return "", false
	}
	if current == StrategyURLDirect {
		return StrategyHTMLFallback, true
	}
	return "", false
}

// FailureReason classifies why an extraction attempt failed.
type FailureReason string

// FailureReason constants.
const (
	FailureNetwork        FailureReason = "network"
	FailureTimeout        FailureReason = "timeout"
	FailureQuota          FailureReason = "quota"
	FailureContentPolicy  FailureReason = "content_policy"
	FailureSchemaMismatch FailureReason = "schema_mismatch"
	FailureNoRecipe       FailureReason = "no_recipe"
	FailureUnknown        FailureReason = "unknown"
)

// ErrIncompleteDraft is returned when a draft lacks a title, ingredients or steps.
var ErrIncompleteDraft = errors.New("incomplete recipe")

// ErrContentTooShort is returned when a fetched page has too little content
// left after sanitizing.
var ErrContentTooShort = errors.New("page content too short")

// ClassifyFailure maps an attempt error onto a failure reason.
func ClassifyFailure(err error) FailureReason {
	if err == nil {
		return ""
	}

	var xe *ExtractionError
	if errors.As(err, &xe) {
		return xe.Reason
	}

	switch {
	case errors.Is(err, ErrNoRecipe), errors.Is(err, ErrContentTooShort):
		return FailureNoRecipe
	case errors.Is(err, ErrIncompleteDraft), errors.Is(err, ErrMalformedResponse):
		return FailureSchemaMismatch
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return FailureTimeout
	case containsAny(msg, "quota", "rate limit", "429", "resource_exhausted", "insufficient_quota"):
		return FailureQuota
	case containsAny(msg, "safety", "content policy", "content_policy", "blocked", "content_filter"):
		return FailureContentPolicy
	case containsAny(msg, "connection refused", "no such host", "connection reset", "network", "eof", "tls", "http "):
		return FailureNetwork
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	var urlErr *url.Error
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.As(err, &urlErr) {
		return FailureNetwork
	}

	return FailureUnknown
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ExtractionError is returned when every strategy tried for a URL failed.
// Reason is the classification of the last error.
type ExtractionError struct {
	URL      string
	Strategy Strategy
	Reason   FailureReason
	Err      error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s via %s: %s: %v", e.URL, e.Strategy, e.Reason, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExtractionError) Unwrap() error { return e.Err }

// Code maps the failure reason onto an application error code.
func (e *ExtractionError) Code() string {
	if e.Reason == FailureNoRecipe {
		return ENOTFOUND
	}
	return EUPSTREAM
}

// Message returns a user-facing description of the failure.
func (e *ExtractionError) Message() string {
	switch e.Reason {
	case FailureNoRecipe:
		return "No recipe was found at the provided URL"
	case FailureTimeout:
		return "Recipe extraction timed out. Please try again"
	case FailureQuota:
		return "AI service quota exceeded. Please try again later"
	case FailureContentPolicy:
		return "The page content was rejected by the AI provider"
	case FailureSchemaMismatch:
		return "Could not read a complete recipe from the page"
	case FailureNetwork:
		return "Could not reach the recipe page"
	}
	return "Recipe extraction failed"
}

// TokenUsage counts tokens of one model call.
type TokenUsage struct {
	PromptTokens   int  `json:"promptTokens"`
	ResponseTokens int  `json:"responseTokens"`
	Estimated      bool `json:"estimated"`
}

// Total returns prompt plus response tokens.
func (u TokenUsage) Total() int {
	return u.PromptTokens + u.ResponseTokens
}

// EstimateTokens approximates a token count as a quarter of the characters.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// ModelResult is what a model-backed extractor returns. When the model
// answered but the answer could not be parsed, extractors return a result
// with a nil Draft and the usage of the call alongside the error.
type ModelResult struct {
	Draft    *RecipeDraft
	Provider Provider
	Usage    TokenUsage
}

// URLExtractor extracts a recipe by handing the page URL to a model.
type URLExtractor interface {
	ExtractURL(ctx context.Context, pageURL string) (*ModelResult, error)
}

// HTMLExtractor extracts a recipe from already fetched page content.
type HTMLExtractor interface {
	ExtractHTML(ctx context.Context, pageURL, content string) (*ModelResult, error)
}

// Sanitizer strips markup that carries no recipe content.
type Sanitizer interface {
	// Sanitize returns cleaned HTML. It never returns an empty string for
	// non-empty input.
	Sanitize(html string) string

	// HasRecipeStructuredData reports whether the page embeds JSON-LD
	// Recipe data.
	HasRecipeStructuredData(html string) bool

	// IsolateRecipeCard returns the outer HTML of a known recipe card
	// widget, if the page has one.
	IsolateRecipeCard(html string) (string, bool)
}

// ExtractOptions tunes a single extraction.
type ExtractOptions struct {
	// Strategy forces the first strategy. See StrategyPolicy.Forced.
	Strategy Strategy

	// URLProvider and HTMLProvider select a configured model for each
	// strategy. Empty uses the default extractor.
	URLProvider  Provider
	HTMLProvider Provider

	// UserID is recorded on the extraction metric. Empty for guests.
	UserID string
}

// Extraction is a successful extraction.
type Extraction struct {
	Draft              *RecipeDraft  `json:"recipe"`
	Strategy           Strategy      `json:"strategy"`
	Provider           Provider      `json:"provider"`
	FallbackUsed       bool          `json:"fallbackUsed"`
	FallbackReason     FailureReason `json:"fallbackReason,omitempty"`
	Usage              TokenUsage    `json:"usage"`
	EstimatedCost      float64       `json:"estimatedCost"`
	CompletenessScore  float64       `json:"completenessScore"`
	CategoryConfidence float64       `json:"categoryConfidence"`
	Duration           time.Duration `json:"duration"`

	// MetricID identifies the recorded metric. Empty when recording failed.
	MetricID string `json:"metricId,omitempty"`
}

// RecipeExtractor extracts recipe drafts from URLs.
type RecipeExtractor interface {
	// Extract returns a complete draft or an *ExtractionError.
	Extract(ctx context.Context, pageURL string, opts ExtractOptions) (*Extraction, error)
}
