// Package extract orchestrates recipe extraction. It picks a strategy for a
// URL, runs it under a timeout, falls back once when it fails and records an
// extraction metric for every call.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/cookbook"
)

// Defaults used when the corresponding Orchestrator field is zero.
const (
	DefaultTimeout         = 45 * time.Second
	DefaultMaxContentChars = 100000
	DefaultMinContentChars = 100
)

// Confidence assigned to a category the model filled in itself.
const modelCategoryConfidence = 0.9

// Ensure Orchestrator implements cookbook.RecipeExtractor.
var _ cookbook.RecipeExtractor = (*Orchestrator)(nil)

// Orchestrator extracts recipes using URL_DIRECT and HTML_FALLBACK strategies.
// URLExtractor may be nil, which disables URL_DIRECT. ContentExtractor,
// Converter, Suggester, Metrics and RateLimiter are optional.
type Orchestrator struct {
	URLExtractor     cookbook.URLExtractor
	HTMLExtractor    cookbook.HTMLExtractor
	Fetcher          cookbook.Fetcher
	Sanitizer        cookbook.Sanitizer
	ContentExtractor cookbook.ContentExtractor
	Converter        cookbook.Converter
	Suggester        cookbook.Suggester
	Metrics          cookbook.MetricService
	RateLimiter      cookbook.DomainLimiter
	Logger           *slog.Logger

	// URLExtractors and HTMLExtractors are the extractors a request can
	// select by provider.
	URLExtractors  map[cookbook.Provider]cookbook.URLExtractor
	HTMLExtractors map[cookbook.Provider]cookbook.HTMLExtractor

	// KnownGoodOnly restricts URL_DIRECT to known-good recipe domains.
	KnownGoodOnly bool

	Timeout         time.Duration
	MaxContentChars int
	MinContentChars int
	RetryDelays     []time.Duration
}

// models are the extractors used for one Extract call.
type models struct {
	url  cookbook.URLExtractor
	html cookbook.HTMLExtractor
}

// attempt holds the measurements of one strategy attempt.
type attempt struct {
	result        *cookbook.ModelResult
	fetchDuration time.Duration
	aiDuration    time.Duration
	htmlSize      int
	cleanedSize   int
	structured    bool
}

// Extract runs the strategy chosen for pageURL and, unless the strategy was
// forced, falls back to HTML_FALLBACK once when URL_DIRECT fails.
func (o *Orchestrator) Extract(ctx context.Context, pageURL string, opts cookbook.ExtractOptions) (*cookbook.Extraction, error) {
	start := time.Now()

	pageURL = strings.TrimSpace(pageURL)
	if !isHTTPURL(pageURL) {
		return nil, cookbook.Errorf(cookbook.EINVALID, "invalid recipe URL %q", pageURL)
	}

	m, err := o.models(opts)
	if err != nil {
		return nil, err
	}

	policy := cookbook.StrategyPolicy{
		Forced:           opts.Strategy,
		URLDirectEnabled: m.url != nil,
		KnownGoodOnly:    o.KnownGoodOnly,
	}
	strategy := cookbook.ChooseStrategy(pageURL, policy)
	if strategy == cookbook.StrategyURLDirect && m.url == nil {
		return nil, cookbook.Errorf(cookbook.EINVALID, "URL_DIRECT extraction is not configured")
	}

	metric := &cookbook.ExtractionMetric{
		UserID:          opts.UserID,
		RecipeURL:       pageURL,
		Domain:          cookbook.DomainOf(pageURL),
		PrimaryStrategy: strategy,
	}

	var (
		a       *attempt
		lastErr error
	)
	for {
		a, lastErr = o.attempt(ctx, m, strategy, pageURL)
		o.measure(metric, strategy, a)
		if lastErr == nil {
			break
		}

		next, ok := cookbook.NextStrategy(strategy, policy)
		if !ok || ctx.Err() != nil {
			break
		}
		metric.FallbackUsed = true
		metric.FallbackReason = cookbook.ClassifyFailure(lastErr)
		strategy = next
	}

	if lastErr != nil {
		reason := cookbook.ClassifyFailure(lastErr)
		metric.FailureReason = reason
		metric.TotalDuration = time.Since(start)
		o.record(ctx, metric)
		return nil, &cookbook.ExtractionError{
			URL:      pageURL,
			Strategy: strategy,
			Reason:   reason,
			Err:      lastErr,
		}
	}

	validationStart := time.Now()
	draft := a.result.Draft
	draft.Image = cookbook.ResolveImageURL(draft.Image, pageURL)
	confidence := o.fillCategory(ctx, draft)
	score, missing := cookbook.CompletenessScore(draft)

	metric.ValidationDuration = time.Since(validationStart)
	metric.Success = true
	metric.WasOptimal = !metric.FallbackUsed
	metric.MissingFields = missing
	metric.CompletenessScore = score
	metric.CategoryConfidence = confidence
	metric.TotalDuration = time.Since(start)
	o.record(ctx, metric)

	usage := cookbook.TokenUsage{
		PromptTokens:   metric.PromptTokens,
		ResponseTokens: metric.ResponseTokens,
		Estimated:      a.result.Usage.Estimated,
	}
	return &cookbook.Extraction{
		Draft:              draft,
		Strategy:           strategy,
		Provider:           a.result.Provider,
		FallbackUsed:       metric.FallbackUsed,
		FallbackReason:     metric.FallbackReason,
		Usage:              usage,
		EstimatedCost:      metric.EstimatedCost,
		CompletenessScore:  score,
		CategoryConfidence: confidence,
		Duration:           metric.TotalDuration,
		MetricID:           metric.ID,
	}, nil
}

// attempt runs one strategy under the per-attempt timeout and checks that
// the draft is complete.
func (o *Orchestrator) attempt(ctx context.Context, m models, strategy cookbook.Strategy, pageURL string) (*attempt, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout())
	defer cancel()

	var (
		a   *attempt
		err error
	)
	switch strategy {
	case cookbook.StrategyURLDirect:
		a, err = o.urlDirect(ctx, m.url, pageURL)
	case cookbook.StrategyHTMLFallback:
		a, err = o.htmlFallback(ctx, m.html, pageURL)
	default:
		return &attempt{}, cookbook.Errorf(cookbook.EINVALID, "unknown extraction strategy %q", strategy)
	}
	if err != nil {
		return a, err
	}

	a.result.Draft.Normalize()
	if missing := a.result.Draft.MissingRequired(); len(missing) > 0 {
		return a, fmt.Errorf("%w: missing %s", cookbook.ErrIncompleteDraft, strings.Join(missing, ", "))
	}
	return a, nil
}

func (o *Orchestrator) urlDirect(ctx context.Context, ext cookbook.URLExtractor, pageURL string) (*attempt, error) {
	a := &attempt{}
	aiStart := time.Now()
	res, err := ext.ExtractURL(ctx, pageURL)
	a.aiDuration = time.Since(aiStart)
	a.result = res
	if err != nil {
		return a, err
	}
	if res == nil || res.Draft == nil {
		return a, cookbook.ErrNoRecipe
	}
	return a, nil
}

func (o *Orchestrator) htmlFallback(ctx context.Context, ext cookbook.HTMLExtractor, pageURL string) (*attempt, error) {
	a := &attempt{}

	fetchStart := time.Now()
	if o.RateLimiter != nil {
		if err := o.RateLimiter.Wait(ctx, cookbook.DomainOf(pageURL)); err != nil {
			a.fetchDuration = time.Since(fetchStart)
			return a, err
		}
	}
	html, err := FetchWithRetryDelays(ctx, pageURL, o.Fetcher.Fetch, o.RetryDelays)
	a.fetchDuration = time.Since(fetchStart)
	if err != nil {
		return a, fmt.Errorf("fetch: %w", err)
	}
	a.htmlSize = len(html)
	a.structured = o.Sanitizer.HasRecipeStructuredData(html)

	var page *cookbook.PageContent
	if o.ContentExtractor != nil {
		if p, err := o.ContentExtractor.Extract(html); err == nil {
			page = p
		}
	}

	content := o.prepare(html, page)
	a.cleanedSize = len(content)
	if len(strings.TrimSpace(content)) < o.minContentChars() {
		return a, cookbook.ErrContentTooShort
	}

	aiStart := time.Now()
	res, err := ext.ExtractHTML(ctx, pageURL, content)
	a.aiDuration = time.Since(aiStart)
	a.result = res
	if err != nil {
		return a, err
	}
	if res == nil || res.Draft == nil {
		return a, cookbook.ErrNoRecipe
	}
	fillFromPage(res.Draft, page)
	return a, nil
}

// fillFromPage copies page metadata into draft fields the model left empty.
func fillFromPage(d *cookbook.RecipeDraft, page *cookbook.PageContent) {
	if page == nil {
		return
	}
	if strings.TrimSpace(d.Description) == "" {
		d.Description = strings.TrimSpace(page.Description)
	}
	if (d.Image == nil || strings.TrimSpace(*d.Image) == "") && page.Image != "" {
		img := page.Image
		d.Image = &img
	}
}

// prepare sanitizes the page and shrinks it to the content cap. Oversized
// pages are narrowed to the recipe card or main content, then converted to
// markdown, then truncated.
func (o *Orchestrator) prepare(html string, page *cookbook.PageContent) string {
	limit := o.maxContentChars()
	content := o.Sanitizer.Sanitize(html)
	if len(content) <= limit {
		return content
	}

	if card, ok := o.Sanitizer.IsolateRecipeCard(html); ok && len(card) >= o.minContentChars() {
		content = o.Sanitizer.Sanitize(card)
	} else if page != nil && len(page.ContentHTML) >= o.minContentChars() {
		content = page.ContentHTML
	}

	if len(content) > limit && o.Converter != nil {
		if md, err := o.Converter.Convert(content); err == nil && md != "" {
			content = md
		}
	}

	if len(content) > limit {
		content = truncate(content, limit)
	}
	return content
}

// models resolves the extractors requested by opts.
func (o *Orchestrator) models(opts cookbook.ExtractOptions) (models, error) {
	m := models{url: o.URLExtractor, html: o.HTMLExtractor}
	if opts.URLProvider != "" {
		e, ok := o.URLExtractors[opts.URLProvider]
		if !ok {
			return m, cookbook.Errorf(cookbook.EINVALID, "AI provider %q is not configured for URL_DIRECT", opts.URLProvider)
		}
		m.url = e
	}
	if opts.HTMLProvider != "" {
		e, ok := o.HTMLExtractors[opts.HTMLProvider]
		if !ok {
			return m, cookbook.Errorf(cookbook.EINVALID, "AI provider %q is not configured for HTML_FALLBACK", opts.HTMLProvider)
		}
		m.html = e
	}
	return m, nil
}

// fillCategory replaces a missing category with the top suggestion or
// Uncategorized and returns the category confidence.
func (o *Orchestrator) fillCategory(ctx context.Context, draft *cookbook.RecipeDraft) float64 {
	if !cookbook.IsOrphanedCategory(draft.Category) {
		return modelCategoryConfidence
	}

	draft.Category = cookbook.Uncategorized
	if o.Suggester == nil {
		return 0
	}
	suggestions, err := o.Suggester.Suggest(ctx, cookbook.RecipeContent{
		Title:       draft.Title,
		Description: draft.Description,
		Ingredients: draft.Ingredients,
		Steps:       draft.Steps,
	}, cookbook.SuggestOptions{MaxSuggestions: 1})
	if err != nil || len(suggestions) == 0 {
		return 0
	}
	draft.Category = suggestions[0].Category
	return suggestions[0].Confidence
}

// measure copies the attempt's measurements onto the metric. Durations,
// tokens and cost add up across attempts; page sizes come from the last
// attempt that fetched the page.
func (o *Orchestrator) measure(m *cookbook.ExtractionMetric, strategy cookbook.Strategy, a *attempt) {
	m.FinalStrategy = strategy
	if a == nil {
		return
	}
	m.FetchDuration += a.fetchDuration
	m.AIDuration += a.aiDuration
	if a.htmlSize > 0 {
		m.HTMLContentSize = a.htmlSize
		m.CleanedContentSize = a.cleanedSize
		m.HasStructuredData = a.structured
	}
	if a.result != nil {
		m.AIProvider = a.result.Provider
		m.PromptTokens += a.result.Usage.PromptTokens
		m.ResponseTokens += a.result.Usage.ResponseTokens
		m.TotalTokens += a.result.Usage.Total()
		m.EstimatedCost += cookbook.EstimateCost(a.result.Provider, a.result.Usage)
	}
}

// record writes the metric. Failures are logged and leave m.ID empty.
func (o *Orchestrator) record(ctx context.Context, m *cookbook.ExtractionMetric) {
	if o.Metrics == nil {
		return
	}
	if err := o.Metrics.CreateMetric(context.WithoutCancel(ctx), m); err != nil {
		m.ID = ""
		o.logger().Warn("record extraction metric", "url", m.RecipeURL, "err", err)
	}
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (o *Orchestrator) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultTimeout
}

func (o *Orchestrator) maxContentChars() int {
	if o.MaxContentChars > 0 {
		return o.MaxContentChars
	}
	return DefaultMaxContentChars
}

func (o *Orchestrator) minContentChars() int {
	if o.MinContentChars > 0 {
		return o.MinContentChars
	}
	return DefaultMinContentChars
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
