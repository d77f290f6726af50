package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/cookbook"
)

var (
	_ cookbook.URLExtractor    = (*LoggingURLExtractor)(nil)
	_ cookbook.HTMLExtractor   = (*LoggingHTMLExtractor)(nil)
	_ cookbook.RecipeExtractor = (*LoggingRecipeExtractor)(nil)
)

// LoggingURLExtractor wraps a URLExtractor with logging of model calls.
type LoggingURLExtractor struct {
	next   cookbook.URLExtractor
	logger *slog.Logger
}

// NewLoggingURLExtractor creates a new LoggingURLExtractor.
func NewLoggingURLExtractor(next cookbook.URLExtractor, logger *slog.Logger) *LoggingURLExtractor {
	return &LoggingURLExtractor{next: next, logger: logger}
}

// ExtractURL logs the model call and delegates to the wrapped extractor.
func (e *LoggingURLExtractor) ExtractURL(ctx context.Context, pageURL string) (res *cookbook.ModelResult, err error) {
	defer func(begin time.Time) {
		e.logger.Info("model extract",
			append(resultAttrs(res),
				"strategy", cookbook.StrategyURLDirect,
				"url", pageURL,
				"duration", time.Since(begin),
				"err", err,
			)...,
		)
	}(time.Now())
	return e.next.ExtractURL(ctx, pageURL)
}

// LoggingHTMLExtractor wraps an HTMLExtractor with logging of model calls.
type LoggingHTMLExtractor struct {
	next   cookbook.HTMLExtractor
	logger *slog.Logger
}

// NewLoggingHTMLExtractor creates a new LoggingHTMLExtractor.
func NewLoggingHTMLExtractor(next cookbook.HTMLExtractor, logger *slog.Logger) *LoggingHTMLExtractor {
	return &LoggingHTMLExtractor{next: next, logger: logger}
}

// ExtractHTML logs the model call and delegates to the wrapped extractor.
func (e *LoggingHTMLExtractor) ExtractHTML(ctx context.Context, pageURL, content string) (res *cookbook.ModelResult, err error) {
	defer func(begin time.Time) {
		e.logger.Info("model extract",
			append(resultAttrs(res),
				"strategy", cookbook.StrategyHTMLFallback,
				"url", pageURL,
				"chars", len(content),
				"duration", time.Since(begin),
				"err", err,
			)...,
		)
	}(time.Now())
	return e.next.ExtractHTML(ctx, pageURL, content)
}

func resultAttrs(res *cookbook.ModelResult) []any {
	if res == nil {
		return nil
	}
	return []any{
		"provider", res.Provider,
		"tokens", res.Usage.Total(),
	}
}

// LoggingRecipeExtractor wraps a RecipeExtractor with logging of the
// outcome of each extraction.
type LoggingRecipeExtractor struct {
	next   cookbook.RecipeExtractor
	logger *slog.Logger
}

// NewLoggingRecipeExtractor creates a new LoggingRecipeExtractor.
func NewLoggingRecipeExtractor(next cookbook.RecipeExtractor, logger *slog.Logger) *LoggingRecipeExtractor {
	return &LoggingRecipeExtractor{next: next, logger: logger}
}

// Extract logs the extraction outcome and delegates to the wrapped extractor.
func (e *LoggingRecipeExtractor) Extract(ctx context.Context, pageURL string, opts cookbook.ExtractOptions) (ex *cookbook.Extraction, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", pageURL,
			"guest", opts.UserID == "",
			"duration", time.Since(begin),
		}
		if ex != nil {
			attrs = append(attrs,
				"strategy", ex.Strategy,
				"provider", ex.Provider,
				"fallback", ex.FallbackUsed,
				"completeness", ex.CompletenessScore,
			)
		}
		if err != nil {
			e.logger.Warn("extract recipe", append(attrs, "err", err)...)
			return
		}
		e.logger.Info("extract recipe", attrs...)
	}(time.Now())
	return e.next.Extract(ctx, pageURL, opts)
}
