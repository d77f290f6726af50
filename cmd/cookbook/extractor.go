package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/cookbook"
	"github.com/fwojciec/cookbook/anthropic"
	"github.com/fwojciec/cookbook/extract"
	"github.com/fwojciec/cookbook/gemini"
	"github.com/fwojciec/cookbook/goquery"
	"github.com/fwojciec/cookbook/htmltomarkdown"
	cookbookhttp "github.com/fwojciec/cookbook/http"
	"github.com/fwojciec/cookbook/openai"
	"github.com/fwojciec/cookbook/readability"
	"github.com/fwojciec/cookbook/rod"
	cookbookslog "github.com/fwojciec/cookbook/slog"
	"github.com/fwojciec/cookbook/trafilatura"
	"google.golang.org/genai"
)

// tokenizerModel is the newest model the local genai tokenizer supports.
const tokenizerModel = "gemini-2.5-flash"

// newExtractor wires the extraction orchestrator from the AI configuration.
// Every configured model is registered under its provider name so requests
// can select it. The returned function releases the page fetcher.
func newExtractor(ctx context.Context, cfg AIConfig, metrics cookbook.MetricService, suggester cookbook.Suggester, logger *slog.Logger) (cookbook.RecipeExtractor, func() error, error) {
	urlExtractors := make(map[cookbook.Provider]cookbook.URLExtractor)
	htmlExtractors := make(map[cookbook.Provider]cookbook.HTMLExtractor)

	if cfg.GeminiAPIKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		var opts []gemini.Option
		if tc, err := gemini.NewTokenCounter(tokenizerModel); err == nil {
			opts = append(opts, gemini.WithTokenCounter(tc))
		} else {
			logger.Warn("token counter unavailable, using estimates", "err", err)
		}
		for provider, model := range map[cookbook.Provider]string{
			cookbook.ProviderGeminiMain:  cfg.GeminiModel,
			cookbook.ProviderGeminiPro:   cfg.GeminiProModel,
			cookbook.ProviderGeminiFlash: cfg.GeminiFlashModel,
		} {
			e := gemini.NewExtractor(client, append([]gemini.Option{gemini.WithModel(model, provider)}, opts...)...)
			urlExtractors[provider] = cookbookslog.NewLoggingURLExtractor(e, logger)
			htmlExtractors[provider] = cookbookslog.NewLoggingHTMLExtractor(e, logger)
		}
	}

	if cfg.OpenAIAPIKey != "" {
		client := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
		for provider, model := range map[cookbook.Provider]string{
			cookbook.ProviderOpenAIMain: cfg.OpenAIModel,
			cookbook.ProviderOpenAIMini: cfg.OpenAIMiniModel,
		} {
			e := openai.NewExtractor(client, openai.WithModel(model, provider))
			htmlExtractors[provider] = cookbookslog.NewLoggingHTMLExtractor(e, logger)
		}
	}

	if cfg.AnthropicAPIKey != "" {
		e := anthropic.NewExtractor(
			anthropic.NewClient(cfg.AnthropicAPIKey, ""),
			anthropic.WithModel(cfg.AnthropicModel, cookbook.ProviderAnthropicHaiku),
		)
		htmlExtractors[cookbook.ProviderAnthropicHaiku] = cookbookslog.NewLoggingHTMLExtractor(e, logger)
	}

	htmlExtractor, err := defaultHTMLExtractor(cfg.Fallback, htmlExtractors)
	if err != nil {
		return nil, nil, err
	}

	var fetcher cookbook.Fetcher
	if cfg.Render {
		f, err := rod.NewFetcher(rod.WithUserAgent(cookbookhttp.DefaultUserAgent))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
		}
		fetcher = f
	} else {
		fetcher = cookbookhttp.NewFetcher()
	}
	fetcher = cookbookslog.NewLoggingFetcher(fetcher, logger)

	var content cookbook.ContentExtractor = trafilatura.NewExtractor()
	if cfg.Content == "readability" {
		content = readability.NewExtractor()
	}

	limits := []extract.LimiterOption{extract.WithBurst(cfg.DomainBurst)}
	for domain, rps := range cfg.DomainRates {
		limits = append(limits, extract.WithDomainRate(domain, rps))
	}

	o := &extract.Orchestrator{
		URLExtractor:     urlExtractors[cookbook.ProviderGeminiMain],
		HTMLExtractor:    htmlExtractor,
		URLExtractors:    urlExtractors,
		HTMLExtractors:   htmlExtractors,
		Fetcher:          fetcher,
		Sanitizer:        goquery.NewSanitizer(),
		ContentExtractor: content,
		Converter:        htmltomarkdown.NewConverter(),
		Suggester:        suggester,
		Metrics:          metrics,
		RateLimiter:      extract.NewDomainLimiter(cfg.DomainRate, limits...),
		Logger:           logger,
		KnownGoodOnly:    cfg.KnownGoodOnly,
		Timeout:          cfg.Timeout,
	}

	return cookbookslog.NewLoggingRecipeExtractor(o, logger), fetcher.Close, nil
}

// defaultHTMLExtractor picks the HTML_FALLBACK extractor named by fallback.
func defaultHTMLExtractor(fallback string, extractors map[cookbook.Provider]cookbook.HTMLExtractor) (cookbook.HTMLExtractor, error) {
	var provider cookbook.Provider
	var hint string
	switch fallback {
	case "anthropic":
		provider, hint = cookbook.ProviderAnthropicHaiku, "ANTHROPIC_API_KEY not set. Get a key at https://console.anthropic.com/"
	case "gemini":
		provider, hint = cookbook.ProviderGeminiMain, "GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey"
	default:
		provider, hint = cookbook.ProviderOpenAIMain, "OPENAI_API_KEY not set. Get a key at https://platform.openai.com/api-keys"
	}
	e, ok := extractors[provider]
	if !ok {
		return nil, cookbook.Errorf(cookbook.EINVALID, "%s", hint)
	}
	return e, nil
}
