// Package openai extracts recipes from fetched page content with OpenAI chat
// models. It serves the HTML_FALLBACK strategy.
package openai

import (
	"context"
	"fmt"

	"github.com/fwojciec/cookbook"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Model defaults.
const (
	DefaultModel       = "gpt-4.1-mini-2025-04-14"
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 8000
)

// Ensure Extractor implements cookbook.HTMLExtractor at compile time.
var _ cookbook.HTMLExtractor = (*Extractor)(nil)

// Extractor implements cookbook.HTMLExtractor using the OpenAI chat
// completions API.
type Extractor struct {
	client      *openai.Client
	model       openai.ChatModel
	provider    cookbook.Provider
	temperature float64
	maxTokens   int64
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithModel sets the model name and the provider it is reported as.
func WithModel(model string, provider cookbook.Provider) Option {
	return func(e *Extractor) {
		e.model = openai.ChatModel(model)
		e.provider = provider
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(e *Extractor) {
		e.temperature = t
	}
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int64) Option {
	return func(e *Extractor) {
		e.maxTokens = n
	}
}

// NewClient creates an OpenAI client. A non-empty baseURL overrides the API
// endpoint. Retries are left to the extraction fallback.
func NewClient(apiKey, baseURL string) *openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &client
}

// NewExtractor creates a new Extractor.
func NewExtractor(client *openai.Client, opts ...Option) *Extractor {
	e := &Extractor{
		client:      client,
		model:       DefaultModel,
		provider:    cookbook.ProviderOpenAIMain,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractHTML sends the page content to the model and parses the draft.
func (e *Extractor) ExtractHTML(ctx context.Context, pageURL, content string) (*cookbook.ModelResult, error) {
	if content == "" {
		return nil, cookbook.Errorf(cookbook.EINVALID, "page content required")
	}

	prompt := cookbook.HTMLExtractionPrompt(content)
	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(cookbook.ExtractionSystemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(e.temperature),
		MaxCompletionTokens: openai.Int(e.maxTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("openai %s: %w", e.model, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai %s: %w: no choices", e.model, cookbook.ErrMalformedResponse)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return nil, fmt.Errorf("openai %s: response stopped by content_filter", e.model)
	}
	text := choice.Message.Content

	usage := cookbook.TokenUsage{
		PromptTokens:   int(resp.Usage.PromptTokens),
		ResponseTokens: int(resp.Usage.CompletionTokens),
	}
	if usage.PromptTokens == 0 {
		usage = cookbook.TokenUsage{
			PromptTokens:   cookbook.EstimateTokens(prompt),
			ResponseTokens: cookbook.EstimateTokens(text),
			Estimated:      true,
		}
	}

	res := &cookbook.ModelResult{Provider: e.provider, Usage: usage}
	draft, err := cookbook.ParseRecipeDraft(text)
	if err != nil {
		return res, err
	}
	res.Draft = draft
	return res, nil
}
