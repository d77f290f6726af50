// Package anthropic extracts recipes from fetched page content with Claude
// models. It is an alternative HTML_FALLBACK provider.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/fwojciec/cookbook"
)

// Model defaults.
const (
	DefaultModel       = "claude-haiku-4-5"
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 8000
)

// Ensure Extractor implements cookbook.HTMLExtractor at compile time.
var _ cookbook.HTMLExtractor = (*Extractor)(nil)

// Extractor implements cookbook.HTMLExtractor using the Anthropic messages API.
type Extractor struct {
	client      *anthropic.Client
	model       anthropic.Model
	provider    cookbook.Provider
	temperature float64
	maxTokens   int64
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithModel sets the model name and the provider it is reported as.
func WithModel(model string, provider cookbook.Provider) Option {
	return func(e *Extractor) {
		e.model = anthropic.Model(model)
		e.provider = provider
	}
}

// WithMaxTokens caps the response length.
func WithMaxTokens(n int64) Option {
	return func(e *Extractor) {
		e.maxTokens = n
	}
}

// NewClient creates an Anthropic client. A non-empty baseURL overrides the
// API endpoint.
func NewClient(apiKey, baseURL string) *anthropic.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	return &client
}

// NewExtractor creates a new Extractor.
func NewExtractor(client *anthropic.Client, opts ...Option) *Extractor {
	e := &Extractor{
		client:      client,
		model:       DefaultModel,
		provider:    cookbook.ProviderAnthropicHaiku,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractHTML sends the page content to Claude and parses the draft.
func (e *Extractor) ExtractHTML(ctx context.Context, pageURL, content string) (*cookbook.ModelResult, error) {
	if content == "" {
		return nil, cookbook.Errorf(cookbook.EINVALID, "page content required")
	}

	resp, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       e.model,
		MaxTokens:   e.maxTokens,
		Temperature: anthropic.Float(e.temperature),
		System: []anthropic.TextBlockParam{
			{Text: cookbook.ExtractionSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(cookbook.HTMLExtractionPrompt(content))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic %s: %w", e.model, err)
	}
	if resp.StopReason == anthropic.StopReasonRefusal {
		return nil, fmt.Errorf("anthropic %s: response blocked by content policy", e.model)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	res := &cookbook.ModelResult{
		Provider: e.provider,
		Usage: cookbook.TokenUsage{
			PromptTokens:   int(resp.Usage.InputTokens),
			ResponseTokens: int(resp.Usage.OutputTokens),
		},
	}
	draft, err := cookbook.ParseRecipeDraft(text.String())
	if err != nil {
		return res, err
	}
	res.Draft = draft
	return res, nil
}
