// Package gemini extracts recipes with Google Gemini models. Gemini can read
// a page by URL, which makes it the URL_DIRECT strategy's model.
package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/cookbook"
	"google.golang.org/genai"
)

// Model defaults.
const (
	DefaultModel           = "gemini-2.5-flash"
	DefaultTemperature     = 0.1
	DefaultMaxOutputTokens = 8000
)

// urlPromptOverhead approximates the URL prompt size in characters when the
// API does not report usage.
const urlPromptOverhead = 400

// Ensure Extractor implements the extraction interfaces at compile time.
var (
	_ cookbook.URLExtractor  = (*Extractor)(nil)
	_ cookbook.HTMLExtractor = (*Extractor)(nil)
)

// Extractor implements recipe extraction using Google Gemini.
type Extractor struct {
	client          *genai.Client
	model           string
	provider        cookbook.Provider
	temperature     float32
	maxOutputTokens int32
	tokens          cookbook.TokenCounter
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithModel sets the model name and the provider it is reported as.
func WithModel(model string, provider cookbook.Provider) Option {
	return func(e *Extractor) {
		e.model = model
		e.provider = provider
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(e *Extractor) {
		e.temperature = t
	}
}

// WithMaxOutputTokens caps the response length.
func WithMaxOutputTokens(n int32) Option {
	return func(e *Extractor) {
		e.maxOutputTokens = n
	}
}

// WithTokenCounter counts prompt tokens locally when the API omits usage.
func WithTokenCounter(tc cookbook.TokenCounter) Option {
	return func(e *Extractor) {
		e.tokens = tc
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(client *genai.Client, opts ...Option) *Extractor {
	e := &Extractor{
		client:          client,
		model:           DefaultModel,
		provider:        cookbook.ProviderGeminiMain,
		temperature:     DefaultTemperature,
		maxOutputTokens: DefaultMaxOutputTokens,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractURL asks Gemini to read the page itself through the URL context tool.
func (e *Extractor) ExtractURL(ctx context.Context, pageURL string) (*cookbook.ModelResult, error) {
	if pageURL == "" {
		return nil, cookbook.Errorf(cookbook.EINVALID, "page URL required")
	}

	config := e.BuildConfig()
	config.Tools = []*genai.Tool{{URLContext: &genai.URLContext{}}}

	result, err := e.generate(ctx, cookbook.URLExtractionPrompt(pageURL), config)
	if err != nil {
		return nil, err
	}

	usage := usageOf(result)
	if usage == nil {
		usage = &cookbook.TokenUsage{
			PromptTokens: (urlPromptOverhead + len(pageURL) + 3) / 4,
			Estimated:    true,
		}
	}
	return e.parse(result, *usage)
}

// ExtractHTML asks Gemini to extract the recipe from fetched page content.
func (e *Extractor) ExtractHTML(ctx context.Context, pageURL, content string) (*cookbook.ModelResult, error) {
	if content == "" {
		return nil, cookbook.Errorf(cookbook.EINVALID, "page content required")
	}

	prompt := cookbook.HTMLExtractionPrompt(content)
	result, err := e.generate(ctx, prompt, e.BuildConfig())
	if err != nil {
		return nil, err
	}

	usage := usageOf(result)
	if usage == nil {
		usage = &cookbook.TokenUsage{PromptTokens: e.countTokens(ctx, prompt), Estimated: true}
	}
	return e.parse(result, *usage)
}

// BuildConfig returns the GenerateContentConfig for extraction calls.
func (e *Extractor) BuildConfig() *genai.GenerateContentConfig {
	temp := e.temperature
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: cookbook.ExtractionSystemPrompt}},
		},
		Temperature:     &temp,
		MaxOutputTokens: e.maxOutputTokens,
	}
}

func (e *Extractor) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	result, err := e.client.Models.GenerateContent(ctx, e.model,
		[]*genai.Content{genai.NewContentFromText(prompt, "user")},
		config,
	)
	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", e.model, err)
	}
	if result == nil {
		return nil, cookbook.Errorf(cookbook.EINTERNAL, "gemini returned nil result")
	}
	if fb := result.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return nil, fmt.Errorf("gemini %s: prompt blocked: %s", e.model, fb.BlockReason)
	}
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("gemini %s: response blocked by safety filter", e.model)
	}
	return result, nil
}

func (e *Extractor) parse(result *genai.GenerateContentResponse, usage cookbook.TokenUsage) (*cookbook.ModelResult, error) {
	text := result.Text()
	if usage.Estimated {
		usage.ResponseTokens = cookbook.EstimateTokens(text)
	}
	res := &cookbook.ModelResult{Provider: e.provider, Usage: usage}
	draft, err := cookbook.ParseRecipeDraft(text)
	if err != nil {
		return res, err
	}
	res.Draft = draft
	return res, nil
}

func (e *Extractor) countTokens(ctx context.Context, text string) int {
	if e.tokens != nil {
		if n, err := e.tokens.CountTokens(ctx, text); err == nil {
			return n
		}
	}
	return cookbook.EstimateTokens(text)
}

func usageOf(result *genai.GenerateContentResponse) *cookbook.TokenUsage {
	md := result.UsageMetadata
	if md == nil || md.PromptTokenCount == 0 {
		return nil
	}
	return &cookbook.TokenUsage{
		PromptTokens:   int(md.PromptTokenCount),
		ResponseTokens: int(md.CandidatesTokenCount),
	}
}
