package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/cookbook"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ cookbook.TokenCounter = (*TokenCounter)(nil)

// TokenCounter estimates the prompt tokens of an extraction call offline.
// Counts include the extraction system instruction, which Gemini bills as
// part of the prompt. Extractors fall back to it when a response carries no
// usage metadata.
type TokenCounter struct {
	tok    *tokenizer.LocalTokenizer
	config *genai.CountTokensConfig
}

// NewTokenCounter creates a TokenCounter for a tokenizer-supported model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, fmt.Errorf("gemini tokenizer %s: %w", model, err)
	}
	return &TokenCounter{
		tok: tok,
		config: &genai.CountTokensConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: cookbook.ExtractionSystemPrompt}},
			},
		},
	}, nil
}

// CountTokens counts an extraction prompt. Blank prompts count as zero
// because no call is made for them.
func (tc *TokenCounter) CountTokens(ctx context.Context, prompt string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(prompt) == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(prompt, "user")}, tc.config)
	if err != nil {
		return 0, err
	}
	return int(result.TotalTokens), nil
}
