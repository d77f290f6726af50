package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/fwojciec/cookbook"
	cookbookhttp "github.com/fwojciec/cookbook/http"
	"github.com/fwojciec/cookbook/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extraction() *cookbook.Extraction {
	return &cookbook.Extraction{
		Draft: &cookbook.RecipeDraft{
			Title:       "Pancakes",
			Ingredients: []string{"flour"},
			Steps:       []string{"fry"},
			Category:    "Breakfast",
		},
		Strategy: cookbook.StrategyURLDirect,
		Provider: cookbook.ProviderGeminiMain,
	}
}

func TestServer_FetchRecipe(t *testing.T) {
	t.Parallel()

	t.Run("extracts for the caller", func(t *testing.T) {
		t.Parallel()

		var gotURL string
		var gotOpts cookbook.ExtractOptions
		s := cookbookhttp.NewServer()
		s.RecipeExtractor = &mock.RecipeExtractor{
			ExtractFn: func(ctx context.Context, pageURL string, opts cookbook.ExtractOptions) (*cookbook.Extraction, error) {
				gotURL, gotOpts = pageURL, opts
				return extraction(), nil
			},
		}

		rec := do(t, s, http.MethodPost, "/api/fetch-recipe", "user-1", map[string]string{
			"url":            "https://example.com/pancakes",
			"forceStrategy":  "html-fallback",
			"geminiProvider": "gemini-pro",
			"openaiProvider": "openai-mini",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "https://example.com/pancakes", gotURL)
		assert.Equal(t, "user-1", gotOpts.UserID)
		assert.Equal(t, cookbook.StrategyHTMLFallback, gotOpts.Strategy)
		assert.Equal(t, cookbook.ProviderGeminiPro, gotOpts.URLProvider)
		assert.Equal(t, cookbook.ProviderOpenAIMini, gotOpts.HTMLProvider)

		var body struct {
			Success  bool                 `json:"success"`
			Recipe   cookbook.RecipeDraft `json:"recipe"`
			Strategy cookbook.Strategy    `json:"strategy"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "Pancakes", body.Recipe.Title)
		assert.Equal(t, cookbook.StrategyURLDirect, body.Strategy)
	})

	t.Run("rejects invalid URL", func(t *testing.T) {
		t.Parallel()

		s := cookbookhttp.NewServer()
		s.RecipeExtractor = &mock.RecipeExtractor{}

		rec := do(t, s, http.MethodPost, "/api/fetch-recipe", "user-1", map[string]string{"url": "ftp://x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Fields, "url")
	})

	t.Run("rejects unknown strategy", func(t *testing.T) {
		t.Parallel()

		s := cookbookhttp.NewServer()
		s.RecipeExtractor = &mock.RecipeExtractor{}

		rec := do(t, s, http.MethodPost, "/api/fetch-recipe", "user-1", map[string]string{
			"url":           "https://example.com/r",
			"forceStrategy": "telepathy",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		t.Parallel()

		s := cookbookhttp.NewServer()
		s.RecipeExtractor = &mock.RecipeExtractor{}

		rec := do(t, s, http.MethodPost, "/api/fetch-recipe", "user-1", map[string]string{
			"url":            "https://example.com/r",
			"openaiProvider": "gpt-9",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, cookbook.EINVALID, decodeError(t, rec).Code)
	})

	t.Run("maps extraction failures", func(t *testing.T) {
		t.Parallel()

		for _, tc := range []struct {
			reason    cookbook.FailureReason
			status    int
			retryable bool
		}{
			{cookbook.FailureNoRecipe, http.StatusNotFound, false},
			{cookbook.FailureTimeout, http.StatusBadGateway, true},
			{cookbook.FailureContentPolicy, http.StatusBadGateway, false},
		} {
			s := cookbookhttp.NewServer()
			s.RecipeExtractor = &mock.RecipeExtractor{
				ExtractFn: func(ctx context.Context, pageURL string, opts cookbook.ExtractOptions) (*cookbook.Extraction, error) {
					return nil, &cookbook.ExtractionError{URL: pageURL, Strategy: cookbook.StrategyHTMLFallback, Reason: tc.reason, Err: errors.New("boom")}
				},
			}

			rec := do(t, s, http.MethodPost, "/api/fetch-recipe", "user-1", map[string]string{"url": "https://example.com/r"})
			assert.Equal(t, tc.status, rec.Code, tc.reason)
			assert.Equal(t, tc.retryable, decodeError(t, rec).Retryable, tc.reason)
		}
	})
}

func TestServer_GuestFetchRecipe(t *testing.T) {
	t.Parallel()

	t.Run("extracts without a user and defaults the category", func(t *testing.T) {
		t.Parallel()

		var gotOpts cookbook.ExtractOptions
		s := cookbookhttp.NewServer()
		s.RecipeExtractor = &mock.RecipeExtractor{
			ExtractFn: func(ctx context.Context, pageURL string, opts cookbook.ExtractOptions) (*cookbook.Extraction, error) {
				gotOpts = opts
				x := extraction()
				x.Draft.Category = ""
				return x, nil
			},
		}

		rec := do(t, s, http.MethodPost, "/api/guest/fetch-recipe", "", map[string]string{"url": "https://example.com/r"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Empty(t, gotOpts.UserID)

		var body struct {
			GuestMode bool `json:"guestMode"`
			Recipe    struct {
				Title     string `json:"title"`
				Category  string `json:"category"`
				SourceURL string `json:"sourceUrl"`
				IsGuest   bool   `json:"isGuest"`
			} `json:"recipe"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.GuestMode)
		assert.True(t, body.Recipe.IsGuest)
		assert.Equal(t, "Pancakes", body.Recipe.Title)
		assert.Equal(t, cookbook.Uncategorized, body.Recipe.Category)
		assert.Equal(t, "https://example.com/r", body.Recipe.SourceURL)
	})

	t.Run("ignores the user header", func(t *testing.T) {
		t.Parallel()

		s := cookbookhttp.NewServer()
		s.RecipeExtractor = &mock.RecipeExtractor{
			ExtractFn: func(ctx context.Context, pageURL string, opts cookbook.ExtractOptions) (*cookbook.Extraction, error) {
				assert.Empty(t, opts.UserID)
				return extraction(), nil
			},
		}

		rec := do(t, s, http.MethodPost, "/api/guest/fetch-recipe", "user-1", map[string]string{"url": "https://example.com/r"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
