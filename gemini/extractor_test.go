package gemini_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/cookbook"
	"github.com/fwojciec/cookbook/gemini"
	"github.com/fwojciec/cookbook/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

const recipeJSON = `{"title":"Pad Thai","ingredients":["noodles","eggs"],"steps":["soak","fry"],"image":null,"description":"","cuisine":"Thai","category":"Asian","prepTime":"10 min","cleanupTime":"5 min"}`

// geminiServer answers every generateContent call with text and usage and
// records the last request body.
func geminiServer(t *testing.T, text string, usage map[string]int) (*httptest.Server, *map[string]any) {
	t.Helper()
	var last map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &last)

		resp := map[string]any{
			"candidates": []any{map[string]any{
				"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
				"finishReason": "STOP",
			}},
		}
		if usage != nil {
			resp["usageMetadata"] = usage
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func newClient(t *testing.T, baseURL string) *genai.Client {
	t.Helper()
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL + "/"},
	})
	require.NoError(t, err)
	return client
}

func TestExtractor_ExtractURL(t *testing.T) {
	t.Parallel()

	t.Run("parses draft and reports usage", func(t *testing.T) {
		t.Parallel()

		srv, last := geminiServer(t, "```json\n"+recipeJSON+"\n```", map[string]int{
			"promptTokenCount": 143, "candidatesTokenCount": 90, "totalTokenCount": 233,
		})
		e := gemini.NewExtractor(newClient(t, srv.URL), gemini.WithModel("gemini-2.5-pro", cookbook.ProviderGeminiPro))

		got, err := e.ExtractURL(context.Background(), "https://example.com/pad-thai")

		require.NoError(t, err)
		assert.Equal(t, "Pad Thai", got.Draft.Title)
		assert.Equal(t, []string{"noodles", "eggs"}, got.Draft.Ingredients)
		assert.Nil(t, got.Draft.Image)
		assert.Equal(t, cookbook.ProviderGeminiPro, got.Provider)
		assert.Equal(t, cookbook.TokenUsage{PromptTokens: 143, ResponseTokens: 90}, got.Usage)

		raw, _ := json.Marshal(*last)
		assert.Contains(t, string(raw), "https://example.com/pad-thai")
		assert.Contains(t, string(raw), "urlContext")
	})

	t.Run("estimates usage when missing", func(t *testing.T) {
		t.Parallel()

		srv, _ := geminiServer(t, recipeJSON, nil)
		e := gemini.NewExtractor(newClient(t, srv.URL))
		pageURL := "https://example.com/pad-thai"

		got, err := e.ExtractURL(context.Background(), pageURL)

		require.NoError(t, err)
		assert.True(t, got.Usage.Estimated)
		assert.Equal(t, (400+len(pageURL)+3)/4, got.Usage.PromptTokens)
		assert.Equal(t, cookbook.ProviderGeminiMain, got.Provider)
	})

	t.Run("empty object is no recipe", func(t *testing.T) {
		t.Parallel()

		srv, _ := geminiServer(t, "{}", nil)
		e := gemini.NewExtractor(newClient(t, srv.URL))

		_, err := e.ExtractURL(context.Background(), "https://example.com/about")

		require.ErrorIs(t, err, cookbook.ErrNoRecipe)
		assert.Equal(t, cookbook.FailureNoRecipe, cookbook.ClassifyFailure(err))
	})

	t.Run("prose is a malformed response that keeps usage", func(t *testing.T) {
		t.Parallel()

		srv, _ := geminiServer(t, "I could not open that page.", map[string]int{
			"promptTokenCount": 120, "candidatesTokenCount": 8, "totalTokenCount": 128,
		})
		e := gemini.NewExtractor(newClient(t, srv.URL))

		got, err := e.ExtractURL(context.Background(), "https://example.com/x")

		require.ErrorIs(t, err, cookbook.ErrMalformedResponse)
		require.NotNil(t, got)
		assert.Nil(t, got.Draft)
		assert.Equal(t, cookbook.TokenUsage{PromptTokens: 120, ResponseTokens: 8}, got.Usage)
	})

	t.Run("quota errors are classified", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`))
		}))
		t.Cleanup(srv.Close)
		e := gemini.NewExtractor(newClient(t, srv.URL))

		_, err := e.ExtractURL(context.Background(), "https://example.com/x")

		require.Error(t, err)
		assert.Equal(t, cookbook.FailureQuota, cookbook.ClassifyFailure(err))
	})

	t.Run("requires URL", func(t *testing.T) {
		t.Parallel()

		e := gemini.NewExtractor(nil)

		_, err := e.ExtractURL(context.Background(), "")

		assert.Equal(t, cookbook.EINVALID, cookbook.ErrorCode(err))
	})
}

func TestExtractor_ExtractHTML(t *testing.T) {
	t.Parallel()

	t.Run("sends content without URL tool", func(t *testing.T) {
		t.Parallel()

		srv, last := geminiServer(t, recipeJSON, map[string]int{"promptTokenCount": 4000, "candidatesTokenCount": 100})
		e := gemini.NewExtractor(newClient(t, srv.URL))

		got, err := e.ExtractHTML(context.Background(), "https://example.com/x", "<article>Pad Thai</article>")

		require.NoError(t, err)
		assert.Equal(t, 4000, got.Usage.PromptTokens)
		raw, _ := json.Marshal(*last)
		assert.Contains(t, string(raw), "Pad Thai")
		assert.NotContains(t, string(raw), "urlContext")
	})

	t.Run("counts tokens locally when usage missing", func(t *testing.T) {
		t.Parallel()

		srv, _ := geminiServer(t, recipeJSON, nil)
		e := gemini.NewExtractor(newClient(t, srv.URL), gemini.WithTokenCounter(&mock.TokenCounter{
			CountTokensFn: func(_ context.Context, text string) (int, error) {
				assert.True(t, strings.HasPrefix(text, "Extract recipe information"))
				return 321, nil
			},
		}))

		got, err := e.ExtractHTML(context.Background(), "https://example.com/x", "<article>Pad Thai</article>")

		require.NoError(t, err)
		assert.Equal(t, 321, got.Usage.PromptTokens)
		assert.True(t, got.Usage.Estimated)
		assert.Equal(t, cookbook.EstimateTokens(recipeJSON), got.Usage.ResponseTokens)
	})

	t.Run("requires content", func(t *testing.T) {
		t.Parallel()

		_, err := gemini.NewExtractor(nil).ExtractHTML(context.Background(), "https://example.com/x", "")

		assert.Equal(t, cookbook.EINVALID, cookbook.ErrorCode(err))
	})
}

func TestExtractor_BuildConfig(t *testing.T) {
	t.Parallel()

	config := gemini.NewExtractor(nil, gemini.WithTemperature(0.3), gemini.WithMaxOutputTokens(1000)).BuildConfig()

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "recipe")
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.3, *config.Temperature, 0.001)
	assert.Equal(t, int32(1000), config.MaxOutputTokens)
}
