package cookbook

import (
	"context"
	"math"
	"net/url"
	"strings"
	"time"
)

// Provider identifies a model configuration used for extraction.
type Provider string

// Provider constants.
const (
	ProviderGeminiMain     Provider = "gemini-main"
	ProviderGeminiPro      Provider = "gemini-pro"
	ProviderGeminiFlash    Provider = "gemini-flash"
	ProviderOpenAIMain     Provider = "openai-main"
	ProviderOpenAIMini     Provider = "openai-mini"
	ProviderAnthropicHaiku Provider = "anthropic-haiku"
)

// ProviderRates are USD prices per 1000 tokens.
type ProviderRates struct {
	Prompt     float64
	Completion float64
}

// DefaultProviderRates holds the price table used for cost estimates.
var DefaultProviderRates = map[Provider]ProviderRates{
	ProviderOpenAIMini:     {Prompt: 0.00015, Completion: 0.0006},
	ProviderOpenAIMain:     {Prompt: 0.0025, Completion: 0.01},
	ProviderGeminiMain:     {Prompt: 0.000125, Completion: 0.000375},
	ProviderGeminiPro:      {Prompt: 0.00125, Completion: 0.01},
	ProviderGeminiFlash:    {Prompt: 0.000075, Completion: 0.0003},
	ProviderAnthropicHaiku: {Prompt: 0.0008, Completion: 0.004},
}

// ParseProvider parses a provider name. An empty name yields the zero
// Provider.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return "", nil
	}
	if _, ok := DefaultProviderRates[p]; !ok {
		return "", Errorf(EINVALID, "unknown AI provider %q", s)
	}
	return p, nil
}

// EstimateCost returns the USD cost of a call, rounded to six decimals.
// Unknown providers cost nothing.
func EstimateCost(provider Provider, usage TokenUsage) float64 {
	rates, ok := DefaultProviderRates[provider]
	if !ok {
		return 0
	}
	cost := float64(usage.PromptTokens)/1000*rates.Prompt +
		float64(usage.ResponseTokens)/1000*rates.Completion
	return math.Round(cost*1e6) / 1e6
}

// CompletenessScore rates how much of the draft is filled in and lists the
// empty fields. The score is capped at 1.
func CompletenessScore(d *RecipeDraft) (float64, []string) {
	if d == nil {
		return 0, []string{"title", "ingredients", "steps"}
	}

	var score float64
	var missing []string
	check := func(name string, present bool, weight float64) {
		if present {
			score += weight
		} else {
			missing = append(missing, name)
		}
	}

	check("title", d.Title != "", 0.133)
	check("ingredients", len(d.Ingredients) > 0, 0.133)
	check("steps", len(d.Steps) > 0, 0.133)
	check("description", d.Description != "", 0.1)
	check("cuisine", d.Cuisine != "", 0.1)
	check("category", d.Category != "", 0.1)
	check("prepTime", d.PrepTime != "", 0.1)
	check("cleanupTime", d.CleanupTime != "", 0.1)
	check("image", d.Image != nil, 0.1)

	score = math.Round(score*1000) / 1000
	return math.Min(score, 1), missing
}

// DomainOf returns the lowercase host of a URL without a leading "www.".
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// ExtractionMetric records one extraction attempt. Metrics are never updated.
type ExtractionMetric struct {
	ID                 string        `json:"id"`
	UserID             string        `json:"userId"`
	RecipeURL          string        `json:"recipeUrl"`
	Domain             string        `json:"domain"`
	PrimaryStrategy    Strategy      `json:"primaryStrategy"`
	FinalStrategy      Strategy      `json:"finalStrategy"`
	AIProvider         Provider      `json:"aiProvider"`
	FallbackUsed       bool          `json:"fallbackUsed"`
	FallbackReason     FailureReason `json:"fallbackReason"`
	TotalDuration      time.Duration `json:"totalDuration"`
	FetchDuration      time.Duration `json:"fetchDuration"`
	AIDuration         time.Duration `json:"aiDuration"`
	ValidationDuration time.Duration `json:"validationDuration"`
	HTMLContentSize    int           `json:"htmlContentSize"`
	CleanedContentSize int           `json:"cleanedContentSize"`
	PromptTokens       int           `json:"promptTokens"`
	ResponseTokens     int           `json:"responseTokens"`
	TotalTokens        int           `json:"totalTokens"`
	Success            bool          `json:"success"`
	FailureReason      FailureReason `json:"failureReason"`
	MissingFields      []string      `json:"missingFields"`
	CompletenessScore  float64       `json:"completenessScore"`
	CategoryConfidence float64       `json:"categoryConfidence"`
	HasStructuredData  bool          `json:"hasStructuredData"`
	EstimatedCost      float64       `json:"estimatedCost"`
	RecipeID           string        `json:"recipeId"`
	WasOptimal         bool          `json:"wasOptimal"`
	CreatedAt          time.Time     `json:"createdAt"`
}

// Validate returns an error if the metric contains invalid fields.
func (m *ExtractionMetric) Validate() error {
	if m.RecipeURL == "" {
		return Errorf(EINVALID, "metric recipe URL required")
	}
	if m.PrimaryStrategy == "" {
		return Errorf(EINVALID, "metric primary strategy required")
	}
	return nil
}

// MetricFilter represents a filter for FindMetrics.
type MetricFilter struct {
	UserID  *string    `json:"userId"`
	Domain  *string    `json:"domain"`
	Success *bool      `json:"success"`
	Since   *time.Time `json:"since"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// DomainPerformance aggregates metrics for one domain.
type DomainPerformance struct {
	Domain               string        `json:"domain"`
	Attempts             int           `json:"attempts"`
	SuccessRate          float64       `json:"successRate"`
	URLDirectSuccessRate float64       `json:"urlDirectSuccessRate"`
	AverageDuration      time.Duration `json:"averageDuration"`
	AverageCost          float64       `json:"averageCost"`
}

// UserAnalytics aggregates a user's extractions over a period.
type UserAnalytics struct {
	UserID          string        `json:"userId"`
	Days            int           `json:"days"`
	Extractions     int           `json:"extractions"`
	SuccessRate     float64       `json:"successRate"`
	AverageDuration time.Duration `json:"averageDuration"`
	TotalCost       float64       `json:"totalCost"`
}

// ProviderStats aggregates extractions by provider.
type ProviderStats struct {
	Provider    Provider `json:"provider"`
	Extractions int      `json:"extractions"`
	SuccessRate float64  `json:"successRate"`
	TotalCost   float64  `json:"totalCost"`
	TotalTokens int      `json:"totalTokens"`
}

// SystemAnalytics aggregates all extractions over a period.
type SystemAnalytics struct {
	Days                int                  `json:"days"`
	Extractions         int                  `json:"extractions"`
	SuccessRate         float64              `json:"successRate"`
	FallbackRate        float64              `json:"fallbackRate"`
	AverageCompleteness float64              `json:"averageCompleteness"`
	TotalCost           float64              `json:"totalCost"`
	Providers           []*ProviderStats     `json:"providers"`
	TopDomains          []*DomainPerformance `json:"topDomains"`
}

// MetricService represents a service for recording and analyzing extraction metrics.
type MetricService interface {
	// CreateMetric records an extraction attempt.
	CreateMetric(ctx context.Context, m *ExtractionMetric) error

	// LinkRecipe records the recipe saved from an extraction on its metric.
	// The recipe must belong to the metric's user. Returns ENOTFOUND when
	// no unlinked metric matches.
	LinkRecipe(ctx context.Context, metricID, recipeID string) error

	// FindMetrics retrieves metrics matching the filter, newest first.
	FindMetrics(ctx context.Context, filter MetricFilter) ([]*ExtractionMetric, error)

	// DomainPerformance aggregates metrics for a domain.
	// Returns ENOTFOUND if the domain has no metrics.
	DomainPerformance(ctx context.Context, domain string) (*DomainPerformance, error)

	// UserAnalytics aggregates a user's metrics over the last days.
	UserAnalytics(ctx context.Context, userID string, days int) (*UserAnalytics, error)

	// SystemAnalytics aggregates all metrics over the last days.
	SystemAnalytics(ctx context.Context, days int) (*SystemAnalytics, error)
}
