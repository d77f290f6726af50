package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/cookbook"
	"github.com/fwojciec/cookbook/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metric(user, url string, strategy cookbook.Strategy, success bool) *cookbook.ExtractionMetric {
	m := &cookbook.ExtractionMetric{
		UserID:          user,
		RecipeURL:       url,
		PrimaryStrategy: strategy,
		FinalStrategy:   strategy,
		AIProvider:      cookbook.ProviderGeminiMain,
		TotalDuration:   2 * time.Second,
		PromptTokens:    1000,
		ResponseTokens:  200,
		Success:         success,
		EstimatedCost:   0.0002,
	}
	if success {
		m.CompletenessScore = 0.8
		m.WasOptimal = true
	} else {
		m.FailureReason = cookbook.FailureTimeout
	}
	return m
}

func TestMetricService_CreateMetric(t *testing.T) {
	t.Parallel()

	t.Run("stores metric with derived fields", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMetricService(db)
		ctx := context.Background()

		m := metric("user-1", "https://www.allrecipes.com/recipe/1", cookbook.StrategyURLDirect, true)
		m.MissingFields = []string{"image"}
		require.NoError(t, svc.CreateMetric(ctx, m))

		assert.NotEmpty(t, m.ID)
		assert.Equal(t, "allrecipes.com", m.Domain)
		assert.Equal(t, 1200, m.TotalTokens)

		found, err := svc.FindMetrics(ctx, cookbook.MetricFilter{})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, m.ID, found[0].ID)
		assert.Equal(t, 2*time.Second, found[0].TotalDuration)
		assert.Equal(t, []string{"image"}, found[0].MissingFields)
		assert.True(t, found[0].Success)
		assert.True(t, found[0].WasOptimal)
		assert.Equal(t, cookbook.ProviderGeminiMain, found[0].AIProvider)
	})

	t.Run("stores guest metrics without a user", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMetricService(db)

		m := metric("", "https://example.com/r", cookbook.StrategyHTMLFallback, false)
		require.NoError(t, svc.CreateMetric(context.Background(), m))

		found, err := svc.FindMetrics(context.Background(), cookbook.MetricFilter{UserID: ptr("")})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, cookbook.FailureTimeout, found[0].FailureReason)
	})

	t.Run("returns EINVALID without a URL", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMetricService(db)

		err := svc.CreateMetric(context.Background(), &cookbook.ExtractionMetric{PrimaryStrategy: cookbook.StrategyURLDirect})
		assert.Equal(t, cookbook.EINVALID, cookbook.ErrorCode(err))
	})
}

func TestMetricService_LinkRecipe(t *testing.T) {
	t.Parallel()

	t.Run("sets the recipe on the metric", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMetricService(db)
		ctx := context.Background()
		r := createRecipe(t, sqlite.NewRecipeService(db), "user-1", "Beef Stew", "Dinner")
		m := metric("user-1", "https://a.com/stew", cookbook.StrategyURLDirect, true)
		require.NoError(t, svc.CreateMetric(ctx, m))

		require.NoError(t, svc.LinkRecipe(ctx, m.ID, r.ID))

		found, err := svc.FindMetrics(ctx, cookbook.MetricFilter{})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, r.ID, found[0].RecipeID)
	})

	t.Run("ignores recipes of another user", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMetricService(db)
		ctx := context.Background()
		r := createRecipe(t, sqlite.NewRecipeService(db), "user-2", "Beef Stew", "Dinner")
		m := metric("user-1", "https://a.com/stew", cookbook.StrategyURLDirect, true)
		require.NoError(t, svc.CreateMetric(ctx, m))

		err := svc.LinkRecipe(ctx, m.ID, r.ID)

		assert.Equal(t, cookbook.ENOTFOUND, cookbook.ErrorCode(err))
	})

	t.Run("a linked metric cannot be relinked", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMetricService(db)
		ctx := context.Background()
		recipes := sqlite.NewRecipeService(db)
		first := createRecipe(t, recipes, "user-1", "Beef Stew", "Dinner")
		second := createRecipe(t, recipes, "user-1", "Lamb Stew", "Dinner")
		m := metric("user-1", "https://a.com/stew", cookbook.StrategyURLDirect, true)
		require.NoError(t, svc.CreateMetric(ctx, m))
		require.NoError(t, svc.LinkRecipe(ctx, m.ID, first.ID))

		err := svc.LinkRecipe(ctx, m.ID, second.ID)

		assert.Equal(t, cookbook.ENOTFOUND, cookbook.ErrorCode(err))
	})

	t.Run("returns not found for unknown metric", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		r := createRecipe(t, sqlite.NewRecipeService(db), "user-1", "Beef Stew", "Dinner")

		err := sqlite.NewMetricService(db).LinkRecipe(context.Background(), "missing", r.ID)

		assert.Equal(t, cookbook.ENOTFOUND, cookbook.ErrorCode(err))
	})
}

func TestMetricService_FindMetrics(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := sqlite.NewMetricService(db)
	ctx := context.Background()
	require.NoError(t, svc.CreateMetric(ctx, metric("user-1", "https://a.com/1", cookbook.StrategyURLDirect, true)))
	require.NoError(t, svc.CreateMetric(ctx, metric("user-1", "https://b.com/1", cookbook.StrategyURLDirect, false)))
	require.NoError(t, svc.CreateMetric(ctx, metric("user-2", "https://a.com/2", cookbook.StrategyHTMLFallback, true)))

	t.Run("filters by user", func(t *testing.T) {
		t.Parallel()

		found, err := svc.FindMetrics(ctx, cookbook.MetricFilter{UserID: ptr("user-1")})
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("filters by domain and outcome", func(t *testing.T) {
		t.Parallel()

		found, err := svc.FindMetrics(ctx, cookbook.MetricFilter{Domain: ptr("a.com"), Success: ptr(true)})
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("filters by time", func(t *testing.T) {
		t.Parallel()

		future := time.Now().Add(time.Hour)
		found, err := svc.FindMetrics(ctx, cookbook.MetricFilter{Since: &future})
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestMetricService_DomainPerformance(t *testing.T) {
	t.Parallel()

	t.Run("aggregates a domain", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMetricService(db)
		ctx := context.Background()
		require.NoError(t, svc.CreateMetric(ctx, metric("u", "https://a.com/1", cookbook.StrategyURLDirect, true)))
		require.NoError(t, svc.CreateMetric(ctx, metric("u", "https://a.com/2", cookbook.StrategyURLDirect, false)))
		require.NoError(t, svc.CreateMetric(ctx, metric("u", "https://a.com/3", cookbook.StrategyHTMLFallback, true)))
		require.NoError(t, svc.CreateMetric(ctx, metric("u", "https://b.com/1", cookbook.StrategyURLDirect, true)))

		perf, err := svc.DomainPerformance(ctx, "a.com")
		require.NoError(t, err)
		assert.Equal(t, "a.com", perf.Domain)
		assert.Equal(t, 3, perf.Attempts)
		assert.InDelta(t, 0.667, perf.SuccessRate, 1e-9)
		assert.InDelta(t, 0.5, perf.URLDirectSuccessRate, 1e-9)
		assert.Equal(t, 2*time.Second, perf.AverageDuration)
		assert.InDelta(t, 0.0002, perf.AverageCost, 1e-9)
	})

	t.Run("returns ENOTFOUND for unknown domain", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMetricService(db)

		_, err := svc.DomainPerformance(context.Background(), "nowhere.com")
		assert.Equal(t, cookbook.ENOTFOUND, cookbook.ErrorCode(err))
	})
}

func TestMetricService_UserAnalytics(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := sqlite.NewMetricService(db)
	ctx := context.Background()
	require.NoError(t, svc.CreateMetric(ctx, metric("user-1", "https://a.com/1", cookbook.StrategyURLDirect, true)))
	require.NoError(t, svc.CreateMetric(ctx, metric("user-1", "https://a.com/2", cookbook.StrategyURLDirect, false)))
	require.NoError(t, svc.CreateMetric(ctx, metric("user-2", "https://a.com/3", cookbook.StrategyURLDirect, true)))

	a, err := svc.UserAnalytics(ctx, "user-1", 30)
	require.NoError(t, err)
	assert.Equal(t, "user-1", a.UserID)
	assert.Equal(t, 30, a.Days)
	assert.Equal(t, 2, a.Extractions)
	assert.InDelta(t, 0.5, a.SuccessRate, 1e-9)
	assert.Equal(t, 2*time.Second, a.AverageDuration)
	assert.InDelta(t, 0.0004, a.TotalCost, 1e-9)

	empty, err := svc.UserAnalytics(ctx, "nobody", 30)
	require.NoError(t, err)
	assert.Zero(t, empty.Extractions)
	assert.Zero(t, empty.SuccessRate)
}

func TestMetricService_SystemAnalytics(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := sqlite.NewMetricService(db)
	ctx := context.Background()

	openai := metric("user-1", "https://b.com/1", cookbook.StrategyHTMLFallback, true)
	openai.AIProvider = cookbook.ProviderOpenAIMain
	openai.FallbackUsed = true
	openai.CompletenessScore = 0.6
	require.NoError(t, svc.CreateMetric(ctx, openai))
	require.NoError(t, svc.CreateMetric(ctx, metric("user-1", "https://a.com/1", cookbook.StrategyURLDirect, true)))
	require.NoError(t, svc.CreateMetric(ctx, metric("user-2", "https://a.com/2", cookbook.StrategyURLDirect, false)))

	a, err := svc.SystemAnalytics(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, a.Extractions)
	assert.InDelta(t, 0.667, a.SuccessRate, 1e-9)
	assert.InDelta(t, 0.333, a.FallbackRate, 1e-9)
	assert.InDelta(t, 0.7, a.AverageCompleteness, 1e-9)
	assert.InDelta(t, 0.0006, a.TotalCost, 1e-9)

	require.Len(t, a.Providers, 2)
	assert.Equal(t, cookbook.ProviderGeminiMain, a.Providers[0].Provider)
	assert.Equal(t, 2, a.Providers[0].Extractions)
	assert.Equal(t, 2400, a.Providers[0].TotalTokens)
	assert.Equal(t, cookbook.ProviderOpenAIMain, a.Providers[1].Provider)

	require.Len(t, a.TopDomains, 2)
	assert.Equal(t, "a.com", a.TopDomains[0].Domain)
	assert.Equal(t, 2, a.TopDomains[0].Attempts)
}
