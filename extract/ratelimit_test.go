package extract_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/cookbook"
	"github.com/fwojciec/cookbook/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitFor returns how long limiter.Wait blocked for domain.
func waitFor(t *testing.T, limiter *extract.DomainLimiter, domain string) time.Duration {
	t.Helper()
	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background(), domain))
	return time.Since(start)
}

func TestDomainLimiter_Wait(t *testing.T) {
	t.Parallel()

	t.Run("spaces fetches from one recipe site", func(t *testing.T) {
		t.Parallel()

		limiter := extract.NewDomainLimiter(10)

		assert.Less(t, waitFor(t, limiter, "allrecipes.com"), 50*time.Millisecond)
		assert.GreaterOrEqual(t, waitFor(t, limiter, "allrecipes.com"), 80*time.Millisecond)
	})

	t.Run("www and bare host share a bucket", func(t *testing.T) {
		t.Parallel()

		limiter := extract.NewDomainLimiter(10)

		waitFor(t, limiter, "www.seriouseats.com")
		assert.GreaterOrEqual(t, waitFor(t, limiter, "SeriousEats.com"), 80*time.Millisecond)
	})

	t.Run("sites do not wait on each other", func(t *testing.T) {
		t.Parallel()

		limiter := extract.NewDomainLimiter(1)

		waitFor(t, limiter, "food.com")
		assert.Less(t, waitFor(t, limiter, "delish.com"), 50*time.Millisecond)
	})

	t.Run("burst allows back to back fetches", func(t *testing.T) {
		t.Parallel()

		limiter := extract.NewDomainLimiter(1, extract.WithBurst(3))

		for range 3 {
			assert.Less(t, waitFor(t, limiter, "bonappetit.com"), 50*time.Millisecond)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		assert.Error(t, limiter.Wait(ctx, "bonappetit.com"))
	})

	t.Run("per site rate overrides the default", func(t *testing.T) {
		t.Parallel()

		limiter := extract.NewDomainLimiter(0, extract.WithDomainRate("www.epicurious.com", 1))

		waitFor(t, limiter, "epicurious.com")
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		assert.Error(t, limiter.Wait(ctx, "epicurious.com"))

		for range 5 {
			assert.Less(t, waitFor(t, limiter, "kitchn.com"), 50*time.Millisecond)
		}
	})

	t.Run("returns error when context ends first", func(t *testing.T) {
		t.Parallel()

		limiter := extract.NewDomainLimiter(1)
		waitFor(t, limiter, "tasteofhome.com")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, limiter.Wait(ctx, "tasteofhome.com"))
	})
}

func TestOrchestrator_RateLimit(t *testing.T) {
	t.Parallel()

	t.Run("HTML fetches of one site are spaced", func(t *testing.T) {
		t.Parallel()

		o := newOrchestrator(&metricSink{})
		o.URLExtractor = nil
		o.RateLimiter = extract.NewDomainLimiter(10)

		_, err := o.Extract(context.Background(), "https://www.simplyrecipes.com/a", cookbook.ExtractOptions{})
		require.NoError(t, err)

		start := time.Now()
		_, err = o.Extract(context.Background(), "https://simplyrecipes.com/b", cookbook.ExtractOptions{})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("URL_DIRECT does not consume fetch budget", func(t *testing.T) {
		t.Parallel()

		o := newOrchestrator(&metricSink{})
		o.RateLimiter = extract.NewDomainLimiter(1)

		start := time.Now()
		for range 3 {
			got, err := o.Extract(context.Background(), "https://www.food.com/recipe/1", cookbook.ExtractOptions{})
			require.NoError(t, err)
			assert.Equal(t, cookbook.StrategyURLDirect, got.Strategy)
		}
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})
}
