package mock

import (
	"context"

	"github.com/fwojciec/cookbook"
)

var _ cookbook.MetricService = (*MetricService)(nil)

// MetricService is a mock implementation of cookbook.MetricService.
type MetricService struct {
	CreateMetricFn      func(ctx context.Context, m *cookbook.ExtractionMetric) error
	LinkRecipeFn        func(ctx context.Context, metricID, recipeID string) error
	FindMetricsFn       func(ctx context.Context, filter cookbook.MetricFilter) ([]*cookbook.ExtractionMetric, error)
	DomainPerformanceFn func(ctx context.Context, domain string) (*cookbook.DomainPerformance, error)
	UserAnalyticsFn     func(ctx context.Context, userID string, days int) (*cookbook.UserAnalytics, error)
	SystemAnalyticsFn   func(ctx context.Context, days int) (*cookbook.SystemAnalytics, error)
}

func (s *MetricService) CreateMetric(ctx context.Context, m *cookbook.ExtractionMetric) error {
	return s.CreateMetricFn(ctx, m)
}

func (s *MetricService) LinkRecipe(ctx context.Context, metricID, recipeID string) error {
	return s.LinkRecipeFn(ctx, metricID, recipeID)
}

func (s *MetricService) FindMetrics(ctx context.Context, filter cookbook.MetricFilter) ([]*cookbook.ExtractionMetric, error) {
	return s.FindMetricsFn(ctx, filter)
}

func (s *MetricService) DomainPerformance(ctx context.Context, domain string) (*cookbook.DomainPerformance, error) {
	return s.DomainPerformanceFn(ctx, domain)
}

func (s *MetricService) UserAnalytics(ctx context.Context, userID string, days int) (*cookbook.UserAnalytics, error) {
	return s.UserAnalyticsFn(ctx, userID, days)
}

func (s *MetricService) SystemAnalytics(ctx context.Context, days int) (*cookbook.SystemAnalytics, error) {
	return s.SystemAnalyticsFn(ctx, days)
}
