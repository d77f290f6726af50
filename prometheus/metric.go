package prometheus

import (
	"context"

	"github.com/fwojciec/cookbook"
)

// Ensure MetricService implements cookbook.MetricService.
var _ cookbook.MetricService = (*MetricService)(nil)

// MetricService counts every recorded extraction in Prometheus before
// handing it to the wrapped service.
type MetricService struct {
	cookbook.MetricService
	metrics *Metrics
}

// NewMetricService wraps svc.
func NewMetricService(svc cookbook.MetricService, metrics *Metrics) *MetricService {
	return &MetricService{MetricService: svc, metrics: metrics}
}

// CreateMetric records the extraction in Prometheus and the wrapped service.
func (s *MetricService) CreateMetric(ctx context.Context, m *cookbook.ExtractionMetric) error {
	s.metrics.ObserveExtraction(m)
	return s.MetricService.CreateMetric(ctx, m)
}

// ObserveExtraction updates the extraction collectors from m.
func (m *Metrics) ObserveExtraction(x *cookbook.ExtractionMetric) {
	strategy := string(x.FinalStrategy)
	if strategy == "" {
		strategy = string(x.PrimaryStrategy)
	}
	provider := string(x.AIProvider)
	if provider == "" {
		provider = "none"
	}

	outcome := OutcomeFailure
	switch {
	case x.Success && x.FallbackUsed:
		outcome = OutcomeFallback
	case x.Success:
		outcome = OutcomeSuccess
	}

	m.extractions.WithLabelValues(strategy, provider, outcome).Inc()
	m.extractionDuration.WithLabelValues(strategy).Observe(x.TotalDuration.Seconds())
	if x.EstimatedCost > 0 {
		m.extractionCost.WithLabelValues(provider).Add(x.EstimatedCost)
	}
	if x.PromptTokens > 0 {
		m.extractionTokens.WithLabelValues(provider, "prompt").Add(float64(x.PromptTokens))
	}
	if x.ResponseTokens > 0 {
		m.extractionTokens.WithLabelValues(provider, "response").Add(float64(x.ResponseTokens))
	}
}
