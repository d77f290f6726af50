package sqlite

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/fwojciec/cookbook"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ cookbook.MetricService = (*MetricService)(nil)

// TopDomainsLimit caps the domains reported by SystemAnalytics.
const TopDomainsLimit = 10

// MetricService implements cookbook.MetricService using SQLite.
// Metrics are append-only.
type MetricService struct {
	db  *DB
	now func() time.Time
}

// NewMetricService creates a new MetricService.
func NewMetricService(db *DB) *MetricService {
	return &MetricService{db: db, now: time.Now}
}

// CreateMetric records an extraction attempt.
func (s *MetricService) CreateMetric(ctx context.Context, m *cookbook.ExtractionMetric) error {
	if err := m.Validate(); err != nil {
		return err
	}

	missing, err := encodeList(m.MissingFields)
	if err != nil {
		return err
	}

	m.ID = uuid.New().String()
	m.CreatedAt = s.now().UTC()
	if m.Domain == "" {
		m.Domain = cookbook.DomainOf(m.RecipeURL)
	}
	if m.TotalTokens == 0 {
		m.TotalTokens = m.PromptTokens + m.ResponseTokens
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO extraction_metrics (id, user_id, recipe_url, domain, primary_strategy, final_strategy,
			ai_provider, fallback_used, fallback_reason, total_duration_ms, fetch_duration_ms, ai_duration_ms,
			validation_duration_ms, html_content_size, cleaned_content_size, prompt_tokens, response_tokens,
			total_tokens, success, failure_reason, missing_fields, completeness_score, category_confidence,
			has_structured_data, estimated_cost, recipe_id, was_optimal, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.UserID, m.RecipeURL, m.Domain, string(m.PrimaryStrategy), string(m.FinalStrategy),
		string(m.AIProvider), boolToInt(m.FallbackUsed), string(m.FallbackReason),
		m.TotalDuration.Milliseconds(), m.FetchDuration.Milliseconds(), m.AIDuration.Milliseconds(),
		m.ValidationDuration.Milliseconds(), m.HTMLContentSize, m.CleanedContentSize, m.PromptTokens,
		m.ResponseTokens, m.TotalTokens, boolToInt(m.Success), string(m.FailureReason), missing,
		m.CompletenessScore, m.CategoryConfidence, boolToInt(m.HasStructuredData), m.EstimatedCost,
		m.RecipeID, boolToInt(m.WasOptimal), formatTime(m.CreatedAt))

	return err
}

// LinkRecipe sets the recipe of an unlinked metric owned by the recipe's owner.
func (s *MetricService) LinkRecipe(ctx context.Context, metricID, recipeID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE extraction_metrics
		SET recipe_id = ?
		WHERE id = ? AND recipe_id = ''
			AND user_id = (SELECT owner_id FROM recipes WHERE id = ?)
	`, recipeID, metricID, recipeID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return cookbook.Errorf(cookbook.ENOTFOUND, "extraction metric not found")
	}
	return nil
}

// FindMetrics retrieves metrics matching the filter, newest first.
func (s *MetricService) FindMetrics(ctx context.Context, filter cookbook.MetricFilter) ([]*cookbook.ExtractionMetric, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, user_id, recipe_url, domain, primary_strategy, final_strategy, ai_provider,
		fallback_used, fallback_reason, total_duration_ms, fetch_duration_ms, ai_duration_ms,
		validation_duration_ms, html_content_size, cleaned_content_size, prompt_tokens, response_tokens,
		total_tokens, success, failure_reason, missing_fields, completeness_score, category_confidence,
		has_structured_data, estimated_cost, recipe_id, was_optimal, created_at
		FROM extraction_metrics WHERE 1=1`)

	if filter.UserID != nil {
		query.WriteString(" AND user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.Domain != nil {
		query.WriteString(" AND domain = ?")
		args = append(args, *filter.Domain)
	}
	if filter.Success != nil {
		query.WriteString(" AND success = ?")
		args = append(args, boolToInt(*filter.Success))
	}
	if filter.Since != nil {
		query.WriteString(" AND created_at >= ?")
		args = append(args, formatTime(*filter.Since))
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []*cookbook.ExtractionMetric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// DomainPerformance aggregates every metric recorded for a domain.
func (s *MetricService) DomainPerformance(ctx context.Context, domain string) (*cookbook.DomainPerformance, error) {
	var attempts, urlDirectAttempts, urlDirectSuccesses int
	var successRate, avgDurationMS, avgCost float64

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(AVG(success), 0),
			COALESCE(AVG(total_duration_ms), 0),
			COALESCE(AVG(estimated_cost), 0),
			COALESCE(SUM(primary_strategy = 'URL_DIRECT'), 0),
			COALESCE(SUM(primary_strategy = 'URL_DIRECT' AND success = 1 AND fallback_used = 0), 0)
		FROM extraction_metrics
		WHERE domain = ?
	`, domain).Scan(&attempts, &successRate, &avgDurationMS, &avgCost, &urlDirectAttempts, &urlDirectSuccesses)
	if err != nil {
		return nil, err
	}
	if attempts == 0 {
		return nil, cookbook.Errorf(cookbook.ENOTFOUND, "no metrics for domain %q", domain)
	}

	return &cookbook.DomainPerformance{
		Domain:               domain,
		Attempts:             attempts,
		SuccessRate:          round3(successRate),
		URLDirectSuccessRate: round3(ratio(urlDirectSuccesses, urlDirectAttempts)),
		AverageDuration:      msDuration(avgDurationMS),
		AverageCost:          round6(avgCost),
	}, nil
}

// UserAnalytics aggregates a user's metrics over the last days.
func (s *MetricService) UserAnalytics(ctx context.Context, userID string, days int) (*cookbook.UserAnalytics, error) {
	since := formatTime(s.since(days))

	a := &cookbook.UserAnalytics{UserID: userID, Days: days}
	var successRate, avgDurationMS, totalCost float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(AVG(success), 0),
			COALESCE(AVG(total_duration_ms), 0),
			COALESCE(SUM(estimated_cost), 0)
		FROM extraction_metrics
		WHERE user_id = ? AND created_at >= ?
	`, userID, since).Scan(&a.Extractions, &successRate, &avgDurationMS, &totalCost)
	if err != nil {
		return nil, err
	}

	a.SuccessRate = round3(successRate)
	a.AverageDuration = msDuration(avgDurationMS)
	a.TotalCost = round6(totalCost)
	return a, nil
}

// SystemAnalytics aggregates all metrics over the last days.
func (s *MetricService) SystemAnalytics(ctx context.Context, days int) (*cookbook.SystemAnalytics, error) {
	since := formatTime(s.since(days))

	a := &cookbook.SystemAnalytics{
		Days:       days,
		Providers:  []*cookbook.ProviderStats{},
		TopDomains: []*cookbook.DomainPerformance{},
	}
	var successRate, fallbackRate, completeness, totalCost float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(AVG(success), 0),
			COALESCE(AVG(fallback_used), 0),
			COALESCE(AVG(CASE WHEN success = 1 THEN completeness_score END), 0),
			COALESCE(SUM(estimated_cost), 0)
		FROM extraction_metrics
		WHERE created_at >= ?
	`, since).Scan(&a.Extractions, &successRate, &fallbackRate, &completeness, &totalCost)
	if err != nil {
		return nil, err
	}
	a.SuccessRate = round3(successRate)
	a.FallbackRate = round3(fallbackRate)
	a.AverageCompleteness = round3(completeness)
	a.TotalCost = round6(totalCost)

	if a.Providers, err = s.providerStats(ctx, since); err != nil {
		return nil, err
	}
	if a.TopDomains, err = s.topDomains(ctx, since); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *MetricService) providerStats(ctx context.Context, since string) ([]*cookbook.ProviderStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ai_provider, COUNT(*), AVG(success), SUM(estimated_cost), SUM(total_tokens)
		FROM extraction_metrics
		WHERE created_at >= ? AND ai_provider != ''
		GROUP BY ai_provider
		ORDER BY COUNT(*) DESC, ai_provider
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []*cookbook.ProviderStats{}
	for rows.Next() {
		var p cookbook.ProviderStats
		var provider string
		if err := rows.Scan(&provider, &p.Extractions, &p.SuccessRate, &p.TotalCost, &p.TotalTokens); err != nil {
			return nil, err
		}
		p.Provider = cookbook.Provider(provider)
		p.SuccessRate = round3(p.SuccessRate)
		p.TotalCost = round6(p.TotalCost)
		stats = append(stats, &p)
	}
	return stats, rows.Err()
}

func (s *MetricService) topDomains(ctx context.Context, since string) ([]*cookbook.DomainPerformance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT domain, COUNT(*), AVG(success), AVG(total_duration_ms), AVG(estimated_cost),
			SUM(primary_strategy = 'URL_DIRECT'),
			SUM(primary_strategy = 'URL_DIRECT' AND success = 1 AND fallback_used = 0)
		FROM extraction_metrics
		WHERE created_at >= ? AND domain != ''
		GROUP BY domain
		ORDER BY COUNT(*) DESC, domain
		LIMIT ?
	`, since, TopDomainsLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	domains := []*cookbook.DomainPerformance{}
	for rows.Next() {
		var d cookbook.DomainPerformance
		var successRate, avgDurationMS, avgCost float64
		var urlDirectAttempts, urlDirectSuccesses int
		if err := rows.Scan(&d.Domain, &d.Attempts, &successRate, &avgDurationMS, &avgCost,
			&urlDirectAttempts, &urlDirectSuccesses); err != nil {
			return nil, err
		}
		d.SuccessRate = round3(successRate)
		d.URLDirectSuccessRate = round3(ratio(urlDirectSuccesses, urlDirectAttempts))
		d.AverageDuration = msDuration(avgDurationMS)
		d.AverageCost = round6(avgCost)
		domains = append(domains, &d)
	}
	return domains, rows.Err()
}

func (s *MetricService) since(days int) time.Time {
	return s.now().UTC().AddDate(0, 0, -days)
}

func scanMetric(row scanner) (*cookbook.ExtractionMetric, error) {
	var m cookbook.ExtractionMetric
	var primary, final, provider, fallbackReason, failureReason, missing, createdAt string
	var totalMS, fetchMS, aiMS, validationMS int64
	var fallbackUsed, success, structured, optimal int

	if err := row.Scan(&m.ID, &m.UserID, &m.RecipeURL, &m.Domain, &primary, &final, &provider,
		&fallbackUsed, &fallbackReason, &totalMS, &fetchMS, &aiMS, &validationMS,
		&m.HTMLContentSize, &m.CleanedContentSize, &m.PromptTokens, &m.ResponseTokens, &m.TotalTokens,
		&success, &failureReason, &missing, &m.CompletenessScore, &m.CategoryConfidence,
		&structured, &m.EstimatedCost, &m.RecipeID, &optimal, &createdAt); err != nil {
		return nil, err
	}

	m.PrimaryStrategy = cookbook.Strategy(primary)
	m.FinalStrategy = cookbook.Strategy(final)
	m.AIProvider = cookbook.Provider(provider)
	m.FallbackReason = cookbook.FailureReason(fallbackReason)
	m.FailureReason = cookbook.FailureReason(failureReason)
	m.FallbackUsed = fallbackUsed != 0
	m.Success = success != 0
	m.HasStructuredData = structured != 0
	m.WasOptimal = optimal != 0
	m.TotalDuration = time.Duration(totalMS) * time.Millisecond
	m.FetchDuration = time.Duration(fetchMS) * time.Millisecond
	m.AIDuration = time.Duration(aiMS) * time.Millisecond
	m.ValidationDuration = time.Duration(validationMS) * time.Millisecond

	var err error
	if m.MissingFields, err = decodeList(missing, "missing_fields"); err != nil {
		return nil, err
	}
	if m.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &m, nil
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func msDuration(ms float64) time.Duration {
	return time.Duration(math.Round(ms)) * time.Millisecond
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
