package extract

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/cookbook"
	"golang.org/x/time/rate"
)

var _ cookbook.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces page fetches per recipe site. Site names are
// normalized like cookbook.DomainOf, so www.example.com and example.com
// share one bucket.
type DomainLimiter struct {
	limit rate.Limit
	burst int
	rates map[string]rate.Limit

	mu    sync.Mutex
	sites map[string]*rate.Limiter
}

// LimiterOption configures a DomainLimiter.
type LimiterOption func(*DomainLimiter)

// WithBurst lets a site take n fetches back to back before spacing applies.
func WithBurst(n int) LimiterOption {
	return func(d *DomainLimiter) {
		if n > 0 {
			d.burst = n
		}
	}
}

// WithDomainRate overrides the fetch rate of one site. A non-positive rps
// leaves the site unlimited.
func WithDomainRate(domain string, rps float64) LimiterOption {
	return func(d *DomainLimiter) {
		d.rates[siteKey(domain)] = limitOf(rps)
	}
}

// NewDomainLimiter creates a DomainLimiter allowing rps fetches per second
// to each site with a burst of one. A non-positive rps disables limiting.
func NewDomainLimiter(rps float64, opts ...LimiterOption) *DomainLimiter {
	d := &DomainLimiter{
		limit: limitOf(rps),
		burst: 1,
		rates: make(map[string]rate.Limit),
		sites: make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Wait blocks until a fetch from domain is allowed or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return d.site(siteKey(domain)).Wait(ctx)
}

func (d *DomainLimiter) site(key string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.sites[key]
	if !ok {
		limit, ok := d.rates[key]
		if !ok {
			limit = d.limit
		}
		l = rate.NewLimiter(limit, d.burst)
		d.sites[key] = l
	}
	return l
}

func siteKey(domain string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "www.")
}

func limitOf(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}
