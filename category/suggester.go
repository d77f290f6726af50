package category

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/cookbook"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/kljensen/snowball/english"
)

// Ensure Suggester implements cookbook.Suggester.
var _ cookbook.Suggester = (*Suggester)(nil)

// Default cache settings.
const (
	DefaultCacheSize = 1000
	DefaultCacheTTL  = 30 * time.Minute
)

// Policy holds the scoring constants of the suggestion heuristics.
type Policy struct {
	IngredientScale float64
	IngredientCap   float64
	MethodScale     float64
	MethodCap       float64
	MealtimeScale   float64
	MealtimeCap     float64

	KeywordTokenScore  float64
	KeywordPhraseScore float64
	KeywordMin         float64
	KeywordCap         float64

	SimilarityMin float64
}

// DefaultPolicy returns the scoring constants used when none are configured.
func DefaultPolicy() Policy {
	return Policy{
		IngredientScale:    2,
		IngredientCap:      0.9,
		MethodScale:        1.5,
		MethodCap:          0.8,
		MealtimeScale:      1.2,
		MealtimeCap:        0.7,
		KeywordTokenScore:  0.3,
		KeywordPhraseScore: 0.4,
		KeywordMin:         0.2,
		KeywordCap:         0.8,
		SimilarityMin:      0.3,
	}
}

// CacheStats reports suggestion cache effectiveness.
type CacheStats struct {
	Size    int     `json:"size"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hitRate"`
}

// Suggester ranks categories for recipe content using keyword heuristics.
// Results are cached by content for a bounded time.
type Suggester struct {
	policy    Policy
	cacheSize int
	cacheTTL  time.Duration

	cache  *lru.LRU[uint64, []cookbook.Suggestion]
	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Suggester.
type Option func(*Suggester)

// WithPolicy replaces the scoring constants.
func WithPolicy(p Policy) Option {
	return func(s *Suggester) {
		s.policy = p
	}
}

// WithCacheSize sets the maximum number of cached results.
func WithCacheSize(n int) Option {
	return func(s *Suggester) {
		s.cacheSize = n
	}
}

// WithCacheTTL sets how long cached results live.
func WithCacheTTL(d time.Duration) Option {
	return func(s *Suggester) {
		s.cacheTTL = d
	}
}

// NewSuggester creates a new Suggester.
func NewSuggester(opts ...Option) *Suggester {
	s := &Suggester{
		policy:    DefaultPolicy(),
		cacheSize: DefaultCacheSize,
		cacheTTL:  DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = lru.NewLRU[uint64, []cookbook.Suggestion](s.cacheSize, nil, s.cacheTTL)
	return s
}

// Suggest returns category suggestions for content.
func (s *Suggester) Suggest(ctx context.Context, content cookbook.RecipeContent, opts cookbook.SuggestOptions) ([]cookbook.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = cookbook.DefaultMaxSuggestions
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = cookbook.DefaultMinConfidence
	}

	key := cacheKey(content, opts)
	if cached, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		return clone(cached), nil
	}
	s.misses.Add(1)

	var all []cookbook.Suggestion
	all = append(all, s.ingredientSuggestions(content)...)
	all = append(all, s.methodSuggestions(content)...)
	all = append(all, s.mealtimeSuggestions(content)...)
	all = append(all, s.keywordSuggestions(content)...)
	if len(opts.UserCategories) > 0 {
		all = append(all, s.similaritySuggestions(content, opts.UserCategories)...)
	}

	ranked := rank(all, opts)
	s.cache.Add(key, ranked)
	return clone(ranked), nil
}

// CacheStats returns the current cache statistics.
func (s *Suggester) CacheStats() CacheStats {
	hits, misses := s.hits.Load(), s.misses.Load()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return CacheStats{
		Size:    s.cache.Len(),
		Hits:    hits,
		Misses:  misses,
		HitRate: rate,
	}
}

// ClearCache drops all cached results and resets the statistics.
func (s *Suggester) ClearCache() {
	s.cache.Purge()
	s.hits.Store(0)
	s.misses.Store(0)
}

func (s *Suggester) ingredientSuggestions(c cookbook.RecipeContent) []cookbook.Suggestion {
	text := strings.ToLower(strings.Join(c.Ingredients, " "))
	return matchPatterns(text, ingredientPatterns, s.policy.IngredientScale, s.policy.IngredientCap, 3,
		cookbook.SuggestionSourceIngredient, "Contains %d %s ingredients: %s")
}

func (s *Suggester) methodSuggestions(c cookbook.RecipeContent) []cookbook.Suggestion {
	text := strings.ToLower(c.Title + " " + strings.Join(c.Steps, " "))
	return matchPatterns(text, methodPatterns, s.policy.MethodScale, s.policy.MethodCap, 2,
		cookbook.SuggestionSourceMethod, "Uses %d %s cooking method: %s")
}

func (s *Suggester) mealtimeSuggestions(c cookbook.RecipeContent) []cookbook.Suggestion {
	text := strings.ToLower(c.Title + " " + c.Description)
	return matchPatterns(text, mealtimePatterns, s.policy.MealtimeScale, s.policy.MealtimeCap, 2,
		cookbook.SuggestionSourceMealtime, "Indicates %d %s meal: %s")
}

func matchPatterns(text string, patterns []pattern, scale, limit float64, shown int, source cookbook.SuggestionSource, format string) []cookbook.Suggestion {
	var out []cookbook.Suggestion
	for _, p := range patterns {
		var matched []string
		for _, phrase := range p.phrases {
			if strings.Contains(text, phrase) {
				matched = append(matched, phrase)
			}
		}
		if len(matched) == 0 {
			continue
		}
		confidence := math.Min(limit, float64(len(matched))/float64(len(p.phrases))*scale)
		out = append(out, cookbook.Suggestion{
			Category:   p.category,
			Confidence: confidence,
			Reasoning:  fmt.Sprintf(format, len(matched), strings.ToLower(p.category), strings.Join(matched[:min(shown, len(matched))], ", ")),
			Source:     source,
		})
	}
	return out
}

func (s *Suggester) keywordSuggestions(c cookbook.RecipeContent) []cookbook.Suggestion {
	text := fullText(c)
	tokens := stemmedTokens(text)

	var out []cookbook.Suggestion
	for _, category := range commonCategories {
		var score float64
		for t := range stemmedTokens(strings.ToLower(category)) {
			if _, ok := tokens[t]; ok {
				score += s.policy.KeywordTokenScore
			}
		}
		if strings.Contains(text, strings.ToLower(category)) {
			score += s.policy.KeywordPhraseScore
		}
		if score <= s.policy.KeywordMin {
			continue
		}
		out = append(out, cookbook.Suggestion{
			Category:   category,
			Confidence: math.Min(s.policy.KeywordCap, score),
			Reasoning:  fmt.Sprintf("Keyword analysis suggests %s based on content", strings.ToLower(category)),
			Source:     cookbook.SuggestionSourceKeyword,
		})
	}
	return out
}

func (s *Suggester) similaritySuggestions(c cookbook.RecipeContent, categories []string) []cookbook.Suggestion {
	text := fullText(c)

	var out []cookbook.Suggestion
	for _, category := range categories {
		words := strings.Fields(strings.ToLower(category))
		if len(words) == 0 {
			continue
		}
		var matched int
		for _, w := range words {
			if strings.Contains(text, w) {
				matched++
			}
		}
		score := float64(matched) / float64(len(words))
		if score <= s.policy.SimilarityMin {
			continue
		}
		out = append(out, cookbook.Suggestion{
			Category:   category,
			Confidence: score,
			Reasoning:  fmt.Sprintf("Similar to your existing %s recipes", category),
			Source:     cookbook.SuggestionSourceSimilarity,
		})
	}
	return out
}

func fullText(c cookbook.RecipeContent) string {
	parts := []string{c.Title, c.Description}
	parts = append(parts, c.Ingredients...)
	parts = append(parts, c.Steps...)
	return strings.ToLower(strings.Join(parts, " "))
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// stemmedTokens splits lowercase text into stemmed tokens, dropping short
// words and stopwords.
func stemmedTokens(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range nonWord.Split(text, -1) {
		if len([]rune(w)) <= 2 {
			continue
		}
		if _, ok := stopwords[w]; ok {
			continue
		}
		out[english.Stem(w, false)] = struct{}{}
	}
	return out
}

// rank keeps the best suggestion per category above the confidence floor,
// ordered by descending confidence.
func rank(all []cookbook.Suggestion, opts cookbook.SuggestOptions) []cookbook.Suggestion {
	best := make(map[string]cookbook.Suggestion)
	for _, s := range all {
		if s.Confidence < opts.MinConfidence {
			continue
		}
		key := strings.ToLower(s.Category)
		if cur, ok := best[key]; !ok || s.Confidence > cur.Confidence {
			best[key] = s
		}
	}

	out := make([]cookbook.Suggestion, 0, len(best))
	for _, s := range best {
		s.Confidence = math.Round(s.Confidence*1000) / 1000
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > opts.MaxSuggestions {
		out = out[:opts.MaxSuggestions]
	}
	return out
}

func cacheKey(c cookbook.RecipeContent, opts cookbook.SuggestOptions) uint64 {
	d := xxhash.New()
	write := func(s string) {
		_, _ = d.WriteString(s)
		_, _ = d.WriteString("\x00")
	}
	write(c.Title)
	write(c.Description)
	for _, ing := range c.Ingredients[:min(5, len(c.Ingredients))] {
		write(ing)
	}
	write("|")
	for _, step := range c.Steps[:min(3, len(c.Steps))] {
		write(step)
	}
	write(fmt.Sprintf("%d/%g", opts.MaxSuggestions, opts.MinConfidence))
	for _, uc := range opts.UserCategories {
		write(uc)
	}
	return d.Sum64()
}

func clone(in []cookbook.Suggestion) []cookbook.Suggestion {
	out := make([]cookbook.Suggestion, len(in))
	copy(out, in)
	return out
}
