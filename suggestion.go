package cookbook

import "context"

// SuggestionSource names the heuristic that produced a suggestion.
type SuggestionSource string

// SuggestionSource constants.
const (
	SuggestionSourceIngredient SuggestionSource = "ingredient"
	SuggestionSourceMethod     SuggestionSource = "method"
	SuggestionSourceMealtime   SuggestionSource = "mealtime"
	SuggestionSourceKeyword    SuggestionSource = "keyword"
	SuggestionSourceSimilarity SuggestionSource = "similarity"
)

// Suggestion is a candidate category with a confidence in [0,1].
type Suggestion struct {
	Category   string           `json:"category"`
	Confidence float64          `json:"confidence"`
	Reasoning  string           `json:"reasoning"`
	Source     SuggestionSource `json:"source"`
}

// RecipeContent is the recipe text used for suggestions.
type RecipeContent struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"instructions"`
}

// SuggestOptions tunes a suggestion request.
type SuggestOptions struct {
	MaxSuggestions int     `json:"maxSuggestions"`
	MinConfidence  float64 `json:"minConfidence"`

	// UserCategories are the owner's existing category names.
	UserCategories []string `json:"userCategories"`
}

// Default suggestion options.
const (
	DefaultMaxSuggestions = 5
	DefaultMinConfidence  = 0.3
)

// Suggester ranks categories for recipe content.
type Suggester interface {
	// Suggest returns suggestions ranked by descending confidence, filtered
	// by opts.MinConfidence and truncated to opts.MaxSuggestions.
	Suggest(ctx context.Context, content RecipeContent, opts SuggestOptions) ([]Suggestion, error)
}
