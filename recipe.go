package cookbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Recipe represents a recipe saved by a user.
type Recipe struct {
	ID                 string         `json:"id"`
	OwnerID            string         `json:"ownerId"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Ingredients        []string       `json:"ingredients"`
	Steps              []string       `json:"steps"`
	Image              *string        `json:"image"`
	Cuisine            string         `json:"cuisine"`
	Category           string         `json:"category"`
	CategorySource     CategorySource `json:"categorySource"`
	CategoryConfidence float64        `json:"categoryConfidence"`
	PrepTime           string         `json:"prepTime"`
	CleanupTime        string         `json:"cleanupTime"`
	SourceURL          string         `json:"sourceUrl"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// Validate returns an error if the recipe contains invalid fields.
func (r *Recipe) Validate() error {
	if r.OwnerID == "" {
		return Errorf(EINVALID, "recipe owner required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return Errorf(EINVALID, "recipe title required")
	}
	if len(r.Ingredients) == 0 {
		return Errorf(EINVALID, "recipe ingredients required")
	}
	if len(r.Steps) == 0 {
		return Errorf(EINVALID, "recipe steps required")
	}
	if strings.TrimSpace(r.Category) == "" {
		return Errorf(EINVALID, "recipe category required")
	}
	if r.Image != nil && !isAbsoluteHTTPURL(*r.Image) {
		return Errorf(EINVALID, "recipe image must be an absolute URL")
	}
	return nil
}

// Normalize trims the title, maps orphaned category values onto
// Uncategorized and fills the category source.
func (r *Recipe) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Category = NormalizeCategoryName(r.Category)
	if r.CategorySource == "" {
		r.CategorySource = CategorySourceUserCreated
	}
	if r.Image != nil && strings.TrimSpace(*r.Image) == "" {
		r.Image = nil
	}
}

// RecipeService represents a service for managing recipes.
type RecipeService interface {
	// CreateRecipe creates a new recipe, creating its category if needed.
	// Returns ECONFLICT if the owner already has a recipe with the same title.
	CreateRecipe(ctx context.Context, recipe *Recipe) error

	// FindRecipeByID retrieves a recipe by ID.
	// Returns ENOTFOUND if recipe does not exist.
	FindRecipeByID(ctx context.Context, id string) (*Recipe, error)

	// FindRecipes retrieves recipes matching the filter.
	FindRecipes(ctx context.Context, filter RecipeFilter) ([]*Recipe, error)

	// UpdateRecipe updates an existing recipe.
	// Returns ENOTFOUND if recipe does not exist and ECONFLICT on a title clash.
	UpdateRecipe(ctx context.Context, id string, upd RecipeUpdate) (*Recipe, error)

	// DeleteRecipe permanently removes a recipe.
	// Returns ENOTFOUND if recipe does not exist.
	DeleteRecipe(ctx context.Context, id string) error
}

// RecipeWriter writes recipes to an external destination such as an export
// directory.
type RecipeWriter interface {
	WriteRecipe(ctx context.Context, recipe *Recipe) error
}

// RecipeFilter represents a filter for FindRecipes.
type RecipeFilter struct {
	ID       *string `json:"id"`
	OwnerID  *string `json:"ownerId"`
	Category *string `json:"category"`
	Title    *string `json:"title"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RecipeUpdate represents fields that can be updated on a recipe.
type RecipeUpdate struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	Image       *string  `json:"image"`
	Cuisine     *string  `json:"cuisine"`
	Category    *string  `json:"category"`
	PrepTime    *string  `json:"prepTime"`
	CleanupTime *string  `json:"cleanupTime"`
}

// RecipeDraft is the result of extracting a recipe from a web page.
// Every field is always present when serialized.
type RecipeDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	Image       *string  `json:"image"`
	Cuisine     string   `json:"cuisine"`
	Category    string   `json:"category"`
	PrepTime    string   `json:"prepTime"`
	CleanupTime string   `json:"cleanupTime"`
}

// Normalize trims text fields, drops blank list entries and replaces nil
// lists with empty ones.
func (d *RecipeDraft) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Cuisine = strings.TrimSpace(d.Cuisine)
	d.Category = strings.TrimSpace(d.Category)
	d.PrepTime = strings.TrimSpace(d.PrepTime)
	d.CleanupTime = strings.TrimSpace(d.CleanupTime)
	d.Ingredients = compactLines(d.Ingredients)
	d.Steps = compactLines(d.Steps)
	if d.Image != nil {
		img := strings.TrimSpace(*d.Image)
		if img == "" || strings.EqualFold(img, "null") || img == "image_url_or_null" {
			d.Image = nil
		} else {
			d.Image = &img
		}
	}
}

// MissingRequired returns the names of required fields that are empty.
func (d *RecipeDraft) MissingRequired() []string {
	var missing []string
	if d.Title == "" {
		missing = append(missing, "title")
	}
	if len(d.Ingredients) == 0 {
		missing = append(missing, "ingredients")
	}
	if len(d.Steps) == 0 {
		missing = append(missing, "steps")
	}
	return missing
}

// Recipe converts the draft into a recipe owned by ownerID.
func (d *RecipeDraft) Recipe(ownerID, sourceURL string) *Recipe {
	return &Recipe{
		OwnerID:        ownerID,
		Title:          d.Title,
		Description:    d.Description,
		Ingredients:    d.Ingredients,
		Steps:          d.Steps,
		Image:          d.Image,
		Cuisine:        d.Cuisine,
		Category:       d.Category,
		CategorySource: CategorySourceAIGenerated,
		PrepTime:       d.PrepTime,
		CleanupTime:    d.CleanupTime,
		SourceURL:      sourceURL,
	}
}

// ErrNoRecipe is returned when a model reports that a page holds no recipe.
var ErrNoRecipe = errors.New("no recipe found")

// ErrMalformedResponse is returned when a model response cannot be decoded
// into a recipe draft.
var ErrMalformedResponse = errors.New("malformed model response")

// ParseRecipeDraft decodes a model response into a normalized draft.
// Code fences and prose around the JSON object are ignored. An empty object
// yields ErrNoRecipe.
func ParseRecipeDraft(content string) (*RecipeDraft, error) {
	content = CleanJSONResponse(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(raw) == 0 {
		return nil, ErrNoRecipe
	}

	var draft RecipeDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	draft.Normalize()
	return &draft, nil
}

// CleanJSONResponse strips markdown code fences and surrounding prose from a
// model response, leaving the outermost JSON object.
func CleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

// ResolveImageURL turns a relative or protocol-relative image reference into
// an absolute URL using the page URL as base. Returns nil when the reference
// cannot be resolved.
func ResolveImageURL(image *string, pageURL string) *string {
	if image == nil || *image == "" {
		return nil
	}
	ref := *image
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return &ref
	}
	if strings.HasPrefix(ref, "//") {
		abs := "https:" + ref
		return &abs
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	u, err := base.Parse(ref)
	if err != nil {
		return nil
	}
	abs := u.String()
	return &abs
}

func compactLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
