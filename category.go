package cookbook

import (
	"context"
	"strings"
	"time"
)

// CategorySource records the provenance of a recipe's category.
type CategorySource string

// CategorySource constants.
const (
	CategorySourcePredefined  CategorySource = "PREDEFINED"
	CategorySourceAIGenerated CategorySource = "AI_GENERATED"
	CategorySourceUserCreated CategorySource = "USER_CREATED"
)

// Uncategorized is the category assigned to orphaned recipes.
const Uncategorized = "Uncategorized"

// PredefinedCategories are offered to every user regardless of their recipes.
var PredefinedCategories = []string{
	"Appetizer",
	"Beef",
	"Beverage",
	"Breakfast",
	"Chicken",
	"Dessert",
	"Drinks",
	"Lamb",
	"Pasta",
	"Pork",
	"Salad",
	"Sauce",
	"Seafood",
	"Side Dish",
	"Sauces & Seasoning",
	"Soup",
	"Thanksgiving",
	"Vegetable",
}

// IsPredefinedCategory reports whether name is one of the predefined
// categories, ignoring case.
func IsPredefinedCategory(name string) bool {
	for _, c := range PredefinedCategories {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// IsOrphanedCategory reports whether a category value marks a recipe as
// having no real category.
func IsOrphanedCategory(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "undefined", "null", "uncategorized":
		return true
	}
	return false
}

// NormalizeCategoryName trims the name and maps orphaned values onto
// Uncategorized.
func NormalizeCategoryName(name string) string {
	if IsOrphanedCategory(name) {
		return Uncategorized
	}
	return strings.TrimSpace(name)
}

// Category is a named group of recipes belonging to one user.
type Category struct {
	ID           string         `json:"id,omitempty"`
	OwnerID      string         `json:"ownerId,omitempty"`
	Name         string         `json:"name"`
	Source       CategorySource `json:"source"`
	RecipeCount  int            `json:"count"`
	IsPredefined bool           `json:"isPredefined"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// CategoryAction describes what a category operation did.
type CategoryAction string

// CategoryAction constants.
const (
	CategoryActionRenamed              CategoryAction = "renamed"
	CategoryActionMerged               CategoryAction = "merged"
	CategoryActionEmptyCategoryRemoved CategoryAction = "empty_category_removed"
	CategoryActionDeleteWithMigration  CategoryAction = "delete_with_migration"
	CategoryActionForceDelete          CategoryAction = "force_delete"
)

// CategoryChange reports the outcome of a rename, merge or delete.
type CategoryChange struct {
	Action          CategoryAction `json:"action"`
	AffectedRecipes int            `json:"affectedRecipes"`
	Target          string         `json:"target,omitempty"`
	Warnings        []string       `json:"warnings,omitempty"`
}

// DeleteCategoryOptions controls what happens to recipes in a deleted category.
type DeleteCategoryOptions struct {
	MoveTo string `json:"moveToCategory"`
	Force  bool   `json:"forceDelete"`
}

// CategoryService represents category storage. Each mutating call is a
// single transaction and stamps affected recipes as USER_CREATED with
// confidence 1.0.
type CategoryService interface {
	// FindCategories returns the owner's categories with recipe counts.
	FindCategories(ctx context.Context, ownerID string) ([]*Category, error)

	// FindCategoryByName retrieves a category by name.
	// Returns ENOTFOUND if the owner has no such category.
	FindCategoryByName(ctx context.Context, ownerID, name string) (*Category, error)

	// RenameCategory renames a category in place.
	// Returns ENOTFOUND if oldName does not exist and ECONFLICT if newName does.
	RenameCategory(ctx context.Context, ownerID, oldName, newName string) (*CategoryChange, error)

	// MergeCategories moves all recipes of the sources into target, creating
	// target if needed, and removes the sources.
	// Returns ENOTFOUND if any source does not exist.
	MergeCategories(ctx context.Context, ownerID string, sources []string, target string) (*CategoryChange, error)

	// DeleteCategory removes a category. Recipes are moved to opts.MoveTo
	// or, with opts.Force, deleted.
	// Returns ENOTFOUND if the category does not exist.
	DeleteCategory(ctx context.Context, ownerID, name string, opts DeleteCategoryOptions) (*CategoryChange, error)
}

// CategoryManager represents validated category operations for a user.
type CategoryManager interface {
	// ListCategories returns the owner's categories merged with the
	// predefined list, sorted by recipe count then name.
	ListCategories(ctx context.Context, ownerID string) ([]*Category, error)

	// RenameCategory validates and renames a category.
	RenameCategory(ctx context.Context, ownerID, oldName, newName string) (*CategoryChange, error)

	// MergeCategories validates and merges categories into a target.
	MergeCategories(ctx context.Context, ownerID string, sources []string, target string) (*CategoryChange, error)

	// DeleteCategory validates and deletes a category.
	DeleteCategory(ctx context.Context, ownerID, name string, opts DeleteCategoryOptions) (*CategoryChange, error)

	// SuggestCategories suggests categories for recipe content, optionally
	// taking the owner's categories into account.
	SuggestCategories(ctx context.Context, ownerID string, content RecipeContent, opts SuggestOptions) ([]Suggestion, error)
}
