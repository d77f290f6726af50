package category_test

import (
	"context"
	"testing"

	"github.com/fwojciec/cookbook"
	"github.com/fwojciec/cookbook/category"
	"github.com/fwojciec/cookbook/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeWith(cats ...*cookbook.Category) *mock.CategoryService {
	return &mock.CategoryService{
		FindCategoriesFn: func(_ context.Context, _ string) ([]*cookbook.Category, error) {
			return cats, nil
		},
	}
}

func newManager(store cookbook.CategoryService) *category.Manager {
	return category.NewManager(store, category.NewValidator(), category.NewSuggester())
}

func TestManager_ListCategories(t *testing.T) {
	t.Parallel()

	t.Run("merges predefined list and sorts by count", func(t *testing.T) {
		t.Parallel()

		m := newManager(storeWith(
			&cookbook.Category{Name: "Weeknight", RecipeCount: 2, Source: cookbook.CategorySourceUserCreated},
			&cookbook.Category{Name: "Soup", RecipeCount: 5, Source: cookbook.CategorySourceAIGenerated},
		))

		got, err := m.ListCategories(context.Background(), "user-1")

		require.NoError(t, err)
		assert.Len(t, got, len(cookbook.PredefinedCategories)+1)
		assert.Equal(t, "Soup", got[0].Name)
		assert.True(t, got[0].IsPredefined)
		assert.Equal(t, "Weeknight", got[1].Name)
		assert.False(t, got[1].IsPredefined)
		assert.Equal(t, "Appetizer", got[2].Name)
		assert.Equal(t, 0, got[2].RecipeCount)
	})

	t.Run("propagates store error", func(t *testing.T) {
		t.Parallel()

		m := newManager(&mock.CategoryService{
			FindCategoriesFn: func(_ context.Context, _ string) ([]*cookbook.Category, error) {
				return nil, assert.AnError
			},
		})

		_, err := m.ListCategories(context.Background(), "user-1")

		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestManager_RenameCategory(t *testing.T) {
	t.Parallel()

	t.Run("renames through the store", func(t *testing.T) {
		t.Parallel()

		store := storeWith(&cookbook.Category{Name: "Deserts", RecipeCount: 3})
		var gotOld, gotNew string
		store.RenameCategoryFn = func(_ context.Context, _, oldName, newName string) (*cookbook.CategoryChange, error) {
			gotOld, gotNew = oldName, newName
			return &cookbook.CategoryChange{Action: cookbook.CategoryActionRenamed, AffectedRecipes: 3, Target: newName}, nil
		}

		change, err := newManager(store).RenameCategory(context.Background(), "user-1", "deserts", " Desserts ")

		require.NoError(t, err)
		assert.Equal(t, "Deserts", gotOld)
		assert.Equal(t, "Desserts", gotNew)
		assert.Equal(t, 3, change.AffectedRecipes)
	})

	t.Run("missing category is not found", func(t *testing.T) {
		t.Parallel()

		_, err := newManager(storeWith()).RenameCategory(context.Background(), "user-1", "Nope", "Other")

		assert.Equal(t, cookbook.ENOTFOUND, cookbook.ErrorCode(err))
	})

	t.Run("existing target is a conflict with merge suggestion", func(t *testing.T) {
		t.Parallel()

		store := storeWith(
			&cookbook.Category{Name: "Soups", RecipeCount: 1},
			&cookbook.Category{Name: "Soup", RecipeCount: 4},
		)

		_, err := newManager(store).RenameCategory(context.Background(), "user-1", "Soups", "Soup")

		assert.Equal(t, cookbook.ECONFLICT, cookbook.ErrorCode(err))
		assert.Contains(t, cookbook.ErrorSuggestions(err), `Merge "Soups" into "Soup" instead`)
	})
}

func TestManager_MergeCategories(t *testing.T) {
	t.Parallel()

	t.Run("uses existing target spelling and dedupes sources", func(t *testing.T) {
		t.Parallel()

		store := storeWith(
			&cookbook.Category{Name: "Soups", RecipeCount: 1},
			&cookbook.Category{Name: "Stews", RecipeCount: 2},
			&cookbook.Category{Name: "Soup", RecipeCount: 4},
		)
		var gotSources []string
		var gotTarget string
		store.MergeCategoriesFn = func(_ context.Context, _ string, sources []string, target string) (*cookbook.CategoryChange, error) {
			gotSources, gotTarget = sources, target
			return &cookbook.CategoryChange{Action: cookbook.CategoryActionMerged, AffectedRecipes: 3, Target: target}, nil
		}

		change, err := newManager(store).MergeCategories(context.Background(), "user-1", []string{"soups", "Stews", "Soups"}, "SOUP")

		require.NoError(t, err)
		assert.Equal(t, []string{"Soups", "Stews"}, gotSources)
		assert.Equal(t, "Soup", gotTarget)
		assert.Equal(t, cookbook.CategoryActionMerged, change.Action)
	})

	t.Run("missing source is not found", func(t *testing.T) {
		t.Parallel()

		store := storeWith(&cookbook.Category{Name: "Soups", RecipeCount: 1})

		_, err := newManager(store).MergeCategories(context.Background(), "user-1", []string{"Soups", "Ghost"}, "Soup")

		assert.Equal(t, cookbook.ENOTFOUND, cookbook.ErrorCode(err))
	})

	t.Run("empty sources are not found", func(t *testing.T) {
		t.Parallel()

		store := storeWith(&cookbook.Category{Name: "Soups"})

		_, err := newManager(store).MergeCategories(context.Background(), "user-1", []string{"Soups"}, "Soup")

		assert.Equal(t, cookbook.ENOTFOUND, cookbook.ErrorCode(err))
	})

	t.Run("invalid request is rejected before storage", func(t *testing.T) {
		t.Parallel()

		_, err := newManager(&mock.CategoryService{}).MergeCategories(context.Background(), "user-1", nil, "Soup")

		assert.Equal(t, cookbook.EINVALID, cookbook.ErrorCode(err))
	})
}

func TestManager_DeleteCategory(t *testing.T) {
	t.Parallel()

	t.Run("empty category ignores options", func(t *testing.T) {
		t.Parallel()

		store := storeWith(&cookbook.Category{Name: "Old"})
		var gotOpts cookbook.DeleteCategoryOptions
		store.DeleteCategoryFn = func(_ context.Context, _, _ string, opts cookbook.DeleteCategoryOptions) (*cookbook.CategoryChange, error) {
			gotOpts = opts
			return &cookbook.CategoryChange{Action: cookbook.CategoryActionEmptyCategoryRemoved}, nil
		}

		change, err := newManager(store).DeleteCategory(context.Background(), "user-1", "old", cookbook.DeleteCategoryOptions{Force: true})

		require.NoError(t, err)
		assert.Equal(t, cookbook.DeleteCategoryOptions{}, gotOpts)
		assert.Equal(t, cookbook.CategoryActionEmptyCategoryRemoved, change.Action)
	})

	t.Run("requires move or force for recipes", func(t *testing.T) {
		t.Parallel()

		store := storeWith(&cookbook.Category{Name: "Old", RecipeCount: 3})

		_, err := newManager(store).DeleteCategory(context.Background(), "user-1", "Old", cookbook.DeleteCategoryOptions{})

		assert.Equal(t, cookbook.EINVALID, cookbook.ErrorCode(err))
	})

	t.Run("move wins over force", func(t *testing.T) {
		t.Parallel()

		store := storeWith(
			&cookbook.Category{Name: "Old", RecipeCount: 3},
			&cookbook.Category{Name: "New", RecipeCount: 1},
		)
		var gotOpts cookbook.DeleteCategoryOptions
		store.DeleteCategoryFn = func(_ context.Context, _, _ string, opts cookbook.DeleteCategoryOptions) (*cookbook.CategoryChange, error) {
			gotOpts = opts
			return &cookbook.CategoryChange{Action: cookbook.CategoryActionDeleteWithMigration, AffectedRecipes: 3}, nil
		}

		_, err := newManager(store).DeleteCategory(context.Background(), "user-1", "Old", cookbook.DeleteCategoryOptions{MoveTo: "new", Force: true})

		require.NoError(t, err)
		assert.Equal(t, cookbook.DeleteCategoryOptions{MoveTo: "New"}, gotOpts)
	})

	t.Run("force carries warning", func(t *testing.T) {
		t.Parallel()

		store := storeWith(&cookbook.Category{Name: "Old", RecipeCount: 2})
		store.DeleteCategoryFn = func(_ context.Context, _, _ string, _ cookbook.DeleteCategoryOptions) (*cookbook.CategoryChange, error) {
			return &cookbook.CategoryChange{Action: cookbook.CategoryActionForceDelete, AffectedRecipes: 2}, nil
		}

		change, err := newManager(store).DeleteCategory(context.Background(), "user-1", "Old", cookbook.DeleteCategoryOptions{Force: true})

		require.NoError(t, err)
		assert.Len(t, change.Warnings, 1)
	})

	t.Run("missing category is not found", func(t *testing.T) {
		t.Parallel()

		_, err := newManager(storeWith()).DeleteCategory(context.Background(), "user-1", "Old", cookbook.DeleteCategoryOptions{})

		assert.Equal(t, cookbook.ENOTFOUND, cookbook.ErrorCode(err))
	})
}

func TestManager_SuggestCategories(t *testing.T) {
	t.Parallel()

	t.Run("loads owner categories", func(t *testing.T) {
		t.Parallel()

		var gotOpts cookbook.SuggestOptions
		m := category.NewManager(
			storeWith(&cookbook.Category{Name: "Weeknight"}),
			category.NewValidator(),
			&mock.Suggester{
				SuggestFn: func(_ context.Context, _ cookbook.RecipeContent, opts cookbook.SuggestOptions) ([]cookbook.Suggestion, error) {
					gotOpts = opts
					return nil, nil
				},
			},
		)

		_, err := m.SuggestCategories(context.Background(), "user-1", cookbook.RecipeContent{Title: "x"}, cookbook.SuggestOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"Weeknight"}, gotOpts.UserCategories)
	})

	t.Run("anonymous request skips storage", func(t *testing.T) {
		t.Parallel()

		m := category.NewManager(&mock.CategoryService{}, category.NewValidator(), &mock.Suggester{
			SuggestFn: func(_ context.Context, _ cookbook.RecipeContent, opts cookbook.SuggestOptions) ([]cookbook.Suggestion, error) {
				return []cookbook.Suggestion{{Category: "Soup"}}, nil
			},
		})

		got, err := m.SuggestCategories(context.Background(), "", cookbook.RecipeContent{Title: "x"}, cookbook.SuggestOptions{})

		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
