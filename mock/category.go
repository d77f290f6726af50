package mock

import (
	"context"

	"github.com/fwojciec/cookbook"
)

var _ cookbook.CategoryService = (*CategoryService)(nil)

// CategoryService is a mock implementation of cookbook.CategoryService.
type CategoryService struct {
	FindCategoriesFn     func(ctx context.Context, ownerID string) ([]*cookbook.Category, error)
	FindCategoryByNameFn func(ctx context.Context, ownerID, name string) (*cookbook.Category, error)
	RenameCategoryFn     func(ctx context.Context, ownerID, oldName, newName string) (*cookbook.CategoryChange, error)
	MergeCategoriesFn    func(ctx context.Context, ownerID string, sources []string, target string) (*cookbook.CategoryChange, error)
	DeleteCategoryFn     func(ctx context.Context, ownerID, name string, opts cookbook.DeleteCategoryOptions) (*cookbook.CategoryChange, error)
}

func (s *CategoryService) FindCategories(ctx context.Context, ownerID string) ([]*cookbook.Category, error) {
	return s.FindCategoriesFn(ctx, ownerID)
}

func (s *CategoryService) FindCategoryByName(ctx context.Context, ownerID, name string) (*cookbook.Category, error) {
	return s.FindCategoryByNameFn(ctx, ownerID, name)
}

func (s *CategoryService) RenameCategory(ctx context.Context, ownerID, oldName, newName string) (*cookbook.CategoryChange, error) {
	return s.RenameCategoryFn(ctx, ownerID, oldName, newName)
}

func (s *CategoryService) MergeCategories(ctx context.Context, ownerID string, sources []string, target string) (*cookbook.CategoryChange, error) {
	return s.MergeCategoriesFn(ctx, ownerID, sources, target)
}

func (s *CategoryService) DeleteCategory(ctx context.Context, ownerID, name string, opts cookbook.DeleteCategoryOptions) (*cookbook.CategoryChange, error) {
	return s.DeleteCategoryFn(ctx, ownerID, name, opts)
}

var _ cookbook.CategoryManager = (*CategoryManager)(nil)

// CategoryManager is a mock implementation of cookbook.CategoryManager.
type CategoryManager struct {
	ListCategoriesFn    func(ctx context.Context, ownerID string) ([]*cookbook.Category, error)
	RenameCategoryFn    func(ctx context.Context, ownerID, oldName, newName string) (*cookbook.CategoryChange, error)
	MergeCategoriesFn   func(ctx context.Context, ownerID string, sources []string, target string) (*cookbook.CategoryChange, error)
	DeleteCategoryFn    func(ctx context.Context, ownerID, name string, opts cookbook.DeleteCategoryOptions) (*cookbook.CategoryChange, error)
	SuggestCategoriesFn func(ctx context.Context, ownerID string, content cookbook.RecipeContent, opts cookbook.SuggestOptions) ([]cookbook.Suggestion, error)
}

func (m *CategoryManager) ListCategories(ctx context.Context, ownerID string) ([]*cookbook.Category, error) {
	return m.ListCategoriesFn(ctx, ownerID)
}

func (m *CategoryManager) RenameCategory(ctx context.Context, ownerID, oldName, newName string) (*cookbook.CategoryChange, error) {
	return m.RenameCategoryFn(ctx, ownerID, oldName, newName)
}

func (m *CategoryManager) MergeCategories(ctx context.Context, ownerID string, sources []string, target string) (*cookbook.CategoryChange, error) {
	return m.MergeCategoriesFn(ctx, ownerID, sources, target)
}

func (m *CategoryManager) DeleteCategory(ctx context.Context, ownerID, name string, opts cookbook.DeleteCategoryOptions) (*cookbook.CategoryChange, error) {
	return m.DeleteCategoryFn(ctx, ownerID, name, opts)
}

func (m *CategoryManager) SuggestCategories(ctx context.Context, ownerID string, content cookbook.RecipeContent, opts cookbook.SuggestOptions) ([]cookbook.Suggestion, error) {
	return m.SuggestCategoriesFn(ctx, ownerID, content, opts)
}

var _ cookbook.Suggester = (*Suggester)(nil)

// Suggester is a mock implementation of cookbook.Suggester.
type Suggester struct {
	SuggestFn func(ctx context.Context, content cookbook.RecipeContent, opts cookbook.SuggestOptions) ([]cookbook.Suggestion, error)
}

func (s *Suggester) Suggest(ctx context.Context, content cookbook.RecipeContent, opts cookbook.SuggestOptions) ([]cookbook.Suggestion, error) {
	return s.SuggestFn(ctx, content, opts)
}
