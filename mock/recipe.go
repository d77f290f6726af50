package mock

import (
	"context"

	"github.com/fwojciec/cookbook"
)

var _ cookbook.RecipeService = (*RecipeService)(nil)

// RecipeService is a mock implementation of cookbook.RecipeService.
type RecipeService struct {
	CreateRecipeFn   func(ctx context.Context, r *cookbook.Recipe) error
	FindRecipeByIDFn func(ctx context.Context, id string) (*cookbook.Recipe, error)
	FindRecipesFn    func(ctx context.Context, filter cookbook.RecipeFilter) ([]*cookbook.Recipe, error)
	UpdateRecipeFn   func(ctx context.Context, id string, upd cookbook.RecipeUpdate) (*cookbook.Recipe, error)
	DeleteRecipeFn   func(ctx context.Context, id string) error
}

func (s *RecipeService) CreateRecipe(ctx context.Context, r *cookbook.Recipe) error {
	return s.CreateRecipeFn(ctx, r)
}

func (s *RecipeService) FindRecipeByID(ctx context.Context, id string) (*cookbook.Recipe, error) {
	return s.FindRecipeByIDFn(ctx, id)
}

func (s *RecipeService) FindRecipes(ctx context.Context, filter cookbook.RecipeFilter) ([]*cookbook.Recipe, error) {
	return s.FindRecipesFn(ctx, filter)
}

func (s *RecipeService) UpdateRecipe(ctx context.Context, id string, upd cookbook.RecipeUpdate) (*cookbook.Recipe, error) {
	return s.UpdateRecipeFn(ctx, id, upd)
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, id string) error {
	return s.DeleteRecipeFn(ctx, id)
}

var _ cookbook.RecipeWriter = (*RecipeWriter)(nil)

// RecipeWriter is a mock implementation of cookbook.RecipeWriter.
type RecipeWriter struct {
	WriteRecipeFn func(ctx context.Context, r *cookbook.Recipe) error
}

func (w *RecipeWriter) WriteRecipe(ctx context.Context, r *cookbook.Recipe) error {
	return w.WriteRecipeFn(ctx, r)
}
