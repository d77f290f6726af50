package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/cookbook"
	main "github.com/fwojciec/cookbook/cmd/cookbook"
	"github.com/fwojciec/cookbook/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists names counts and sources", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := testDeps(stdout, &bytes.Buffer{})
		deps.Categories = &mock.CategoryManager{
			ListCategoriesFn: func(_ context.Context, ownerID string) ([]*cookbook.Category, error) {
				assert.Equal(t, "u1", ownerID)
				return []*cookbook.Category{
					{Name: "Desserts", RecipeCount: 3, Source: cookbook.CategorySourceUserCreated},
					{Name: "Breakfast", RecipeCount: 0, Source: cookbook.CategorySourcePredefined},
				}, nil
			},
		}

		err := (&main.CategoriesCmd{User: "u1"}).Run(deps)

		require.NoError(t, err)
		assert.Regexp(t, `Desserts\s+3\s+USER_CREATED`, stdout.String())
		assert.Regexp(t, `Breakfast\s+0\s+PREDEFINED`, stdout.String())
	})

	t.Run("reports store errors", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := testDeps(&bytes.Buffer{}, stderr)
		deps.Categories = &mock.CategoryManager{
			ListCategoriesFn: func(context.Context, string) ([]*cookbook.Category, error) {
				return nil, errors.New("disk full")
			},
		}

		err := (&main.CategoriesCmd{User: "u1"}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error: Internal error")
	})
}
