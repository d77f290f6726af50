package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/fwojciec/cookbook"
	"github.com/fwojciec/cookbook/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkCreateRecipe measures single recipe inserts into a file-backed
// database, each of which runs in its own transaction.
func BenchmarkCreateRecipe(b *testing.B) {
	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	defer db.Close()

	ctx := context.Background()
	svc := sqlite.NewRecipeService(db)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		recipe := &cookbook.Recipe{
			OwnerID:     "bench-user",
			Title:       fmt.Sprintf("Recipe %d", i),
			Ingredients: []string{"1 cup flour", "2 eggs", "1 cup milk"},
			Steps:       []string{"Mix everything.", "Cook on a hot griddle."},
			Category:    fmt.Sprintf("Category %d", i%20),
		}
		if err := svc.CreateRecipe(ctx, recipe); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMergeCategories measures merging a batch of populated categories.
func BenchmarkMergeCategories(b *testing.B) {
	const categories, recipesPerCategory = 5, 20

	for i := 0; i < b.N; i++ {
		b.StopTimer()

		db := sqlite.NewDB(filepath.Join(b.TempDir(), fmt.Sprintf("bench%d.db", i)))
		require.NoError(b, db.Open())

		ctx := context.Background()
		recipes := sqlite.NewRecipeService(db)
		var sources []string
		for c := 0; c < categories; c++ {
			name := fmt.Sprintf("Source %d", c)
			sources = append(sources, name)
			for r := 0; r < recipesPerCategory; r++ {
				require.NoError(b, recipes.CreateRecipe(ctx, &cookbook.Recipe{
					OwnerID:     "bench-user",
					Title:       fmt.Sprintf("Recipe %d-%d", c, r),
					Ingredients: []string{"salt"},
					Steps:       []string{"season"},
					Category:    name,
				}))
			}
		}
		svc := sqlite.NewCategoryService(db)

		b.StartTimer()

		if _, err := svc.MergeCategories(ctx, "bench-user", sources, "Target"); err != nil {
			b.Fatal(err)
		}

		b.StopTimer()
		db.Close()
	}
}
