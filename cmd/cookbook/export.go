package main

import (
	"fmt"

	"github.com/fwojciec/cookbook"
	"github.com/fwojciec/cookbook/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	filter := cookbook.RecipeFilter{OwnerID: &c.User}
	if c.Category != "" {
		filter.Category = &c.Category
	}

	recipes, err := deps.Recipes.FindRecipes(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", cookbook.ErrorMessage(err))
		return err
	}
	if len(recipes) == 0 {
		fmt.Fprintln(deps.Stdout, "No recipes found. Use 'cookbook import' to add some.")
		return nil
	}

	w := fs.NewWriter(c.Dir)
	for _, r := range recipes {
		if err := w.WriteRecipe(deps.Ctx, r); err != nil {
			fmt.Fprintf(deps.Stderr, "error: writing %q: %s\n", r.Title, cookbook.ErrorMessage(err))
			return err
		}
	}

	fmt.Fprintf(deps.Stdout, "Exported %d recipes to %s\n", len(recipes), c.Dir)
	return nil
}
