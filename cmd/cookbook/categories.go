package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fwojciec/cookbook"
)

// Run executes the categories command.
func (c *CategoriesCmd) Run(deps *Dependencies) error {
	categories, err := deps.Categories.ListCategories(deps.Ctx, c.User)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", cookbook.ErrorMessage(err))
		return err
	}

	tw := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	for _, cat := range categories {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", cat.Name, cat.RecipeCount, cat.Source)
	}
	return tw.Flush()
}
