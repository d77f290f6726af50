package main

import (
	"fmt"

	"github.com/fwojciec/cookbook"
	"golang.org/x/sync/errgroup"
)

// importResult is the outcome of importing one URL.
type importResult struct {
	recipe *cookbook.Recipe
	err    error
}

// Run executes the import command. Every URL is attempted; results are
// printed in input order once all extractions finish.
func (c *ImportCmd) Run(deps *Dependencies) error {
	if len(c.URLs) == 0 {
		fmt.Fprintln(deps.Stderr, "error: at least one URL is required")
		return cookbook.Errorf(cookbook.EINVALID, "at least one URL is required")
	}
	strategy, err := cookbook.ParseStrategy(c.Strategy)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", cookbook.ErrorMessage(err))
		return err
	}

	results := make([]importResult, len(c.URLs))

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.SetLimit(max(c.Concurrency, 1))
	for i, u := range c.URLs {
		g.Go(func() error {
			x, err := deps.Extractor.Extract(ctx, u, cookbook.ExtractOptions{
				Strategy: strategy,
				UserID:   c.User,
			})
			if err != nil {
				results[i].err = err
				return nil
			}

			r := x.Draft.Recipe(c.User, u)
			r.CategoryConfidence = x.CategoryConfidence
			if err := deps.Recipes.CreateRecipe(ctx, r); err != nil {
				results[i].err = err
				return nil
			}
			results[i].recipe = r
			if x.MetricID != "" && deps.Metrics != nil {
				if err := deps.Metrics.LinkRecipe(ctx, x.MetricID, r.ID); err != nil {
					deps.Logger.Warn("link extraction metric", "metric", x.MetricID, "recipe", r.ID, "err", err)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	var imported, skipped, failed int
	for i, res := range results {
		switch {
		case res.err == nil:
			imported++
			fmt.Fprintf(deps.Stdout, "imported  %s  %q [%s]\n", c.URLs[i], res.recipe.Title, res.recipe.Category)
		case cookbook.ErrorCode(res.err) == cookbook.ECONFLICT:
			skipped++
			fmt.Fprintf(deps.Stdout, "skipped   %s  %s\n", c.URLs[i], cookbook.ErrorMessage(res.err))
		default:
			failed++
			fmt.Fprintf(deps.Stderr, "failed    %s  %s\n", c.URLs[i], cookbook.ErrorMessage(res.err))
		}
	}
	fmt.Fprintf(deps.Stdout, "Imported %d of %d recipes (%d skipped, %d failed)\n", imported, len(c.URLs), skipped, failed)

	if failed > 0 {
		return cookbook.Errorf(cookbook.EUPSTREAM, "%d of %d imports failed", failed, len(c.URLs))
	}
	return nil
}
