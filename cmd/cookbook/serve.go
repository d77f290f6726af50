package main

import (
	"fmt"

	cookbookhttp "github.com/fwojciec/cookbook/http"
)

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	s := cookbookhttp.NewServer()
	s.Addr = c.Addr
	s.Production = c.Production
	s.Logger = deps.Logger
	s.RecipeService = deps.Recipes
	s.CategoryManager = deps.Categories
	s.RecipeExtractor = deps.Extractor
	s.MetricService = deps.Metrics
	if deps.DB != nil {
		s.Pinger = deps.DB
	}
	if deps.Prometheus != nil {
		s.Instrument = deps.Prometheus.Middleware
		s.MetricsHandler = deps.Prometheus.Handler()
	}

	if err := s.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: cannot listen on %s: %s\n", c.Addr, err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Listening on %s\n", s.URL())

	<-deps.Ctx.Done()

	deps.Logger.Info("shutting down")
	return s.Close()
}
