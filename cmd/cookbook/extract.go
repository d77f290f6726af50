package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/cookbook"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	opts, err := c.options()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", cookbook.ErrorMessage(err))
		return err
	}

	x, err := deps.Extractor.Extract(deps.Ctx, c.URL, opts)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", cookbook.ErrorMessage(err))
		return err
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(x)
}

func (c *ExtractCmd) options() (cookbook.ExtractOptions, error) {
	opts := cookbook.ExtractOptions{UserID: c.User}
	var err error
	if opts.Strategy, err = cookbook.ParseStrategy(c.Strategy); err != nil {
		return opts, err
	}
	if opts.URLProvider, err = cookbook.ParseProvider(c.URLProvider); err != nil {
		return opts, err
	}
	opts.HTMLProvider, err = cookbook.ParseProvider(c.HTMLProvider)
	return opts, err
}
