package mock

import "github.com/fwojciec/cookbook"

var _ cookbook.Converter = (*Converter)(nil)

// Converter is a mock implementation of cookbook.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
