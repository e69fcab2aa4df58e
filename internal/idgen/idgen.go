// Package idgen generates surrogate row identifiers for links.
package idgen

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator generates unique identifiers.
// Implementations should be safe for concurrent use.
type Generator interface {
	Generate() (uuid.UUID, error)
}

// DefaultRetries is how many extra attempts NewV7 makes after a failure.
const DefaultRetries = 1

type v7Gen struct {
	maxRetries int
	newID      func() (uuid.UUID, error)
}

// Option configures a v7 generator.
type Option func(*v7Gen)

// WithRetries sets how many times to retry after the initial attempt.
// Negative values are ignored. Zero disables retries.
func WithRetries(n int) Option {
	return func(g *v7Gen) {
		if n >= 0 {
			g.maxRetries = n
		}
	}
}

// WithSource replaces uuid.NewV7 as the ID source.
func WithSource(fn func() (uuid.UUID, error)) Option {
	return func(g *v7Gen) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// NewV7 returns a Generator that produces time-ordered UUID v7 values,
// which keep the primary key index append-mostly.
func NewV7(opts ...Option) Generator {
	g := &v7Gen{
		maxRetries: DefaultRetries,
		newID:      uuid.NewV7,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *v7Gen) Generate() (uuid.UUID, error) {
	var last error
	for range g.maxRetries + 1 {
		id, err := g.newID()
		if err == nil {
			return id, nil
		}
		last = err
	}
	return uuid.Nil, fmt.Errorf("uuid v7 generation failed after %d attempts: %w", g.maxRetries+1, last)
}
