// Package matcher ranks catalog entries against a query embedding by
// cosine similarity and returns the closest parts.
package matcher

import (
	"context"
	"errors"

	"github.com/figmatch/figmatch/pkg/parts"
)

var (
	// ErrEmptyCatalog is returned when a category's catalog has no entries.
	ErrEmptyCatalog = errors.New("catalog is empty")

	// ErrDimensions is returned when the query embedding's dimensionality
	// does not match the catalog's.
	ErrDimensions = errors.New("query dimension mismatch")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")
)

// Match is one ranked result: the catalog filename of a part and its
// similarity to the query, in [-1, 1].
type Match struct {
	Filename string  `json:"filename"`
	Score    float32 `json:"score"`
}

// Matcher finds the k catalog entries most similar to a query embedding.
type Matcher interface {
	// Match returns up to k matches for the category, best first. When k
	// exceeds the catalog size, all entries are returned rather than an
	// error.
	Match(ctx context.Context, category parts.Category, query []float32, k int) ([]Match, error)

	// Close releases any resources held by the matcher.
	Close() error
}
