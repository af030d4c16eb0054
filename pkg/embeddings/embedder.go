// Package embeddings defines the image embedding contract used by the
// matching pipeline.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	// ErrEmbedding is returned when embedding computation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrZeroNorm is returned when a computed embedding has zero L2 norm.
	// A degenerate all-zero vector cannot be scaled to unit length and must
	// never be passed off as one.
	ErrZeroNorm = errors.New("embedding has zero norm")
)

// Embedder converts a raster image into a fixed-dimension, unit-normalized
// vector. Implementations are safe for concurrent use and never mutate
// shared model state.
type Embedder interface {
	// Embed computes the unit-normalized embedding of img.
	Embed(ctx context.Context, img image.Image) ([]float32, error)

	// Dimensions returns the fixed output dimensionality.
	Dimensions() uint

	// Close releases any resources held by the embedder.
	Close() error
}

// Normalize scales v to unit L2 norm in place and returns it.
// Fails with ErrZeroNorm when v has no magnitude.
func Normalize(v []float32) ([]float32, error) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return nil, fmt.Errorf("%w: %d-dimensional vector", ErrZeroNorm, len(v))
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v, nil
}
