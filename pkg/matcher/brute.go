package matcher

import (
	"context"
	"fmt"
	"sort"

	"github.com/figmatch/figmatch/pkg/catalog"
	"github.com/figmatch/figmatch/pkg/parts"
)

// BruteForce is the exact matcher: it scores every catalog entry against
// the query and sorts. Catalogs here are a few thousand entries, so a full
// scan is cheap and keeps the ranking exact.
type BruteForce struct {
	catalogs *catalog.Store
}

// NewBruteForce creates an exact matcher over the given catalog store.
func NewBruteForce(catalogs *catalog.Store) *BruteForce {
	return &BruteForce{catalogs: catalogs}
}

// Match returns the k entries most similar to query, best first.
func (m *BruteForce) Match(_ context.Context, category parts.Category, query []float32, k int) ([]Match, error) {
	cat, err := m.catalogs.Load(category)
	if err != nil {
		return nil, err
	}
	return TopK(cat, query, k)
}

// Close releases resources; the catalog store is owned by the caller.
func (m *BruteForce) Close() error {
	return nil
}

// TopK ranks every catalog entry by similarity to query and returns the
// best min(k, catalog size) matches in descending score order. Ties keep
// catalog order, first occurrence winning, so results are deterministic.
//
// Both query and catalog embeddings are unit-normalized, so cosine
// similarity reduces to a plain dot product; no norm division happens here.
func TopK(cat *catalog.Catalog, query []float32, k int) ([]Match, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if cat.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCatalog, cat.Category)
	}
	if uint(len(query)) != cat.Dimensions() {
		return nil, fmt.Errorf("%w: query has %d dimensions, %s catalog has %d",
			ErrDimensions, len(query), cat.Category, cat.Dimensions())
	}

	scores := make([]float32, cat.Len())
	for i, emb := range cat.Embeddings {
		scores[i] = dot(query, emb)
	}

	order := make([]int, cat.Len())
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if scores[ia] != scores[ib] {
			return scores[ia] > scores[ib]
		}
		return ia < ib
	})

	if k > len(order) {
		k = len(order)
	}

	matches := make([]Match, k)
	for i := 0; i < k; i++ {
		matches[i] = Match{
			Filename: cat.Filenames[order[i]],
			Score:    scores[order[i]],
		}
	}

	return matches, nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Ensure BruteForce implements Matcher
var _ Matcher = (*BruteForce)(nil)
