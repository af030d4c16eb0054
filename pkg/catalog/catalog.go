// Package catalog loads the precomputed per-category embedding catalogs
// the matcher searches against. Catalogs are generated by an external
// process; this package only reads them.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/figmatch/figmatch/pkg/parts"
)

var (
	// ErrNotFound is returned when a category has no catalog file.
	ErrNotFound = errors.New("catalog not found")

	// ErrMalformed is returned when a catalog file cannot be parsed or
	// violates the parallel-sequence invariant.
	ErrMalformed = errors.New("catalog malformed")

	// ErrDimensions is returned when catalog embeddings disagree on
	// dimensionality, either internally or with the encoder.
	ErrDimensions = errors.New("catalog dimension mismatch")
)

// catalogFile is the on-disk catalog layout: two parallel sequences of the
// same length, filename at position i belonging to embedding at position i.
// The pairing-by-position is a strict contract with the catalog generator.
type catalogFile struct {
	Embeddings [][]float32 `json:"embeddings"`
	Filenames  []string    `json:"filenames"`
}

// Catalog is an in-memory, read-only catalog for one category.
type Catalog struct {
	Category parts.Category

	// Filenames[i] names the part whose embedding is Embeddings[i].
	Filenames  []string
	Embeddings [][]float32

	dimensions uint
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.Filenames)
}

// Dimensions returns the shared dimensionality of all embeddings.
func (c *Catalog) Dimensions() uint {
	return c.dimensions
}

// New builds a catalog from parallel filename and embedding sequences,
// enforcing the pairing invariant: equal lengths (never truncated to the
// shorter) and one shared dimensionality.
func New(category parts.Category, filenames []string, embeddings [][]float32) (*Catalog, error) {
	if len(embeddings) != len(filenames) {
		return nil, fmt.Errorf("%w: %s has %d embeddings but %d filenames",
			ErrMalformed, category, len(embeddings), len(filenames))
	}

	cat := &Catalog{
		Category:   category,
		Filenames:  filenames,
		Embeddings: embeddings,
	}

	for i, emb := range embeddings {
		if i == 0 {
			cat.dimensions = uint(len(emb))
			continue
		}
		if uint(len(emb)) != cat.dimensions {
			return nil, fmt.Errorf("%w: %s entry %d has %d dimensions, expected %d",
				ErrDimensions, category, i, len(emb), cat.dimensions)
		}
	}

	return cat, nil
}

// Load reads the catalog for a category from path. It fails rather than
// truncate when the filename and embedding sequences disagree in length,
// and rejects catalogs whose embeddings disagree on dimensionality.
func Load(category parts.Category, path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrNotFound, category, path)
		}
		return nil, fmt.Errorf("reading catalog %s: %w", category, err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrMalformed, path, err)
	}

	return New(category, file.Filenames, file.Embeddings)
}
