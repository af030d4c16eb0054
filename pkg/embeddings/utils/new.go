// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"github.com/figmatch/figmatch/pkg/embeddings"
	"github.com/figmatch/figmatch/pkg/embeddings/clipd"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	Dimensions   uint
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case "clipd":
		return clipd.NewEmbedder(clipd.EmbedderConfig{
			BaseURL:    o.TargetURL,
			Model:      o.Model,
			Dimensions: o.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
