// Package clipd implements pkg/embeddings' Embedder against a CLIP
// inference sidecar's HTTP API. The sidecar loads the pretrained vision
// model once at startup; this client only ships pixels to it.
package clipd

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/figmatch/figmatch/pkg/embeddings"
	"github.com/figmatch/figmatch/pkg/imaging"
)

const (
	// DefaultModel is the default CLIP variant served by the sidecar.
	DefaultModel = "ViT-B/32"

	// DefaultBaseURL is the default sidecar URL.
	DefaultBaseURL = "http://localhost:8300"

	// DefaultDimensions is the output dimensionality of ViT-B/32.
	DefaultDimensions = 512

	// maxEdge bounds the longest side of images shipped to the sidecar.
	// The model resizes to its own fixed input anyway, so anything larger
	// only inflates the request payload.
	maxEdge = 512
)

// Embedder wraps the CLIP sidecar's image embedding API.
type Embedder struct {
	baseURL    string
	model      string
	dimensions uint
	httpClient *http.Client
}

// EmbedderConfig holds configuration for the CLIP sidecar embedder.
type EmbedderConfig struct {
	// BaseURL is the sidecar URL (e.g. "http://localhost:8300").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the CLIP variant to request (e.g. "ViT-B/32").
	// Defaults to DefaultModel if empty.
	Model string

	// Dimensions is the model's output dimensionality.
	// Defaults to DefaultDimensions if zero.
	Dimensions uint
}

// embedRequest is the request body for the sidecar's embedding endpoint.
// The image travels as base64-encoded lossless PNG; resize and per-channel
// pixel normalization are the model-fixed recipe inside the sidecar.
type embedRequest struct {
	Model string `json:"model"`
	Image string `json:"image"`
}

// embedResponse is the sidecar's response.
type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewEmbedder creates an embedder backed by the CLIP sidecar.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = DefaultDimensions
	}

	return &Embedder{
		baseURL:    baseURL,
		model:      model,
		dimensions: dimensions,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Embed computes the unit-normalized embedding of img.
//
// Any alpha channel is composited onto opaque white before encoding;
// stripping alpha without compositing corrupts edge pixels, so the
// flattening is unconditional.
func (e *Embedder) Embed(ctx context.Context, img image.Image) ([]float32, error) {
	prepared := imaging.Flatten(img)
	if w, h := fitWithin(prepared.Bounds().Dx(), prepared.Bounds().Dy(), maxEdge); w != prepared.Bounds().Dx() || h != prepared.Bounds().Dy() {
		prepared = imaging.Scale(prepared, w, h)
	}

	pngBytes, err := imaging.EncodePNG(prepared)
	if err != nil {
		return nil, fmt.Errorf("%w: preparing image: %v", embeddings.ErrEmbedding, err)
	}

	reqBody := embedRequest{
		Model: e.model,
		Image: base64.StdEncoding.EncodeToString(pngBytes),
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", embeddings.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/v1/embed/image", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", embeddings.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", embeddings.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: sidecar returned status %d: %s", embeddings.ErrEmbedding, resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", embeddings.ErrEmbedding, err)
	}

	if len(embedResp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", embeddings.ErrEmbedding)
	}

	if uint(len(embedResp.Embedding)) != e.dimensions {
		return nil, fmt.Errorf("%w: sidecar returned %d dimensions, expected %d",
			embeddings.ErrEmbedding, len(embedResp.Embedding), e.dimensions)
	}

	return embeddings.Normalize(embedResp.Embedding)
}

// fitWithin shrinks w x h proportionally so the longest edge is at most
// max. Images already within the bound keep their size; aspect ratio is
// preserved with a 1px floor.
func fitWithin(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}

	if w >= h {
		scaled := h * max / w
		if scaled < 1 {
			scaled = 1
		}
		return max, scaled
	}

	scaled := w * max / h
	if scaled < 1 {
		scaled = 1
	}
	return scaled, max
}

// Dimensions returns the fixed output dimensionality.
func (e *Embedder) Dimensions() uint {
	return e.dimensions
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

// Ensure Embedder implements embeddings.Embedder
var _ embeddings.Embedder = (*Embedder)(nil)
