// Package semantic supports ResonanceTracker.PredictResonance: a
// nearest-neighbor search over a user's own past experience descriptions,
// backed by chromem-go, used only to surface "this felt like X" evidence —
// never as a scoring input in its own right.
package semantic

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
)

// Embedder generates vector embeddings from text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// HashEmbedder is a dependency-free Embedder: it hashes text into a
// deterministic seed and generates a reproducible unit vector from it. It
// exists so semantic search degrades gracefully to "a real but low-quality
// embedding" rather than requiring an external embeddings API key.
type HashEmbedder struct {
	dimension int
}

// NewHashEmbedder returns a HashEmbedder producing vectors of the given dimension.
func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = 256
	}
	return &HashEmbedder{dimension: dimension}
}

// EmbedderFromEnv returns a VoyageEmbedder when VOYAGE_API_KEY is set,
// falling back to HashEmbedder so semantic search works without external
// credentials.
func EmbedderFromEnv() Embedder {
	if key := os.Getenv("VOYAGE_API_KEY"); key != "" {
		model := os.Getenv("VOYAGE_MODEL")
		if model == "" {
			model = "voyage-3-lite"
		}
		return NewVoyageEmbedder(key, model)
	}
	return NewHashEmbedder(256)
}

func (h *HashEmbedder) Dimension() int { return h.dimension }

func (h *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if text == "" {
		return nil, fmt.Errorf("semantic: cannot embed empty text")
	}

	var seed int64
	for _, c := range text {
		seed = seed*31 + int64(c)
	}
	rng := rand.New(rand.NewSource(seed))

	vec := make([]float32, h.dimension)
	var sumSquares float64
	for i := range vec {
		vec[i] = float32(rng.NormFloat64())
		sumSquares += float64(vec[i] * vec[i])
	}
	if sumSquares > 0 {
		magnitude := float32(math.Sqrt(sumSquares))
		for i := range vec {
			vec[i] /= magnitude
		}
	}
	return vec, nil
}
