package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const voyageAPIURL = "https://api.voyageai.com/v1/embeddings"

var voyageDimensions = map[string]int{
	"voyage-3-lite":    512,
	"voyage-3":         1024,
	"voyage-3-large":   2048,
	"voyage-code-3":    1536,
	"voyage-finance-2": 1024,
	"voyage-law-2":     1024,
}

// VoyageEmbedder is an Embedder backed by the Voyage AI embeddings API. It
// is the production alternative to HashEmbedder when a VOYAGE_API_KEY is
// configured; callers fall back to HashEmbedder otherwise.
type VoyageEmbedder struct {
	client    *http.Client
	endpoint  string
	apiKey    string
	model     string
	dimension int
}

// NewVoyageEmbedder returns a VoyageEmbedder for the named model.
func NewVoyageEmbedder(apiKey, model string) *VoyageEmbedder {
	dim := voyageDimensions[model]
	if dim == 0 {
		dim = 1024
	}
	return &VoyageEmbedder{
		client:    &http.Client{Timeout: 30 * time.Second},
		endpoint:  voyageAPIURL,
		apiKey:    apiKey,
		model:     model,
		dimension: dim,
	}
}

func (e *VoyageEmbedder) Dimension() int { return e.dimension }

type voyageRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type voyageResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (e *VoyageEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("semantic: cannot embed empty text")
	}

	body, err := json.Marshal(voyageRequest{Model: e.model, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("semantic: encode voyage request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("semantic: build voyage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("semantic: voyage request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("semantic: voyage returned %d: %s", resp.StatusCode, string(b))
	}

	var parsed voyageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("semantic: decode voyage response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("semantic: voyage returned no embeddings")
	}
	return parsed.Data[0].Embedding, nil
}
