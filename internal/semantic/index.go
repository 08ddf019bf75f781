package semantic

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

// Index is a per-user collection of embedded experience descriptions.
type Index struct {
	db       *chromem.DB
	embedder Embedder

	mu          sync.Mutex
	collections map[string]*chromem.Collection
}

// NewIndex builds an in-memory semantic index. persistPath, if non-empty,
// makes the index survive restarts.
func NewIndex(persistPath string, embedder Embedder) (*Index, error) {
	var db *chromem.DB
	var err error
	if persistPath != "" {
		db, err = chromem.NewPersistentDB(persistPath, false)
		if err != nil {
			return nil, fmt.Errorf("open persistent semantic index: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}
	if embedder == nil {
		embedder = NewHashEmbedder(256)
	}
	return &Index{db: db, embedder: embedder, collections: make(map[string]*chromem.Collection)}, nil
}

func (idx *Index) collectionFor(userID string) (*chromem.Collection, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if c, ok := idx.collections[userID]; ok {
		return c, nil
	}
	name := "experiences_" + userID
	c := idx.db.GetCollection(name, nil)
	if c == nil {
		var err error
		c, err = idx.db.CreateCollection(name, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("create collection for %s: %w", userID, err)
		}
	}
	idx.collections[userID] = c
	return c, nil
}

// IndexExperience embeds and stores one experience's description, keyed by
// its experience ID and tagged with the resonance it was ultimately found
// to have — so future queries can surface "past experiences like this one
// resonated at roughly X."
func (idx *Index) IndexExperience(ctx context.Context, userID, experienceID, description string, resonance float64) error {
	if description == "" {
		return nil
	}
	collection, err := idx.collectionFor(userID)
	if err != nil {
		return err
	}
	embedding, err := idx.embedder.Embed(ctx, description)
	if err != nil {
		return fmt.Errorf("embed experience %s: %w", experienceID, err)
	}
	return collection.AddDocument(ctx, chromem.Document{
		ID:        experienceID,
		Content:   description,
		Metadata:  map[string]string{"resonance": fmt.Sprintf("%.4f", resonance)},
		Embedding: embedding,
	})
}

// NeighborMatch is one nearest-neighbor result.
type NeighborMatch struct {
	ExperienceID string
	Description  string
	Resonance    float64
	Similarity   float32
}

// Neighbors returns the n most semantically similar past experiences to
// description, most similar first. Returns an empty slice (not an error)
// when the user has no indexed history yet.
func (idx *Index) Neighbors(ctx context.Context, userID, description string, n int) ([]NeighborMatch, error) {
	if n <= 0 {
		n = 5
	}
	idx.mu.Lock()
	collection, ok := idx.collections[userID]
	if !ok {
		if c := idx.db.GetCollection("experiences_"+userID, nil); c != nil {
			collection, ok = c, true
			idx.collections[userID] = c
		}
	}
	idx.mu.Unlock()
	if !ok || collection.Count() == 0 {
		return nil, nil
	}

	embedding, err := idx.embedder.Embed(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if n > collection.Count() {
		n = collection.Count()
	}
	results, err := collection.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query semantic index: %w", err)
	}

	matches := make([]NeighborMatch, 0, len(results))
	for _, r := range results {
		var resonance float64
		if v, ok := r.Metadata["resonance"]; ok {
			fmt.Sscanf(v, "%f", &resonance)
		}
		matches = append(matches, NeighborMatch{
			ExperienceID: r.ID,
			Description:  r.Content,
			Resonance:    resonance,
			Similarity:   r.Similarity,
		})
	}
	return matches, nil
}
