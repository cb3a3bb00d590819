// Package recall provides a per-user semantic note index over an embedded
// vector store. The orchestrator consumes it only through Add and Search; a
// recall failure degrades context assembly, never the turn.
package recall

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// Index stores short text notes per user and retrieves the most similar ones
// for a query. Each user gets an isolated collection.
type Index struct {
	db          *chromem.DB
	embedder    Embedder
	mu          sync.RWMutex
	collections map[string]*chromem.Collection
}

func NewIndex(embedder Embedder) *Index {
	return &Index{
		db:          chromem.NewDB(),
		embedder:    embedder,
		collections: make(map[string]*chromem.Collection),
	}
}

func (ix *Index) collection(userID string) (*chromem.Collection, error) {
	ix.mu.RLock()
	col, ok := ix.collections[userID]
	ix.mu.RUnlock()
	if ok {
		return col, nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if col, ok := ix.collections[userID]; ok {
		return col, nil
	}

	// Embeddings are supplied by us, so no embedding func is registered.
	col, err := ix.db.CreateCollection(fmt.Sprintf("user_%s", userID), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create recall collection: %w", err)
	}
	ix.collections[userID] = col
	return col, nil
}

// Add indexes one note for the user.
func (ix *Index) Add(ctx context.Context, userID, text string) error {
	col, err := ix.collection(userID)
	if err != nil {
		return err
	}

	embedding, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed note: %w", err)
	}

	err = col.AddDocument(ctx, chromem.Document{
		ID:        uuid.NewString(),
		Content:   text,
		Embedding: embedding,
	})
	if err != nil {
		return fmt.Errorf("index note: %w", err)
	}
	return nil
}

// Search returns up to k notes most similar to the query, best first. An
// empty index yields an empty result, not an error.
func (ix *Index) Search(ctx context.Context, userID, query string, k int) ([]string, error) {
	if k <= 0 {
		k = 3
	}

	col, err := ix.collection(userID)
	if err != nil {
		return nil, err
	}
	if n := col.Count(); n == 0 {
		return nil, nil
	} else if n < k {
		k = n
	}

	embedding, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := col.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query recall index: %w", err)
	}

	notes := make([]string, 0, len(results))
	for _, r := range results {
		notes = append(notes, r.Content)
	}
	return notes, nil
}
