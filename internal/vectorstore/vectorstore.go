// Package vectorstore persists chunk records with their embeddings and
// serves cosine-similarity search, filterable by document or application.
package vectorstore

import (
	"context"

	"supportkb/internal/models"
)

// Embedder is the gateway contract the stores depend on. ProviderModel
// reports the currently-selected backend so each write can record it; a
// later mismatch against stored vectors signals provider drift.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	ProviderModel() (provider, model string)
}

// SearchOptions narrows a similarity search. Zero values mean no filter;
// Limit <= 0 uses the default of 5.
type SearchOptions struct {
	Limit       int
	Application string
	DocID       string
}

// SearchResult is one ranked hit.
type SearchResult struct {
	ID         string               `json:"id"`
	Content    string               `json:"content"`
	Metadata   models.ChunkMetadata `json:"metadata"`
	Similarity float64              `json:"similarity"`
	Distance   float64              `json:"distance"`
}

// Stats describes the store for operators, including the provider/model
// recorded at the last write so drift is detectable.
type Stats struct {
	TotalChunks int            `json:"totalChunks"`
	Documents   map[string]int `json:"documents"`
	Provider    string         `json:"provider"`
	Model       string         `json:"model"`
	Dimension   int            `json:"dimension"`
}

// Store is the vector storage contract. AddChunks derives each id as
// {docId}_{typeTag}_{index}, writes the id and embedding back into the
// caller's chunks, and removes any existing record with the same id before
// inserting, so re-ingestion is idempotent. DeleteDocument is idempotent.
// An empty store yields empty search results, not an error.
type Store interface {
	AddChunks(ctx context.Context, chunks []models.Chunk, typeTag string) error
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)
	DeleteDocument(ctx context.Context, docID string) error
	Stats() Stats
	ClearAll(ctx context.Context) error
}

const defaultSearchLimit = 5
