package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"supportkb/internal/models"
)

// ChromemStore is the alternate backend (vector_backend: chromem), a
// wrapper over a persistent chromem-go database. Unlike FileStore it does
// not tolerate a query dimension mismatch: a provider change after
// ingestion surfaces as a search error instead of zero-similarity results.
type ChromemStore struct {
	mu         sync.Mutex
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	embedder   Embedder
	provider   string
	model      string
}

func NewChromemStore(dbPath, collectionName string, embedder Embedder) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(dbPath, false)
	if err != nil {
		return nil, fmt.Errorf("create chromem database: %w", err)
	}
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create chromem collection: %w", err)
	}
	return &ChromemStore{db: db, collection: collection, name: collectionName, embedder: embedder}, nil
}

func (s *ChromemStore) AddChunks(ctx context.Context, chunks []models.Chunk, typeTag string) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]chromem.Document, len(chunks))
	ids := make([]string, len(chunks))
	for i := range chunks {
		chunks[i].ID = fmt.Sprintf("%s_%s_%d", chunks[i].Metadata.DocID, typeTag, chunks[i].Metadata.ChunkIndex)
		chunks[i].Embedding = vectors[i]
		ids[i] = chunks[i].ID
		meta, err := json.Marshal(chunks[i].Metadata)
		if err != nil {
			return err
		}
		docs[i] = chromem.Document{
			ID:        chunks[i].ID,
			Content:   chunks[i].Content,
			Embedding: vectors[i],
			Metadata: map[string]string{
				"docId":       chunks[i].Metadata.DocID,
				"application": chunks[i].Metadata.Application,
				"meta":        string(meta),
			},
		}
	}

	// Replace-before-insert keeps re-ingestion idempotent.
	if err := s.collection.Delete(ctx, nil, nil, ids...); err != nil {
		log.Debug().Err(err).Msg("chromem pre-delete of existing ids")
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents to chromem: %w", err)
	}
	s.provider, s.model = s.embedder.ProviderModel()
	return nil
}

func (s *ChromemStore) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	s.mu.Lock()
	count := s.collection.Count()
	s.mu.Unlock()
	if count == 0 {
		return []SearchResult{}, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for query", len(vectors))
	}

	where := map[string]string{}
	if opts.Application != "" {
		where["application"] = opts.Application
	}
	if opts.DocID != "" {
		where["docId"] = opts.DocID
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > count {
		limit = count
	}

	hits, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vectors[0],
		NResults:       limit,
		Where:          where,
	})
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		var meta models.ChunkMetadata
		if raw, ok := h.Metadata["meta"]; ok {
			if err := json.Unmarshal([]byte(raw), &meta); err != nil {
				log.Warn().Err(err).Str("id", h.ID).Msg("undecodable chunk metadata")
			}
		}
		sim := float64(h.Similarity)
		results = append(results, SearchResult{
			ID:         h.ID,
			Content:    h.Content,
			Metadata:   meta,
			Similarity: sim,
			Distance:   1 - sim,
		})
	}
	return results, nil
}

func (s *ChromemStore) DeleteDocument(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collection.Count() == 0 {
		return nil
	}
	if err := s.collection.Delete(ctx, map[string]string{"docId": docID}, nil); err != nil {
		return fmt.Errorf("delete document %q from chromem: %w", docID, err)
	}
	return nil
}

func (s *ChromemStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		TotalChunks: s.collection.Count(),
		Documents:   map[string]int{},
		Provider:    s.provider,
		Model:       s.model,
	}
}

func (s *ChromemStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.DeleteCollection(s.name); err != nil {
		return err
	}
	collection, err := s.db.GetOrCreateCollection(s.name, nil, nil)
	if err != nil {
		return err
	}
	s.collection = collection
	return nil
}
