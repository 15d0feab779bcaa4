package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"supportkb/internal/models"
)

// FileStore keeps all chunk records in memory and serializes the whole
// store to a single JSON file on every mutating call. Each write is a
// temp-file-plus-rename, so concurrent readers of the file see either the
// old or the new snapshot, never a torn one. O(n) rewrite per insert is
// the accepted cost at the target scale of hundreds to low thousands of
// chunks.
type FileStore struct {
	mu       sync.RWMutex
	path     string
	embedder Embedder

	chunks   []models.Chunk
	provider string
	model    string
}

// storeFile is the on-disk shape: all records plus the last-used
// provider/model.
type storeFile struct {
	Chunks   []models.Chunk `json:"chunks"`
	Provider string         `json:"provider"`
	Model    string         `json:"model"`
}

// NewFileStore opens (or initializes) the store file at path.
func NewFileStore(path string, embedder Embedder) (*FileStore, error) {
	s := &FileStore{path: path, embedder: embedder}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read vector store %q: %w", path, err)
	}
	var f storeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse vector store %q: %w", path, err)
	}
	s.chunks = f.Chunks
	s.provider = f.Provider
	s.model = f.Model
	log.Debug().Int("chunks", len(s.chunks)).Str("provider", s.provider).
		Str("model", s.model).Msg("loaded vector store")
	return s, nil
}

// AddChunks embeds all chunk contents in one gateway call, derives ids as
// {docId}_{typeTag}_{index}, replaces any records with the same ids and
// persists the store.
func (s *FileStore) AddChunks(ctx context.Context, chunks []models.Chunk, typeTag string) error {
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

	replacing := make(map[string]bool, len(chunks))
	for i := range chunks {
		chunks[i].ID = fmt.Sprintf("%s_%s_%d", chunks[i].Metadata.DocID, typeTag, chunks[i].Metadata.ChunkIndex)
		chunks[i].Embedding = vectors[i]
		replacing[chunks[i].ID] = true
	}

	kept := s.chunks[:0]
	for _, c := range s.chunks {
		if !replacing[c.ID] {
			kept = append(kept, c)
		}
	}
	s.chunks = append(kept, chunks...)
	s.provider, s.model = s.embedder.ProviderModel()

	log.Debug().Int("added", len(chunks)).Int("total", len(s.chunks)).
		Str("provider", s.provider).Msg("added chunks to vector store")
	return s.persistLocked()
}

// Search embeds the query once, ranks every candidate by cosine similarity
// and returns the top results. A stored vector whose dimensionality differs
// from the query's is scored 0 and flagged: it means the provider or model
// changed since that chunk was ingested.
func (s *FileStore) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	s.mu.RLock()
	candidates := s.filterLocked(opts)
	provider, model := s.provider, s.model
	s.mu.RUnlock()

	if len(candidates) == 0 {
		return []SearchResult{}, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for query", len(vectors))
	}
	queryVec := vectors[0]

	results := make([]SearchResult, 0, len(candidates))
	mismatched := 0
	for _, c := range candidates {
		sim := 0.0
		if len(c.Embedding) == len(queryVec) {
			sim = cosineSimilarity(c.Embedding, queryVec)
		} else {
			mismatched++
		}
		results = append(results, SearchResult{
			ID:         c.ID,
			Content:    c.Content,
			Metadata:   c.Metadata,
			Similarity: sim,
			Distance:   1 - sim,
		})
	}
	if mismatched > 0 {
		// Latent correctness issue: these chunks are invisible to search
		// until re-embedded with the current provider/model.
		log.Warn().Int("chunks", mismatched).Int("query_dim", len(queryVec)).
			Str("stored_provider", provider).Str("stored_model", model).
			Msg("embedding dimension mismatch, provider or model changed since ingestion")
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *FileStore) filterLocked(opts SearchOptions) []models.Chunk {
	var out []models.Chunk
	for _, c := range s.chunks {
		if opts.Application != "" && c.Metadata.Application != opts.Application {
			continue
		}
		if opts.DocID != "" && c.Metadata.DocID != opts.DocID {
			continue
		}
		out = append(out, c)
	}
	return out
}

// DeleteDocument removes every record belonging to docID. Idempotent.
func (s *FileStore) DeleteDocument(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chunks[:0]
	removed := 0
	for _, c := range s.chunks {
		if c.Metadata.DocID == docID {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	if removed == 0 {
		return nil
	}
	s.chunks = kept
	log.Debug().Str("doc_id", docID).Int("removed", removed).Msg("deleted document chunks")
	return s.persistLocked()
}

func (s *FileStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalChunks: len(s.chunks),
		Documents:   map[string]int{},
		Provider:    s.provider,
		Model:       s.model,
	}
	for _, c := range s.chunks {
		stats.Documents[c.Metadata.DocID]++
		if stats.Dimension == 0 {
			stats.Dimension = len(c.Embedding)
		}
	}
	return stats
}

func (s *FileStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	return s.persistLocked()
}

// persistLocked writes the whole store atomically. Callers hold the write
// lock.
func (s *FileStore) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(storeFile{Chunks: s.chunks, Provider: s.provider, Model: s.model})
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
