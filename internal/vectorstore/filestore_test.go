package vectorstore

import (
	"context"
	"hash/fnv"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportkb/internal/models"
)

// fakeEmbedder returns deterministic vectors: explicit ones from the
// vectors map, otherwise hash-derived ones of the configured dimension.
type fakeEmbedder struct {
	dim      int
	provider string
	model    string
	vectors  map[string][]float32
	err      error
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.vectors[text]; ok {
			out[i] = v
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(text))
		seed := h.Sum32()
		vec := make([]float32, f.dim)
		for j := range vec {
			vec[j] = float32((seed+uint32(j))%97) / 97
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) ProviderModel() (string, string) { return f.provider, f.model }

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{dim: 8, provider: "openai", model: "text-embedding-3-small", vectors: map[string][]float32{}}
}

func textChunk(docID string, index int, content, application string) models.Chunk {
	return models.Chunk{
		Content: content,
		Metadata: models.ChunkMetadata{
			Type:        models.ChunkTypeText,
			DocID:       docID,
			ChunkIndex:  index,
			Application: application,
			Source:      docID + ".md",
			FileType:    "markdown",
		},
	}
}

func newTestStore(t *testing.T, emb Embedder) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "vector_store.json"), emb)
	require.NoError(t, err)
	return s
}

func TestAddChunksBuildsIDs(t *testing.T) {
	s := newTestStore(t, newFakeEmbedder())
	chunks := []models.Chunk{textChunk("d1", 0, "alpha", ""), textChunk("d1", 1, "beta", "")}
	require.NoError(t, s.AddChunks(context.Background(), chunks, "text"))

	assert.Equal(t, "d1_text_0", chunks[0].ID)
	assert.Equal(t, "d1_text_1", chunks[1].ID)

	stats := s.Stats()
	assert.Equal(t, 2, stats.TotalChunks)
	assert.Equal(t, "openai", stats.Provider)
	assert.Equal(t, "text-embedding-3-small", stats.Model)
	assert.Equal(t, 8, stats.Dimension)
}

func TestIdempotentReingestion(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeEmbedder())

	first := []models.Chunk{textChunk("d1", 0, "old content", ""), textChunk("d1", 1, "kept", "")}
	require.NoError(t, s.AddChunks(ctx, first, "text"))
	second := []models.Chunk{textChunk("d1", 0, "new content", ""), textChunk("d1", 1, "kept", "")}
	require.NoError(t, s.AddChunks(ctx, second, "text"))

	assert.Equal(t, 2, s.Stats().TotalChunks, "one record per id, no duplicates")

	results, err := s.Search(ctx, "new content", SearchOptions{Limit: 10})
	require.NoError(t, err)
	var contents []string
	for _, r := range results {
		contents = append(contents, r.Content)
	}
	assert.Contains(t, contents, "new content", "second call's content wins")
	assert.NotContains(t, contents, "old content")
}

func TestSearchRankingAndLimit(t *testing.T) {
	ctx := context.Background()
	emb := newFakeEmbedder()
	emb.vectors["query"] = []float32{1, 0}
	emb.vectors["exact"] = []float32{2, 0}
	emb.vectors["close"] = []float32{0.6, 0.8}
	emb.vectors["orthogonal"] = []float32{0, 1}
	s := newTestStore(t, emb)

	chunks := []models.Chunk{
		textChunk("d1", 0, "orthogonal", ""),
		textChunk("d1", 1, "exact", ""),
		textChunk("d1", 2, "close", ""),
	}
	require.NoError(t, s.AddChunks(ctx, chunks, "text"))

	results, err := s.Search(ctx, "query", SearchOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "exact", results[0].Content)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
	assert.InDelta(t, 0.6, results[1].Similarity, 1e-6)
	assert.InDelta(t, 0.0, results[2].Similarity, 1e-6)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Similarity, results[i-1].Similarity)
		assert.InDelta(t, 1-results[i].Similarity, results[i].Distance, 1e-9)
	}

	limited, err := s.Search(ctx, "query", SearchOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSearchFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeEmbedder())

	require.NoError(t, s.AddChunks(ctx, []models.Chunk{textChunk("d1", 0, "vpn guide", "vpn")}, "text"))
	require.NoError(t, s.AddChunks(ctx, []models.Chunk{textChunk("d2", 0, "mail guide", "mail")}, "text"))

	results, err := s.Search(ctx, "guide", SearchOptions{Application: "vpn"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "d1", results[0].Metadata.DocID)

	results, err = s.Search(ctx, "guide", SearchOptions{DocID: "d2"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "d2", results[0].Metadata.DocID)

	// A filter matching nothing is a valid empty result, not an error.
	results, err = s.Search(ctx, "guide", SearchOptions{DocID: "unknown"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchEmptyStore(t *testing.T) {
	s := newTestStore(t, newFakeEmbedder())
	results, err := s.Search(context.Background(), "anything", SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDimensionMismatchScoresZero(t *testing.T) {
	ctx := context.Background()
	emb := newFakeEmbedder()
	emb.vectors["stored"] = make([]float32, 768)
	for i := range emb.vectors["stored"] {
		emb.vectors["stored"][i] = 0.5
	}
	s := newTestStore(t, emb)
	require.NoError(t, s.AddChunks(ctx, []models.Chunk{textChunk("d1", 0, "stored", "")}, "text"))

	// Provider switch: queries now come back 1536-dimensional.
	emb.vectors["query"] = make([]float32, 1536)
	for i := range emb.vectors["query"] {
		emb.vectors["query"][i] = 0.5
	}

	results, err := s.Search(ctx, "query", SearchOptions{})
	require.NoError(t, err, "mismatch must not crash the search")
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Similarity)
}

func TestDeleteDocumentCompleteness(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeEmbedder())
	require.NoError(t, s.AddChunks(ctx, []models.Chunk{textChunk("d1", 0, "gone", ""), textChunk("d1", 1, "also gone", "")}, "text"))
	require.NoError(t, s.AddChunks(ctx, []models.Chunk{textChunk("d2", 0, "stays", "")}, "text"))

	require.NoError(t, s.DeleteDocument(ctx, "d1"))

	results, err := s.Search(ctx, "gone", SearchOptions{Limit: 100})
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "d1", r.Metadata.DocID)
	}
	assert.Equal(t, 1, s.Stats().TotalChunks)

	// Idempotent.
	require.NoError(t, s.DeleteDocument(ctx, "d1"))
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	emb := newFakeEmbedder()
	path := filepath.Join(t.TempDir(), "vector_store.json")

	s, err := NewFileStore(path, emb)
	require.NoError(t, err)
	require.NoError(t, s.AddChunks(ctx, []models.Chunk{textChunk("d1", 0, "persisted", "crm")}, "text"))

	reopened, err := NewFileStore(path, emb)
	require.NoError(t, err)
	stats := reopened.Stats()
	assert.Equal(t, 1, stats.TotalChunks)
	assert.Equal(t, "openai", stats.Provider)

	results, err := reopened.Search(ctx, "persisted", SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "d1_text_0", results[0].ID)
	assert.Equal(t, "crm", results[0].Metadata.Application)
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeEmbedder())
	require.NoError(t, s.AddChunks(ctx, []models.Chunk{textChunk("d1", 0, "x", "")}, "text"))
	require.NoError(t, s.ClearAll(ctx))
	assert.Equal(t, 0, s.Stats().TotalChunks)
}
