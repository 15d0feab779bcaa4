package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /srv/kb\nrag:\n  chunk_size: 800\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/kb", cfg.DataDir)
	assert.Equal(t, 800, cfg.RAG.ChunkSize)
	assert.Equal(t, 50, cfg.RAG.ChunkOverlap, "unset fields fall back to defaults")
	assert.Equal(t, "file", cfg.VectorBackend)
	assert.Equal(t, 1568, cfg.Render.MaxDimension)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 5, cfg.RAG.SearchLimit)
	assert.Equal(t, 20, cfg.Render.CacheSize)
	assert.Equal(t, 300, cfg.Render.CacheTTLSecs)
}
