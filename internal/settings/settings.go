package settings

import (
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store is the settings collaborator the pipeline reads provider
// configuration from. GetSetting returns ok=false for unknown keys.
type Store interface {
	GetSetting(key string) (string, bool)
}

// Keys the embedding gateway reads.
const (
	KeyEmbeddingProvider = "embedding_provider"
	KeyEmbeddingModel    = "embedding_model"
	KeyEmbeddingAPIKey   = "embedding_api_key" // stored encrypted
	KeyVisionModel       = "vision_model"
	KeyOllamaBaseURL     = "ollama_base_url"
)

// FileStore reads settings from a flat YAML map. Values written by the
// settings UI elsewhere in the system land in this file.
type FileStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewFileStore(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return &FileStore{values: values}, nil
}

// NewMapStore wraps a literal map, mostly for tests and embedding callers.
func NewMapStore(values map[string]string) *FileStore {
	if values == nil {
		values = map[string]string{}
	}
	return &FileStore{values: values}
}

func (s *FileStore) GetSetting(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
