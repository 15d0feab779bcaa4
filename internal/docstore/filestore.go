package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"supportkb/internal/models"
)

// FileStore keeps document metadata in one JSON file, rewritten atomically
// on every mutation, mirroring the vector store's persistence model.
type FileStore struct {
	mu   sync.RWMutex
	path string
	docs map[string]models.Document
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, docs: map[string]models.Document{}}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document store %q: %w", path, err)
	}
	var docs []models.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse document store %q: %w", path, err)
	}
	for _, d := range docs {
		s.docs[d.DocID] = d
	}
	return s, nil
}

func (s *FileStore) AddDocument(ctx context.Context, doc models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.DocID] = doc
	return s.persistLocked()
}

func (s *FileStore) GetDocument(ctx context.Context, docID string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, docID)
	}
	return &doc, nil
}

func (s *FileStore) GetAllDocuments(ctx context.Context) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]models.Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].UploadDate.Before(docs[j].UploadDate) })
	return docs, nil
}

func (s *FileStore) UpdateDocument(ctx context.Context, docID string, upd models.DocumentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[docID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, docID)
	}
	applyUpdate(&doc, upd)
	s.docs[docID] = doc
	return s.persistLocked()
}

func (s *FileStore) DeleteDocument(ctx context.Context, docID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[docID]; !ok {
		return false, nil
	}
	delete(s.docs, docID)
	return true, s.persistLocked()
}

func (s *FileStore) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	docs := make([]models.Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].DocID < docs[j].DocID })
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
