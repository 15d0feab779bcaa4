// Package docstore is the document-metadata collaborator. The pipeline
// only consumes this interface; two implementations ship: a JSON file
// store for the default single-process deployment and a Postgres store.
package docstore

import (
	"context"
	"errors"

	"supportkb/internal/models"
)

// ErrNotFound is returned for an unknown docId.
var ErrNotFound = errors.New("document not found")

type Store interface {
	AddDocument(ctx context.Context, doc models.Document) error
	GetDocument(ctx context.Context, docID string) (*models.Document, error)
	GetAllDocuments(ctx context.Context) ([]models.Document, error)
	UpdateDocument(ctx context.Context, docID string, upd models.DocumentUpdate) error
	// DeleteDocument reports whether a record existed.
	DeleteDocument(ctx context.Context, docID string) (bool, error)
}

func applyUpdate(doc *models.Document, upd models.DocumentUpdate) {
	if upd.Title != nil {
		doc.Title = *upd.Title
	}
	if upd.Status != nil {
		doc.Status = *upd.Status
	}
	if upd.ChunkCount != nil {
		doc.ChunkCount = *upd.ChunkCount
	}
	if upd.ImageCount != nil {
		doc.ImageCount = *upd.ImageCount
	}
	if upd.FileSizeBytes != nil {
		doc.FileSizeBytes = *upd.FileSizeBytes
	}
	if upd.NumPages != nil {
		doc.NumPages = *upd.NumPages
	}
}
