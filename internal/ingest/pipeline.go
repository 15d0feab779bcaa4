// Package ingest wires extraction, chunking, embedding, vector storage and
// page rendering into the upload-to-searchable-chunk pipeline and the
// delete-cleanup pipeline.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"supportkb/internal/chunker"
	"supportkb/internal/config"
	"supportkb/internal/docstore"
	"supportkb/internal/extractor"
	"supportkb/internal/models"
	"supportkb/internal/render"
	"supportkb/internal/vectorstore"
)

type Pipeline struct {
	cfg      *config.Config
	store    vectorstore.Store
	docs     docstore.Store
	renderer *render.Renderer
	cache    *render.PageCache
}

func New(cfg *config.Config, store vectorstore.Store, docs docstore.Store, renderer *render.Renderer, cache *render.PageCache) *Pipeline {
	return &Pipeline{cfg: cfg, store: store, docs: docs, renderer: renderer, cache: cache}
}

// PDFDir is where ingested source PDFs are kept for page rendering.
func PDFDir(dataDir string) string { return filepath.Join(dataDir, "pdfs") }

func imagesDir(dataDir string) string { return filepath.Join(dataDir, "images") }

// Result is what one successful ingestion produced.
type Result struct {
	Chunks   []models.Chunk
	Document models.Document
}

// Ingest runs the upload path for one file: extract, chunk by file type,
// stamp the application tag, embed and store, keep a copy of PDFs for page
// rendering, then write the metadata record and drop the temp upload. An
// empty document is a success with zero chunks, not an error.
func (p *Pipeline) Ingest(ctx context.Context, filePath, docID, application, title string) (*Result, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %q: %v", extractor.ErrExtract, filePath, err)
	}

	fileType := extractor.DetectFileType(filePath)
	ext, err := extractor.Extract(filePath, fileType)
	if err != nil {
		return nil, err
	}

	strategy := chunker.ForFileType(fileType, chunker.Options{
		ChunkSize:     p.cfg.RAG.ChunkSize,
		ChunkOverlap:  p.cfg.RAG.ChunkOverlap,
		MinChunkChars: p.cfg.RAG.MinChunkChars,
	})
	chunks := strategy.Chunk(docID, ext)
	for i := range chunks {
		chunks[i].Metadata.Application = application
	}
	log.Info().Str("doc_id", docID).Str("file_type", fileType).
		Str("strategy", strategy.Name()).Int("chunks", len(chunks)).Msg("chunked document")

	if err := p.store.AddChunks(ctx, chunks, models.ChunkTypeText); err != nil {
		return nil, err
	}

	numPages := ext.NumPages
	if fileType == models.FileTypePDF {
		if err := p.storePDF(filePath, docID); err != nil {
			return nil, err
		}
	} else if fileType == models.FileTypeMarkdown {
		// Section count stands in for a page count.
		numPages = len(chunks)
	}

	if title == "" {
		title = strings.TrimSuffix(ext.Source, filepath.Ext(ext.Source))
	}
	doc := models.Document{
		DocID:         docID,
		Filename:      ext.Source,
		Title:         title,
		Application:   application,
		FileType:      fileType,
		UploadDate:    time.Now().UTC(),
		Status:        models.DocStatusProcessed,
		ChunkCount:    len(chunks),
		FileSizeBytes: info.Size(),
		NumPages:      numPages,
	}
	if err := p.docs.AddDocument(ctx, doc); err != nil {
		return nil, err
	}

	if err := os.Remove(filePath); err != nil {
		log.Warn().Err(err).Str("path", filePath).Msg("could not remove temp upload")
	}
	return &Result{Chunks: chunks, Document: doc}, nil
}

func (p *Pipeline) storePDF(srcPath, docID string) error {
	dir := PDFDir(p.cfg.DataDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(filepath.Join(dir, docID+".pdf"))
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, src)
	return err
}

// Search ranks chunks for a query. Vector search is an enrichment of the
// surrounding chat flow, so store and provider failures degrade to an
// empty result set instead of failing the caller.
func (p *Pipeline) Search(ctx context.Context, query string, opts vectorstore.SearchOptions) []vectorstore.SearchResult {
	if opts.Limit <= 0 {
		opts.Limit = p.cfg.RAG.SearchLimit
	}
	results, err := p.store.Search(ctx, query, opts)
	if err != nil {
		log.Warn().Err(err).Msg("vector search failed, returning no results")
		return []vectorstore.SearchResult{}
	}
	return results
}

// RenderPage returns the cached-or-rendered PNG for a stored PDF page.
func (p *Pipeline) RenderPage(ctx context.Context, docID string, page int) ([]byte, error) {
	return p.renderer.RenderPage(ctx, docID, page)
}

// Delete removes everything owned by docID. Metadata goes last: a crash
// mid-delete leaves an orphaned but still discoverable document rather
// than dangling vectors with no owning record.
func (p *Pipeline) Delete(ctx context.Context, docID string) error {
	if _, err := p.docs.GetDocument(ctx, docID); err != nil {
		return err
	}

	if err := p.store.DeleteDocument(ctx, docID); err != nil {
		return err
	}

	pdfPath := filepath.Join(PDFDir(p.cfg.DataDir), docID+".pdf")
	if err := os.Remove(pdfPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stored pdf for %q: %w", docID, err)
	}

	p.cache.DeleteDoc(docID)
	if err := os.RemoveAll(filepath.Join(imagesDir(p.cfg.DataDir), docID)); err != nil {
		return fmt.Errorf("remove extracted images for %q: %w", docID, err)
	}

	if _, err := p.docs.DeleteDocument(ctx, docID); err != nil {
		return err
	}
	log.Info().Str("doc_id", docID).Msg("deleted document")
	return nil
}
