package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"supportkb/internal/config"
	"supportkb/internal/models"
)

type documentRow struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID            int64     `bun:"id,pk,autoincrement"`
	DocID         string    `bun:"doc_id,notnull,unique"`
	Filename      string    `bun:"filename,notnull"`
	Title         string    `bun:"title"`
	Application   string    `bun:"application"`
	FileType      string    `bun:"file_type,notnull"`
	UploadDate    time.Time `bun:"upload_date,notnull"`
	Status        string    `bun:"status,notnull"`
	ChunkCount    int       `bun:"chunk_count,notnull,default:0"`
	ImageCount    int       `bun:"image_count,notnull,default:0"`
	FileSizeBytes int64     `bun:"file_size_bytes,notnull,default:0"`
	NumPages      int       `bun:"num_pages,notnull,default:0"`
}

func (r *documentRow) toModel() models.Document {
	return models.Document{
		DocID:         r.DocID,
		Filename:      r.Filename,
		Title:         r.Title,
		Application:   r.Application,
		FileType:      r.FileType,
		UploadDate:    r.UploadDate,
		Status:        r.Status,
		ChunkCount:    r.ChunkCount,
		ImageCount:    r.ImageCount,
		FileSizeBytes: r.FileSizeBytes,
		NumPages:      r.NumPages,
	}
}

func rowFromModel(doc models.Document) *documentRow {
	return &documentRow{
		DocID:         doc.DocID,
		Filename:      doc.Filename,
		Title:         doc.Title,
		Application:   doc.Application,
		FileType:      doc.FileType,
		UploadDate:    doc.UploadDate,
		Status:        doc.Status,
		ChunkCount:    doc.ChunkCount,
		ImageCount:    doc.ImageCount,
		FileSizeBytes: doc.FileSizeBytes,
		NumPages:      doc.NumPages,
	}
}

// BunStore is the Postgres-backed metadata store for deployments that
// already run a database alongside the chatbot.
type BunStore struct {
	db *bun.DB
}

func ConnectDB(cfg *config.DatabaseConfig) *sql.DB {
	return sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithPassword(cfg.Password),
	))
}

func NewBunStore(sqldb *sql.DB, debug bool) *BunStore {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &BunStore{db: db}
}

// Init creates the documents table if it does not exist.
func (s *BunStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*documentRow)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *BunStore) Close() error { return s.db.Close() }

func (s *BunStore) AddDocument(ctx context.Context, doc models.Document) error {
	row := rowFromModel(doc)
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (doc_id) DO UPDATE").
		Set("filename = EXCLUDED.filename").
		Set("title = EXCLUDED.title").
		Set("application = EXCLUDED.application").
		Set("file_type = EXCLUDED.file_type").
		Set("upload_date = EXCLUDED.upload_date").
		Set("status = EXCLUDED.status").
		Set("chunk_count = EXCLUDED.chunk_count").
		Set("image_count = EXCLUDED.image_count").
		Set("file_size_bytes = EXCLUDED.file_size_bytes").
		Set("num_pages = EXCLUDED.num_pages").
		Exec(ctx)
	return err
}

func (s *BunStore) GetDocument(ctx context.Context, docID string) (*models.Document, error) {
	var row documentRow
	err := s.db.NewSelect().Model(&row).Where("doc_id = ?", docID).Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, docID)
	}
	if err != nil {
		return nil, err
	}
	doc := row.toModel()
	return &doc, nil
}

func (s *BunStore) GetAllDocuments(ctx context.Context) ([]models.Document, error) {
	var rows []documentRow
	if err := s.db.NewSelect().Model(&rows).Order("upload_date ASC").Scan(ctx); err != nil {
		return nil, err
	}
	docs := make([]models.Document, len(rows))
	for i := range rows {
		docs[i] = rows[i].toModel()
	}
	return docs, nil
}

func (s *BunStore) UpdateDocument(ctx context.Context, docID string, upd models.DocumentUpdate) error {
	q := s.db.NewUpdate().Model((*documentRow)(nil)).Where("doc_id = ?", docID)
	changed := false
	if upd.Title != nil {
		q = q.Set("title = ?", *upd.Title)
		changed = true
	}
	if upd.Status != nil {
		q = q.Set("status = ?", *upd.Status)
		changed = true
	}
	if upd.ChunkCount != nil {
		q = q.Set("chunk_count = ?", *upd.ChunkCount)
		changed = true
	}
	if upd.ImageCount != nil {
		q = q.Set("image_count = ?", *upd.ImageCount)
		changed = true
	}
	if upd.FileSizeBytes != nil {
		q = q.Set("file_size_bytes = ?", *upd.FileSizeBytes)
		changed = true
	}
	if upd.NumPages != nil {
		q = q.Set("num_pages = ?", *upd.NumPages)
		changed = true
	}
	if !changed {
		return nil
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, docID)
	}
	return nil
}

func (s *BunStore) DeleteDocument(ctx context.Context, docID string) (bool, error) {
	res, err := s.db.NewDelete().Model((*documentRow)(nil)).Where("doc_id = ?", docID).Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
