package models

// ChunkTypeText and ChunkTypeImage are the two chunk kinds the pipeline
// produces. Image chunks carry a vision-generated description as content.
const (
	ChunkTypeText  = "text"
	ChunkTypeImage = "image"
)

// File types accepted by the ingestion pipeline.
const (
	FileTypePDF      = "pdf"
	FileTypeMarkdown = "markdown"
	FileTypeDocx     = "docx"
	FileTypeXlsx     = "xlsx"
	FileTypeOds      = "ods"
	FileTypeText     = "txt"
)

// ChunkMetadata is the positional envelope attached to every chunk.
// Page fields are nil for sources without a page concept (Markdown).
type ChunkMetadata struct {
	Type         string `json:"type"`
	DocID        string `json:"docId"`
	ChunkIndex   int    `json:"chunkIndex"`
	Source       string `json:"source"`
	NumPages     int    `json:"numPages"`
	Application  string `json:"application,omitempty"`
	PageNumber   *int   `json:"pageNumber"`
	StartPage    *int   `json:"startPage,omitempty"`
	EndPage      *int   `json:"endPage,omitempty"`
	Header       string `json:"header,omitempty"`
	SectionIndex int    `json:"sectionIndex,omitempty"` // 1-based, 0 when not section-chunked
	FileType     string `json:"fileType"`
}

// Chunk is one retrieval unit belonging to a document. The ID is derived
// as {docId}_{typeTag}_{index} so re-ingestion replaces prior chunks.
type Chunk struct {
	ID         string        `json:"id"`
	Content    string        `json:"content"`
	Embedding  []float32     `json:"embedding,omitempty"`
	TokenCount int           `json:"tokenCount"`
	Metadata   ChunkMetadata `json:"metadata"`
}
