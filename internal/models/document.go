package models

import "time"

// Document status values as recorded in the metadata store.
const (
	DocStatusProcessed = "processed"
	DocStatusFailed    = "failed"
)

// Document is the metadata record for one uploaded file. DocID is the join
// key across the metadata store, the vector store and on-disk artifacts.
type Document struct {
	DocID         string    `json:"docId"`
	Filename      string    `json:"filename"`
	Title         string    `json:"title"`
	Application   string    `json:"application"`
	FileType      string    `json:"fileType"`
	UploadDate    time.Time `json:"uploadDate"`
	Status        string    `json:"status"`
	ChunkCount    int       `json:"chunkCount"`
	ImageCount    int       `json:"imageCount"`
	FileSizeBytes int64     `json:"fileSizeBytes"`
	// NumPages is the page count for PDFs and the section/sheet count for
	// everything else.
	NumPages int `json:"numPages"`
}

// DocumentUpdate is a partial update; nil fields are left untouched.
type DocumentUpdate struct {
	Title         *string
	Status        *string
	ChunkCount    *int
	ImageCount    *int
	FileSizeBytes *int64
	NumPages      *int
}
