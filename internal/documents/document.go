// Package documents implements the document domain for Folio.
// It persists ingested uploads alongside their original blobs and exposes
// listing, editing, download, and dry-run analysis operations.
package documents

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/folio/internal/ingest"
)

// Document is an ingested upload with its normalized content and blob reference.
type Document struct {
	ID           uuid.UUID      `json:"id"`
	OwnerID      string         `json:"owner_id"`
	Title        string         `json:"title"`
	Filename     string         `json:"filename"`
	ContentType  string         `json:"content_type"`
	DeclaredType string         `json:"declared_type"`
	DetectedType string         `json:"detected_type"`
	Confidence   float64        `json:"confidence"`
	SizeBytes    int64          `json:"size_bytes"`
	PageCount    *int           `json:"page_count"`
	Content      string         `json:"content"`
	HTMLContent  string         `json:"html_content"`
	Metadata     map[string]any `json:"metadata"`
	Preview      string         `json:"preview"`
	HasError     bool           `json:"has_error"`
	StorageKey   string         `json:"storage_key"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// CreateCommand carries a raw upload and its owner.
type CreateCommand struct {
	OwnerID     string
	Data        []byte
	Filename    string
	ContentType string
}

func (c CreateCommand) upload() ingest.Upload {
	return ingest.Upload{
		Data:        c.Data,
		Filename:    c.Filename,
		ContentType: c.ContentType,
	}
}

// UpdateCommand edits a document. Nil fields are left unchanged.
// Setting Content regenerates the preview.
type UpdateCommand struct {
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
	HTMLContent *string `json:"html_content,omitempty"`
}

func (c UpdateCommand) empty() bool {
	return c.Title == nil && c.Content == nil && c.HTMLContent == nil
}

// BatchResult reports the outcome of a single file within a batch upload.
// On success, Document is populated and Error is empty.
// On failure, Error describes the problem and Document is nil.
type BatchResult struct {
	Document *Document `json:"document,omitempty"`
	Filename string    `json:"filename"`
	Error    string    `json:"error,omitempty"`
}

// BatchResponse groups batch outcomes into successes and failures.
type BatchResponse struct {
	Uploaded []Document    `json:"uploaded"`
	Errors   []BatchResult `json:"errors"`
}

// NewBatchResponse partitions results, preserving input order.
func NewBatchResponse(results []BatchResult) BatchResponse {
	resp := BatchResponse{
		Uploaded: make([]Document, 0, len(results)),
		Errors:   make([]BatchResult, 0),
	}
	for _, r := range results {
		if r.Document != nil {
			resp.Uploaded = append(resp.Uploaded, *r.Document)
			continue
		}
		resp.Errors = append(resp.Errors, r)
	}
	return resp
}

// AnalyzeResult is the dry-run view of an ingestion. Full text is omitted;
// only its length is reported.
type AnalyzeResult struct {
	Filename   string          `json:"filename"`
	Decision   ingest.Decision `json:"decision"`
	Metadata   map[string]any  `json:"metadata"`
	Preview    string          `json:"preview"`
	TextLength int             `json:"text_length"`
	HTMLLength int             `json:"html_length"`
	HasError   bool            `json:"has_error"`
}

// NewAnalyzeResult summarizes an analysis.
func NewAnalyzeResult(filename string, a ingest.Analysis) AnalyzeResult {
	return AnalyzeResult{
		Filename:   filename,
		Decision:   a.Decision,
		Metadata:   a.Document.Metadata,
		Preview:    a.Preview,
		TextLength: len(a.Document.PlainText),
		HTMLLength: len(a.Document.HTML),
		HasError:   a.Document.HasError(),
	}
}

// Download is an open blob stream for a stored document. The caller must
// close Body.
type Download struct {
	Filename      string
	ContentType   string
	ContentLength int64
	Body          io.ReadCloser
}
