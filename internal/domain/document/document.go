// Package document defines the document aggregate owned by the processing
// pipeline and read by the search components.
package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/tessella-io/docdex/internal/domain"
	"github.com/tessella-io/docdex/internal/domain/document/category"
	"github.com/tessella-io/docdex/internal/domain/document/status"
)

// Chunk is a contiguous piece of extracted text, the unit of embedding.
// Embedding is nil when generation failed for this chunk.
type Chunk struct {
	Index     int       `json:"index"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// Document is an immutable snapshot of an uploaded document. Pipeline stages
// produce new snapshots via the With* transition methods; the chunk sequence
// is always replaced wholesale, never edited in place.
type Document struct {
	id           string
	title        string
	originalName string
	filename     string
	mediaType    string
	size         int64
	uploadDate   time.Time
	text         string
	chunks       []Chunk
	summary      domain.Summary
	tags         []string
	category     string
	status       status.Status
	errorMessage string
}

// New validates and creates a pending Document from upload metadata.
func New(id, title, originalName, filename, mediaType string, size int64, uploadDate time.Time) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = originalName
	}
	if title == "" {
		return Document{}, fmt.Errorf("title is required")
	}
	if filename == "" {
		return Document{}, fmt.Errorf("filename is required")
	}
	if mediaType == "" {
		return Document{}, fmt.Errorf("media type is required")
	}
	if size < 0 {
		return Document{}, fmt.Errorf("size must be non-negative")
	}

	return Document{
		id:           id,
		title:        title,
		originalName: originalName,
		filename:     filename,
		mediaType:    mediaType,
		size:         size,
		uploadDate:   uploadDate,
		category:     category.Uncategorized,
		status:       status.Pending,
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id, title, originalName, filename, mediaType string, size int64, uploadDate time.Time,
	text string, chunks []Chunk, summary domain.Summary, tags []string,
	cat string, st status.Status, errorMessage string,
) Document {
	return Document{
		id: id, title: title, originalName: originalName, filename: filename,
		mediaType: mediaType, size: size, uploadDate: uploadDate,
		text: text, chunks: chunks, summary: summary, tags: tags,
		category: cat, status: st, errorMessage: errorMessage,
	}
}

// ID returns the document identifier.
func (d Document) ID() string { return d.id }

// Title returns the display title.
func (d Document) Title() string { return d.title }

// OriginalName returns the uploaded file's original name.
func (d Document) OriginalName() string { return d.originalName }

// Filename returns the stored file name used by the extractor.
func (d Document) Filename() string { return d.filename }

// MediaType returns the uploaded file's media type.
func (d Document) MediaType() string { return d.mediaType }

// Size returns the uploaded file's size in bytes.
func (d Document) Size() int64 { return d.size }

// UploadDate returns the upload timestamp.
func (d Document) UploadDate() time.Time { return d.uploadDate }

// Text returns the extracted raw text.
func (d Document) Text() string { return d.text }

// Chunks returns the chunk sequence.
func (d Document) Chunks() []Chunk { return d.chunks }

// Summary returns the document summary.
func (d Document) Summary() domain.Summary { return d.summary }

// Tags returns the extracted tags.
func (d Document) Tags() []string { return d.tags }

// Category returns the assigned category.
func (d Document) Category() string { return d.category }

// Status returns the processing status.
func (d Document) Status() status.Status { return d.status }

// ErrorMessage returns the pipeline failure message, empty unless status is error.
func (d Document) ErrorMessage() string { return d.errorMessage }

// WithStatus returns a copy advanced to next. Transitions only ever move
// forward through the pipeline or jump to the error status.
func (d Document) WithStatus(next status.Status) (Document, error) {
	if !d.status.CanTransition(next) {
		return Document{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, d.status, next)
	}
	c := d
	c.status = next
	return c, nil
}

// WithText returns a copy carrying the extracted text.
func (d Document) WithText(text string) Document {
	c := d
	c.text = text
	return c
}

// WithChunks returns a copy with the chunk sequence replaced wholesale.
func (d Document) WithChunks(chunks []Chunk) Document {
	c := d
	c.chunks = chunks
	return c
}

// WithSummary returns a copy carrying the summary.
func (d Document) WithSummary(s domain.Summary) Document {
	c := d
	c.summary = s
	return c
}

// WithClassification returns a copy carrying category and tags.
func (d Document) WithClassification(cat string, tags []string) Document {
	c := d
	c.category = cat
	c.tags = tags
	return c
}

// WithMetadata returns a copy with user-editable metadata replaced.
// Empty title or category leaves the current value; nil tags leaves tags.
func (d Document) WithMetadata(title, cat string, tags []string) Document {
	c := d
	if strings.TrimSpace(title) != "" {
		c.title = strings.TrimSpace(title)
	}
	if cat != "" {
		c.category = cat
	}
	if tags != nil {
		c.tags = tags
	}
	return c
}

// WithError returns a copy in the error status carrying the failure message.
// Unlike WithStatus it never fails: a terminal document keeps its state.
func (d Document) WithError(msg string) Document {
	c := d
	if c.status.CanTransition(status.Error) {
		c.status = status.Error
		c.errorMessage = msg
	}
	return c
}

// FirstChunkEmbedding returns the representative vector for similarity
// recommendations: the first chunk's embedding, or nil when absent.
func (d Document) FirstChunkEmbedding() []float32 {
	if len(d.chunks) == 0 {
		return nil
	}
	return d.chunks[0].Embedding
}
