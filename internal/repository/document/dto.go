package document

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tessella-io/docdex/internal/domain"
	domdoc "github.com/tessella-io/docdex/internal/domain/document"
	"github.com/tessella-io/docdex/internal/domain/document/status"
)

// docJSON is the stored representation of a document record.
type docJSON struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	OriginalName string      `json:"original_name"`
	Filename     string      `json:"filename"`
	MediaType    string      `json:"media_type"`
	Size         int64       `json:"size"`
	UploadDate   time.Time   `json:"upload_date"`
	Text         string      `json:"text"`
	Chunks       []chunkJSON `json:"chunks"`
	Summary      summaryJSON `json:"summary"`
	Tags         []string    `json:"tags"`
	Category     string      `json:"category"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

type chunkJSON struct {
	Index     int       `json:"index"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
}

type summaryJSON struct {
	Short   string   `json:"short"`
	Bullets []string `json:"bullets"`
}

// toJSON converts a domain Document into its stored form.
func toJSON(doc *domdoc.Document) docJSON {
	chunks := make([]chunkJSON, len(doc.Chunks()))
	for i, c := range doc.Chunks() {
		chunks[i] = chunkJSON{Index: c.Index, Text: c.Text, Embedding: c.Embedding}
	}
	return docJSON{
		ID:           doc.ID(),
		Title:        doc.Title(),
		OriginalName: doc.OriginalName(),
		Filename:     doc.Filename(),
		MediaType:    doc.MediaType(),
		Size:         doc.Size(),
		UploadDate:   doc.UploadDate().UTC(),
		Text:         doc.Text(),
		Chunks:       chunks,
		Summary:      summaryJSON{Short: doc.Summary().Short, Bullets: doc.Summary().Bullets},
		Tags:         doc.Tags(),
		Category:     doc.Category(),
		Status:       doc.Status().String(),
		ErrorMessage: doc.ErrorMessage(),
	}
}

// toDomain hydrates a domain Document from its stored form.
func (j docJSON) toDomain() (domdoc.Document, error) {
	st, err := status.Parse(j.Status)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("document %s: %w", j.ID, err)
	}

	chunks := make([]domdoc.Chunk, len(j.Chunks))
	for i, c := range j.Chunks {
		chunks[i] = domdoc.Chunk{Index: c.Index, Text: c.Text, Embedding: c.Embedding}
	}

	return domdoc.Reconstruct(
		j.ID, j.Title, j.OriginalName, j.Filename, j.MediaType, j.Size, j.UploadDate,
		j.Text, chunks, domain.Summary{Short: j.Summary.Short, Bullets: j.Summary.Bullets},
		j.Tags, j.Category, st, j.ErrorMessage,
	), nil
}

// parseRecord decodes a JSON.GET payload, which arrives either as a bare
// object or as a single-element array depending on the requested path.
func parseRecord(raw []byte) (docJSON, error) {
	var rec docJSON
	if len(raw) > 0 && raw[0] == '[' {
		var arr []docJSON
		if err := json.Unmarshal(raw, &arr); err != nil {
			return docJSON{}, fmt.Errorf("unmarshal document array: %w", err)
		}
		if len(arr) == 0 {
			return docJSON{}, fmt.Errorf("empty document array")
		}
		return arr[0], nil
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return docJSON{}, fmt.Errorf("unmarshal document: %w", err)
	}
	return rec, nil
}
