// Package document persists document records as RedisJSON values with
// path-level partial updates for pipeline stage writes.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tessella-io/docdex/internal/db"
	"github.com/tessella-io/docdex/internal/domain"
	domdoc "github.com/tessella-io/docdex/internal/domain/document"
	"github.com/tessella-io/docdex/internal/domain/document/status"
)

// store is the consumer interface for document records (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string, path string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Status   status.Status
	Category string
}

// Repo implements the document repository over the db facade.
type Repo struct {
	store  store
	prefix string
}

// New creates a document repository. prefix namespaces all keys (e.g. "docdex:").
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = "docdex:"
	}
	return &Repo{store: s, prefix: prefix}
}

func (r *Repo) key(id string) string { return r.prefix + "doc:" + id }

// Create stores a new document record in full.
func (r *Repo) Create(ctx context.Context, doc *domdoc.Document) error {
	data, err := json.Marshal(toJSON(doc))
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := r.store.JSONSet(ctx, r.key(doc.ID()), "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", doc.ID(), err)
	}
	return nil
}

// Get returns a document by ID.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	raw, err := r.store.JSONGet(ctx, r.key(id), "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, fmt.Errorf("json.get %s: %w", id, err)
	}

	rec, err := parseRecord(raw)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("document %s: %w", id, err)
	}
	return rec.toDomain()
}

// List returns all documents matching the filter, newest first.
// Records that fail to parse are skipped rather than failing the listing.
func (r *Repo) List(ctx context.Context, f Filter) ([]domdoc.Document, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"doc:*")
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys) // deterministic fetch order

	raws, err := r.store.JSONGetMulti(ctx, keys, "$")
	if err != nil {
		return nil, fmt.Errorf("json.get multi: %w", err)
	}

	docs := make([]domdoc.Document, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue // deleted between scan and fetch
		}
		rec, err := parseRecord(raw)
		if err != nil {
			continue
		}
		doc, err := rec.toDomain()
		if err != nil {
			continue
		}
		if f.Status != "" && doc.Status() != f.Status {
			continue
		}
		if f.Category != "" && !strings.EqualFold(doc.Category(), f.Category) {
			continue
		}
		docs = append(docs, doc)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].UploadDate().After(docs[j].UploadDate())
	})
	return docs, nil
}

// Delete removes a document record.
func (r *Repo) Delete(ctx context.Context, id string) error {
	exists, err := r.store.Exists(ctx, r.key(id))
	if err != nil {
		return fmt.Errorf("check exists %s: %w", id, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}
	if err := r.store.Del(ctx, r.key(id)); err != nil {
		return fmt.Errorf("del %s: %w", id, err)
	}
	return nil
}

// SetStatus persists only the status field (and clears no other fields).
func (r *Repo) SetStatus(ctx context.Context, id string, st status.Status) error {
	return r.setPath(ctx, id, "$.status", st.String())
}

// SetText persists the extracted raw text.
func (r *Repo) SetText(ctx context.Context, id, text string) error {
	return r.setPath(ctx, id, "$.text", text)
}

// SetChunks replaces the chunk sequence wholesale.
func (r *Repo) SetChunks(ctx context.Context, id string, chunks []domdoc.Chunk) error {
	out := make([]chunkJSON, len(chunks))
	for i, c := range chunks {
		out[i] = chunkJSON{Index: c.Index, Text: c.Text, Embedding: c.Embedding}
	}
	return r.setPath(ctx, id, "$.chunks", out)
}

// SetSummary persists the document summary.
func (r *Repo) SetSummary(ctx context.Context, id string, s domain.Summary) error {
	return r.setPath(ctx, id, "$.summary", summaryJSON{Short: s.Short, Bullets: s.Bullets})
}

// SetClassification persists category and tags together.
func (r *Repo) SetClassification(ctx context.Context, id, cat string, tags []string) error {
	if err := r.setPath(ctx, id, "$.category", cat); err != nil {
		return err
	}
	if tags == nil {
		tags = []string{}
	}
	return r.setPath(ctx, id, "$.tags", tags)
}

// SetMetadata persists user-editable fields from a patch.
func (r *Repo) SetMetadata(ctx context.Context, id, title, cat string, tags []string) error {
	if title != "" {
		if err := r.setPath(ctx, id, "$.title", title); err != nil {
			return err
		}
	}
	if cat != "" {
		if err := r.setPath(ctx, id, "$.category", cat); err != nil {
			return err
		}
	}
	if tags != nil {
		if err := r.setPath(ctx, id, "$.tags", tags); err != nil {
			return err
		}
	}
	return nil
}

// SetError moves the record to the error status with a message.
func (r *Repo) SetError(ctx context.Context, id, msg string) error {
	if err := r.setPath(ctx, id, "$.status", status.Error.String()); err != nil {
		return err
	}
	return r.setPath(ctx, id, "$.error_message", msg)
}

func (r *Repo) setPath(ctx context.Context, id, path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := r.store.JSONSet(ctx, r.key(id), path, data); err != nil {
		return fmt.Errorf("json.set %s %s: %w", id, path, err)
	}
	return nil
}
