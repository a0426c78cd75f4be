// Package document handles upload registration and document CRUD.
package document

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tessella-io/docdex/internal/domain"
	domdoc "github.com/tessella-io/docdex/internal/domain/document"
	"github.com/tessella-io/docdex/internal/domain/document/category"
	"github.com/tessella-io/docdex/internal/domain/document/status"
	docrepo "github.com/tessella-io/docdex/internal/repository/document"
)

// previewLength is how many runes of extracted text the preview exposes.
const previewLength = 2000

// UploadRequest carries the metadata of a stored upload.
type UploadRequest struct {
	Title        string
	OriginalName string
	Filename     string
	MediaType    string
	Size         int64
}

// ListPage is one page of documents.
type ListPage struct {
	Docs       []domdoc.Document
	Total      int
	Page       int
	TotalPages int
}

// Service owns the document lifecycle outside the pipeline itself.
type Service struct {
	repo       Repository
	processor  Processor
	queue      Queue
	media      MediaTypes
	categories category.Set

	uploadsDir      string
	defaultPageSize int
	maxPageSize     int

	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// New creates a document service.
func New(
	repo Repository, processor Processor, queue Queue, media MediaTypes,
	categories category.Set, uploadsDir string, logger *zap.Logger,
) *Service {
	return &Service{
		repo:            repo,
		processor:       processor,
		queue:           queue,
		media:           media,
		categories:      categories,
		uploadsDir:      uploadsDir,
		defaultPageSize: 20,
		maxPageSize:     100,
		now:             time.Now,
		newID:           uuid.NewString,
		logger:          logger,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Upload registers an uploaded file and enqueues the ingestion pipeline.
// The returned document is in the pending status; processing runs in the
// background.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (domdoc.Document, error) {
	if !s.media.Supported(req.MediaType) {
		return domdoc.Document{}, fmt.Errorf("%q: %w", req.MediaType, domain.ErrUnsupportedMediaType)
	}

	doc, err := domdoc.New(
		s.newID(), req.Title, req.OriginalName, req.Filename,
		req.MediaType, req.Size, s.now(),
	)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("%v: %w", err, domain.ErrInvalidQuery)
	}

	if err := s.repo.Create(ctx, &doc); err != nil {
		return domdoc.Document{}, fmt.Errorf("create document: %w", err)
	}

	path := filepath.Join(s.uploadsDir, doc.Filename())
	if _, err := s.queue.Submit(func() {
		// Detached from the request and deliberately unbounded: the upload
		// response does not wait, and a slow provider call is not an error.
		if procErr := s.processor.Process(context.Background(), doc, path); procErr != nil {
			s.logger.Error("processing failed",
				zap.String("document_id", doc.ID()), zap.Error(procErr))
		}
	}); err != nil {
		return domdoc.Document{}, fmt.Errorf("enqueue processing: %w", err)
	}

	return doc, nil
}

// Status reports the pipeline status of a document.
func (s *Service) Status(ctx context.Context, id string) (status.Status, string, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", "", fmt.Errorf("get document: %w", err)
	}
	return doc.Status(), doc.ErrorMessage(), nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (domdoc.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns a page of documents, newest first, optionally narrowed by
// category.
func (s *Service) List(ctx context.Context, cat string, page, limit int) (ListPage, error) {
	docs, err := s.repo.List(ctx, docrepo.Filter{Category: cat})
	if err != nil {
		return ListPage{}, fmt.Errorf("list documents: %w", err)
	}

	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	if page <= 0 {
		page = 1
	}

	total := len(docs)
	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return ListPage{
		Docs:       docs[start:end],
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// Preview returns the first part of the extracted text.
func (s *Service) Preview(ctx context.Context, id string) (string, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get document: %w", err)
	}
	runes := []rune(doc.Text())
	if len(runes) > previewLength {
		return string(runes[:previewLength]), nil
	}
	return doc.Text(), nil
}

// Patch updates user-editable metadata. An unknown category is rejected
// rather than silently mapped to the sentinel.
func (s *Service) Patch(ctx context.Context, id, title, cat string, tags []string) (domdoc.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}

	// Trim once so the stored title and the returned snapshot agree.
	title = strings.TrimSpace(title)

	if cat != "" {
		if !s.categories.Contains(cat) {
			return domdoc.Document{}, fmt.Errorf("%q: %w", cat, domain.ErrInvalidCategory)
		}
		cat = s.categories.Normalize(cat)
	}

	updated := doc.WithMetadata(title, cat, tags)
	if err := s.repo.SetMetadata(ctx, id, title, cat, tags); err != nil {
		return domdoc.Document{}, fmt.Errorf("patch document: %w", err)
	}
	return updated, nil
}

// Delete removes a document record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
