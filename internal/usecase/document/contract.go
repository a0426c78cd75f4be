package document

import (
	"context"

	domdoc "github.com/tessella-io/docdex/internal/domain/document"
	docrepo "github.com/tessella-io/docdex/internal/repository/document"
)

// Repository defines the storage contract for document CRUD.
type Repository interface {
	Create(ctx context.Context, doc *domdoc.Document) error
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context, f docrepo.Filter) ([]domdoc.Document, error)
	Delete(ctx context.Context, id string) error
	SetMetadata(ctx context.Context, id, title, cat string, tags []string) error
}

// Processor runs a document through the ingestion pipeline.
type Processor interface {
	Process(ctx context.Context, doc domdoc.Document, path string) error
}

// Queue schedules pipeline jobs and signals their completion.
type Queue interface {
	Submit(job func()) (<-chan struct{}, error)
}

// MediaTypes reports which upload media types have an extractor.
type MediaTypes interface {
	Supported(mediaType string) bool
}
