package process

import (
	"context"

	"github.com/tessella-io/docdex/internal/domain"
	domdoc "github.com/tessella-io/docdex/internal/domain/document"
	"github.com/tessella-io/docdex/internal/domain/document/status"
)

// Repository defines the storage contract for pipeline stage writes.
type Repository interface {
	SetStatus(ctx context.Context, id string, st status.Status) error
	SetText(ctx context.Context, id, text string) error
	SetChunks(ctx context.Context, id string, chunks []domdoc.Chunk) error
	SetSummary(ctx context.Context, id string, s domain.Summary) error
	SetClassification(ctx context.Context, id, cat string, tags []string) error
	SetError(ctx context.Context, id, msg string) error
}

// Provider is the AI collaborator used by the pipeline.
type Provider interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
	Summarize(ctx context.Context, text string) (domain.Summary, error)
	Classify(ctx context.Context, text string) (domain.Classification, error)
}

// Extractor pulls plain text from an uploaded file.
type Extractor interface {
	Extract(ctx context.Context, path, mediaType string) (string, error)
}
