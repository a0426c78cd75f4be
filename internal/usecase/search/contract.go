package search

import (
	"context"

	"github.com/tessella-io/docdex/internal/domain"
	domdoc "github.com/tessella-io/docdex/internal/domain/document"
	docrepo "github.com/tessella-io/docdex/internal/repository/document"
	"github.com/tessella-io/docdex/internal/repository/searchlog"
)

// Repository lists candidate documents for ranking.
type Repository interface {
	List(ctx context.Context, f docrepo.Filter) ([]domdoc.Document, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Logger records executed searches for the recent-searches endpoint.
type Logger interface {
	Log(ctx context.Context, e searchlog.Entry) error
}
