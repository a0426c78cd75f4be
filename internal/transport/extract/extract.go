package extract

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tessella-io/docdex/internal/domain"
)

// Extractor pulls plain text out of an uploaded file.
type Extractor interface {
	Extract(ctx context.Context, path, mediaType string) (string, error)
}

// Registry routes extraction by media type. Unknown types are rejected
// before the pipeline spends any work on them.
type Registry struct {
	byType map[string]Extractor
	logger *zap.Logger
}

// NewRegistry builds the default extractor set. tesseractBinary may be
// empty, in which case image uploads get a placeholder instead of OCR.
func NewRegistry(tesseractBinary string, logger *zap.Logger) *Registry {
	r := &Registry{
		byType: make(map[string]Extractor),
		logger: logger,
	}

	r.register(&PDF{}, "application/pdf")
	r.register(&DOCX{},
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	r.register(&PlainText{}, "text/plain", "text/markdown", "text/csv")
	r.register(&Image{Binary: tesseractBinary, Logger: logger},
		"image/png", "image/jpeg", "image/jpg", "image/webp")

	return r
}

func (r *Registry) register(e Extractor, mediaTypes ...string) {
	for _, mt := range mediaTypes {
		r.byType[mt] = e
	}
}

// Supported reports whether the media type has a registered extractor.
func (r *Registry) Supported(mediaType string) bool {
	_, ok := r.byType[normalize(mediaType)]
	return ok
}

// Extract implements Extractor by dispatching on media type.
func (r *Registry) Extract(ctx context.Context, path, mediaType string) (string, error) {
	e, ok := r.byType[normalize(mediaType)]
	if !ok {
		return "", fmt.Errorf("unsupported media type %q: %w", mediaType, domain.ErrExtractionFailed)
	}
	return e.Extract(ctx, path, mediaType)
}

// normalize drops media type parameters such as "; charset=utf-8".
func normalize(mediaType string) string {
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
