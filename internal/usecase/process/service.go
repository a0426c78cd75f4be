// Package process runs uploaded documents through the ingestion pipeline:
// extract, chunk, embed, summarize, classify.
package process

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tessella-io/docdex/internal/domain/chunker"
	"github.com/tessella-io/docdex/internal/domain/document"
	"github.com/tessella-io/docdex/internal/domain/document/category"
	"github.com/tessella-io/docdex/internal/domain/document/status"
	"github.com/tessella-io/docdex/internal/metrics"
)

// Service drives a document through the pipeline stages, persisting each
// status transition before the stage work begins so progress is observable.
type Service struct {
	repo       Repository
	provider   Provider
	extractor  Extractor
	categories category.Set

	chunkSize      int
	chunkOverlap   int
	embedDelay     time.Duration
	embedMaxChars  int
	promptMaxChars int

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration)

	logger *zap.Logger
}

// Config holds the pipeline tuning knobs.
type Config struct {
	ChunkSize      int
	ChunkOverlap   int
	EmbedDelay     time.Duration
	EmbedMaxChars  int
	PromptMaxChars int
}

// New creates a processing service.
func New(repo Repository, provider Provider, extractor Extractor,
	categories category.Set, cfg Config, logger *zap.Logger,
) *Service {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = chunker.DefaultSize
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = chunker.DefaultOverlap
	}
	if cfg.EmbedMaxChars <= 0 {
		cfg.EmbedMaxChars = 2048
	}
	if cfg.PromptMaxChars <= 0 {
		cfg.PromptMaxChars = 4000
	}

	return &Service{
		repo:           repo,
		provider:       provider,
		extractor:      extractor,
		categories:     categories,
		chunkSize:      cfg.ChunkSize,
		chunkOverlap:   cfg.ChunkOverlap,
		embedDelay:     cfg.EmbedDelay,
		embedMaxChars:  cfg.EmbedMaxChars,
		promptMaxChars: cfg.PromptMaxChars,
		sleep:          sleepCtx,
		logger:         logger,
	}
}

// Process runs a pending document through extraction, embedding and tagging.
// Extraction failure aborts the pipeline and the record ends in the error
// status. Per-chunk embedding failures and AI enrichment failures degrade
// instead of aborting.
func (s *Service) Process(ctx context.Context, doc document.Document, path string) error {
	log := s.logger.With(zap.String("document_id", doc.ID()))

	doc, err := s.advance(ctx, doc, status.Extracting)
	if err != nil {
		return err
	}

	text, err := s.extractor.Extract(ctx, path, doc.MediaType())
	if err != nil {
		return s.fail(ctx, doc, log, fmt.Errorf("extract text: %w", err))
	}
	doc = doc.WithText(text)
	if err := s.repo.SetText(ctx, doc.ID(), text); err != nil {
		return s.fail(ctx, doc, log, fmt.Errorf("persist text: %w", err))
	}

	doc, err = s.advance(ctx, doc, status.Embedding)
	if err != nil {
		return err
	}

	chunks := s.embedChunks(ctx, log, chunker.Split(text, s.chunkSize, s.chunkOverlap))
	doc = doc.WithChunks(chunks)
	if err := s.repo.SetChunks(ctx, doc.ID(), chunks); err != nil {
		return s.fail(ctx, doc, log, fmt.Errorf("persist chunks: %w", err))
	}

	doc, err = s.advance(ctx, doc, status.Tagging)
	if err != nil {
		return err
	}

	if err := s.enrich(ctx, doc, log, text); err != nil {
		return s.fail(ctx, doc, log, err)
	}

	if _, err := s.advance(ctx, doc, status.Complete); err != nil {
		return err
	}

	metrics.DocumentsProcessedTotal.WithLabelValues("complete").Inc()
	log.Info("document processed",
		zap.Int("chunks", len(chunks)),
		zap.Int("text_chars", len(text)))
	return nil
}

// advance persists the status transition before any stage work runs.
func (s *Service) advance(ctx context.Context, doc document.Document, next status.Status) (document.Document, error) {
	moved, err := doc.WithStatus(next)
	if err != nil {
		return document.Document{}, err
	}
	if err := s.repo.SetStatus(ctx, moved.ID(), next); err != nil {
		return document.Document{}, fmt.Errorf("persist status %s: %w", next, err)
	}
	return moved, nil
}

// embedChunks embeds each chunk sequentially with a delay between provider
// calls. A failed chunk keeps a nil embedding and the pipeline continues.
func (s *Service) embedChunks(ctx context.Context, log *zap.Logger, texts []string) []document.Chunk {
	chunks := make([]document.Chunk, len(texts))
	for i, text := range texts {
		if i > 0 && s.embedDelay > 0 {
			s.sleep(ctx, s.embedDelay)
		}

		chunks[i] = document.Chunk{Index: i, Text: text}

		result, err := s.provider.Embed(ctx, truncateRunes(text, s.embedMaxChars))
		if err != nil {
			metrics.ChunksEmbeddedTotal.WithLabelValues("failed").Inc()
			log.Warn("chunk embedding failed", zap.Int("chunk", i), zap.Error(err))
			continue
		}

		metrics.ChunksEmbeddedTotal.WithLabelValues("success").Inc()
		chunks[i].Embedding = result.Embedding
	}
	return chunks
}

// enrich produces summary, category and tags, falling back to local
// heuristics when the provider fails or returns a malformed response.
func (s *Service) enrich(ctx context.Context, doc document.Document, log *zap.Logger, text string) error {
	prompt := truncateRunes(text, s.promptMaxChars)

	summary, err := s.provider.Summarize(ctx, prompt)
	if err != nil {
		log.Warn("summarization failed, using local fallback", zap.Error(err))
		summary = localSummary(text)
	}
	if err := s.repo.SetSummary(ctx, doc.ID(), summary); err != nil {
		return fmt.Errorf("persist summary: %w", err)
	}

	cls, err := s.provider.Classify(ctx, prompt)
	if err != nil {
		log.Warn("classification failed, using local fallback", zap.Error(err))
		cls.Category = category.Uncategorized
		cls.Tags = localKeywords(text, fallbackKeywordCount)
	}
	cat := s.categories.Normalize(cls.Category)
	if cat != cls.Category {
		log.Info("category outside configured set",
			zap.String("raw", cls.Category), zap.String("assigned", cat))
	}
	if len(cls.Tags) == 0 {
		cls.Tags = localKeywords(text, fallbackKeywordCount)
	}
	if err := s.repo.SetClassification(ctx, doc.ID(), cat, cls.Tags); err != nil {
		return fmt.Errorf("persist classification: %w", err)
	}
	return nil
}

// fail parks the document in the error status. The returned error carries
// the stage failure for the caller's log.
func (s *Service) fail(ctx context.Context, doc document.Document, log *zap.Logger, cause error) error {
	metrics.DocumentsProcessedTotal.WithLabelValues("error").Inc()
	log.Error("pipeline failed", zap.Error(cause))

	if err := s.repo.SetError(ctx, doc.ID(), cause.Error()); err != nil {
		log.Error("could not persist error status", zap.Error(err))
	}
	return cause
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
