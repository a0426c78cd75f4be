// Package search ranks complete documents against a query with a hybrid of
// semantic chunk similarity and per-request TF-IDF keyword relevance.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tessella-io/docdex/internal/domain"
	"github.com/tessella-io/docdex/internal/domain/document/status"
	"github.com/tessella-io/docdex/internal/domain/search/result"
	"github.com/tessella-io/docdex/internal/metrics"
	docrepo "github.com/tessella-io/docdex/internal/repository/document"
	"github.com/tessella-io/docdex/internal/repository/searchlog"
)

// Service executes hybrid searches over the complete document set.
type Service struct {
	repo      Repository
	embed     Embedder
	searchLog Logger

	semanticWeight  float64
	snippetLength   int
	defaultPageSize int
	maxPageSize     int

	now    func() time.Time
	logger *zap.Logger
}

// Config holds the ranking and pagination knobs.
type Config struct {
	SemanticWeight  float64
	SnippetLength   int
	DefaultPageSize int
	MaxPageSize     int
}

// Params is a single search request.
type Params struct {
	Query    string
	Category string
	Page     int
	Limit    int
}

// Page is one page of ranked results.
type Page struct {
	Results    []result.Result
	Total      int
	Page       int
	TotalPages int
}

// New creates a search service.
func New(repo Repository, embed Embedder, searchLog Logger, cfg Config, logger *zap.Logger) *Service {
	if cfg.SemanticWeight <= 0 || cfg.SemanticWeight > 1 {
		cfg.SemanticWeight = defaultSemanticWeight
	}
	if cfg.SnippetLength <= 0 {
		cfg.SnippetLength = defaultSnippetLength
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}

	return &Service{
		repo:            repo,
		embed:           embed,
		searchLog:       searchLog,
		semanticWeight:  cfg.SemanticWeight,
		snippetLength:   cfg.SnippetLength,
		defaultPageSize: cfg.DefaultPageSize,
		maxPageSize:     cfg.MaxPageSize,
		now:             time.Now,
		logger:          logger,
	}
}

// Search runs the hybrid ranking over complete documents, optionally
// narrowed by category, and returns the requested page. A query embedding
// failure fails the whole request; there are no keyword-only partial results.
func (s *Service) Search(ctx context.Context, p Params) (Page, error) {
	query := strings.TrimSpace(p.Query)
	if query == "" {
		return Page{}, domain.ErrInvalidQuery
	}

	candidates, err := s.repo.List(ctx, docrepo.Filter{
		Status:   status.Complete,
		Category: p.Category,
	})
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return Page{}, fmt.Errorf("list candidates: %w", err)
	}

	// Nothing to rank means nothing to vectorize; the empty page still
	// gets logged and counted like any other search.
	var ranked []result.Result
	if len(candidates) > 0 {
		embRes, err := s.embed.Embed(ctx, query)
		if err != nil {
			metrics.SearchesTotal.WithLabelValues("error").Inc()
			return Page{}, fmt.Errorf("vectorize query: %w", err)
		}

		sem := semanticMatches(embRes.Embedding, candidates)
		kw := keywordScores(query, candidates)
		ranked = fuse(candidates, sem, kw, s.semanticWeight)
	}

	page := paginate(ranked, p.Page, s.pageLimit(p.Limit))

	if err := s.searchLog.Log(ctx, searchlog.Entry{
		Query:        query,
		Timestamp:    s.now(),
		ResultsCount: page.Total,
		Category:     p.Category,
	}); err != nil {
		s.logger.Warn("search log write failed", zap.Error(err))
	}

	metrics.SearchesTotal.WithLabelValues("success").Inc()
	return page, nil
}

// Snippet renders the highlighted preview for a hit: the best-matching chunk
// when semantic ranking found one, the document text otherwise.
func (s *Service) Snippet(r result.Result, query string) string {
	if c := r.MatchedChunk(); c != nil {
		return Snippet(c.Text, query, s.snippetLength)
	}
	doc := r.Document()
	return Snippet(doc.Text(), query, s.snippetLength)
}

func (s *Service) pageLimit(limit int) int {
	if limit <= 0 {
		return s.defaultPageSize
	}
	if limit > s.maxPageSize {
		return s.maxPageSize
	}
	return limit
}

// paginate slices the ranked list into 1-based pages.
func paginate(ranked []result.Result, pageNum, limit int) Page {
	if pageNum <= 0 {
		pageNum = 1
	}

	total := len(ranked)
	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (pageNum - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return Page{
		Results:    ranked[start:end],
		Total:      total,
		Page:       pageNum,
		TotalPages: totalPages,
	}
}
