// Package similar recommends related documents by comparing representative
// chunk embeddings.
package similar

import (
	"context"
	"fmt"
	"sort"

	domdoc "github.com/tessella-io/docdex/internal/domain/document"
	"github.com/tessella-io/docdex/internal/domain/document/status"
	"github.com/tessella-io/docdex/internal/domain/vector"
	docrepo "github.com/tessella-io/docdex/internal/repository/document"
)

// Repository provides document reads for recommendations.
type Repository interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context, f docrepo.Filter) ([]domdoc.Document, error)
}

// Match is a related document with its similarity score.
type Match struct {
	Doc   domdoc.Document
	Score float64
}

// Service computes related-document recommendations.
type Service struct {
	repo         Repository
	defaultLimit int
}

// New creates a similarity service.
func New(repo Repository) *Service {
	return &Service{repo: repo, defaultLimit: 5}
}

// Similar returns the documents closest to the given one, ranked by cosine
// similarity of first-chunk embeddings. A document without an embedded first
// chunk yields an empty set, not an error.
func (s *Service) Similar(ctx context.Context, id string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	vec := doc.FirstChunkEmbedding()
	if vec == nil {
		return nil, nil
	}

	candidates, err := s.repo.List(ctx, docrepo.Filter{Status: status.Complete})
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if c.ID() == doc.ID() {
			continue
		}
		cvec := c.FirstChunkEmbedding()
		if cvec == nil {
			continue
		}
		score := vector.Cosine(vec, cvec)
		if score <= 0 {
			continue
		}
		matches = append(matches, Match{Doc: c, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
