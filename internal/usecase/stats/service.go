// Package stats aggregates dashboard figures over the document corpus.
package stats

import (
	"context"
	"fmt"
	"sort"

	domdoc "github.com/tessella-io/docdex/internal/domain/document"
	"github.com/tessella-io/docdex/internal/domain/document/category"
	"github.com/tessella-io/docdex/internal/domain/document/status"
	docrepo "github.com/tessella-io/docdex/internal/repository/document"
)

// Repository lists documents for aggregation.
type Repository interface {
	List(ctx context.Context, f docrepo.Filter) ([]domdoc.Document, error)
}

// SearchCounter reports the lifetime search count.
type SearchCounter interface {
	Total(ctx context.Context) (int64, error)
}

// Totals are the headline dashboard numbers.
type Totals struct {
	Documents      int
	Searches       int64
	StorageBytes   int64
	CategoriesUsed int
}

// CategoryCount is one category's document count.
type CategoryCount struct {
	Category string
	Count    int
}

// Service computes dashboard statistics.
type Service struct {
	repo     Repository
	searches SearchCounter
}

// New creates a stats service.
func New(repo Repository, searches SearchCounter) *Service {
	return &Service{repo: repo, searches: searches}
}

// Totals returns corpus-wide counters. Categories in use exclude the
// Uncategorized sentinel.
func (s *Service) Totals(ctx context.Context) (Totals, error) {
	docs, err := s.repo.List(ctx, docrepo.Filter{})
	if err != nil {
		return Totals{}, fmt.Errorf("list documents: %w", err)
	}

	searches, err := s.searches.Total(ctx)
	if err != nil {
		return Totals{}, fmt.Errorf("count searches: %w", err)
	}

	var storage int64
	inUse := make(map[string]struct{})
	for _, d := range docs {
		storage += d.Size()
		if d.Category() != category.Uncategorized {
			inUse[d.Category()] = struct{}{}
		}
	}

	return Totals{
		Documents:      len(docs),
		Searches:       searches,
		StorageBytes:   storage,
		CategoriesUsed: len(inUse),
	}, nil
}

// Categories returns document counts per category, largest first.
func (s *Service) Categories(ctx context.Context) ([]CategoryCount, error) {
	docs, err := s.repo.List(ctx, docrepo.Filter{})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	counts := make(map[string]int)
	for _, d := range docs {
		counts[d.Category()]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for cat, n := range counts {
		out = append(out, CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// RecentUploads returns the newest complete documents.
func (s *Service) RecentUploads(ctx context.Context, limit int) ([]domdoc.Document, error) {
	if limit <= 0 {
		limit = 5
	}

	docs, err := s.repo.List(ctx, docrepo.Filter{Status: status.Complete})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	// The repository lists newest first already.
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}
