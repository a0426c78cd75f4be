package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tessella-io/docdex/internal/domain"
	domdoc "github.com/tessella-io/docdex/internal/domain/document"
	"github.com/tessella-io/docdex/internal/domain/document/status"
)

func TestSearch_BlankQueryRejected(t *testing.T) {
	svc := testSearchService(&mockRepo{}, &mockEmbedder{}, &mockSearchLog{}, Config{})

	for _, q := range []string{"", "   ", "\t\n"} {
		if _, err := svc.Search(context.Background(), Params{Query: q}); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("query %q: expected ErrInvalidQuery, got %v", q, err)
		}
	}
}

func TestSearch_FiltersCompleteByCategory(t *testing.T) {
	repo := &mockRepo{}
	svc := testSearchService(repo, &mockEmbedder{vec: []float32{1, 0}}, &mockSearchLog{}, Config{})

	if _, err := svc.Search(context.Background(), Params{Query: "q", Category: "Legal"}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(repo.filters) != 1 {
		t.Fatalf("expected 1 list call, got %d", len(repo.filters))
	}
	f := repo.filters[0]
	if f.Status != status.Complete {
		t.Errorf("status filter = %s, expected complete", f.Status)
	}
	if f.Category != "Legal" {
		t.Errorf("category filter = %q", f.Category)
	}
}

func TestSearch_EmptyCorpusSkipsEmbedding(t *testing.T) {
	// An embedder that would fail proves the query is never vectorized
	// when the filter matches nothing.
	emb := &mockEmbedder{err: fmt.Errorf("upstream down: %w", domain.ErrEmbeddingProviderError)}
	slog := &mockSearchLog{}
	svc := testSearchService(&mockRepo{}, emb, slog, Config{})

	page, err := svc.Search(context.Background(), Params{Query: "budget"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if emb.calls != 0 {
		t.Errorf("expected no embed calls, got %d", emb.calls)
	}
	if page.Total != 0 || len(page.Results) != 0 {
		t.Errorf("expected empty page, got total=%d results=%d", page.Total, len(page.Results))
	}
	if page.Page != 1 || page.TotalPages != 1 {
		t.Errorf("page metadata = %d/%d, expected 1/1", page.Page, page.TotalPages)
	}
	if len(slog.entries) != 1 || slog.entries[0].ResultsCount != 0 {
		t.Errorf("empty search should still be logged with zero results")
	}
}

func TestSearch_EmbeddingFailureFailsRequest(t *testing.T) {
	repo := &mockRepo{docs: []domdoc.Document{
		completeDoc("a", "Budget", "budget text", nil, nil),
	}}
	emb := &mockEmbedder{err: fmt.Errorf("upstream down: %w", domain.ErrEmbeddingProviderError)}
	slog := &mockSearchLog{}

	svc := testSearchService(repo, emb, slog, Config{})

	_, err := svc.Search(context.Background(), Params{Query: "budget"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
	// No keyword-only fallback and no log entry for a failed search.
	if len(slog.entries) != 0 {
		t.Errorf("expected no search log entries, got %d", len(slog.entries))
	}
}

func TestSearch_HybridRanking(t *testing.T) {
	queryVec := []float32{1, 0}
	repo := &mockRepo{docs: []domdoc.Document{
		// Strong semantic, weak keyword.
		completeDoc("sem", "Other title", "unrelated words entirely", nil, []domdoc.Chunk{
			{Index: 0, Text: "related chunk", Embedding: []float32{1, 0}},
		}),
		// Keyword only.
		completeDoc("kw", "Budget budget budget", "budget budget budget", nil, nil),
	}}

	svc := testSearchService(repo, &mockEmbedder{vec: queryVec}, &mockSearchLog{}, Config{SemanticWeight: 0.7})

	page, err := svc.Search(context.Background(), Params{Query: "budget"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("total = %d, expected 2", page.Total)
	}

	// 0.7*1.0 beats 0.3*1.0.
	first := page.Results[0]
	if first.Document().ID() != "sem" {
		t.Errorf("expected semantic hit first, got %s", first.Document().ID())
	}
	if !almostEqual(first.FinalScore(), 0.7) {
		t.Errorf("semantic hit final = %v", first.FinalScore())
	}
	second := page.Results[1]
	if !almostEqual(second.FinalScore(), 0.3) {
		t.Errorf("keyword hit final = %v", second.FinalScore())
	}
	if second.SemanticScore() != 0 {
		t.Errorf("keyword-only hit semantic score = %v, expected 0", second.SemanticScore())
	}
}

func TestSearch_Pagination(t *testing.T) {
	var docs []domdoc.Document
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("d%d", i)
		docs = append(docs, completeDoc(id, "T", "term", nil, []domdoc.Chunk{
			{Index: 0, Text: "chunk", Embedding: []float32{1, float32(i)}},
		}))
	}
	repo := &mockRepo{docs: docs}

	svc := testSearchService(repo, &mockEmbedder{vec: []float32{1, 0}}, &mockSearchLog{}, Config{})

	page, err := svc.Search(context.Background(), Params{Query: "term", Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.Total != 5 || page.Page != 2 || page.TotalPages != 3 {
		t.Errorf("page meta = %+v", page)
	}
	if len(page.Results) != 2 {
		t.Errorf("expected 2 results on page 2, got %d", len(page.Results))
	}

	// Past the end: empty page, same metadata.
	page, err = svc.Search(context.Background(), Params{Query: "term", Page: 9, Limit: 2})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(page.Results) != 0 || page.Total != 5 {
		t.Errorf("expected empty page, got %+v", page)
	}
}

func TestSearch_LogsSuccessfulSearch(t *testing.T) {
	repo := &mockRepo{docs: []domdoc.Document{
		completeDoc("a", "Budget", "budget report", nil, nil),
	}}
	slog := &mockSearchLog{}

	svc := testSearchService(repo, &mockEmbedder{vec: []float32{1, 0}}, slog, Config{})

	if _, err := svc.Search(context.Background(), Params{Query: "  budget ", Category: "Reports"}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(slog.entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(slog.entries))
	}
	e := slog.entries[0]
	if e.Query != "budget" {
		t.Errorf("logged query = %q, expected trimmed", e.Query)
	}
	if e.Category != "Reports" || e.ResultsCount != 1 {
		t.Errorf("entry = %+v", e)
	}
}

func TestSearch_LogFailureDoesNotFailSearch(t *testing.T) {
	repo := &mockRepo{docs: []domdoc.Document{
		completeDoc("a", "Budget", "budget", nil, nil),
	}}
	slog := &mockSearchLog{err: errors.New("redis down")}

	svc := testSearchService(repo, &mockEmbedder{vec: []float32{1, 0}}, slog, Config{})

	if _, err := svc.Search(context.Background(), Params{Query: "budget"}); err != nil {
		t.Errorf("expected search to succeed despite log failure, got %v", err)
	}
}

func TestSnippetForResult(t *testing.T) {
	svc := testSearchService(&mockRepo{}, &mockEmbedder{}, &mockSearchLog{}, Config{SnippetLength: 300})

	chunk := domdoc.Chunk{Index: 0, Text: "the matching chunk mentions budget here"}
	chunkDoc := completeDoc("a", "A", "doc level text", nil, []domdoc.Chunk{chunk})
	sem := map[string]semanticMatch{"a": {score: 0.9, chunk: &chunk}}
	withChunk := fuse([]domdoc.Document{chunkDoc}, sem, nil, 0.7)[0]

	got := svc.Snippet(withChunk, "budget")
	if !strings.Contains(got, "<mark>budget</mark>") || !strings.Contains(got, "matching chunk") {
		t.Errorf("chunk snippet = %q", got)
	}

	plainDoc := completeDoc("b", "B", "document text mentions budget too", nil, nil)
	noChunk := fuse([]domdoc.Document{plainDoc}, nil, map[string]float64{"b": 0.5}, 0.7)[0]

	got = svc.Snippet(noChunk, "budget")
	if !strings.Contains(got, "<mark>budget</mark>") || !strings.Contains(got, "document text") {
		t.Errorf("fallback snippet = %q", got)
	}
}
