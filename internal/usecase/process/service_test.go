package process

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tessella-io/docdex/internal/domain"
	"github.com/tessella-io/docdex/internal/domain/document/category"
	"github.com/tessella-io/docdex/internal/domain/document/status"
)

func TestProcess_HappyPath(t *testing.T) {
	repo := &mockRepo{}
	provider := &mockProvider{}
	ext := &mockExtractor{text: "First sentence. Second sentence. Third sentence."}

	svc := testService(repo, provider, ext, Config{ChunkSize: 1500, ChunkOverlap: 200})

	err := svc.Process(context.Background(), pendingDocument(t), "/tmp/doc-1.pdf")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	expected := []status.Status{status.Extracting, status.Embedding, status.Tagging, status.Complete}
	if len(repo.statuses) != len(expected) {
		t.Fatalf("statuses = %v, expected %v", repo.statuses, expected)
	}
	for i, st := range expected {
		if repo.statuses[i] != st {
			t.Errorf("statuses[%d] = %s, expected %s", i, repo.statuses[i], st)
		}
	}

	if repo.text != ext.text {
		t.Errorf("persisted text = %q", repo.text)
	}
	if len(repo.chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(repo.chunks))
	}
	if repo.chunks[0].Embedding == nil {
		t.Error("expected chunk embedding to be set")
	}
	if repo.summary == nil || repo.summary.Short != "A summary." {
		t.Errorf("summary = %+v", repo.summary)
	}
	if repo.category != "Finance" {
		t.Errorf("category = %q, expected Finance", repo.category)
	}
	if repo.errorSet {
		t.Error("did not expect error status")
	}
}

func TestProcess_ExtractionFailureIsFatal(t *testing.T) {
	repo := &mockRepo{}
	provider := &mockProvider{}
	ext := &mockExtractor{err: domain.ErrExtractionFailed}

	svc := testService(repo, provider, ext, Config{})

	err := svc.Process(context.Background(), pendingDocument(t), "/tmp/doc-1.pdf")
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected extraction error, got %v", err)
	}

	if !repo.errorSet {
		t.Error("expected error status to be persisted")
	}
	if repo.errorMessage == "" {
		t.Error("expected a failure message")
	}
	if provider.embedCalls != 0 {
		t.Errorf("expected no embedding calls, got %d", provider.embedCalls)
	}
	// Only the extracting transition happened before the failure.
	if len(repo.statuses) != 1 || repo.statuses[0] != status.Extracting {
		t.Errorf("statuses = %v", repo.statuses)
	}
}

func TestProcess_ToleratesPartialEmbeddingFailures(t *testing.T) {
	repo := &mockRepo{}
	provider := &mockProvider{
		embedFn: func(call int, _ string) (domain.EmbeddingResult, error) {
			// Second and fourth chunks fail.
			if call == 2 || call == 4 {
				return domain.EmbeddingResult{}, errBoom
			}
			return domain.EmbeddingResult{Embedding: []float32{0.5}}, nil
		},
	}

	// No sentence terminators, so windows advance strictly by size:
	// 50 runes at size 10 yield exactly five chunks.
	text := strings.Repeat("abcdefghij", 5)
	ext := &mockExtractor{text: text}

	svc := testService(repo, provider, ext, Config{ChunkSize: 10, ChunkOverlap: 0})

	err := svc.Process(context.Background(), pendingDocument(t), "/tmp/doc-1.pdf")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(repo.chunks) != 5 {
		t.Fatalf("expected 5 chunks, got %d", len(repo.chunks))
	}
	for i, c := range repo.chunks {
		failed := i == 1 || i == 3
		if failed && c.Embedding != nil {
			t.Errorf("chunk %d: expected nil embedding", i)
		}
		if !failed && c.Embedding == nil {
			t.Errorf("chunk %d: expected embedding", i)
		}
	}

	last := repo.statuses[len(repo.statuses)-1]
	if last != status.Complete {
		t.Errorf("final status = %s, expected complete", last)
	}
}

func TestProcess_EmbedInputIsCapped(t *testing.T) {
	repo := &mockRepo{}
	provider := &mockProvider{}
	ext := &mockExtractor{text: strings.Repeat("a", 300)}

	svc := testService(repo, provider, ext, Config{ChunkSize: 400, EmbedMaxChars: 100})

	if err := svc.Process(context.Background(), pendingDocument(t), "/tmp/f"); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(provider.embeddedText) != 1 {
		t.Fatalf("expected 1 embed call, got %d", len(provider.embeddedText))
	}
	if got := len(provider.embeddedText[0]); got != 100 {
		t.Errorf("embed input length = %d, expected 100", got)
	}
	// The stored chunk keeps the full text.
	if len(repo.chunks[0].Text) != 300 {
		t.Errorf("stored chunk length = %d, expected 300", len(repo.chunks[0].Text))
	}
}

func TestProcess_DelayBetweenEmbedCalls(t *testing.T) {
	repo := &mockRepo{}
	provider := &mockProvider{}
	ext := &mockExtractor{text: "Aaaa bbbb. Cccc dddd. Eeee ffff."}

	svc := testService(repo, provider, ext, Config{
		ChunkSize: 10, ChunkOverlap: 0, EmbedDelay: 100 * time.Millisecond,
	})

	var sleeps int
	svc.sleep = func(_ context.Context, d time.Duration) {
		if d != 100*time.Millisecond {
			t.Errorf("sleep duration = %v", d)
		}
		sleeps++
	}

	if err := svc.Process(context.Background(), pendingDocument(t), "/tmp/f"); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if provider.embedCalls != 3 {
		t.Fatalf("expected 3 embed calls, got %d", provider.embedCalls)
	}
	// No delay before the first call.
	if sleeps != 2 {
		t.Errorf("sleeps = %d, expected 2", sleeps)
	}
}

func TestProcess_SummarizeFallsBackLocally(t *testing.T) {
	repo := &mockRepo{}
	provider := &mockProvider{
		summarizeFn: func(string) (domain.Summary, error) {
			return domain.Summary{}, domain.ErrProviderMalformedResponse
		},
	}
	ext := &mockExtractor{text: "First sentence here. Second sentence here. Third one."}

	svc := testService(repo, provider, ext, Config{})

	if err := svc.Process(context.Background(), pendingDocument(t), "/tmp/f"); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if repo.summary == nil {
		t.Fatal("expected a summary")
	}
	if repo.summary.Short != "First sentence here. Second sentence here." {
		t.Errorf("fallback summary = %q", repo.summary.Short)
	}
	if len(repo.summary.Bullets) == 0 {
		t.Error("fallback summary should carry keyword bullets")
	}
	if repo.statuses[len(repo.statuses)-1] != status.Complete {
		t.Error("expected pipeline to complete despite summarize failure")
	}
}

func TestProcess_ClassifyFallsBackLocally(t *testing.T) {
	repo := &mockRepo{}
	provider := &mockProvider{
		classifyFn: func(string) (domain.Classification, error) {
			return domain.Classification{}, errBoom
		},
	}
	ext := &mockExtractor{text: "Budget budget budget planning planning review."}

	svc := testService(repo, provider, ext, Config{})

	if err := svc.Process(context.Background(), pendingDocument(t), "/tmp/f"); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if repo.category != category.Uncategorized {
		t.Errorf("category = %q, expected %q", repo.category, category.Uncategorized)
	}
	if len(repo.tags) == 0 {
		t.Error("expected fallback keywords as tags")
	}
}

func TestProcess_UnknownCategoryBecomesUncategorized(t *testing.T) {
	repo := &mockRepo{}
	provider := &mockProvider{
		classifyFn: func(string) (domain.Classification, error) {
			return domain.Classification{Category: "Cryptozoology", Tags: []string{"yeti"}}, nil
		},
	}
	ext := &mockExtractor{text: "Some text."}

	svc := testService(repo, provider, ext, Config{})

	if err := svc.Process(context.Background(), pendingDocument(t), "/tmp/f"); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if repo.category != category.Uncategorized {
		t.Errorf("category = %q, expected %q", repo.category, category.Uncategorized)
	}
	if len(repo.tags) != 1 || repo.tags[0] != "yeti" {
		t.Errorf("tags = %v, expected provider tags to survive", repo.tags)
	}
}

func TestProcess_EmptyTextStillCompletes(t *testing.T) {
	repo := &mockRepo{}
	provider := &mockProvider{}
	ext := &mockExtractor{text: ""}

	svc := testService(repo, provider, ext, Config{})

	if err := svc.Process(context.Background(), pendingDocument(t), "/tmp/f"); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(repo.chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(repo.chunks))
	}
	if provider.embedCalls != 0 {
		t.Errorf("expected no embed calls, got %d", provider.embedCalls)
	}
	if repo.statuses[len(repo.statuses)-1] != status.Complete {
		t.Error("expected completion for empty document")
	}
}
