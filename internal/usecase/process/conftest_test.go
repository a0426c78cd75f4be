package process

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tessella-io/docdex/internal/domain"
	domdoc "github.com/tessella-io/docdex/internal/domain/document"
	"github.com/tessella-io/docdex/internal/domain/document/category"
	"github.com/tessella-io/docdex/internal/domain/document/status"
	"github.com/tessella-io/docdex/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterProviderMetrics()
	os.Exit(m.Run())
}

// mockRepo records stage writes in call order.
type mockRepo struct {
	statuses     []status.Status
	text         string
	chunks       []domdoc.Chunk
	summary      *domain.Summary
	category     string
	tags         []string
	errorMessage string
	errorSet     bool
	setStatusErr error
	setChunksErr error
}

func (m *mockRepo) SetStatus(_ context.Context, _ string, st status.Status) error {
	if m.setStatusErr != nil {
		return m.setStatusErr
	}
	m.statuses = append(m.statuses, st)
	return nil
}

func (m *mockRepo) SetText(_ context.Context, _ string, text string) error {
	m.text = text
	return nil
}

func (m *mockRepo) SetChunks(_ context.Context, _ string, chunks []domdoc.Chunk) error {
	if m.setChunksErr != nil {
		return m.setChunksErr
	}
	m.chunks = chunks
	return nil
}

func (m *mockRepo) SetSummary(_ context.Context, _ string, s domain.Summary) error {
	m.summary = &s
	return nil
}

func (m *mockRepo) SetClassification(_ context.Context, _ string, cat string, tags []string) error {
	m.category = cat
	m.tags = tags
	return nil
}

func (m *mockRepo) SetError(_ context.Context, _ string, msg string) error {
	m.errorSet = true
	m.errorMessage = msg
	return nil
}

// mockProvider returns canned responses with optional per-call failures.
type mockProvider struct {
	embedCalls   int
	embedFn      func(call int, text string) (domain.EmbeddingResult, error)
	summarizeFn  func(text string) (domain.Summary, error)
	classifyFn   func(text string) (domain.Classification, error)
	embeddedText []string
}

func (m *mockProvider) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.embedCalls++
	m.embeddedText = append(m.embeddedText, text)
	if m.embedFn != nil {
		return m.embedFn(m.embedCalls, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

func (m *mockProvider) Summarize(_ context.Context, text string) (domain.Summary, error) {
	if m.summarizeFn != nil {
		return m.summarizeFn(text)
	}
	return domain.Summary{Short: "A summary."}, nil
}

func (m *mockProvider) Classify(_ context.Context, text string) (domain.Classification, error) {
	if m.classifyFn != nil {
		return m.classifyFn(text)
	}
	return domain.Classification{Category: "Finance", Tags: []string{"report"}}, nil
}

// mockExtractor yields fixed text or an error.
type mockExtractor struct {
	text string
	err  error
}

func (m *mockExtractor) Extract(_ context.Context, _, _ string) (string, error) {
	return m.text, m.err
}

func testCategories() category.Set {
	return category.NewSet([]string{"Legal", "Finance", "HR"})
}

func testService(repo *mockRepo, provider *mockProvider, ext *mockExtractor, cfg Config) *Service {
	return New(repo, provider, ext, testCategories(), cfg, zap.NewNop())
}

func pendingDocument(t *testing.T) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New(
		"doc-1", "Quarterly Report", "report.pdf", "doc-1.pdf",
		"application/pdf", 1024, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("build document: %v", err)
	}
	return doc
}

var errBoom = fmt.Errorf("boom")
