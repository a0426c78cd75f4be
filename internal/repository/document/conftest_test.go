package document

import (
	"context"
	"testing"
	"time"

	"github.com/tessella-io/docdex/internal/domain"
	domdoc "github.com/tessella-io/docdex/internal/domain/document"
	"github.com/tessella-io/docdex/internal/domain/document/status"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn      func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn      func(ctx context.Context, key string, paths ...string) ([]byte, error)
	jsonGetMultiFn func(ctx context.Context, keys []string, path string) ([][]byte, error)
	delFn          func(ctx context.Context, key string) error
	existsFn       func(ctx context.Context, key string) (bool, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)

	setCalls []setCall
}

type setCall struct {
	key  string
	path string
	data string
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	m.setCalls = append(m.setCalls, setCall{key: key, path: path, data: string(data)})
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, nil
}

func (m *mockStore) JSONGetMulti(ctx context.Context, keys []string, path string) ([][]byte, error) {
	if m.jsonGetMultiFn != nil {
		return m.jsonGetMultiFn(ctx, keys, path)
	}
	return nil, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "docdex:"), ms
}

func testDocument(t *testing.T, id string, st status.Status) domdoc.Document {
	t.Helper()
	return domdocWithDate(t, id, st, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC))
}

func domdocWithDate(t *testing.T, id string, st status.Status, uploaded time.Time) domdoc.Document {
	t.Helper()
	return domdoc.Reconstruct(
		id, "Title "+id, id+".pdf", id+"-stored.pdf", "application/pdf", 1024,
		uploaded,
		"extracted text",
		[]domdoc.Chunk{{Index: 0, Text: "extracted text", Embedding: []float32{0.1, 0.2}}},
		domain.Summary{Short: "short", Bullets: []string{"a", "b", "c"}},
		[]string{"tag1"}, "Reports", st, "",
	)
}
