// Package searchlog keeps a capped history of search requests for the
// recent-searches endpoint and dashboard statistics.
package searchlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tessella-io/docdex/internal/db"
)

// Entry is one logged search.
type Entry struct {
	Query        string    `json:"query"`
	Timestamp    time.Time `json:"timestamp"`
	ResultsCount int       `json:"results_count"`
	Category     string    `json:"category,omitempty"`
}

// store is the consumer interface for the search log (ISP).
type store interface {
	LPush(ctx context.Context, key string, value []byte) error
	LTrim(ctx context.Context, key string, start, stop int64) error
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}

// Repo implements the search log over a capped Redis list plus a counter.
type Repo struct {
	store   store
	prefix  string
	maxSize int64
}

// New creates a search log repository capped at maxSize entries.
func New(s store, prefix string, maxSize int) *Repo {
	if prefix == "" {
		prefix = "docdex:"
	}
	if maxSize <= 0 {
		maxSize = 100
	}
	return &Repo{store: s, prefix: prefix, maxSize: int64(maxSize)}
}

func (r *Repo) listKey() string  { return r.prefix + "searchlog" }
func (r *Repo) countKey() string { return r.prefix + "searchlog:total" }

// Log records a search and trims the history to the configured cap.
func (r *Repo) Log(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal search log entry: %w", err)
	}
	if err := r.store.LPush(ctx, r.listKey(), data); err != nil {
		return fmt.Errorf("lpush search log: %w", err)
	}
	if err := r.store.LTrim(ctx, r.listKey(), 0, r.maxSize-1); err != nil {
		return fmt.Errorf("ltrim search log: %w", err)
	}
	if _, err := r.store.IncrBy(ctx, r.countKey(), 1); err != nil {
		return fmt.Errorf("incr search total: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
// Entries that fail to parse are skipped.
func (r *Repo) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 5
	}
	raws, err := r.store.LRange(ctx, r.listKey(), 0, int64(limit)-1)
	if err != nil {
		return nil, fmt.Errorf("lrange search log: %w", err)
	}

	entries := make([]Entry, 0, len(raws))
	for _, raw := range raws {
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Total returns the all-time search count. A missing counter reads as 0.
func (r *Repo) Total(ctx context.Context) (int64, error) {
	raw, err := r.store.Get(ctx, r.countKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get search total: %w", err)
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("parse search total %q: %w", raw, err)
	}
	return n, nil
}
