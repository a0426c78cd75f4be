package process

import (
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Queue runs pipeline jobs on a bounded worker pool. Submit returns a
// channel that closes when the job finishes, so callers and tests can
// observe completion without polling.
type Queue struct {
	pool   *ants.Pool
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewQueue creates a worker pool with the given concurrency.
func NewQueue(workers int, logger *zap.Logger) (*Queue, error) {
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Queue{pool: pool, logger: logger}, nil
}

// Submit schedules a job. The returned channel closes when the job returns.
func (q *Queue) Submit(job func()) (<-chan struct{}, error) {
	done := make(chan struct{})
	q.wg.Add(1)

	err := q.pool.Submit(func() {
		defer q.wg.Done()
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				q.logger.Error("pipeline job panicked", zap.Any("panic", r))
			}
		}()
		job()
	})
	if err != nil {
		q.wg.Done()
		return nil, fmt.Errorf("submit job: %w", err)
	}
	return done, nil
}

// Close waits for in-flight jobs and releases the pool.
func (q *Queue) Close() {
	q.wg.Wait()
	q.pool.Release()
}
