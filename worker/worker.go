// SPDX-License-Identifier: EPL-2.0

// Package worker runs blocking jobs (downloads, bulk scans) one at a time
// off the caller's goroutine.
package worker

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Job is a unit of background work. It should honour ctx.
type Job func(ctx context.Context) error

type task struct {
	id   string
	name string
	fn   Job
}

// Queue is a single-consumer job queue with a bounded backlog. Jobs run in
// submission order.
type Queue struct {
	tasks  chan task
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// New starts the consumer goroutine. size is the backlog bound; values
// below 1 become 1.
func New(size int, logger *zap.Logger) *Queue {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		tasks:  make(chan task, size),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

// Submit enqueues fn without blocking. It returns the job id, or "" when
// the queue is full or closed.
func (q *Queue) Submit(name string, fn Job) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ""
	}

	t := task{id: uuid.NewString(), name: name, fn: fn}
	select {
	case q.tasks <- t:
		q.logger.Debug("job queued", zap.String("job", t.id), zap.String("name", name))
		return t.id
	default:
		q.logger.Warn("job queue full", zap.String("name", name))
		return ""
	}
}

func (q *Queue) run() {
	defer close(q.done)

	for t := range q.tasks {
		q.exec(t)
	}
}

func (q *Queue) exec(t task) {
	log := q.logger.With(zap.String("job", t.id), zap.String("name", t.name))

	defer func() {
		if r := recover(); r != nil {
			log.Error("job panicked", zap.Any("panic", r))
		}
	}()

	if err := t.fn(q.ctx); err != nil {
		log.Warn("job failed", zap.Error(err))
		return
	}
	log.Debug("job done")
}

// Close stops accepting work and waits for queued jobs. When ctx ends
// first, running and queued jobs see a cancelled context.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-q.done
		return ctx.Err()
	}
}
