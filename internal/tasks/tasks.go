// Package tasks runs background work: a small bounded queue for jobs pushed
// by request handlers, and fixed-interval loops for the scheduled jobs.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Func is a unit of background work.
type Func func(ctx context.Context) error

type job struct {
	name string
	fn   Func
}

// Queue is a bounded FIFO drained by one worker goroutine.
type Queue struct {
	jobs chan job
	wg   sync.WaitGroup
}

// NewQueue returns a queue holding at most size pending jobs.
func NewQueue(size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{jobs: make(chan job, size)}
}

// Enqueue schedules fn without blocking. It reports false, and drops the
// job, when the queue is full.
func (q *Queue) Enqueue(name string, fn Func) bool {
	select {
	case q.jobs <- job{name: name, fn: fn}:
		return true
	default:
		log.Warn().Str("job", name).Msg("task queue full, job dropped")
		return false
	}
}

// Start launches the worker. It exits when ctx is cancelled; jobs still
// pending at that point are discarded.
func (q *Queue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case j := <-q.jobs:
				run(ctx, j.name, j.fn)
			}
		}
	}()
}

// Wait blocks until the worker has exited.
func (q *Queue) Wait() { q.wg.Wait() }

// Every calls fn each interval until ctx is cancelled. A non-positive
// interval disables the loop.
func Every(ctx context.Context, interval time.Duration, name string, fn Func) {
	if interval <= 0 {
		log.Info().Str("job", name).Msg("schedule disabled")
		return
	}
	log.Info().Str("job", name).Dur("interval", interval).Msg("schedule started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run(ctx, name, fn)
		}
	}
}

func run(ctx context.Context, name string, fn Func) {
	start := time.Now()
	if err := fn(ctx); err != nil {
		log.Error().Err(err).Str("job", name).Msg("job failed")
		return
	}
	log.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("job done")
}
