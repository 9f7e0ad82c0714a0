// Package worker runs independent indexed tasks on a fixed pool of
// goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/lineups/pkg/logger"
	"github.com/okian/lineups/pkg/metrics"
)

// Pool runs tasks on a fixed number of workers. It implements
// interval.Runner.
type Pool struct {
	size   int
	name   string
	logger logger.Logger
}

// NewPool creates a pool with size workers. A size below 1 uses
// runtime.NumCPU().
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	p := &Pool{
		size:   size,
		name:   "worker-pool",
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named(p.name)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Run calls fn for every index in [0, n). The first error cancels the
// context passed to the remaining calls and is returned; indices not yet
// started are skipped.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return ctx.Err()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	workers := p.size
	if workers > n {
		workers = n
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				if err := p.process(ctx, id, i, fn); err != nil {
					fail(err)
				}
			}
		}(w)
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func (p *Pool) process(ctx context.Context, worker, i int, fn func(ctx context.Context, i int) error) (err error) {
	start := time.Now()
	metrics.AddActiveWorkers(1)
	defer func() {
		metrics.AddActiveWorkers(-1)
		metrics.RecordWorkerTask(float64(time.Since(start).Milliseconds()))
		if r := recover(); r != nil {
			err = fmt.Errorf("task %d panicked: %v", i, r)
		}
		if err != nil {
			p.logger.Error(ctx, "task failed",
				logger.Int("worker", worker),
				logger.Int("task", i),
				logger.Error(err),
			)
		}
	}()
	return fn(ctx, i)
}
