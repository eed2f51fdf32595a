package batch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// JobFunc processes one job. Implementations must be safe for concurrent use.
type JobFunc func(ctx context.Context, job Job) Result

// Pool executes jobs on a fixed number of workers.
type Pool struct {
	size int
	fn   JobFunc
}

// NewPool creates a pool of size workers running fn. Sizes below 1 become 1.
func NewPool(size int, fn JobFunc) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{size: size, fn: fn}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Run dispatches jobs to the workers and calls sink with each result, in
// completion order, from the calling goroutine. When ctx is cancelled no new
// job is started, in-flight jobs finish and Run returns the context error.
func (p *Pool) Run(ctx context.Context, jobs []Job, sink func(Result)) error {
	g, gctx := errgroup.WithContext(ctx)
	queue := make(chan Job)
	results := make(chan Result, p.size)

	g.Go(func() error {
		defer close(queue)
		for _, job := range jobs {
			select {
			case queue <- job:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var workers sync.WaitGroup
	workers.Add(p.size)
	for i := 0; i < p.size; i++ {
		g.Go(func() error {
			defer workers.Done()
			for job := range queue {
				if err := gctx.Err(); err != nil {
					return err
				}
				results <- p.fn(gctx, job)
			}
			return nil
		})
	}

	go func() {
		workers.Wait()
		close(results)
	}()

	for res := range results {
		sink(res)
	}

	return g.Wait()
}
