// Package pool provides a bounded worker pool used to parallelize
// independent per-row and per-participant work: matrix-vector products
// and partial-signature verification. Calls are synchronous and may
// internally fan out across goroutines, but never suspend across a
// network round.
package pool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool bounds the number of goroutines a single Run call may use
// concurrently. The zero value is not usable; construct with NewPool.
type Pool struct {
	workers int
}

// NewPool constructs a Pool with the given worker limit. workers <= 0
// defaults to runtime.GOMAXPROCS(0) — use all available cores.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

// TearDown releases the pool. This pool holds no long-lived goroutines to
// shut down — each Run call spawns and joins its own errgroup — but the
// method exists for symmetry with NewPool's lifecycle.
func (p *Pool) TearDown() {}

// Run invokes fn(i) for every i in [0, n), fanning out across at most
// p.workers goroutines, and returns the first error encountered (if any).
// It blocks until every invocation has completed or one has failed.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return fn(gctx, i)
		})
	}
	return g.Wait()
}

// MapBool runs fn over every index in [0, n) and collects the boolean
// result of each call, used by VerifyPartialSignatures to check every
// partial signature in parallel without short-circuiting on the first
// failure (a faulty participant's failure must not hide the others').
func MapBool(ctx context.Context, p *Pool, n int, fn func(ctx context.Context, i int) bool) []bool {
	out := make([]bool, n)
	_ = p.Run(ctx, n, func(ctx context.Context, i int) error {
		out[i] = fn(ctx, i)
		return nil
	})
	return out
}
