// Package workerpool provides a small bounded-concurrency helper built
// on golang.org/x/sync's errgroup and semaphore, used anywhere the
// spec calls for "any key-level failure aborts the batch": hashing the
// workspace, and remote pull/push.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultCap matches the original client's MAX_WORKERS = 16
// (original_source/chonky/base_remote.py).
const DefaultCap = 16

// Run calls fn once per item with at most cap goroutines in flight.
// The first error returned by any fn cancels the group's context and
// is returned from Run; remaining in-flight calls observe ctx.Done()
// on their next context check.
func Run[T any](ctx context.Context, cap int, items []T, fn func(ctx context.Context, item T) error) error {
	if cap <= 0 {
		cap = DefaultCap
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(cap))

	for _, item := range items {
		item := item
		if err := sem.Acquire(gctx, 1); err != nil {
			if werr := g.Wait(); werr != nil {
				return werr
			}
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			return fn(gctx, item)
		})
	}

	return g.Wait()
}
