// Package remote implements the capability-style Remote interface
// spec.md §4.6 describes: a thing the core can pull objects from and
// push objects to, keyed by content hash. has_local is deliberately
// not part of this interface — it is a predicate over the local
// cache, owned by the core (internal/reconciler), per spec.
package remote

import (
	"context"

	"github.com/jacobfgrant/chonky/internal/workerpool"
)

// Remote pulls and pushes cache objects by hash key. Implementations
// must be safe for concurrent use by multiple goroutines.
type Remote interface {
	// Pull fetches each key not already present in the local cache and
	// ingests it there. Any single key's failure aborts the batch.
	Pull(ctx context.Context, keys []string) error

	// Push uploads each key from the local cache to the remote, unless
	// the remote already has it. Any single key's failure aborts the
	// batch.
	Push(ctx context.Context, keys []string) error
}

// runPool runs fn for each key with bounded concurrency, returning the
// first error encountered and canceling the rest. cap <= 0 falls back
// to workerpool.DefaultCap.
func runPool(ctx context.Context, cap int, keys []string, fn func(ctx context.Context, key string) error) error {
	return workerpool.Run(ctx, cap, keys, fn)
}
