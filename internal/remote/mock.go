package remote

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jacobfgrant/chonky/internal/cachestore"
)

// Mock is an in-memory Remote for tests, adapted from the teacher's
// storage.MockBackend to the pull/push-by-hash capability shape.
type Mock struct {
	mu      sync.Mutex
	Objects map[string][]byte // hash -> content
	Calls   []string          // log of method calls for assertions

	PullErrors map[string]error
	PushErrors map[string]error

	cache *cachestore.Store
}

// NewMock creates a Mock backed by cache for Pull ingestion and Push
// sourcing.
func NewMock(cache *cachestore.Store) *Mock {
	return &Mock{
		Objects:    make(map[string][]byte),
		PullErrors: make(map[string]error),
		PushErrors: make(map[string]error),
		cache:      cache,
	}
}

// Seed pre-populates the mock remote with an object, as if it had
// already been pushed there.
func (m *Mock) Seed(hash string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[hash] = data
}

func (m *Mock) Pull(ctx context.Context, keys []string) error {
	return runPool(ctx, 0, keys, func(ctx context.Context, hash string) error {
		m.mu.Lock()
		m.Calls = append(m.Calls, "Pull:"+hash)
		err := m.PullErrors[hash]
		data, ok := m.Objects[hash]
		m.mu.Unlock()

		if err != nil {
			return err
		}
		if m.cache.Has(hash) {
			return nil
		}
		if !ok {
			return fmt.Errorf("mock remote: object not found: %s", hash)
		}

		tmp, err := m.cache.IngestReader(bytes.NewReader(data), hash)
		if err != nil {
			return err
		}
		return m.cache.Commit(tmp, hash)
	})
}

func (m *Mock) Push(ctx context.Context, keys []string) error {
	return runPool(ctx, 0, keys, func(ctx context.Context, hash string) error {
		m.mu.Lock()
		m.Calls = append(m.Calls, "Push:"+hash)
		err := m.PushErrors[hash]
		_, already := m.Objects[hash]
		m.mu.Unlock()

		if err != nil {
			return err
		}
		if already {
			return nil
		}

		data, readErr := os.ReadFile(m.cache.PathOf(hash))
		if readErr != nil {
			return readErr
		}

		m.mu.Lock()
		m.Objects[hash] = data
		m.mu.Unlock()
		return nil
	})
}
