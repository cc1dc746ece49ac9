package detailcache

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/dinefind/internal/db"
	"github.com/kailas-cloud/dinefind/internal/domain/restaurant"
)

type mockFetcher struct {
	detail restaurant.Detail
	err    error
	calls  int
}

func (m *mockFetcher) Restaurant(_ context.Context, _ int64) (restaurant.Detail, error) {
	m.calls++
	return m.detail, m.err
}

// memStore is an in-memory KV store recording the TTL of each write.
type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(ctx context.Context, key string, value []byte) error {
	return m.SetWithTTL(ctx, key, value, 0)
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}
