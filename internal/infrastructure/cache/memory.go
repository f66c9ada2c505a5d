package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCacheMiss is returned for absent or expired keys.
var ErrCacheMiss = errors.New("cache: key not found")

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryRepository implements outbound.CacheRepository in process memory.
// Used when Redis is disabled and in tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string]memoryItem
}

// NewMemoryRepository creates an in-memory cache repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string]memoryItem)}
}

// Get retrieves a value, expiring lazily.
func (r *MemoryRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	item, ok := r.data[key]
	r.mu.RUnlock()
	if !ok || time.Now().After(item.expiresAt) {
		return nil, ErrCacheMiss
	}
	return item.value, nil
}

// Set stores a value with TTL. Zero TTL defaults to an hour.
func (r *MemoryRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Hour
	}
	r.mu.Lock()
	r.data[key] = memoryItem{value: value, expiresAt: time.Now().Add(ttl)}
	r.mu.Unlock()
	return nil
}

// Delete removes a key.
func (r *MemoryRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	delete(r.data, key)
	r.mu.Unlock()
	return nil
}

// Exists checks whether the key is present and unexpired.
func (r *MemoryRepository) Exists(ctx context.Context, key string) (bool, error) {
	r.mu.RLock()
	item, ok := r.data[key]
	r.mu.RUnlock()
	return ok && time.Now().Before(item.expiresAt), nil
}
