// Package jobs holds the in-memory registry of suggestion job records and
// its retention sweeper.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/macroplan/v1/internal/domain/suggestion"
	"github.com/macroplan/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// Registry implements outbound.SuggestionStore with a mutex-guarded map.
// Records live server-side only; the sweeper reclaims them after retention.
type Registry struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*suggestion.Request

	retention time.Duration
	interval  time.Duration
	clock     func() time.Time
	logger    *zap.Logger

	stop chan struct{}
	done chan struct{}
}

var _ outbound.SuggestionStore = (*Registry)(nil)

// Option customizes a Registry.
type Option func(*Registry)

// WithClock overrides the time source. Used by tests.
func WithClock(clock func() time.Time) Option {
	return func(r *Registry) { r.clock = clock }
}

// NewRegistry creates a registry sweeping records older than retention every
// interval.
func NewRegistry(retention, interval time.Duration, logger *zap.Logger, opts ...Option) *Registry {
	if retention <= 0 {
		retention = 30 * time.Minute
	}
	if interval <= 0 {
		interval = time.Minute
	}
	r := &Registry{
		records:   make(map[uuid.UUID]*suggestion.Request),
		retention: retention,
		interval:  interval,
		clock:     time.Now,
		logger:    logger.Named("suggestion-registry"),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create registers a new job record.
func (r *Registry) Create(ctx context.Context, req *suggestion.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := req.Snapshot()
	r.records[req.ID] = &copied
	return nil
}

// Get returns a snapshot of the record.
func (r *Registry) Get(ctx context.Context, id uuid.UUID) (suggestion.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return suggestion.Request{}, suggestion.ErrNotFound
	}
	return rec.Snapshot(), nil
}

// Update applies mutate under the lock and returns the resulting snapshot.
// This is the only mutation path, which serializes pipeline writes against
// owner cancels.
func (r *Registry) Update(ctx context.Context, id uuid.UUID, mutate func(*suggestion.Request)) (suggestion.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return suggestion.Request{}, suggestion.ErrNotFound
	}
	mutate(rec)
	return rec.Snapshot(), nil
}

// Delete removes the record. Missing records are not an error.
func (r *Registry) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

// Sweep deletes records created before the cutoff, regardless of status.
func (r *Registry) Sweep(ctx context.Context, cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	reclaimed := 0
	for id, rec := range r.records {
		if rec.CreatedAt.Before(cutoff) {
			delete(r.records, id)
			reclaimed++
		}
	}
	return reclaimed
}

// Len reports the number of live records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Start launches the retention sweeper loop.
func (r *Registry) Start() {
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cutoff := r.clock().Add(-r.retention)
				if n := r.Sweep(context.Background(), cutoff); n > 0 {
					r.logger.Debug("swept expired suggestion jobs", zap.Int("reclaimed", n))
				}
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweeper loop and waits for it to exit.
func (r *Registry) Stop() {
	close(r.stop)
	<-r.done
}
