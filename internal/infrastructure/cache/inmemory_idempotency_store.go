package cache

import (
	"context"
	"sync"
	"time"

	"github.com/aduana/backend/internal/domain/shared"
)

// cleanupInterval is how often expired event IDs are swept from the map.
const cleanupInterval = 5 * time.Minute

// record is a claimed event ID. Only the deadline matters; the ID itself is
// the map key.
type record struct {
	expiresAt time.Time
}

func (r record) expired(now time.Time) bool {
	return now.After(r.expiresAt)
}

// InMemoryIdempotencyStore keeps processed event IDs in a process-local map.
// It is the store of choice for a single API instance and for tests; a
// multi-instance deployment needs RedisIdempotencyStore instead, since
// reversal and receipt events must be deduplicated across all consumers.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	entries   map[string]record
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts its sweeper
// goroutine. Callers own the store's lifecycle and must Close it.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		entries:  make(map[string]record),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.sweepLoop()

	return store
}

// MarkProcessed claims eventID for ttl. It reports true when this call made
// the claim and false when a live claim already existed. An expired claim is
// treated as absent and re-claimed.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.entries[eventID]; ok && !rec.expired(now) {
		return false, nil
	}

	s.entries[eventID] = record{expiresAt: now.Add(ttl)}
	return true, nil
}

// IsProcessed reports whether eventID holds a live claim.
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.entries[eventID]
	return ok && !rec.expired(time.Now()), nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep drops every expired claim so the map does not grow unbounded between
// process restarts.
func (s *InMemoryIdempotencyStore) sweep() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for eventID, rec := range s.entries {
		if rec.expired(now) {
			delete(s.entries, eventID)
		}
	}
}

// Size returns the current claim count, expired entries included until the
// next sweep. Exposed for tests and health reporting.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
