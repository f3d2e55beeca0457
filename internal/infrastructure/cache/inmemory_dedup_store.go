package cache

import (
	"context"
	"sync"
	"time"

	"github.com/gstboard/backend/internal/domain/shared"
)

type entry struct {
	expiresAt time.Time
}

// InMemoryDedupStore implements DedupStore with a plain map. Suitable for
// single-instance deployments and tests. A background goroutine evicts
// expired fingerprints.
type InMemoryDedupStore struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryDedupStore creates the store and starts its cleanup loop
func NewInMemoryDedupStore() *InMemoryDedupStore {
	store := &InMemoryDedupStore{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// MarkSeen records a fingerprint with a TTL. Returns false when the
// fingerprint is already present and unexpired.
func (s *InMemoryDedupStore) MarkSeen(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[fingerprint]; exists && time.Now().Before(e.expiresAt) {
		return false, nil
	}

	s.entries[fingerprint] = entry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// WasSeen checks whether a fingerprint is recorded and unexpired
func (s *InMemoryDedupStore) WasSeen(ctx context.Context, fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[fingerprint]
	if !exists || time.Now().After(e.expiresAt) {
		return false, nil
	}
	return true, nil
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (s *InMemoryDedupStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryDedupStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryDedupStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for fingerprint, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, fingerprint)
		}
	}
}

// Size reports how many fingerprints are held, expired ones included
func (s *InMemoryDedupStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ shared.DedupStore = (*InMemoryDedupStore)(nil)
