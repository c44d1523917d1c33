// internal/app/system/ratelimit/store.go
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store holds fixed-window counters. Implementations must expire a key once
// its window elapses so state never grows without bound.
type Store interface {
	// Incr adds one to key, starting a new window of the given length when
	// the key is absent or expired. It returns the new count and the time
	// left in the window.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
	// Get returns the current count for key, 0 when absent or expired.
	Get(ctx context.Context, key string) (int64, error)
	// Reset removes key.
	Reset(ctx context.Context, key string) error
}

// DefaultMaxKeys caps a MemoryStore when no explicit limit is given.
const DefaultMaxKeys = 100_000

// MemoryStore is an in-process Store bounded by maxKeys. Expired entries are
// swept periodically; when the store is full, the entry closest to expiry is
// evicted to make room.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	maxKeys int
	now     func() time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

type window struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryStore creates a MemoryStore and starts its sweeper. Call Close to
// stop the sweeper.
func NewMemoryStore(maxKeys int, sweepEvery time.Duration) *MemoryStore {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	s := &MemoryStore{
		windows: make(map[string]*window),
		maxKeys: maxKeys,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	if sweepEvery > 0 {
		s.wg.Add(1)
		go s.sweepLoop(sweepEvery)
	}
	return s
}

func (s *MemoryStore) Incr(_ context.Context, key string, d time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.expiresAt) {
		if !ok && len(s.windows) >= s.maxKeys {
			s.evictLocked(now)
		}
		w = &window{expiresAt: now.Add(d)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.expiresAt.Sub(now), nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !s.now().Before(w.expiresAt) {
		return 0, nil
	}
	return w.count, nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}

// Len returns the number of tracked keys, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// Close stops the sweeper and waits for it to exit.
func (s *MemoryStore) Close() {
	select {
	case <-s.stopCh:
		return
	default:
		close(s.stopCh)
	}
	s.wg.Wait()
}

// evictLocked drops expired entries, and if none were expired, the single
// entry closest to expiry. Caller holds s.mu.
func (s *MemoryStore) evictLocked(now time.Time) {
	if s.sweepLocked(now) > 0 {
		return
	}
	var (
		victim string
		soonest time.Time
	)
	for k, w := range s.windows {
		if victim == "" || w.expiresAt.Before(soonest) {
			victim, soonest = k, w.expiresAt
		}
	}
	delete(s.windows, victim)
}

func (s *MemoryStore) sweepLocked(now time.Time) int {
	n := 0
	for k, w := range s.windows {
		if !now.Before(w.expiresAt) {
			delete(s.windows, k)
			n++
		}
	}
	return n
}

func (s *MemoryStore) sweepLoop(every time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.sweepLocked(s.now())
			s.mu.Unlock()
		}
	}
}
