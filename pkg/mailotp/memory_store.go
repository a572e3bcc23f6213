package mailotp

import (
	"context"
	"sync"
	"time"
)

// Records are retained past code expiry so Verify can report ErrCodeExpired
// instead of a generic missing-session error.
const defaultRetention = time.Hour

// MemoryStoreOption configures the in-memory store.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often stale records are purged.
// An interval of 0 disables the background cleanup.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.cleanupInterval = interval
	}
}

// WithRetention sets how long records are kept after their code expires.
func WithRetention(retention time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if retention > 0 {
			s.retention = retention
		}
	}
}

// MemoryStore implements Store with a mutex-guarded map and a periodic
// cleanup of stale records.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record

	retention       time.Duration
	cleanupInterval time.Duration
	done            chan struct{}
	closeOnce       sync.Once
}

// NewMemoryStore creates an in-memory pending-record store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		records:         make(map[string]*Record),
		retention:       defaultRetention,
		cleanupInterval: 5 * time.Minute,
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cleanupInterval > 0 {
		go s.cleanupLoop()
	}
	return s
}

func (s *MemoryStore) Put(ctx context.Context, record *Record) error {
	if record == nil || record.Key == "" {
		return ErrInvalidPayload
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *record
	s.records[record.Key] = &stored
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[key]
	if !exists || s.stale(record) {
		return nil, ErrRecordNotFound
	}
	recordCopy := *record
	return &recordCopy, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// Close stops the background cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}

func (s *MemoryStore) stale(record *Record) bool {
	return time.Now().After(record.ExpiresAt.Add(s.retention))
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, record := range s.records {
		if s.stale(record) {
			delete(s.records, key)
		}
	}
}
