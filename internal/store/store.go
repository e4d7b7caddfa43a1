// Package store caches encoded layouts under their shareable hash.
package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Get for missing or expired keys.
var ErrNotFound = errors.New("store: layout not found")

// Store saves and loads encoded layouts.
type Store interface {
	// Put stores data under key. A zero ttl keeps it forever.
	Put(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Get returns the data stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Close releases the store's connections.
	Close() error
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps layouts in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Put stores a copy of data.
func (s *MemoryStore) Put(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := memoryEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
	return nil
}

// Get returns a copy of the stored data.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.data...), nil
}

// Close does nothing.
func (s *MemoryStore) Close() error {
	return nil
}
