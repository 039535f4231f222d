package datastore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"smartstore/pkg/platform/sentinel"
)

// InMemory keeps entries in a map guarded by a RWMutex. Values are copied on
// the way in and out so callers never share backing arrays.
type InMemory struct {
	mu      sync.RWMutex
	entries map[string][]byte
	closed  bool
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string][]byte)}
}

func (s *InMemory) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sentinel.ErrClosed
	}
	s.entries[key] = append([]byte(nil), value...)
	return nil
}

func (s *InMemory) PutAll(_ context.Context, entries map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sentinel.ErrClosed
	}
	for k, v := range entries {
		s.entries[k] = append([]byte(nil), v...)
	}
	return nil
}

func (s *InMemory) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, sentinel.ErrClosed
	}
	v, ok := s.entries[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *InMemory) ContainsKey(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, sentinel.ErrClosed
	}
	_, ok := s.entries[key]
	return ok, nil
}

func (s *InMemory) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sentinel.ErrClosed
	}
	delete(s.entries, key)
	return nil
}

func (s *InMemory) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, sentinel.ErrClosed
	}
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *InMemory) Size(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, sentinel.ErrClosed
	}
	return len(s.entries), nil
}

func (s *InMemory) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sentinel.ErrClosed
	}
	s.entries = make(map[string][]byte)
	return nil
}

func (s *InMemory) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
