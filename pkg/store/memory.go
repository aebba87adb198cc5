package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process KV implementation used by tests and local runs
// without a database. Safe for concurrent use.
type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

// Get implements KV.
func (s *Memory) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(item))
	copy(out, item)
	return out, nil
}

// Put implements KV.
func (s *Memory) Put(_ context.Context, key string, item []byte, ifAbsent bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ifAbsent {
		if _, exists := s.m[key]; exists {
			return ErrConditionFailed
		}
	}
	stored := make([]byte, len(item))
	copy(stored, item)
	s.m[key] = stored
	return nil
}

// Delete implements KV.
func (s *Memory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[key]; !ok {
		return ErrNotFound
	}
	delete(s.m, key)
	return nil
}

// Query implements KV. Results are ordered by key for deterministic listings.
func (s *Memory) Query(_ context.Context, prefix string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.m))
	for k := range s.m {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	items := make([][]byte, 0, len(keys))
	for _, k := range keys {
		item := make([]byte, len(s.m[k]))
		copy(item, s.m[k])
		items = append(items, item)
	}
	return items, nil
}
