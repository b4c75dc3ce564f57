package pagecache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultSize bounds a MemoryStore built with a non-positive size.
const DefaultSize = 512

// MemoryStore is an in-process, size-bounded LRU whose entries expire after ttl.
type MemoryStore struct {
	lru *expirable.LRU[string, Entry]
}

// NewMemoryStore holds at most size entries, each for ttl.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = DefaultSize
	}
	return &MemoryStore{lru: expirable.NewLRU[string, Entry](size, nil, ttl)}
}

// Get returns the live entry for key.
func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	entry, ok := s.lru.Get(key)
	return entry, ok, nil
}

// Set stores a copy of entry under key.
func (s *MemoryStore) Set(_ context.Context, key string, entry Entry) error {
	body := make([]byte, len(entry.Body))
	copy(body, entry.Body)
	entry.Body = body
	s.lru.Add(key, entry)
	return nil
}

// Purge drops every entry.
func (s *MemoryStore) Purge(context.Context) error {
	s.lru.Purge()
	return nil
}

// Len is the number of live entries.
func (s *MemoryStore) Len() int {
	return s.lru.Len()
}
