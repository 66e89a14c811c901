package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/matzehuels/meshskel/pkg/forest"
	skelio "github.com/matzehuels/meshskel/pkg/io"
)

// Store defaults.
const (
	DefaultMaxForests = 64
	DefaultForestTTL  = time.Hour
)

// Entry is one uploaded forest.
//
// Skeletons compute derived values lazily, so every read of Forest must hold
// the entry lock.
type Entry struct {
	ID        string         `json:"id"`
	Summary   skelio.Summary `json:"summary"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`

	mu     sync.Mutex
	forest *forest.Forest
}

// With runs fn with exclusive access to the entry's forest.
func (e *Entry) With(fn func(f *forest.Forest) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.forest)
}

// Store keeps the most recently used forests in memory. Entries are evicted
// when the store is full or their TTL has passed.
type Store struct {
	lru *expirable.LRU[string, *Entry]
	ttl time.Duration
}

// NewStore creates a store. Non-positive arguments select the defaults.
func NewStore(size int, ttl time.Duration) *Store {
	if size <= 0 {
		size = DefaultMaxForests
	}
	if ttl <= 0 {
		ttl = DefaultForestTTL
	}
	return &Store{lru: expirable.NewLRU[string, *Entry](size, nil, ttl), ttl: ttl}
}

// Add stores f under a new random id.
func (s *Store) Add(f *forest.Forest, sum skelio.Summary) *Entry {
	now := time.Now()
	e := &Entry{
		ID:        uuid.NewString(),
		Summary:   sum,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		forest:    f,
	}
	s.lru.Add(e.ID, e)
	return e
}

// Get returns the entry for id. Lookups refresh recency but not the TTL.
func (s *Store) Get(id string) (*Entry, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	return s.lru.Get(id)
}

// Delete removes id and reports whether it was present.
func (s *Store) Delete(id string) bool {
	return s.lru.Remove(id)
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	return s.lru.Len()
}
