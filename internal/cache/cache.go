// Package cache keeps fetched document bytes for the lifetime of a single
// process so that registry entries sharing a URL download it once. Nothing
// is written to disk.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is an in-memory, TTL-bounded map from document URL to raw bytes
type Store struct {
	cache *gocache.Cache
}

// New creates a store whose entries expire after ttl
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Store{
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Key derives the cache key for a URL
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "policyqa:v1:" + hex.EncodeToString(hash[:])
}

// Get returns the cached bytes for url
func (s *Store) Get(url string) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	val, found := s.cache.Get(Key(url))
	if !found {
		return nil, false
	}
	body, ok := val.([]byte)
	return body, ok
}

// Put stores body under url with the default TTL
func (s *Store) Put(url string, body []byte) {
	if s == nil {
		return
	}
	s.cache.SetDefault(Key(url), body)
}

// Len returns the number of live entries
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return s.cache.ItemCount()
}

// Flush drops every entry
func (s *Store) Flush() {
	if s == nil {
		return
	}
	s.cache.Flush()
}
