// Package apcache persists resolved access-point endpoints across
// restarts so the CLI doesn't need to re-resolve on every run
// (SPEC_FULL.md §3, domain stack: github.com/cockroachdb/pebble).
package apcache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/rs/zerolog"
)

// entry is the value stored under a resolver lookup key.
type entry struct {
	Endpoint  string    `json:"endpoint"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Cache is a small on-disk key/value store of (lookup key -> endpoint,
// expiry). One Cache instance owns one pebble database directory.
type Cache struct {
	db  *pebble.DB
	log zerolog.Logger
}

// Open opens (creating if necessary) the pebble database at dir.
func Open(dir string, log zerolog.Logger) (*Cache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("apcache: open %s: %w", dir, err)
	}
	return &Cache{db: db, log: log}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns a cached endpoint for key if present and not expired.
func (c *Cache) Get(key string) (string, bool) {
	raw, closer, err := c.db.Get([]byte(key))
	if err != nil {
		if err != pebble.ErrNotFound {
			c.log.Warn().Err(err).Str("key", key).Msg("apcache get failed")
		}
		return "", false
	}
	defer closer.Close()

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("apcache corrupt entry")
		return "", false
	}
	if time.Now().After(e.ExpiresAt) {
		return "", false
	}
	return e.Endpoint, true
}

// Put stores endpoint under key with the given TTL.
func (c *Cache) Put(key, endpoint string, ttl time.Duration) error {
	e := entry{Endpoint: endpoint, ExpiresAt: time.Now().Add(ttl)}
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("apcache: marshal entry: %w", err)
	}
	if err := c.db.Set([]byte(key), raw, pebble.Sync); err != nil {
		return fmt.Errorf("apcache: set %s: %w", key, err)
	}
	return nil
}
