// Package cache implements the TTL cache shared by the preflight and
// preview pipelines: a read-through in-memory mirror with a
// best-effort durable sync to SQLite. Writes never fail the caller;
// persistence errors are compacted, retried once, then logged and
// dropped. Expiry is by age against a fixed TTL, never by capacity.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/AdityaBoddepalli/HoverPeek/pkg/db"
)

// Namespaces for the three independent cache instances. Keys and TTLs
// never cross between them.
const (
	NamespacePreflight = "preflight"
	NamespacePreview   = "preview"
	NamespaceTitles    = "titles"
)

// Entry wraps a cached payload with its creation time. Entries are
// owned exclusively by their cache slot; a new Set replaces, never
// edits, the previous entry.
type Entry[T any] struct {
	Payload   T         `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// Cache is a generic key->entry store with a fixed TTL. The in-memory
// mirror is the source of truth; the durable store is hydrated from at
// construction and synced to in the background.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[T]

	namespace string
	ttl       time.Duration
	store     *db.DB // nil means memory-only
	logger    *slog.Logger

	now      func() time.Time
	pending  sync.WaitGroup
	hydrated chan struct{}
}

// New builds a cache over the given namespace and kicks off async
// hydration from the durable store. A nil store yields a memory-only
// cache with the same behavior minus persistence.
func New[T any](namespace string, ttl time.Duration, store *db.DB, logger *slog.Logger) *Cache[T] {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache[T]{
		entries:   make(map[string]Entry[T]),
		namespace: namespace,
		ttl:       ttl,
		store:     store,
		logger:    logger,
		now:       time.Now,
		hydrated:  make(chan struct{}),
	}

	go c.hydrate()
	return c
}

// hydrate loads durable rows into the mirror, discarding entries that
// are already past the TTL. An in-memory entry written before
// hydration finishes always wins over the stored one.
func (c *Cache[T]) hydrate() {
	defer close(c.hydrated)

	if c.store == nil {
		return
	}

	rows, err := c.store.List(c.namespace)
	if err != nil {
		c.logger.Warn("cache hydration failed", "namespace", c.namespace, "error", err)
		return
	}

	cutoff := c.now().Add(-c.ttl)
	loaded := 0

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, row := range rows {
		if row.CreatedAt.Before(cutoff) {
			continue
		}
		if _, exists := c.entries[row.Key]; exists {
			continue
		}
		var payload T
		if err := json.Unmarshal(row.Payload, &payload); err != nil {
			c.logger.Warn("cache entry undecodable, skipping", "namespace", c.namespace, "key", row.Key, "error", err)
			continue
		}
		c.entries[row.Key] = Entry[T]{Payload: payload, CreatedAt: row.CreatedAt}
		loaded++
	}

	if loaded > 0 {
		c.logger.Info("cache hydrated", "namespace", c.namespace, "entries", loaded)
	}
}

// WaitHydrated blocks until hydration has finished or ctx expires.
func (c *Cache[T]) WaitHydrated(ctx context.Context) error {
	select {
	case <-c.hydrated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get returns the cached value for key if its age is within the TTL,
// lazily evicting it from the mirror otherwise. Lazy evictions are not
// persisted; the durable copy ages out on the next sync or hydration.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}

	if c.now().Sub(entry.CreatedAt) > c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the slot.
		if current, still := c.entries[key]; still && current.CreatedAt.Equal(entry.CreatedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}

	return entry.Payload, true
}

// Set writes to the mirror immediately and persists in the background.
// Concurrent sets on the same key are last-write-wins with no merge.
func (c *Cache[T]) Set(key string, value T) {
	entry := Entry[T]{Payload: value, CreatedAt: c.now()}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	if c.store == nil {
		return
	}

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		c.persist(key, entry)
	}()
}

// persist writes one entry durably; on failure it compacts the
// namespace and retries once, then gives up with a log line. The
// caller never observes the outcome.
func (c *Cache[T]) persist(key string, entry Entry[T]) {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		c.logger.Warn("cache entry unencodable, not persisted", "namespace", c.namespace, "key", key, "error", err)
		return
	}

	if err := c.store.Set(c.namespace, key, payload, entry.CreatedAt); err == nil {
		return
	}

	cutoff := c.now().Add(-c.ttl)
	if _, compactErr := c.store.DeleteOlderThan(c.namespace, cutoff); compactErr != nil {
		c.logger.Warn("cache compaction failed", "namespace", c.namespace, "error", compactErr)
	}
	if err := c.store.Set(c.namespace, key, payload, entry.CreatedAt); err != nil {
		c.logger.Warn("cache persistence failed after compaction", "namespace", c.namespace, "key", key, "error", err)
	}
}

// Flush blocks until all background persistence launched so far has
// settled. Used by the CLI before exit and by tests.
func (c *Cache[T]) Flush() {
	c.pending.Wait()
}

// Clear empties the mirror and removes the namespace from durable
// storage. Failures are logged, not raised.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Entry[T])
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	if err := c.store.DeleteNamespace(c.namespace); err != nil {
		c.logger.Warn("cache clear failed durably", "namespace", c.namespace, "error", err)
	}
}

// Len reports the current mirror size, expired entries included until
// their lazy eviction.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
