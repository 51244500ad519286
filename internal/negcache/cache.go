// Package negcache holds the process-wide set of video IDs known to fail
// validation. Once an ID is added it is never validated again for the
// lifetime of the process.
package negcache

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/iconidentify/learnvid/internal/domain"
)

// Entry is one known-bad video.
type Entry struct {
	VideoID domain.VideoID    `json:"video_id"`
	Reason  domain.ReasonCode `json:"reason"`
	AddedAt time.Time         `json:"added_at"`
}

// Store persists entries across restarts. The in-process set stays the
// authority; a Store is written through and read once at start-up.
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entry Entry) error
	Clear(ctx context.Context) error
}

// Cache is a mutex-guarded set of video IDs. A nil Store keeps it in memory only.
type Cache struct {
	mu      sync.RWMutex
	entries map[domain.VideoID]Entry

	store  Store
	logger *slog.Logger
}

// New creates an empty cache. store may be nil.
func New(store Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries: make(map[domain.VideoID]Entry),
		store:   store,
		logger:  logger,
	}
}

// Warm loads persisted entries into memory. Entries already present are kept.
func (c *Cache) Warm(ctx context.Context) (int, error) {
	if c.store == nil {
		return 0, nil
	}
	loaded, err := c.store.Load(ctx)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range loaded {
		if _, ok := c.entries[e.VideoID]; ok {
			continue
		}
		c.entries[e.VideoID] = e
		n++
	}
	return n, nil
}

// Contains reports whether id is known to fail validation.
func (c *Cache) Contains(id domain.VideoID) bool {
	c.mu.RLock()
	_, ok := c.entries[id]
	c.mu.RUnlock()
	return ok
}

// Add records id as failed. Re-adding an existing id is a no-op and returns false.
// Persistence failures are logged; the in-memory entry is kept regardless.
func (c *Cache) Add(ctx context.Context, id domain.VideoID, reason domain.ReasonCode) bool {
	c.mu.Lock()
	if _, ok := c.entries[id]; ok {
		c.mu.Unlock()
		return false
	}
	entry := Entry{VideoID: id, Reason: reason, AddedAt: time.Now()}
	c.entries[id] = entry
	c.mu.Unlock()

	if c.store != nil {
		// The store applies its own timeout; a caller going away must not drop the write.
		if err := c.store.Save(context.WithoutCancel(ctx), entry); err != nil {
			c.logger.Warn("failed to persist negative cache entry",
				"video_id", id,
				"reason", reason,
				"error", err,
			)
		}
	}
	return true
}

// Get returns the entry for id.
func (c *Cache) Get(id domain.VideoID) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	return e, ok
}

// Len returns the number of cached ids.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries returns a snapshot ordered by insertion time.
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].VideoID < out[j].VideoID
		}
		return out[i].AddedAt.Before(out[j].AddedAt)
	})
	return out
}

// Clear removes every entry, including persisted ones. Intended for tests
// and admin tooling.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[domain.VideoID]Entry)
	c.mu.Unlock()

	if c.store != nil {
		return c.store.Clear(ctx)
	}
	return nil
}
