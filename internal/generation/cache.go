package generation

import (
	"context"
	"sync"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

// Cache is the shared read-through cache for directory listings and raw
// file bytes used during a generation run.
//
// Pre-sizing scans must call DownloadTextBypass: they may touch files the
// run never processes, and populating the cache from them would leave stale
// or irrelevant entries behind. Once a run knows its subject set it
// publishes it through MarkActive so concurrent readers can treat those
// entries as provisional; the marker set is cleared on every exit path.
type Cache struct {
	mu       sync.RWMutex
	listings map[string][]string
	contents map[string]string
	active   map[string]struct{}

	storage contracts.Storage
	logger  *logger.Logger
}

// NewCache creates an empty cache backed by storage
func NewCache(storage contracts.Storage, log *logger.Logger) *Cache {
	return &Cache{
		listings: make(map[string][]string),
		contents: make(map[string]string),
		active:   make(map[string]struct{}),
		storage:  storage,
		logger:   log,
	}
}

// ListPaths returns the cached listing for prefix, loading it on a miss
func (c *Cache) ListPaths(ctx context.Context, prefix string) ([]string, error) {
	c.mu.RLock()
	if paths, ok := c.listings[prefix]; ok {
		c.mu.RUnlock()
		return paths, nil
	}
	c.mu.RUnlock()

	paths, err := c.storage.ListPaths(ctx, prefix)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.listings[prefix] = paths
	c.mu.Unlock()
	return paths, nil
}

// DownloadText returns the cached content for path, loading it on a miss
func (c *Cache) DownloadText(ctx context.Context, path string) (string, error) {
	c.mu.RLock()
	if content, ok := c.contents[path]; ok {
		c.mu.RUnlock()
		return content, nil
	}
	c.mu.RUnlock()

	content, err := c.storage.DownloadText(ctx, path)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.contents[path] = content
	c.mu.Unlock()
	return content, nil
}

// DownloadTextBypass reads directly from storage and never populates the
// cache. Pre-count passes must use this.
func (c *Cache) DownloadTextBypass(ctx context.Context, path string) (string, error) {
	return c.storage.DownloadText(ctx, path)
}

// MarkActive publishes the set of subjects about to be processed
func (c *Cache) MarkActive(subjects []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range subjects {
		c.active[s] = struct{}{}
	}
}

// ClearActive empties the active marker set
func (c *Cache) ClearActive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = make(map[string]struct{})
}

// IsActive reports whether a subject is currently being processed
func (c *Cache) IsActive(subject string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.active[subject]
	return ok
}

// ActiveCount returns the size of the active marker set
func (c *Cache) ActiveCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.active)
}

// Clear drops all cached listings and contents, keeping the active set
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings = make(map[string][]string)
	c.contents = make(map[string]string)
}

// Size returns the number of cached content entries
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.contents)
}
