// Package metacache caches track metadata keyed by file path. Tag data is
// read from the files backend once and served from memory afterwards, so
// consumers that re-sort or re-display lists never touch the filesystem
// again. Subscribers are notified when an entry is loaded or refreshed.
package metacache

import (
	"context"
	"sync"

	"github.com/shoalaudio/shoal/internal/files"
)

type Cache struct {
	mu      sync.RWMutex
	backend files.Backend
	entries map[string]files.TrackMetadata

	subMu sync.RWMutex
	subs  []*Subscription
}

func New(backend files.Backend) *Cache {
	return &Cache{
		backend: backend,
		entries: make(map[string]files.TrackMetadata),
	}
}

// Get returns the metadata for path, reading it from the backend on first
// access. Subsequent calls are served from the cache.
func (c *Cache) Get(ctx context.Context, path string) (files.TrackMetadata, error) {
	c.mu.RLock()
	if meta, ok := c.entries[path]; ok {
		c.mu.RUnlock()
		return meta, nil
	}
	c.mu.RUnlock()

	return c.fetch(ctx, path)
}

// GetMany returns metadata for each path, preserving order. Paths missing
// from the cache are fetched from the backend in one call.
func (c *Cache) GetMany(ctx context.Context, paths []string) ([]files.TrackMetadata, error) {
	result := make([]files.TrackMetadata, len(paths))

	var missing []string
	missingIdx := make(map[string][]int)

	c.mu.RLock()
	for i, path := range paths {
		if meta, ok := c.entries[path]; ok {
			result[i] = meta
			continue
		}
		if _, seen := missingIdx[path]; !seen {
			missing = append(missing, path)
		}
		missingIdx[path] = append(missingIdx[path], i)
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return result, nil
	}

	fetched, err := c.backend.TracksData(ctx, missing)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for _, meta := range fetched {
		c.entries[meta.Path] = meta
		for _, i := range missingIdx[meta.Path] {
			result[i] = meta
		}
	}
	c.mu.Unlock()

	for _, meta := range fetched {
		c.notify(meta)
	}

	return result, nil
}

// Store places an already-read record in the cache, replacing any existing
// entry, and notifies subscribers. Folder reads return full metadata, so
// callers seed the cache with it instead of fetching each path again.
func (c *Cache) Store(meta files.TrackMetadata) {
	c.mu.Lock()
	c.entries[meta.Path] = meta
	c.mu.Unlock()
	c.notify(meta)
}

// Peek returns the cached metadata for path without fetching.
func (c *Cache) Peek(path string) (files.TrackMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	meta, ok := c.entries[path]
	return meta, ok
}

// Refresh re-reads the metadata for path from the backend, replacing any
// cached entry, and notifies subscribers.
func (c *Cache) Refresh(ctx context.Context, path string) (files.TrackMetadata, error) {
	return c.fetch(ctx, path)
}

// Invalidate drops the cached entry for path. The next Get re-reads it.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// MarkInvalid replaces the cached entry with an invalid record, without
// touching the backend. Used when playback discovers a file is unreadable.
func (c *Cache) MarkInvalid(path string) {
	meta := files.Invalid(path)
	c.mu.Lock()
	c.entries[path] = meta
	c.mu.Unlock()
	c.notify(meta)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) fetch(ctx context.Context, path string) (files.TrackMetadata, error) {
	meta, err := c.backend.TrackData(ctx, path)
	if err != nil {
		return files.TrackMetadata{}, err
	}

	c.mu.Lock()
	c.entries[path] = meta
	c.mu.Unlock()

	c.notify(meta)
	return meta, nil
}
