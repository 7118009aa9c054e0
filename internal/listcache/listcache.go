// Package listcache caches ordered track lists keyed by (source, path,
// sort-by, sort-order) queries. Lists hold lightweight TrackRefs only;
// metadata comes from the metadata cache, so re-sorting an already known
// list never re-reads tags from disk.
package listcache

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/shoalaudio/shoal/internal/files"
	"github.com/shoalaudio/shoal/internal/metacache"
	"github.com/shoalaudio/shoal/internal/store"
)

// Catalog is the slice of the store the resolvers need.
type Catalog interface {
	PlaylistTrackRows(playlistID int64) ([]store.PlaylistTrack, error)
	LibraryTracks() ([]store.LibraryTrack, error)
}

type entry struct {
	query Query
	refs  []TrackRef
}

type Cache struct {
	mu      sync.RWMutex
	lists   map[string]entry
	backend files.Backend
	meta    *metacache.Cache
	catalog Catalog

	subMu sync.RWMutex
	subs  []*Subscription
}

func New(backend files.Backend, meta *metacache.Cache, catalog Catalog) *Cache {
	return &Cache{
		lists:   make(map[string]entry),
		backend: backend,
		meta:    meta,
		catalog: catalog,
	}
}

// GetOrFetch returns the cached list for the query, resolving and sorting it
// on first access. The cached ordering is fixed at fetch time.
func (c *Cache) GetOrFetch(ctx context.Context, q Query) ([]TrackRef, error) {
	key := q.Key()

	c.mu.RLock()
	if e, ok := c.lists[key]; ok {
		c.mu.RUnlock()
		return cloneRefs(e.refs), nil
	}
	c.mu.RUnlock()

	refs, err := c.resolve(ctx, q)
	if err != nil {
		return nil, err
	}

	refs, err = c.sortRefs(ctx, q, refs)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.lists[key] = entry{query: q, refs: refs}
	c.mu.Unlock()

	return cloneRefs(refs), nil
}

// Cached reports whether the query has a cached list.
func (c *Cache) Cached(q Query) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.lists[q.Key()]
	return ok
}

// Invalidate purges every cached list the predicate matches and signals
// subscribers for each purged query.
func (c *Cache) Invalidate(pred func(Query) bool) {
	c.mu.Lock()
	var purged []Query
	for key, e := range c.lists {
		if pred(e.query) {
			delete(c.lists, key)
			purged = append(purged, e.query)
		}
	}
	c.mu.Unlock()

	for _, q := range purged {
		c.notifyInvalidated(q)
	}
}

// InvalidateSource purges all lists for a source/path regardless of sort
// parameters. For Library the path is ignored.
func (c *Cache) InvalidateSource(source Source, path string) {
	c.Invalidate(func(q Query) bool {
		if q.Source != source {
			return false
		}
		return source == SourceLibrary || q.Path == path
	})
}

// MarkInvalid flags a path as invalid in the metadata cache and notifies
// subscribers for every cached list containing it. The lists themselves are
// kept; only the merged validity changes.
func (c *Cache) MarkInvalid(path string) {
	c.meta.MarkInvalid(path)
	c.notifyMarked(path, false)
}

// MarkValid re-reads the path's metadata and notifies lists containing it.
func (c *Cache) MarkValid(ctx context.Context, path string) error {
	if _, err := c.meta.Refresh(ctx, path); err != nil {
		return err
	}
	c.notifyMarked(path, true)
	return nil
}

// RefreshTrack re-reads the path's metadata and purges every cached list
// containing it. Tag edits can reorder a sorted list, so unlike MarkValid the
// lists are dropped and re-resolve on next fetch. Lists without the track are
// untouched.
func (c *Cache) RefreshTrack(ctx context.Context, path string) error {
	if _, err := c.meta.Refresh(ctx, path); err != nil {
		return err
	}

	queries := c.listsContaining(path)
	c.mu.Lock()
	for _, q := range queries {
		delete(c.lists, q.Key())
	}
	c.mu.Unlock()

	for _, q := range queries {
		c.notifyInvalidated(q)
	}
	return nil
}

func (c *Cache) listsContaining(path string) []Query {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var queries []Query
	for _, e := range c.lists {
		for _, ref := range e.refs {
			if ref.Path == path {
				queries = append(queries, e.query)
				break
			}
		}
	}
	return queries
}

func (c *Cache) resolve(ctx context.Context, q Query) ([]TrackRef, error) {
	switch q.Source {
	case SourceFolder:
		metas, err := c.backend.ReadFolder(ctx, q.Path)
		if err != nil {
			return nil, err
		}
		refs := make([]TrackRef, 0, len(metas))
		for _, m := range metas {
			c.meta.Store(m)
			refs = append(refs, TrackRef{Path: m.Path})
		}
		return refs, nil

	case SourcePlaylist:
		id, err := strconv.ParseInt(q.Path, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid playlist id %q: %w", q.Path, err)
		}
		rows, err := c.catalog.PlaylistTrackRows(id)
		if err != nil {
			return nil, err
		}
		refs := make([]TrackRef, 0, len(rows))
		for _, row := range rows {
			refs = append(refs, TrackRef{
				Path:            row.Path,
				PlaylistTrackID: row.ID,
				Position:        row.Position,
			})
		}
		return refs, nil

	case SourceLibrary:
		tracks, err := c.catalog.LibraryTracks()
		if err != nil {
			return nil, err
		}
		refs := make([]TrackRef, 0, len(tracks))
		for _, t := range tracks {
			refs = append(refs, TrackRef{Path: t.Path, AddedAt: t.AddedAt})
		}
		return refs, nil

	default:
		return nil, fmt.Errorf("unknown list source %q", q.Source)
	}
}

func cloneRefs(refs []TrackRef) []TrackRef {
	out := make([]TrackRef, len(refs))
	copy(out, refs)
	return out
}
