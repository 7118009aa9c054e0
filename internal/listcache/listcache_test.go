package listcache

import (
	"context"
	"testing"

	"github.com/shoalaudio/shoal/internal/files"
	"github.com/shoalaudio/shoal/internal/frames"
	"github.com/shoalaudio/shoal/internal/metacache"
	"github.com/shoalaudio/shoal/internal/store"
)

// mockCatalog is a test double for the store-backed resolvers.
type mockCatalog struct {
	playlists map[int64][]store.PlaylistTrack
	library   []store.LibraryTrack
}

func (m *mockCatalog) PlaylistTrackRows(playlistID int64) ([]store.PlaylistTrack, error) {
	return m.playlists[playlistID], nil
}

func (m *mockCatalog) LibraryTracks() ([]store.LibraryTrack, error) {
	return m.library, nil
}

func setupCache(t *testing.T) (*Cache, *files.Mock, *mockCatalog) {
	t.Helper()

	backend := files.NewMock()
	backend.AddTrack("/music/one.mp3", map[frames.ID]string{
		frames.Title:       "Charlie",
		frames.TrackNumber: "2",
		frames.Year:        "1999",
	})
	backend.AddTrack("/music/two.mp3", map[frames.ID]string{
		frames.Title:       "alpha",
		frames.TrackNumber: "10",
		frames.Year:        "2004",
	})
	backend.AddTrack("/music/three.mp3", map[frames.ID]string{
		frames.Title:       "Bravo",
		frames.TrackNumber: "1/12",
	})
	backend.AddFolder("/music", "/music/one.mp3", "/music/two.mp3", "/music/three.mp3")

	meta := metacache.New(backend)
	catalog := &mockCatalog{playlists: map[int64][]store.PlaylistTrack{}}
	return New(backend, meta, catalog), backend, catalog
}

func titles(t *testing.T, c *Cache, refs []TrackRef) []string {
	t.Helper()
	var out []string
	for _, ref := range refs {
		m, ok := c.meta.Peek(ref.Path)
		if !ok {
			t.Fatalf("metadata missing for %s", ref.Path)
		}
		out = append(out, m.Title())
	}
	return out
}

func TestQueryKey(t *testing.T) {
	q := Query{Source: SourceFolder, Path: "/music", SortBy: frames.Title, Order: Asc}
	if q.Key() != "folder-/music-TIT2-asc" {
		t.Errorf("Key = %q", q.Key())
	}

	// Library queries have no path component.
	lib := Query{Source: SourceLibrary, Path: "/ignored", SortBy: frames.Artist, Order: Desc}
	if lib.Key() != "library-TPE1-desc" {
		t.Errorf("library Key = %q", lib.Key())
	}
}

func TestGetOrFetch_FolderCachedAfterFirstFetch(t *testing.T) {
	c, backend, _ := setupCache(t)
	ctx := context.Background()

	q := Query{Source: SourceFolder, Path: "/music", SortBy: frames.Title, Order: Asc}

	first, err := c.GetOrFetch(ctx, q)
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	second, err := c.GetOrFetch(ctx, q)
	if err != nil {
		t.Fatalf("GetOrFetch (hit) failed: %v", err)
	}

	if len(backend.FolderCalls()) != 1 {
		t.Errorf("expected 1 folder read, got %d", len(backend.FolderCalls()))
	}
	if len(first) != len(second) {
		t.Fatalf("hit returned different length")
	}
	for i := range first {
		if first[i].Path != second[i].Path {
			t.Errorf("hit ordering differs at %d", i)
		}
	}
}

func TestGetOrFetch_SortByTitleCaseInsensitive(t *testing.T) {
	c, _, _ := setupCache(t)
	ctx := context.Background()

	refs, err := c.GetOrFetch(ctx, Query{Source: SourceFolder, Path: "/music", SortBy: frames.Title, Order: Asc})
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}

	got := titles(t, c, refs)
	want := []string{"alpha", "Bravo", "Charlie"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("titles = %v, want %v", got, want)
		}
	}
}

func TestGetOrFetch_SortByTrackNumberIsNumeric(t *testing.T) {
	c, _, _ := setupCache(t)
	ctx := context.Background()

	refs, err := c.GetOrFetch(ctx, Query{Source: SourceFolder, Path: "/music", SortBy: frames.TrackNumber, Order: Asc})
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}

	// "1/12" < "2" < "10": numeric compare, not lexicographic.
	got := titles(t, c, refs)
	want := []string{"Bravo", "Charlie", "alpha"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("titles = %v, want %v", got, want)
		}
	}
}

func TestGetOrFetch_MissingValuesSortLastBothDirections(t *testing.T) {
	c, _, _ := setupCache(t)
	ctx := context.Background()

	for _, order := range []Order{Asc, Desc} {
		refs, err := c.GetOrFetch(ctx, Query{Source: SourceFolder, Path: "/music", SortBy: frames.Year, Order: order})
		if err != nil {
			t.Fatalf("GetOrFetch failed: %v", err)
		}
		// three.mp3 has no year tag and must come last either way.
		if refs[len(refs)-1].Path != "/music/three.mp3" {
			t.Errorf("order %s: missing-value track not last: %v", order, refs)
		}
	}
}

func TestGetOrFetch_ReSortDoesNotRefetchMetadata(t *testing.T) {
	c, backend, _ := setupCache(t)
	ctx := context.Background()

	if _, err := c.GetOrFetch(ctx, Query{Source: SourceFolder, Path: "/music", SortBy: frames.Title, Order: Asc}); err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	// A new sort key on the same source is a different cache key, but the
	// metadata cache already has every path, so no per-track read happens.
	if _, err := c.GetOrFetch(ctx, Query{Source: SourceFolder, Path: "/music", SortBy: frames.Year, Order: Desc}); err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}

	if calls := backend.TrackCalls(); len(calls) != 0 {
		t.Errorf("re-sort triggered %d metadata reads: %v", len(calls), calls)
	}
	if len(backend.FolderCalls()) != 2 {
		t.Errorf("expected 2 folder reads, got %d", len(backend.FolderCalls()))
	}
}

func TestGetOrFetch_PlaylistKeepsStoredOrder(t *testing.T) {
	c, backend, catalog := setupCache(t)
	ctx := context.Background()

	backend.AddTrack("/p1.mp3", map[frames.ID]string{frames.Title: "Zulu"})
	backend.AddTrack("/p2.mp3", map[frames.ID]string{frames.Title: "Alpha"})
	catalog.playlists[5] = []store.PlaylistTrack{
		{ID: 11, Position: 0, Path: "/p1.mp3"},
		{ID: 12, Position: 1, Path: "/p2.mp3"},
	}

	refs, err := c.GetOrFetch(ctx, Query{Source: SourcePlaylist, Path: "5", SortBy: frames.Title, Order: Asc})
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	// Sorted by title: Alpha before Zulu, row identity carried along.
	if refs[0].Path != "/p2.mp3" || refs[0].PlaylistTrackID != 12 {
		t.Errorf("unexpected first ref: %+v", refs[0])
	}
	if refs[1].Position != 0 {
		t.Errorf("playlist position should ride with the ref, got %+v", refs[1])
	}
}

func TestRefreshTrack_PurgesOnlyListsContainingTrack(t *testing.T) {
	c, backend, catalog := setupCache(t)
	ctx := context.Background()

	backend.AddTrack("/p1.mp3", map[frames.ID]string{frames.Title: "Elsewhere"})
	catalog.playlists[5] = []store.PlaylistTrack{{ID: 1, Position: 0, Path: "/p1.mp3"}}

	qf := Query{Source: SourceFolder, Path: "/music", SortBy: frames.Title, Order: Asc}
	qp := Query{Source: SourcePlaylist, Path: "5", SortBy: frames.Title, Order: Asc}
	for _, q := range []Query{qf, qp} {
		if _, err := c.GetOrFetch(ctx, q); err != nil {
			t.Fatalf("GetOrFetch failed: %v", err)
		}
	}

	// Retag one.mp3 so it sorts last by title.
	backend.AddTrack("/music/one.mp3", map[frames.ID]string{frames.Title: "Zulu"})
	if err := c.RefreshTrack(ctx, "/music/one.mp3"); err != nil {
		t.Fatalf("RefreshTrack failed: %v", err)
	}

	if c.Cached(qf) {
		t.Error("folder list containing the track should be purged")
	}
	if !c.Cached(qp) {
		t.Error("playlist without the track should be untouched")
	}

	refs, err := c.GetOrFetch(ctx, qf)
	if err != nil {
		t.Fatalf("GetOrFetch (refetch) failed: %v", err)
	}
	got := titles(t, c, refs)
	want := []string{"alpha", "Bravo", "Zulu"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("titles after retag = %v, want %v", got, want)
		}
	}
}

func TestGetOrFetch_PlaylistBadID(t *testing.T) {
	c, _, _ := setupCache(t)

	_, err := c.GetOrFetch(context.Background(), Query{Source: SourcePlaylist, Path: "not-a-number", SortBy: frames.Title, Order: Asc})
	if err == nil {
		t.Error("expected error for non-numeric playlist id")
	}
}

func TestInvalidateSource_PurgesOnlyMatchingPlaylist(t *testing.T) {
	c, backend, catalog := setupCache(t)
	ctx := context.Background()

	backend.AddTrack("/p1.mp3", map[frames.ID]string{frames.Title: "One"})
	catalog.playlists[5] = []store.PlaylistTrack{{ID: 1, Position: 0, Path: "/p1.mp3"}}
	catalog.playlists[6] = []store.PlaylistTrack{{ID: 2, Position: 0, Path: "/p1.mp3"}}

	q5a := Query{Source: SourcePlaylist, Path: "5", SortBy: frames.Title, Order: Asc}
	q5b := Query{Source: SourcePlaylist, Path: "5", SortBy: frames.Year, Order: Desc}
	q6 := Query{Source: SourcePlaylist, Path: "6", SortBy: frames.Title, Order: Asc}
	qf := Query{Source: SourceFolder, Path: "/music", SortBy: frames.Title, Order: Asc}

	for _, q := range []Query{q5a, q5b, q6, qf} {
		if _, err := c.GetOrFetch(ctx, q); err != nil {
			t.Fatalf("GetOrFetch failed: %v", err)
		}
	}

	c.InvalidateSource(SourcePlaylist, "5")

	if c.Cached(q5a) || c.Cached(q5b) {
		t.Error("playlist 5 lists should be purged for every sort combination")
	}
	if !c.Cached(q6) {
		t.Error("playlist 6 list should be untouched")
	}
	if !c.Cached(qf) {
		t.Error("folder list should be untouched")
	}
}

func TestInvalidateSource_LibraryIgnoresSortParams(t *testing.T) {
	c, _, catalog := setupCache(t)
	ctx := context.Background()

	catalog.library = []store.LibraryTrack{{Path: "/music/one.mp3"}}

	qa := Query{Source: SourceLibrary, SortBy: frames.Title, Order: Asc}
	qb := Query{Source: SourceLibrary, SortBy: frames.Year, Order: Desc}
	for _, q := range []Query{qa, qb} {
		if _, err := c.GetOrFetch(ctx, q); err != nil {
			t.Fatalf("GetOrFetch failed: %v", err)
		}
	}

	c.InvalidateSource(SourceLibrary, "")

	if c.Cached(qa) || c.Cached(qb) {
		t.Error("every library list should be purged regardless of sort")
	}
}

func TestInvalidate_SignalsSubscribers(t *testing.T) {
	c, _, _ := setupCache(t)
	ctx := context.Background()

	q := Query{Source: SourceFolder, Path: "/music", SortBy: frames.Title, Order: Asc}
	if _, err := c.GetOrFetch(ctx, q); err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}

	sub := c.Subscribe()
	defer c.Unsubscribe(sub)

	c.InvalidateSource(SourceFolder, "/music")

	select {
	case inv := <-sub.Invalidated:
		if inv.Query.Key() != q.Key() {
			t.Errorf("invalidated key = %q, want %q", inv.Query.Key(), q.Key())
		}
	default:
		t.Fatal("expected invalidation event")
	}
}

func TestMarkInvalid_NotifiesContainingListsWithoutPurging(t *testing.T) {
	c, _, _ := setupCache(t)
	ctx := context.Background()

	q := Query{Source: SourceFolder, Path: "/music", SortBy: frames.Title, Order: Asc}
	if _, err := c.GetOrFetch(ctx, q); err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}

	sub := c.Subscribe()
	defer c.Unsubscribe(sub)

	c.MarkInvalid("/music/one.mp3")

	if !c.Cached(q) {
		t.Error("list should survive MarkInvalid")
	}
	meta, _ := c.meta.Peek("/music/one.mp3")
	if meta.Valid {
		t.Error("metadata entry should be invalid")
	}

	select {
	case m := <-sub.Marked:
		if m.Path != "/music/one.mp3" || m.Valid {
			t.Errorf("unexpected mark event: %+v", m)
		}
		if len(m.Queries) != 1 || m.Queries[0].Key() != q.Key() {
			t.Errorf("unexpected queries: %+v", m.Queries)
		}
	default:
		t.Fatal("expected mark event")
	}
}

func TestMarkValid_RefreshesMetadata(t *testing.T) {
	c, _, _ := setupCache(t)
	ctx := context.Background()

	q := Query{Source: SourceFolder, Path: "/music", SortBy: frames.Title, Order: Asc}
	if _, err := c.GetOrFetch(ctx, q); err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}

	c.MarkInvalid("/music/one.mp3")
	if err := c.MarkValid(ctx, "/music/one.mp3"); err != nil {
		t.Fatalf("MarkValid failed: %v", err)
	}

	meta, _ := c.meta.Peek("/music/one.mp3")
	if !meta.Valid {
		t.Error("metadata entry should be valid again")
	}
	if meta.Title() != "Charlie" {
		t.Errorf("Title = %q after refresh", meta.Title())
	}
}

func TestGetOrFetch_InvalidTracksSortLast(t *testing.T) {
	c, backend, _ := setupCache(t)
	ctx := context.Background()

	// Folder lists an entry the backend cannot read.
	backend.AddFolder("/music", "/music/one.mp3", "/music/missing.mp3", "/music/two.mp3")

	refs, err := c.GetOrFetch(ctx, Query{Source: SourceFolder, Path: "/music", SortBy: frames.Title, Order: Desc})
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if refs[len(refs)-1].Path != "/music/missing.mp3" {
		t.Errorf("invalid track should sort last, got %v", refs)
	}
}
