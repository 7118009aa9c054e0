package listcache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shoalaudio/shoal/internal/files"
	"github.com/shoalaudio/shoal/internal/frames"
)

func TestSortValue(t *testing.T) {
	meta := files.TrackMetadata{
		Path:  "/music/a.mp3",
		Valid: true,
		Tags: map[frames.ID]string{
			frames.Title:       "Song",
			frames.TrackNumber: " 3/12 ",
			frames.Year:        "",
		},
	}

	v, ok := sortValue(meta, Query{SortBy: frames.Title})
	assert.True(t, ok)
	assert.Equal(t, "Song", v)

	// Track numbers drop the "/total" suffix before comparing.
	v, ok = sortValue(meta, Query{SortBy: frames.TrackNumber})
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	// Blank frames have no sort value.
	_, ok = sortValue(meta, Query{SortBy: frames.Year})
	assert.False(t, ok)

	// Frames the track does not carry at all.
	_, ok = sortValue(meta, Query{SortBy: frames.Album})
	assert.False(t, ok)
}

func TestSortValue_InvalidTrackHasNone(t *testing.T) {
	meta := files.Invalid("/music/broken.mp3")
	meta.Tags = map[frames.ID]string{frames.Title: "leftover"}

	_, ok := sortValue(meta, Query{SortBy: frames.Title})
	assert.False(t, ok)
}

func TestQueryKey_DistinguishesSortAndOrder(t *testing.T) {
	base := Query{Source: SourceFolder, Path: "/music", SortBy: frames.Title, Order: Asc}

	byArtist := base
	byArtist.SortBy = frames.Artist
	desc := base
	desc.Order = Desc

	assert.NotEqual(t, base.Key(), byArtist.Key())
	assert.NotEqual(t, base.Key(), desc.Key())
	assert.Equal(t, base.Key(), Query{Source: SourceFolder, Path: "/music", SortBy: frames.Title, Order: Asc}.Key())
}
