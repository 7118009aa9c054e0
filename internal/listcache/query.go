package listcache

import (
	"fmt"
	"time"

	"github.com/shoalaudio/shoal/internal/frames"
)

// Source identifies where a track list comes from.
type Source string

const (
	SourceFolder   Source = "folder"
	SourcePlaylist Source = "playlist"
	SourceLibrary  Source = "library"
)

// Order is the sort direction of a list query.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Query identifies one cached track list: a source, the path or playlist id
// within it, and the sort parameters. The whole tuple is the cache key.
type Query struct {
	Source Source
	Path   string // folder path or playlist id; empty for Library
	SortBy frames.ID
	Order  Order
}

// Key serializes the query canonically. Library queries have no path
// component.
func (q Query) Key() string {
	if q.Source == SourceLibrary {
		return fmt.Sprintf("%s-%s-%s", q.Source, q.SortBy, q.Order)
	}
	return fmt.Sprintf("%s-%s-%s-%s", q.Source, q.Path, q.SortBy, q.Order)
}

// TrackRef is the minimal identity of a track within a cached list. Full tag
// data lives in the metadata cache; consumers merge the two at read time.
type TrackRef struct {
	Path            string
	PlaylistTrackID int64     // playlist rows only
	Position        int       // playlist rows only
	AddedAt         time.Time // library rows only
}
