// Package files defines the tag-reading backend contract and the resolved
// track metadata record it produces.
package files

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shoalaudio/shoal/internal/frames"
)

// TagVersion selects the ID3v2 revision for tag writes.
type TagVersion string

const (
	ID3v23 TagVersion = "id3v2.3"
	ID3v24 TagVersion = "id3v2.4"
)

// TrackMetadata is the fully resolved tag set for one file, keyed by path.
// Valid=false means the backend could not read the file (moved, deleted or
// permission denied); only Path and Name are meaningful in that state.
// A refresh always replaces the whole record, never parts of it.
type TrackMetadata struct {
	Path     string               `json:"path"`
	Name     string               `json:"name"`
	Tags     map[frames.ID]string `json:"tags"`
	CoverURI string               `json:"cover_uri,omitempty"`
	Valid    bool                 `json:"valid"`
}

// Title returns the title tag, falling back to the file name.
func (t TrackMetadata) Title() string {
	if v := t.Tags[frames.Title]; v != "" {
		return v
	}
	return t.Name
}

// Artist returns the artist tag, or empty when untagged.
func (t TrackMetadata) Artist() string { return t.Tags[frames.Artist] }

// Album returns the album tag, or empty when untagged.
func (t TrackMetadata) Album() string { return t.Tags[frames.Album] }

// AlbumArtist returns the album artist tag, or empty when untagged.
func (t TrackMetadata) AlbumArtist() string { return t.Tags[frames.AlbumArtist] }

// Genre returns the genre tag, or empty when untagged.
func (t TrackMetadata) Genre() string { return t.Tags[frames.Genre] }

// TrackNumber returns the numeric track number, stripping any "/total"
// suffix. Returns 0 when absent or unparseable.
func (t TrackMetadata) TrackNumber() int {
	v := t.Tags[frames.TrackNumber]
	if i := strings.IndexByte(v, '/'); i >= 0 {
		v = v[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

// Year returns the numeric year, or 0 when absent.
func (t TrackMetadata) Year() int {
	n, err := strconv.Atoi(strings.TrimSpace(t.Tags[frames.Year]))
	if err != nil {
		return 0
	}
	return n
}

// Invalid creates the placeholder record for an unreadable file.
func Invalid(path string) TrackMetadata {
	return TrackMetadata{
		Path: path,
		Name: filepath.Base(path),
		Tags: map[frames.ID]string{},
	}
}

// Backend defines the file-system/tag backend contract for dependency
// injection and testing.
type Backend interface {
	// TrackData resolves the metadata for one file. An unreadable file
	// yields a Valid=false record, not an error.
	TrackData(ctx context.Context, path string) (TrackMetadata, error)
	// TracksData resolves metadata for several files in one call.
	TracksData(ctx context.Context, paths []string) ([]TrackMetadata, error)
	// ReadFolder lists and resolves all audio files directly in a folder.
	ReadFolder(ctx context.Context, path string) ([]TrackMetadata, error)
	// WriteTagFrames writes text frames to a file. An empty value removes
	// the frame.
	WriteTagFrames(ctx context.Context, path string, version TagVersion, values map[frames.ID]string) error
}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".opus": true,
	".m4a":  true,
	".mp4":  true,
	".wav":  true,
}

// IsAudioFile reports whether the path has a recognized audio extension.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}
