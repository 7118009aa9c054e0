package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"github.com/shoalaudio/shoal/internal/errs"
	"github.com/shoalaudio/shoal/internal/frames"
)

// Local reads tags straight from the file system.
type Local struct{}

// NewLocal creates a local tag backend.
func NewLocal() *Local { return &Local{} }

// TrackData resolves metadata for one file.
func (l *Local) TrackData(_ context.Context, path string) (TrackMetadata, error) {
	return readTrack(path), nil
}

// TracksData resolves metadata for several files.
func (l *Local) TracksData(_ context.Context, paths []string) ([]TrackMetadata, error) {
	out := make([]TrackMetadata, 0, len(paths))
	for _, p := range paths {
		out = append(out, readTrack(p))
	}
	return out, nil
}

// ReadFolder resolves metadata for every audio file directly in the folder.
// Entries are returned in file-name order; callers sort by tag frames.
func (l *Local) ReadFolder(_ context.Context, path string) ([]TrackMetadata, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errs.Wrap(errs.FileSystem, fmt.Errorf("read folder %s: %w", path, err))
	}

	var tracks []TrackMetadata
	for _, e := range entries {
		if e.IsDir() || !IsAudioFile(e.Name()) {
			continue
		}
		tracks = append(tracks, readTrack(filepath.Join(path, e.Name())))
	}

	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Name < tracks[j].Name })
	return tracks, nil
}

func readTrack(path string) TrackMetadata {
	f, err := os.Open(path)
	if err != nil {
		return Invalid(path)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Invalid(path)
	}

	t := TrackMetadata{
		Path:  path,
		Name:  filepath.Base(path),
		Tags:  map[frames.ID]string{},
		Valid: true,
	}

	set := func(id frames.ID, v string) {
		if v != "" {
			t.Tags[id] = v
		}
	}

	set(frames.Title, m.Title())
	set(frames.Artist, m.Artist())
	set(frames.Album, m.Album())
	set(frames.AlbumArtist, m.AlbumArtist())
	set(frames.Genre, m.Genre())
	set(frames.Composer, m.Composer())
	set(frames.Lyrics, m.Lyrics())

	if y := m.Year(); y > 0 {
		t.Tags[frames.Year] = strconv.Itoa(y)
	}
	if n, total := m.Track(); n > 0 {
		if total > 0 {
			t.Tags[frames.TrackNumber] = fmt.Sprintf("%d/%d", n, total)
		} else {
			t.Tags[frames.TrackNumber] = strconv.Itoa(n)
		}
	}
	if d, total := m.Disc(); d > 0 {
		if total > 0 {
			t.Tags[frames.DiscNumber] = fmt.Sprintf("%d/%d", d, total)
		} else {
			t.Tags[frames.DiscNumber] = strconv.Itoa(d)
		}
	}

	if m.Picture() != nil {
		t.CoverURI = buildCoverURI(path)
	}

	return t
}

// buildCoverURI produces the reference the UI layer resolves to cover bytes.
func buildCoverURI(path string) string {
	return "cover://localhost/" + path
}

// WriteTagFrames writes text frames to a file, dispatching on extension.
func (l *Local) WriteTagFrames(_ context.Context, path string, version TagVersion, values map[frames.ID]string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return writeMP3Frames(path, version, values)
	case ".flac":
		return writeFLACFrames(path, values)
	default:
		return errs.New(errs.Other, fmt.Sprintf("tag writing not supported for %s", filepath.Ext(path)))
	}
}

// Verify Local implements Backend at compile time.
var _ Backend = (*Local)(nil)
