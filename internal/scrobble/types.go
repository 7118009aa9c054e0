package scrobble

import (
	"time"

	"github.com/shoalaudio/shoal/internal/files"
	"github.com/shoalaudio/shoal/internal/frames"
)

// Record is one play to report to the listening-history service. Records
// always carry both artist and title; plays missing either are not
// scrobblable and never produce a Record.
type Record struct {
	Artist       string
	Track        string
	Album        string
	AlbumArtist  string
	TrackNumber  int
	DurationSecs int
	Timestamp    time.Time
}

// NewRecord builds a Record from track metadata. It returns false when the
// track has no artist or no title; such plays are silently ineligible, not
// an error.
func NewRecord(meta files.TrackMetadata, durationSecs int, timestamp time.Time) (Record, bool) {
	artist := meta.Artist()
	title := meta.Tags[frames.Title]
	if !meta.Valid || artist == "" || title == "" {
		return Record{}, false
	}
	return Record{
		Artist:       artist,
		Track:        title,
		Album:        meta.Album(),
		AlbumArtist:  meta.AlbumArtist(),
		TrackNumber:  meta.TrackNumber(),
		DurationSecs: durationSecs,
		Timestamp:    timestamp,
	}, true
}

// Eligible reports whether the current listening session qualifies for a
// scrobble: tracks shorter than 30 seconds never do; otherwise half the
// track (with a 30 second floor) or four minutes of listening, whichever
// comes first, and at most once per session.
func Eligible(durationSecs float64, listened time.Duration, hasScrobbled bool) bool {
	if hasScrobbled || durationSecs < 30 {
		return false
	}
	listenedSecs := int64(listened / time.Second)
	half := int64(durationSecs) / 2
	listenedHalf := listenedSecs >= half
	listened30s := listenedSecs >= 30
	listened4min := listenedSecs >= 240
	return (listenedHalf && listened30s) || listened4min
}
