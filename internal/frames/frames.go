// Package frames defines the ID3v2 frame identifiers used as tag keys and
// sort fields throughout the application.
package frames

// ID is a standardized ID3v2.3/v2.4 frame identifier.
type ID string

const (
	FrontCover  ID = "APIC"
	Comments    ID = "COMM"
	Album       ID = "TALB"
	Composer    ID = "TCOM"
	Genre       ID = "TCON"
	Title       ID = "TIT2"
	Artist      ID = "TPE1"
	AlbumArtist ID = "TPE2"
	DiscNumber  ID = "TPOS"
	TrackNumber ID = "TRCK"
	Year        ID = "TYER"
	Lyrics      ID = "USLT"
)

// names maps frame IDs to their human-readable descriptors.
var names = map[ID]string{
	FrontCover:  "Front cover",
	Comments:    "Comments",
	Album:       "Album",
	Composer:    "Composer",
	Genre:       "Genre",
	Title:       "Title",
	Artist:      "Artist",
	AlbumArtist: "Album artist",
	DiscNumber:  "Disc number",
	TrackNumber: "Track number",
	Year:        "Year",
	Lyrics:      "Lyrics",
}

// Name returns the human-readable descriptor for a frame,
// falling back to the raw identifier for uncommon frames.
func (id ID) Name() string {
	if n, ok := names[id]; ok {
		return n
	}
	return string(id)
}

// Numeric reports whether values of this frame compare numerically
// when used as a sort key. Track numbers may carry a "3/12" suffix;
// callers strip it before comparing.
func (id ID) Numeric() bool {
	switch id {
	case TrackNumber, Year, DiscNumber:
		return true
	default:
		return false
	}
}
