package files

import (
	"fmt"
	"strings"

	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"github.com/shoalaudio/shoal/internal/frames"
)

// vorbisKeys maps ID3 frame identifiers onto their Vorbis comment field names.
var vorbisKeys = map[frames.ID]string{
	frames.Title:       "TITLE",
	frames.Artist:      "ARTIST",
	frames.Album:       "ALBUM",
	frames.AlbumArtist: "ALBUMARTIST",
	frames.Genre:       "GENRE",
	frames.TrackNumber: "TRACKNUMBER",
	frames.DiscNumber:  "DISCNUMBER",
	frames.Year:        "DATE",
	frames.Composer:    "COMPOSER",
	frames.Comments:    "COMMENT",
	frames.Lyrics:      "LYRICS",
}

// writeFLACFrames writes Vorbis comments to a FLAC file.
// Frames without a Vorbis equivalent are skipped; an empty value removes
// the field.
func writeFLACFrames(path string, values map[frames.ID]string) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse file: %w", err)
	}

	// Find existing VORBIS_COMMENT block index (if any)
	cmtIdx := -1
	var existing *flacvorbis.MetaDataBlockVorbisComment
	for i, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			parsed, parseErr := flacvorbis.ParseFromMetaDataBlock(*meta)
			if parseErr != nil {
				return fmt.Errorf("parse vorbis comment: %w", parseErr)
			}
			cmtIdx = i
			existing = parsed
			break
		}
	}

	// Rebuild the block: keep fields not being written, then add new values.
	touched := map[string]bool{}
	for id := range values {
		if key, ok := vorbisKeys[id]; ok {
			touched[key] = true
		}
	}

	cmts := flacvorbis.New()
	if existing != nil {
		cmts.Vendor = existing.Vendor
		for _, c := range existing.Comments {
			key, _, found := strings.Cut(c, "=")
			if found && touched[strings.ToUpper(key)] {
				continue
			}
			cmts.Comments = append(cmts.Comments, c)
		}
	}

	for id, value := range values {
		key, ok := vorbisKeys[id]
		if !ok || value == "" {
			continue
		}
		if err := cmts.Add(key, value); err != nil {
			return fmt.Errorf("add %s: %w", key, err)
		}
	}

	cmtBlock := cmts.Marshal()
	if cmtIdx >= 0 {
		f.Meta[cmtIdx] = &cmtBlock
	} else {
		f.Meta = append(f.Meta, &cmtBlock)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save file: %w", err)
	}
	return nil
}
