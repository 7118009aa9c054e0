package files

import (
	"fmt"

	"github.com/bogem/id3v2/v2"

	"github.com/shoalaudio/shoal/internal/frames"
)

// writeMP3Frames writes ID3v2 text frames to an MP3 file.
// An empty value removes the frame, matching the tag editor contract.
func writeMP3Frames(path string, version TagVersion, values map[frames.ID]string) error {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer t.Close()

	if version == ID3v23 {
		t.SetVersion(3)
		t.SetDefaultEncoding(id3v2.EncodingUTF16)
	} else {
		t.SetVersion(4)
		t.SetDefaultEncoding(id3v2.EncodingUTF8)
	}

	for id, value := range values {
		t.DeleteFrames(string(id))
		if value == "" {
			continue
		}
		t.AddTextFrame(string(id), t.DefaultEncoding(), value)
	}

	if err := t.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}
