package frames

import "testing"

func TestName_Known(t *testing.T) {
	if got := Title.Name(); got != "Title" {
		t.Errorf("Title.Name() = %q, want %q", got, "Title")
	}
	if got := AlbumArtist.Name(); got != "Album artist" {
		t.Errorf("AlbumArtist.Name() = %q, want %q", got, "Album artist")
	}
}

func TestName_Unknown_FallsBackToID(t *testing.T) {
	if got := ID("TSSE").Name(); got != "TSSE" {
		t.Errorf("Name() = %q, want raw id", got)
	}
}

func TestNumeric(t *testing.T) {
	numeric := []ID{TrackNumber, Year, DiscNumber}
	for _, id := range numeric {
		if !id.Numeric() {
			t.Errorf("%s.Numeric() = false, want true", id)
		}
	}
	textual := []ID{Title, Artist, Album, Genre}
	for _, id := range textual {
		if id.Numeric() {
			t.Errorf("%s.Numeric() = true, want false", id)
		}
	}
}
