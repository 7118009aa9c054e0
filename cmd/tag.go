package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shoalaudio/shoal/internal/files"
	"github.com/shoalaudio/shoal/internal/frames"
)

// frameNames maps the flag-friendly names accepted on the command line to
// frame identifiers. Raw identifiers like TIT2 are accepted as well.
var frameNames = map[string]frames.ID{
	"title":       frames.Title,
	"artist":      frames.Artist,
	"album":       frames.Album,
	"albumartist": frames.AlbumArtist,
	"genre":       frames.Genre,
	"composer":    frames.Composer,
	"year":        frames.Year,
	"track":       frames.TrackNumber,
	"disc":        frames.DiscNumber,
	"lyrics":      frames.Lyrics,
}

var tagID3v23 bool

var tagCmd = &cobra.Command{
	Use:   "tag <file> <frame>=<value>...",
	Short: "Write tag frames to an audio file",
	Long: `Write text frames to an MP3 or FLAC file and print the resulting tags.
Frames are given as name=value pairs (title, artist, album, albumartist,
genre, composer, year, track, disc, lyrics, or a raw ID3 identifier). An
empty value removes the frame:

  shoal tag song.mp3 title="Blue in Green" artist="Miles Davis" year=1959
  shoal tag song.mp3 lyrics=`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		path, err := filepath.Abs(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid path: %v\n", err)
			os.Exit(1)
		}

		values := make(map[frames.ID]string)
		for _, arg := range args[1:] {
			name, value, ok := strings.Cut(arg, "=")
			if !ok {
				fmt.Fprintf(os.Stderr, "Expected <frame>=<value>, got %q\n", arg)
				os.Exit(1)
			}
			id, err := parseFrameName(name)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			values[id] = value
		}

		version := files.ID3v24
		if tagID3v23 {
			version = files.ID3v23
		}

		ctx := context.Background()
		backend := files.NewLocal()
		if err := backend.WriteTagFrames(ctx, path, version, values); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write tags: %v\n", err)
			os.Exit(1)
		}

		meta, err := backend.TrackData(ctx, path)
		if err != nil || !meta.Valid {
			fmt.Fprintf(os.Stderr, "Tags written, but re-reading %s failed.\n", path)
			os.Exit(1)
		}
		printTags(meta)
	},
}

func parseFrameName(name string) (frames.ID, error) {
	if id, ok := frameNames[strings.ToLower(name)]; ok {
		return id, nil
	}
	// Raw four-character identifiers pass through untouched.
	if len(name) == 4 && strings.ToUpper(name) == name {
		return frames.ID(name), nil
	}
	return "", fmt.Errorf("unknown frame %q", name)
}

func printTags(meta files.TrackMetadata) {
	ids := make([]frames.ID, 0, len(meta.Tags))
	for id := range meta.Tags {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Name() < ids[j].Name() })

	fmt.Println(meta.Path)
	for _, id := range ids {
		fmt.Printf("  %s: %s\n", id.Name(), meta.Tags[id])
	}
}

func init() {
	tagCmd.Flags().BoolVar(&tagID3v23, "id3v23", false, "write ID3v2.3 frames instead of v2.4 (MP3 only)")
	rootCmd.AddCommand(tagCmd)
}
