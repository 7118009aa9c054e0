package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shoalaudio/shoal/internal/store"
)

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "Manage playlists",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		playlists, err := st.Playlists()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list playlists: %v\n", err)
			os.Exit(1)
		}
		if len(playlists) == 0 {
			fmt.Println("No playlists.")
			return
		}
		for _, p := range playlists {
			tracks, err := st.PlaylistTracks(p.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to read playlist %s: %v\n", p.Name, err)
				os.Exit(1)
			}
			fmt.Printf("%s (%d tracks)\n", p.Name, len(tracks))
		}
	},
}

var playlistsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty playlist",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		if _, err := st.CreatePlaylist(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create playlist: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created playlist %q.\n", args[0])
	},
}

var playlistsRenameCmd = &cobra.Command{
	Use:   "rename <name> <new-name>",
	Short: "Rename a playlist",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		p := mustPlaylist(st, args[0])
		if err := st.RenamePlaylist(p.ID, args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to rename playlist: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Renamed %q to %q.\n", args[0], args[1])
	},
}

var playlistsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a playlist",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		p := mustPlaylist(st, args[0])
		if err := st.DeletePlaylist(p.ID); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to delete playlist: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted playlist %q.\n", args[0])
	},
}

var playlistsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a playlist's tracks in order",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		p := mustPlaylist(st, args[0])
		tracks, err := st.PlaylistTrackRows(p.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read playlist: %v\n", err)
			os.Exit(1)
		}
		for _, t := range tracks {
			fmt.Printf("%3d  %s\n", t.Position+1, t.Path)
		}
	},
}

var playlistsAddCmd = &cobra.Command{
	Use:   "add <name> <path>...",
	Short: "Append tracks to a playlist",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		p := mustPlaylist(st, args[0])
		for _, path := range args[1:] {
			abs, err := filepath.Abs(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid path %s: %v\n", path, err)
				os.Exit(1)
			}
			if err := st.AddPlaylistTrack(p.ID, abs); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to add %s: %v\n", abs, err)
				os.Exit(1)
			}
		}
		fmt.Printf("Added %d tracks to %q.\n", len(args)-1, args[0])
	},
}

var playlistsRemoveCmd = &cobra.Command{
	Use:   "remove <name> <position>",
	Short: "Remove the track at a 1-based position",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		p := mustPlaylist(st, args[0])
		pos, err := strconv.Atoi(args[1])
		if err != nil || pos < 1 {
			fmt.Fprintf(os.Stderr, "Invalid position %q.\n", args[1])
			os.Exit(1)
		}
		if err := st.RemovePlaylistTrack(p.ID, pos-1); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to remove track: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed track %d from %q.\n", pos, args[0])
	},
}

func mustPlaylist(st *store.Store, name string) *store.Playlist {
	p, err := st.PlaylistByName(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to look up playlist: %v\n", err)
		os.Exit(1)
	}
	if p == nil {
		fmt.Fprintf(os.Stderr, "No playlist named %q.\n", name)
		os.Exit(1)
	}
	return p
}

func init() {
	playlistsCmd.AddCommand(playlistsCreateCmd)
	playlistsCmd.AddCommand(playlistsRenameCmd)
	playlistsCmd.AddCommand(playlistsDeleteCmd)
	playlistsCmd.AddCommand(playlistsShowCmd)
	playlistsCmd.AddCommand(playlistsAddCmd)
	playlistsCmd.AddCommand(playlistsRemoveCmd)
	rootCmd.AddCommand(playlistsCmd)
}
