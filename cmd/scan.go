package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shoalaudio/shoal/internal/files"
	"github.com/shoalaudio/shoal/internal/store"
)

var scanCmd = &cobra.Command{
	Use:   "scan [folder]",
	Short: "Scan a folder into the library",
	Long: `Index the audio files under a folder and register it as a library
source. Without an argument, every registered folder is rescanned, plus
any library_sources from the configuration.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		var folders []string
		if len(args) == 1 {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid path: %v\n", err)
				os.Exit(1)
			}
			folders = []string{abs}
		} else {
			registered, err := st.LibraryFolders()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to list library folders: %v\n", err)
				os.Exit(1)
			}
			seen := make(map[string]bool)
			for _, f := range registered {
				folders = append(folders, f.Path)
				seen[f.Path] = true
			}
			for _, src := range loadConfig().LibrarySources {
				if abs, err := filepath.Abs(src); err == nil && !seen[abs] {
					folders = append(folders, abs)
				}
			}
			if len(folders) == 0 {
				fmt.Println("No library folders registered. Run 'shoal scan <folder>' to add one.")
				return
			}
		}

		total := 0
		for _, path := range folders {
			n, err := scanFolder(st, path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to scan %s: %v\n", path, err)
				os.Exit(1)
			}
			fmt.Printf("%s: %d tracks\n", path, n)
			total += n
		}
		fmt.Printf("Indexed %d tracks across %d folders.\n", total, len(folders))
	},
}

func scanFolder(st *store.Store, path string) (int, error) {
	folder, err := st.AddLibraryFolder(path)
	if err != nil {
		return 0, err
	}
	paths, err := files.ScanFolder(path)
	if err != nil {
		return 0, err
	}
	if err := st.SetFolderTracks(folder.ID, paths); err != nil {
		return 0, err
	}
	return len(paths), nil
}

var scanRemoveCmd = &cobra.Command{
	Use:   "remove <folder>",
	Short: "Remove a folder from the library",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		abs, err := filepath.Abs(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid path: %v\n", err)
			os.Exit(1)
		}
		if err := st.RemoveLibraryFolder(abs); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to remove folder: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed %s from the library.\n", abs)
	},
}

var scanListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered library folders",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		folders, err := st.LibraryFolders()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list library folders: %v\n", err)
			os.Exit(1)
		}
		if len(folders) == 0 {
			fmt.Println("No library folders registered.")
			return
		}
		for _, f := range folders {
			fmt.Println(f.Path)
		}
	},
}

func init() {
	scanCmd.AddCommand(scanRemoveCmd)
	scanCmd.AddCommand(scanListCmd)
	rootCmd.AddCommand(scanCmd)
}
