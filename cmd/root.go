// Package cmd holds the shoal command-line interface: account linking,
// library maintenance, playlist management and offline scrobble flushing.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shoalaudio/shoal/internal/config"
	"github.com/shoalaudio/shoal/internal/store"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "shoal",
	Short: "Shoal is a local audio library with Last.fm scrobbling.",
	Long: `Shoal manages a local audio library: folders, playlists and track
metadata, with Last.fm scrobbling and an offline scrobble queue for
listens recorded without connectivity.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func openStore() *store.Store {
	st, err := store.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	return st
}
