package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	DefaultFolder  string   `koanf:"default_folder"`
	LibrarySources []string `koanf:"library_sources"` // paths to scan for music library

	// Last.fm scrobbling (enables scrobbling when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`

	// Feature toggles; nil means enabled.
	DoScrobbling        *bool `koanf:"do_scrobbling"`
	DoNowPlayingUpdates *bool `koanf:"do_now_playing_updates"`
	DoOfflineScrobbling *bool `koanf:"do_offline_scrobbling"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		DefaultFolder: "", // empty means use cwd
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in default_folder
	if cfg.DefaultFolder != "" {
		cfg.DefaultFolder = expandPath(cfg.DefaultFolder)
	}

	// Expand ~ in library_sources
	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/shoal/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "shoal", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// ScrobblingEnabled reports the do_scrobbling toggle (default true).
func (c *Config) ScrobblingEnabled() bool {
	return c.Lastfm.DoScrobbling == nil || *c.Lastfm.DoScrobbling
}

// NowPlayingEnabled reports the do_now_playing_updates toggle (default true).
func (c *Config) NowPlayingEnabled() bool {
	return c.Lastfm.DoNowPlayingUpdates == nil || *c.Lastfm.DoNowPlayingUpdates
}

// OfflineScrobblingEnabled reports the do_offline_scrobbling toggle (default true).
func (c *Config) OfflineScrobblingEnabled() bool {
	return c.Lastfm.DoOfflineScrobbling == nil || *c.Lastfm.DoOfflineScrobbling
}
