package app

import (
	"path/filepath"

	"github.com/shoalaudio/shoal/internal/errs"
	"github.com/shoalaudio/shoal/internal/files"
	"github.com/shoalaudio/shoal/internal/listcache"
)

// ScanLibraryFolder registers a folder as a library source and indexes the
// audio files under it. Rescanning an existing folder refreshes its track
// set. Returns the number of tracks indexed for the folder.
func (a *App) ScanLibraryFolder(path string) (int, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, errs.Wrap(errs.FileSystem, err)
	}

	folder, err := a.Store.AddLibraryFolder(abs)
	if err != nil {
		return 0, err
	}

	paths, err := files.ScanFolder(abs)
	if err != nil {
		return 0, errs.Wrap(errs.FileSystem, err)
	}

	if err := a.Store.SetFolderTracks(folder.ID, paths); err != nil {
		return 0, err
	}

	a.Lists.InvalidateSource(listcache.SourceLibrary, "")
	a.Log.Info().Str("folder", abs).Int("tracks", len(paths)).Msg("library folder scanned")
	return len(paths), nil
}

// RemoveLibraryFolder removes a folder from the library. Tracks that no
// remaining folder covers drop out of the library listing.
func (a *App) RemoveLibraryFolder(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errs.Wrap(errs.FileSystem, err)
	}
	if err := a.Store.RemoveLibraryFolder(abs); err != nil {
		return err
	}
	a.Lists.InvalidateSource(listcache.SourceLibrary, "")
	return nil
}

// RescanLibrary re-indexes every registered library folder.
func (a *App) RescanLibrary() (int, error) {
	folders, err := a.Store.LibraryFolders()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, f := range folders {
		n, err := a.ScanLibraryFolder(f.Path)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
