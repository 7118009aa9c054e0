package files

import (
	"io/fs"
	"path/filepath"
	"sort"
)

// ScanFolder walks root recursively and returns the audio file paths
// under it, sorted. Unreadable entries are skipped rather than failing
// the whole walk.
func ScanFolder(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && IsAudioFile(p) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
