package store

import (
	"database/sql"
	"time"
)

// LibraryFolder is a folder registered as a library source.
type LibraryFolder struct {
	ID      int64
	Path    string
	AddedAt time.Time
}

// AddLibraryFolder registers a folder as a library source and returns it.
// Adding an already registered folder returns the existing row.
func (s *Store) AddLibraryFolder(path string) (*LibraryFolder, error) {
	now := time.Now()
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO library_folders (path, added_at) VALUES (?, ?)
	`, path, now.Unix())
	if err != nil {
		return nil, err
	}
	return s.libraryFolderByPath(path)
}

func (s *Store) libraryFolderByPath(path string) (*LibraryFolder, error) {
	var f LibraryFolder
	var addedAt int64
	err := s.db.QueryRow(`
		SELECT id, path, added_at FROM library_folders WHERE path = ?
	`, path).Scan(&f.ID, &f.Path, &addedAt)
	if err == sql.ErrNoRows {
		return nil, nil //nolint:nilnil // nil means not registered
	}
	if err != nil {
		return nil, err
	}
	f.AddedAt = time.Unix(addedAt, 0)
	return &f, nil
}

// RemoveLibraryFolder unregisters a folder. Tracks that were only sourced
// from this folder are removed; tracks shared with another folder stay.
func (s *Store) RemoveLibraryFolder(path string) error {
	return withTx(s.db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM library_folders WHERE path = ?`, path)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}
		// Source rows cascade with the folder; orphaned tracks go with them.
		_, err = tx.Exec(`
			DELETE FROM library_tracks
			WHERE id NOT IN (SELECT DISTINCT track_id FROM library_track_sources)
		`)
		return err
	})
}

// LibraryFolders returns all registered library folders ordered by path.
func (s *Store) LibraryFolders() ([]LibraryFolder, error) {
	rows, err := s.db.Query(`
		SELECT id, path, added_at FROM library_folders ORDER BY path
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []LibraryFolder
	for rows.Next() {
		var f LibraryFolder
		var addedAt int64
		if err := rows.Scan(&f.ID, &f.Path, &addedAt); err != nil {
			return nil, err
		}
		f.AddedAt = time.Unix(addedAt, 0)
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

// SetFolderTracks replaces the set of track paths sourced from a folder.
// Tracks already known from other folders are linked, not duplicated; tracks
// no longer present in any folder are removed.
func (s *Store) SetFolderTracks(folderID int64, paths []string) error {
	return withTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			DELETE FROM library_track_sources WHERE folder_id = ?
		`, folderID); err != nil {
			return err
		}

		now := time.Now().Unix()
		for _, path := range paths {
			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO library_tracks (path, added_at) VALUES (?, ?)
			`, path, now); err != nil {
				return err
			}
			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO library_track_sources (track_id, folder_id)
				SELECT id, ? FROM library_tracks WHERE path = ?
			`, folderID, path); err != nil {
				return err
			}
		}

		_, err := tx.Exec(`
			DELETE FROM library_tracks
			WHERE id NOT IN (SELECT DISTINCT track_id FROM library_track_sources)
		`)
		return err
	})
}

// LibraryTrackPaths returns every track path known to the library, each
// exactly once, ordered by path.
func (s *Store) LibraryTrackPaths() ([]string, error) {
	rows, err := s.db.Query(`SELECT path FROM library_tracks ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// LibraryTrack is a track known to the library with the time it first
// appeared in any source folder.
type LibraryTrack struct {
	Path    string
	AddedAt time.Time
}

// LibraryTracks returns every library track with its added-at time.
func (s *Store) LibraryTracks() ([]LibraryTrack, error) {
	rows, err := s.db.Query(`SELECT path, added_at FROM library_tracks ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []LibraryTrack
	for rows.Next() {
		var t LibraryTrack
		var addedAt int64
		if err := rows.Scan(&t.Path, &addedAt); err != nil {
			return nil, err
		}
		t.AddedAt = time.Unix(addedAt, 0)
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}
