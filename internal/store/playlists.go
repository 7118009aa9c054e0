package store

import (
	"database/sql"
	"time"
)

// Playlist is a named, ordered list of track paths.
type Playlist struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// CreatePlaylist creates an empty playlist. Names are unique.
func (s *Store) CreatePlaylist(name string) (*Playlist, error) {
	now := time.Now()
	res, err := s.db.Exec(`
		INSERT INTO playlists (name, created_at) VALUES (?, ?)
	`, name, now.Unix())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Playlist{ID: id, Name: name, CreatedAt: now}, nil
}

// RenamePlaylist changes a playlist's name.
func (s *Store) RenamePlaylist(id int64, name string) error {
	res, err := s.db.Exec(`UPDATE playlists SET name = ? WHERE id = ?`, name, id)
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
	return nil
}

// DeletePlaylist removes a playlist and its tracks.
func (s *Store) DeletePlaylist(id int64) error {
	_, err := s.db.Exec(`DELETE FROM playlists WHERE id = ?`, id)
	return err
}

// Playlists returns all playlists ordered by name.
func (s *Store) Playlists() ([]Playlist, error) {
	rows, err := s.db.Query(`
		SELECT id, name, created_at FROM playlists ORDER BY name COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []Playlist
	for rows.Next() {
		var p Playlist
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.Name, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = time.Unix(createdAt, 0)
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// PlaylistByName returns the playlist with the given name, or nil.
func (s *Store) PlaylistByName(name string) (*Playlist, error) {
	var p Playlist
	var createdAt int64
	err := s.db.QueryRow(`
		SELECT id, name, created_at FROM playlists WHERE name = ?
	`, name).Scan(&p.ID, &p.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil //nolint:nilnil // nil means not found, not an error
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(createdAt, 0)
	return &p, nil
}

// PlaylistTracks returns the playlist's track paths in position order.
func (s *Store) PlaylistTracks(playlistID int64) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT path FROM playlist_tracks
		WHERE playlist_id = ?
		ORDER BY position ASC
	`, playlistID)
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

// PlaylistTrack is one row of a playlist with its stable row id.
type PlaylistTrack struct {
	ID       int64
	Position int
	Path     string
}

// PlaylistTrackRows returns the playlist's rows in position order.
func (s *Store) PlaylistTrackRows(playlistID int64) ([]PlaylistTrack, error) {
	rows, err := s.db.Query(`
		SELECT id, position, path FROM playlist_tracks
		WHERE playlist_id = ?
		ORDER BY position ASC
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []PlaylistTrack
	for rows.Next() {
		var t PlaylistTrack
		if err := rows.Scan(&t.ID, &t.Position, &t.Path); err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// AddPlaylistTrack appends a track path at the end of a playlist.
func (s *Store) AddPlaylistTrack(playlistID int64, path string) error {
	return withTx(s.db, func(tx *sql.Tx) error {
		var next int
		err := tx.QueryRow(`
			SELECT COALESCE(MAX(position) + 1, 0) FROM playlist_tracks WHERE playlist_id = ?
		`, playlistID).Scan(&next)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO playlist_tracks (playlist_id, position, path) VALUES (?, ?, ?)
		`, playlistID, next, path)
		return err
	})
}

// RemovePlaylistTrack removes the track at position and compacts the
// positions that follow it.
func (s *Store) RemovePlaylistTrack(playlistID int64, position int) error {
	return withTx(s.db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			DELETE FROM playlist_tracks WHERE playlist_id = ? AND position = ?
		`, playlistID, position)
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
		_, err = tx.Exec(`
			UPDATE playlist_tracks SET position = position - 1
			WHERE playlist_id = ? AND position > ?
		`, playlistID, position)
		return err
	})
}
