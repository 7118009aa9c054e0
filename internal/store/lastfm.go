package store

import (
	"database/sql"
	"time"
)

// LastfmSession represents a stored Last.fm session.
type LastfmSession struct {
	Username   string
	SessionKey string
	LinkedAt   time.Time
}

// OfflineScrobble is a scrobble queued while Last.fm was unreachable.
type OfflineScrobble struct {
	ID           int64
	Artist       string
	Track        string
	Album        string
	AlbumArtist  string
	TrackNumber  int
	DurationSecs int
	Timestamp    time.Time
	CreatedAt    time.Time
}

// GetLastfmSession returns the stored Last.fm session, or nil if not linked.
func (s *Store) GetLastfmSession() (*LastfmSession, error) {
	var username, sessionKey string
	var linkedAt int64

	err := s.db.QueryRow(`
		SELECT username, session_key, linked_at FROM lastfm_session WHERE id = 1
	`).Scan(&username, &sessionKey, &linkedAt)

	if err == sql.ErrNoRows {
		return nil, nil //nolint:nilnil // nil session means not linked, not an error
	}
	if err != nil {
		return nil, err
	}

	return &LastfmSession{
		Username:   username,
		SessionKey: sessionKey,
		LinkedAt:   time.Unix(linkedAt, 0),
	}, nil
}

// SaveLastfmSession stores the Last.fm session after successful authentication.
func (s *Store) SaveLastfmSession(username, sessionKey string) error {
	now := time.Now().Unix()
	_, err := s.db.Exec(`
		INSERT INTO lastfm_session (id, username, session_key, linked_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			session_key = excluded.session_key,
			linked_at = excluded.linked_at
	`, username, sessionKey, now)
	return err
}

// DeleteLastfmSession removes the stored Last.fm session (unlink).
func (s *Store) DeleteLastfmSession() error {
	_, err := s.db.Exec(`DELETE FROM lastfm_session WHERE id = 1`)
	return err
}

// AddOfflineScrobble appends a scrobble to the offline queue.
func (s *Store) AddOfflineScrobble(sc OfflineScrobble) error {
	now := time.Now().Unix()
	_, err := s.db.Exec(`
		INSERT INTO offline_scrobbles
		(artist, track, album, album_artist, track_number, duration_seconds, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sc.Artist, sc.Track, nullString(sc.Album), nullString(sc.AlbumArtist),
		nullInt(sc.TrackNumber), sc.DurationSecs, sc.Timestamp.Unix(), now)
	return err
}

// OfflineScrobbles returns the queued scrobbles in insertion order.
func (s *Store) OfflineScrobbles() ([]OfflineScrobble, error) {
	rows, err := s.db.Query(`
		SELECT id, artist, track, album, album_artist, track_number, duration_seconds, timestamp, created_at
		FROM offline_scrobbles
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scrobbles []OfflineScrobble
	for rows.Next() {
		var sc OfflineScrobble
		var album, albumArtist sql.NullString
		var trackNumber sql.NullInt64
		var timestamp, createdAt int64

		err := rows.Scan(
			&sc.ID, &sc.Artist, &sc.Track, &album, &albumArtist,
			&trackNumber, &sc.DurationSecs, &timestamp, &createdAt,
		)
		if err != nil {
			return nil, err
		}

		sc.Album = album.String
		sc.AlbumArtist = albumArtist.String
		sc.TrackNumber = int(trackNumber.Int64)
		sc.Timestamp = time.Unix(timestamp, 0)
		sc.CreatedAt = time.Unix(createdAt, 0)

		scrobbles = append(scrobbles, sc)
	}

	return scrobbles, rows.Err()
}

// CountOfflineScrobbles returns the number of queued scrobbles.
func (s *Store) CountOfflineScrobbles() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM offline_scrobbles`).Scan(&count)
	return count, err
}

// DeleteOfflineScrobbles removes the given scrobbles in one transaction.
// Either all are removed or none are.
func (s *Store) DeleteOfflineScrobbles(ids []int64) error {
	return withTx(s.db, func(tx *sql.Tx) error {
		for _, id := range ids {
			if _, err := tx.Exec(`DELETE FROM offline_scrobbles WHERE id = ?`, id); err != nil {
				return err
			}
		}
		return nil
	})
}
