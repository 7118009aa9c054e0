// Package store persists application state in a SQLite database: playlists,
// library folders and their tracks, the Last.fm session, the offline scrobble
// queue, and small key/value app state (playback position, current track).
package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "shoal"
	dbFileName   = "shoal.db"
	saveDebounce = 500 * time.Millisecond
)

type Store struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   map[string]string
}

// Open opens (creating if needed) the database in the XDG data directory.
func Open() (*Store, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens the database at an explicit path. ":memory:" is allowed.
func OpenPath(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if dbPath == ":memory:" {
		// Every pooled connection gets its own in-memory database;
		// keep a single one so the schema is visible everywhere.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, pending: make(map[string]string)}, nil
}

// Close flushes any pending debounced state writes and closes the database.
func (s *Store) Close() error {
	s.saveMu.Lock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	pending := s.pending
	s.pending = make(map[string]string)
	s.saveMu.Unlock()

	for key, value := range pending {
		_ = setState(s.db, key, value)
	}

	return s.db.Close()
}

func (s *Store) DB() *sql.DB {
	return s.db
}

// GetState returns the stored value for key, or "" if none was saved.
func (s *Store) GetState(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetState writes a key/value pair immediately.
func (s *Store) SetState(key, value string) error {
	return setState(s.db, key, value)
}

// SetStateDebounced schedules a key/value write. Calls inside a pending
// window update the value but do not re-arm the timer, so a sustained burst
// still writes once per window instead of starving the flush; Close flushes
// whatever is pending.
func (s *Store) SetStateDebounced(key, value string) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.pending[key] = value

	if s.saveTimer != nil {
		return
	}
	s.saveTimer = time.AfterFunc(saveDebounce, s.flushPending)
}

func (s *Store) flushPending() {
	s.saveMu.Lock()
	s.saveTimer = nil
	pending := s.pending
	s.pending = make(map[string]string)
	s.saveMu.Unlock()

	for k, v := range pending {
		_ = setState(s.db, k, v)
	}
}

func setState(db *sql.DB, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO app_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().Unix())
	return err
}
