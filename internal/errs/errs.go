// Package errs classifies recoverable errors and formats user-facing
// failure messages consistently.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies the origin of a recoverable error.
type Kind int

const (
	// Other is the catch-all for unclassified failures.
	Other Kind = iota
	// FileSystem covers missing, moved or permission-denied files.
	FileSystem
	// Network covers scrobble submission and connectivity failures.
	Network
	// Store covers relational store failures.
	Store
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case FileSystem:
		return "FileSystem"
	case Network:
		return "Network"
	case Store:
		return "Store"
	default:
		return "Other"
	}
}

// Error wraps an underlying error with a kind for recovery decisions.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error from a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Err: errors.New(msg)}
}

// Wrap classifies an existing error. Returns nil if err is nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to Other.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"

	// Scrobble operations
	OpScrobble      Op = "submit scrobble"
	OpNowPlaying    Op = "update now playing"
	OpQueueScrobble Op = "queue offline scrobble"
	OpFlushQueue    Op = "flush offline scrobbles"
	OpLastfmAuth    Op = "link last.fm account"
	OpLastfmUnlink  Op = "unlink last.fm account"

	// List operations
	OpListFetch  Op = "fetch track list"
	OpTrackFetch Op = "read track metadata"
	OpTagWrite   Op = "write tag frames"

	// Playlist operations
	OpPlaylistCreate   Op = "create playlist"
	OpPlaylistRename   Op = "rename playlist"
	OpPlaylistDelete   Op = "delete playlist"
	OpPlaylistAddTrack Op = "add track to playlist"
	OpPlaylistRemove   Op = "remove track from playlist"

	// Library operations
	OpFolderAdd    Op = "add folder to library"
	OpFolderRemove Op = "remove folder from library"

	// State operations
	OpStateSave    Op = "save playback state"
	OpStateRestore Op = "restore playback state"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
