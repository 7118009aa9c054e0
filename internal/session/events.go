package session

import (
	"github.com/shoalaudio/shoal/internal/errs"
	"github.com/shoalaudio/shoal/internal/files"
)

// StateChange is emitted when the session state changes.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when the current track changes, including to nil
// when playback stops or fails.
type TrackChange struct {
	Previous *files.TrackMetadata
	Current  *files.TrackMetadata
}

// PositionChange is emitted by the position clock and by seeks.
type PositionChange struct {
	Position float64
	Duration float64
}

// ErrorEvent is emitted when an operation fails and the session recovers.
type ErrorEvent struct {
	Op   errs.Op
	Path string
	Err  error
}
