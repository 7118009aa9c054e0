// Package audio defines the contract with the native audio transport
// engine. The engine itself lives behind an IPC boundary; this package
// models its command set and status snapshot.
package audio

import "context"

// Command is a transport instruction sent to the engine.
type Command interface{ isCommand() }

// Play loads and starts the track at Path.
type Play struct{ Path string }

// Pause suspends playback.
type Pause struct{}

// Resume continues playback after a pause.
type Resume struct{}

// Seek jumps to an absolute position in seconds.
type Seek struct{ To float64 }

// SetVolume sets the output volume (0.0-1.0).
type SetVolume struct{ Volume float32 }

// SetLoop enables or disables single-track looping.
type SetLoop struct{ Loop bool }

// ToggleMute flips the mute state.
type ToggleMute struct{}

// Reset stops playback and unloads the current track.
type Reset struct{}

func (Play) isCommand()       {}
func (Pause) isCommand()      {}
func (Resume) isCommand()     {}
func (Seek) isCommand()       {}
func (SetVolume) isCommand()  {}
func (SetLoop) isCommand()    {}
func (ToggleMute) isCommand() {}
func (Reset) isCommand()      {}

// Status is the engine's snapshot after executing a command.
// Path is empty when no track is loaded.
type Status struct {
	Path      string  `json:"path"`
	Position  float64 `json:"position"` // seconds
	Duration  float64 `json:"duration"` // seconds
	IsPlaying bool    `json:"is_playing"`
	IsLooping bool    `json:"is_looping"`
	IsMuted   bool    `json:"is_muted"`
	Volume    float32 `json:"volume"`
}

// Backend defines the transport contract for dependency injection and testing.
type Backend interface {
	Control(ctx context.Context, cmd Command) (Status, error)
}
