package session

// State is the playback session state machine.
type State int

const (
	// Idle means no track has been loaded yet.
	Idle State = iota
	// Loading means a play command is in flight to the backend.
	Loading
	// Playing means a track is playing and the position clock runs.
	Playing
	// Paused means a track is loaded but not advancing.
	Paused
	// Stopped means playback ended or failed; no current track.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
