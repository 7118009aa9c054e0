package audio

import (
	"context"
	"sync"
)

// Mock is a scriptable test double for the transport engine.
type Mock struct {
	mu sync.Mutex

	status     Status
	controlErr error
	unreadable map[string]bool
	durations  map[string]float64
	commands   []Command
}

// NewMock creates a mock engine in the stopped state.
func NewMock() *Mock {
	return &Mock{
		status:     Status{Volume: 1.0},
		unreadable: make(map[string]bool),
		durations:  make(map[string]float64),
	}
}

// Control executes a command against the simulated engine state.
func (m *Mock) Control(_ context.Context, cmd Command) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.commands = append(m.commands, cmd)

	if m.controlErr != nil {
		return m.status, m.controlErr
	}

	switch c := cmd.(type) {
	case Play:
		if m.unreadable[c.Path] {
			// Engine keeps or drops the previous track; either way the
			// requested path is not what comes back.
			m.status.Path = ""
			m.status.IsPlaying = false
			return m.status, nil
		}
		m.status.Path = c.Path
		m.status.Position = 0
		m.status.Duration = m.durations[c.Path]
		m.status.IsPlaying = true
	case Pause:
		m.status.IsPlaying = false
	case Resume:
		if m.status.Path != "" {
			m.status.IsPlaying = true
		}
	case Seek:
		m.status.Position = c.To
	case SetVolume:
		m.status.Volume = c.Volume
	case SetLoop:
		m.status.IsLooping = c.Loop
	case ToggleMute:
		m.status.IsMuted = !m.status.IsMuted
	case Reset:
		m.status = Status{Volume: m.status.Volume}
	}

	return m.status, nil
}

// Test helpers

// SetUnreadable marks a path the engine cannot resolve.
func (m *Mock) SetUnreadable(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unreadable[path] = true
}

// SetDuration scripts the duration reported when a path starts playing.
func (m *Mock) SetDuration(path string, secs float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[path] = secs
}

// SetControlError makes every Control call fail.
func (m *Mock) SetControlError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.controlErr = err
}

// Commands returns the commands received so far.
func (m *Mock) Commands() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Command, len(m.commands))
	copy(out, m.commands)
	return out
}

// Status returns the current simulated status.
func (m *Mock) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Verify Mock implements Backend at compile time.
var _ Backend = (*Mock)(nil)
