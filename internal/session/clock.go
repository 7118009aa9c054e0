package session

import (
	"time"

	"github.com/shoalaudio/shoal/internal/scrobble"
)

// startClockLocked starts the position clock. Callers hold s.mu. The clock
// runs only while playing; pause and stop tear it down rather than leaving
// it ticking idle.
func (s *Session) startClockLocked() {
	if s.clockStop != nil {
		return
	}
	stop := make(chan struct{})
	s.clockStop = stop
	go s.runClock(stop)
}

// stopClockLocked stops the position clock if running. Callers hold s.mu.
func (s *Session) stopClockLocked() {
	if s.clockStop != nil {
		close(s.clockStop)
		s.clockStop = nil
	}
}

func (s *Session) runClock(stop chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if s.tick(now.Sub(last), stop) {
				return
			}
			last = now
		}
	}
}

// tick advances position and listened time by the measured wall-clock delta.
// It returns true when the clock should exit because the track ended.
func (s *Session) tick(delta time.Duration, stop chan struct{}) bool {
	s.mu.Lock()
	if s.clockStop != stop {
		// A newer clock owns the session.
		s.mu.Unlock()
		return true
	}
	if !s.status.IsPlaying {
		s.mu.Unlock()
		return false
	}

	s.status.Position += delta.Seconds()
	s.listened += delta
	position, duration := s.status.Position, s.status.Duration

	if duration > 0 && position >= duration {
		s.handleTrackEndLocked(stop)
		return true
	}
	s.mu.Unlock()

	s.emitPosition(position, duration)
	return false
}

// handleTrackEndLocked runs end-of-track handling: the scrobble trigger
// fires, then the track either loops or playback stops. Called with s.mu
// held; unlocks before returning.
func (s *Session) handleTrackEndLocked(stop chan struct{}) {
	s.flushOutgoingLocked()

	if s.status.IsLooping {
		s.status.Position = 0
		s.listened = 0
		s.hasScrobbled = false
		meta := s.current
		duration := s.status.Duration

		// Loop: same track starts a fresh listening session, so the clock
		// restarts and now-playing fires again.
		s.clockStop = nil
		s.startClockLocked()
		s.mu.Unlock()

		s.emitPosition(0, duration)
		if meta != nil {
			if rec, ok := scrobble.NewRecord(*meta, int(duration), time.Now()); ok {
				s.pipeline.NowPlaying(rec)
			}
		}
		return
	}

	prevTrack := s.current
	prevState := s.state
	s.current = nil
	s.source = PlaySource{}
	s.status.Path = ""
	s.status.IsPlaying = false
	s.status.Position = 0
	s.status.Duration = 0
	s.state = Stopped
	s.clockStop = nil
	s.mu.Unlock()

	s.emitTrack(prevTrack, nil)
	s.emitState(prevState, Stopped)
	s.log.Debug().Msg("track finished")
}
