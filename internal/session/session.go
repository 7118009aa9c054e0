// Package session owns the playback state machine: the current track, the
// local position clock, the listened-time accumulator, and the scrobble
// triggers. Commands go down to the audio backend; state and track changes
// come back up as events.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shoalaudio/shoal/internal/audio"
	"github.com/shoalaudio/shoal/internal/diag"
	"github.com/shoalaudio/shoal/internal/errs"
	"github.com/shoalaudio/shoal/internal/files"
	"github.com/shoalaudio/shoal/internal/listcache"
	"github.com/shoalaudio/shoal/internal/metacache"
	"github.com/shoalaudio/shoal/internal/scrobble"
)

// tickInterval is the position clock period. Position advances by measured
// wall-clock delta each tick, so a late tick does not lose time.
const tickInterval = 50 * time.Millisecond

// Scrobbler is the pipeline surface the session drives.
type Scrobbler interface {
	Submit(rec scrobble.Record) error
	NowPlaying(rec scrobble.Record)
}

// PlaySource identifies the list a track was launched from: a folder path,
// a playlist id, or the library. The zero value means "no list context".
type PlaySource struct {
	Source listcache.Source `json:"source"`
	Path   string           `json:"path"`
}

type Session struct {
	backend  audio.Backend
	meta     *metacache.Cache
	lists    *listcache.Cache
	pipeline Scrobbler
	diag     *diag.Sink
	log      zerolog.Logger

	mu           sync.Mutex
	state        State
	status       audio.Status
	current      *files.TrackMetadata
	source       PlaySource
	listened     time.Duration
	hasScrobbled bool

	clockStop chan struct{}

	subMu sync.RWMutex
	subs  []*Subscription
}

func New(backend audio.Backend, meta *metacache.Cache, lists *listcache.Cache, pipeline Scrobbler, sink *diag.Sink, log zerolog.Logger) *Session {
	return &Session{
		backend:  backend,
		meta:     meta,
		lists:    lists,
		pipeline: pipeline,
		diag:     sink,
		log:      log,
		state:    Idle,
	}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns a snapshot of the playback status.
func (s *Session) Status() audio.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CurrentTrack returns the currently loaded track, or nil.
func (s *Session) CurrentTrack() *files.TrackMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// CurrentSource returns the list context the current track was launched
// from. Zero value when the track was played directly.
func (s *Session) CurrentSource() PlaySource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Play loads and starts the given path with no list context.
func (s *Session) Play(ctx context.Context, path string) error {
	return s.PlayFrom(ctx, path, PlaySource{})
}

// PlayFrom loads and starts the given path, remembering the list it was
// launched from. If a track is already loaded and its listening session is
// scrobble-eligible, that scrobble settles before the backend receives the
// new play command, so two tracks' listened-time never interleave.
func (s *Session) PlayFrom(ctx context.Context, path string, from PlaySource) error {
	s.mu.Lock()
	s.flushOutgoingLocked()

	prevState := s.state
	s.state = Loading
	s.stopClockLocked()
	s.mu.Unlock()
	s.emitState(prevState, Loading)

	status, err := s.backend.Control(ctx, audio.Play{Path: path})
	if err != nil || status.Path != path || !status.IsPlaying {
		if err == nil {
			err = errs.New(errs.FileSystem, fmt.Sprintf("track inaccessible: %s", path))
		} else {
			err = errs.Wrap(errs.FileSystem, err)
		}
		s.failLoad(path, err)
		return err
	}

	meta, metaErr := s.meta.Get(ctx, path)
	if metaErr != nil {
		meta = files.Invalid(path)
	}

	s.mu.Lock()
	prevTrack := s.current
	s.current = &meta
	s.source = from
	s.status = status
	s.listened = 0
	s.hasScrobbled = false
	s.state = Playing
	s.startClockLocked()
	s.mu.Unlock()

	s.emitTrack(prevTrack, &meta)
	s.emitState(Loading, Playing)

	if rec, ok := scrobble.NewRecord(meta, int(status.Duration), time.Now()); ok {
		s.pipeline.NowPlaying(rec)
	}

	s.log.Debug().Str("path", path).Float64("duration", status.Duration).Msg("playing")
	return nil
}

// failLoad resets to Stopped after a play failure: current track cleared,
// diagnostic emitted, list entries flagged invalid but not removed.
func (s *Session) failLoad(path string, err error) {
	s.mu.Lock()
	prevTrack := s.current
	s.current = nil
	s.source = PlaySource{}
	s.status = audio.Status{Volume: s.status.Volume, IsMuted: s.status.IsMuted}
	s.state = Stopped
	s.stopClockLocked()
	s.mu.Unlock()

	s.diag.ReportError(errs.OpPlaybackStart, err)
	if s.lists != nil {
		s.lists.MarkInvalid(path)
	}
	s.emitTrack(prevTrack, nil)
	s.emitState(Loading, Stopped)
	s.emitError(errs.OpPlaybackStart, path, err)
}

// PlayPause toggles between Playing and Paused. When action is nil the
// direction is inferred from the current status; pass a pointer to force
// one. Pausing is a scrobble trigger.
func (s *Session) PlayPause(ctx context.Context, action *bool) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return errs.New(errs.Other, "no track loaded")
	}
	play := !s.status.IsPlaying
	if action != nil {
		play = *action
	}
	s.mu.Unlock()

	if play {
		return s.resume(ctx)
	}
	return s.pause(ctx)
}

func (s *Session) resume(ctx context.Context) error {
	status, err := s.backend.Control(ctx, audio.Resume{})
	if err != nil {
		return errs.Wrap(errs.Other, err)
	}

	s.mu.Lock()
	prev := s.state
	s.status = status
	s.state = Playing
	s.startClockLocked()
	meta := s.current
	duration := s.status.Duration
	s.mu.Unlock()
	s.emitState(prev, Playing)

	if meta != nil {
		if rec, ok := scrobble.NewRecord(*meta, int(duration), time.Now()); ok {
			s.pipeline.NowPlaying(rec)
		}
	}
	return nil
}

func (s *Session) pause(ctx context.Context) error {
	status, err := s.backend.Control(ctx, audio.Pause{})
	if err != nil {
		return errs.Wrap(errs.Other, err)
	}

	s.mu.Lock()
	prev := s.state
	s.status = status
	s.status.IsPlaying = false
	s.state = Paused
	s.stopClockLocked()
	s.flushOutgoingLocked()
	s.mu.Unlock()
	s.emitState(prev, Paused)
	return nil
}

// Stop resets the backend and clears the current track. Stopping is a
// scrobble trigger.
func (s *Session) Stop(ctx context.Context) error {
	_, err := s.backend.Control(ctx, audio.Reset{})

	s.mu.Lock()
	prev := s.state
	prevTrack := s.current
	s.flushOutgoingLocked()
	s.current = nil
	s.source = PlaySource{}
	s.status = audio.Status{Volume: s.status.Volume, IsMuted: s.status.IsMuted}
	s.state = Stopped
	s.stopClockLocked()
	s.mu.Unlock()

	s.emitTrack(prevTrack, nil)
	s.emitState(prev, Stopped)

	if err != nil {
		return errs.Wrap(errs.Other, err)
	}
	return nil
}

// Seek moves the position directly. The clock is not responsible for seeks
// and listened time does not advance.
func (s *Session) Seek(ctx context.Context, to float64) error {
	status, err := s.backend.Control(ctx, audio.Seek{To: to})
	if err != nil {
		return errs.Wrap(errs.Other, err)
	}

	s.mu.Lock()
	s.status = status
	s.status.Position = to
	position, duration := s.status.Position, s.status.Duration
	s.mu.Unlock()

	s.emitPosition(position, duration)
	return nil
}

// SetVolume sets the playback volume, unmuting first if needed.
func (s *Session) SetVolume(ctx context.Context, volume float32) error {
	s.mu.Lock()
	muted := s.status.IsMuted
	s.mu.Unlock()

	if muted {
		status, err := s.backend.Control(ctx, audio.ToggleMute{})
		if err != nil {
			return errs.Wrap(errs.Other, err)
		}
		s.mu.Lock()
		s.status.IsMuted = status.IsMuted
		s.mu.Unlock()
	}

	status, err := s.backend.Control(ctx, audio.SetVolume{Volume: volume})
	if err != nil {
		return errs.Wrap(errs.Other, err)
	}

	s.mu.Lock()
	s.status.Volume = status.Volume
	s.status.IsMuted = status.IsMuted
	s.mu.Unlock()
	return nil
}

// ToggleMute flips the mute flag.
func (s *Session) ToggleMute(ctx context.Context) error {
	status, err := s.backend.Control(ctx, audio.ToggleMute{})
	if err != nil {
		return errs.Wrap(errs.Other, err)
	}

	s.mu.Lock()
	s.status.IsMuted = status.IsMuted
	s.mu.Unlock()
	return nil
}

// SetLoop sets whether the current track repeats at end-of-track.
func (s *Session) SetLoop(ctx context.Context, loop bool) error {
	status, err := s.backend.Control(ctx, audio.SetLoop{Loop: loop})
	if err != nil {
		return errs.Wrap(errs.Other, err)
	}

	s.mu.Lock()
	s.status.IsLooping = status.IsLooping
	s.mu.Unlock()
	return nil
}

// Restore rehydrates a persisted session: the track is loaded, the position
// kept, but playback does not auto-start.
func (s *Session) Restore(status audio.Status, current *files.TrackMetadata, from PlaySource) {
	s.mu.Lock()
	prev := s.state
	s.status = status
	s.status.IsPlaying = false
	s.current = current
	s.source = from
	s.listened = 0
	s.hasScrobbled = false
	if current != nil {
		s.state = Paused
	} else {
		s.state = Idle
	}
	cur := s.state
	s.mu.Unlock()

	if prev != cur {
		s.emitState(prev, cur)
	}
	if current != nil {
		s.emitTrack(nil, current)
	}
}

// Close stops the clock. Pending scrobble evaluation is the caller's
// responsibility (Stop before Close to flush).
func (s *Session) Close() {
	s.mu.Lock()
	s.stopClockLocked()
	s.mu.Unlock()
}

// flushOutgoingLocked evaluates the scrobble trigger for the loaded track
// and submits synchronously when eligible. The flag is set before the
// submission so a play session scrobbles at most once no matter how many
// triggers fire. Callers hold s.mu.
func (s *Session) flushOutgoingLocked() {
	if s.current == nil {
		return
	}
	if !scrobble.Eligible(s.status.Duration, s.listened, s.hasScrobbled) {
		return
	}
	s.hasScrobbled = true

	rec, ok := scrobble.NewRecord(*s.current, int(s.status.Duration), time.Now())
	if !ok {
		// Missing artist or title: not applicable, not an error.
		return
	}
	if err := s.pipeline.Submit(rec); err != nil {
		s.log.Warn().Err(err).Str("track", rec.Track).Msg("scrobble lost")
	}
}
