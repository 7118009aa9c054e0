package app

import (
	"encoding/json"

	"github.com/shoalaudio/shoal/internal/audio"
	"github.com/shoalaudio/shoal/internal/errs"
	"github.com/shoalaudio/shoal/internal/files"
	"github.com/shoalaudio/shoal/internal/session"
)

// App state keys for the persisted playback snapshot.
const (
	statePlaybackStatus = "playback_status"
	stateCurrentTrack   = "current_track"
	statePlaybackSource = "playback_source"
)

// startPersistence subscribes to session events and writes the playback
// snapshot through the store's debounced writer, so rapid position ticks
// collapse into periodic writes instead of one per mutation.
func (a *App) startPersistence() {
	sub := a.Session.Subscribe()
	a.sub = sub

	go func() {
		for {
			select {
			case <-sub.Done:
				return
			case <-sub.StateChanged:
				a.persistDebounced()
			case <-sub.TrackChanged:
				a.persistDebounced()
			case <-sub.PositionChanged:
				a.persistDebounced()
			}
		}
	}()
}

func (a *App) persistDebounced() {
	status, track, source := a.snapshot()
	a.Store.SetStateDebounced(statePlaybackStatus, status)
	a.Store.SetStateDebounced(stateCurrentTrack, track)
	a.Store.SetStateDebounced(statePlaybackSource, source)
}

func (a *App) persistNow() {
	status, track, source := a.snapshot()
	for key, value := range map[string]string{
		statePlaybackStatus: status,
		stateCurrentTrack:   track,
		statePlaybackSource: source,
	} {
		if err := a.Store.SetState(key, value); err != nil {
			a.Diag.ReportError(errs.OpStateSave, errs.Wrap(errs.Store, err))
		}
	}
}

func (a *App) snapshot() (status, track, source string) {
	statusJSON, err := json.Marshal(a.Session.Status())
	if err != nil {
		statusJSON = []byte("{}")
	}
	trackJSON, err := json.Marshal(a.Session.CurrentTrack())
	if err != nil {
		trackJSON = []byte("null")
	}
	sourceJSON, err := json.Marshal(a.Session.CurrentSource())
	if err != nil {
		sourceJSON = []byte("{}")
	}
	return string(statusJSON), string(trackJSON), string(sourceJSON)
}

// restore rehydrates the last persisted playback snapshot. Restored
// sessions never auto-play.
func (a *App) restore() {
	statusJSON, err := a.Store.GetState(statePlaybackStatus)
	if err != nil {
		a.Diag.ReportError(errs.OpStateRestore, errs.Wrap(errs.Store, err))
		return
	}
	if statusJSON == "" {
		return
	}

	var status audio.Status
	if err := json.Unmarshal([]byte(statusJSON), &status); err != nil {
		a.Diag.ReportError(errs.OpStateRestore, errs.Wrap(errs.Other, err))
		return
	}

	var track *files.TrackMetadata
	trackJSON, err := a.Store.GetState(stateCurrentTrack)
	if err == nil && trackJSON != "" && trackJSON != "null" {
		var meta files.TrackMetadata
		if err := json.Unmarshal([]byte(trackJSON), &meta); err == nil {
			track = &meta
		}
	}

	var source session.PlaySource
	if sourceJSON, err := a.Store.GetState(statePlaybackSource); err == nil && sourceJSON != "" {
		_ = json.Unmarshal([]byte(sourceJSON), &source)
	}

	a.Session.Restore(status, track, source)
}
