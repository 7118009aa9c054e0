// Package app wires the application together: configuration, store, tag
// backend, caches, scrobble pipeline, and the playback session, constructed
// once and injected into call sites.
package app

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/shoalaudio/shoal/internal/audio"
	"github.com/shoalaudio/shoal/internal/config"
	"github.com/shoalaudio/shoal/internal/diag"
	"github.com/shoalaudio/shoal/internal/errs"
	"github.com/shoalaudio/shoal/internal/files"
	"github.com/shoalaudio/shoal/internal/listcache"
	"github.com/shoalaudio/shoal/internal/metacache"
	"github.com/shoalaudio/shoal/internal/scrobble"
	"github.com/shoalaudio/shoal/internal/session"
	"github.com/shoalaudio/shoal/internal/store"
)

type App struct {
	Config   *config.Config
	Log      zerolog.Logger
	Diag     *diag.Sink
	Store    *store.Store
	Files    files.Backend
	Audio    audio.Backend
	Meta     *metacache.Cache
	Lists    *listcache.Cache
	Client   *scrobble.Client
	Queue    *scrobble.Queue
	Pipeline *scrobble.Pipeline
	Session  *session.Session

	sub *session.Subscription
}

// Options override default collaborators, mainly for tests.
type Options struct {
	Store *store.Store
	Files files.Backend
	Audio audio.Backend
}

// New builds the application from configuration. The audio backend is an
// external collaborator and must be supplied.
func New(cfg *config.Config, backend audio.Backend, log zerolog.Logger) (*App, error) {
	st, err := store.Open()
	if err != nil {
		return nil, errs.Wrap(errs.Store, err)
	}
	return build(cfg, Options{Store: st, Files: files.NewLocal(), Audio: backend}, log)
}

// NewWith builds the application with explicit collaborators.
func NewWith(cfg *config.Config, opts Options, log zerolog.Logger) (*App, error) {
	if opts.Store == nil {
		st, err := store.Open()
		if err != nil {
			return nil, errs.Wrap(errs.Store, err)
		}
		opts.Store = st
	}
	if opts.Files == nil {
		opts.Files = files.NewLocal()
	}
	return build(cfg, opts, log)
}

func build(cfg *config.Config, opts Options, log zerolog.Logger) (*App, error) {
	sink := diag.NewSink(log)

	meta := metacache.New(opts.Files)
	lists := listcache.New(opts.Files, meta, opts.Store)

	client := scrobble.NewClient(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
	if sess, err := opts.Store.GetLastfmSession(); err == nil && sess != nil {
		client.SetSessionKey(sess.SessionKey)
	}

	queue := scrobble.NewQueue(opts.Store)
	pipeline := scrobble.NewPipeline(client, queue, cfg, sink, log)

	sess := session.New(opts.Audio, meta, lists, pipeline, sink, log)

	a := &App{
		Config:   cfg,
		Log:      log,
		Diag:     sink,
		Store:    opts.Store,
		Files:    opts.Files,
		Audio:    opts.Audio,
		Meta:     meta,
		Lists:    lists,
		Client:   client,
		Queue:    queue,
		Pipeline: pipeline,
		Session:  sess,
	}

	a.restore()
	a.startPersistence()

	if cfg.HasLastfmConfig() {
		pipeline.StartWatcher(0)
	}

	return a, nil
}

// Close flushes state and tears the application down.
func (a *App) Close() error {
	a.Pipeline.StopWatcher()

	if a.sub != nil {
		a.Session.Unsubscribe(a.sub)
		a.sub = nil
	}
	a.Session.Close()

	a.persistNow()
	return a.Store.Close()
}

// LinkLastfm runs the desktop auth flow and persists the resulting
// session. Returns the linked username.
func (a *App) LinkLastfm(timeout time.Duration) (string, error) {
	username, sessionKey, err := scrobble.Link(a.Client, timeout, func(url string) {
		a.Log.Warn().Str("url", url).Msg("could not open browser; authorize manually")
	})
	if err != nil {
		return "", err
	}
	if err := a.Store.SaveLastfmSession(username, sessionKey); err != nil {
		return "", errs.Wrap(errs.Store, err)
	}
	a.Client.SetSessionKey(sessionKey)
	return username, nil
}

// UnlinkLastfm removes the stored session.
func (a *App) UnlinkLastfm() error {
	if err := a.Store.DeleteLastfmSession(); err != nil {
		return errs.Wrap(errs.Store, err)
	}
	a.Client.SetSessionKey("")
	return nil
}
