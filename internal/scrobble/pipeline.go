package scrobble

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shoalaudio/shoal/internal/diag"
	"github.com/shoalaudio/shoal/internal/errs"
)

const (
	nowPlayingDebounce = 2 * time.Second
	connectivityPeriod = 30 * time.Second
	connectivityHost   = "ws.audioscrobbler.com:443"
)

// Settings gate the pipeline's operations.
type Settings interface {
	ScrobblingEnabled() bool
	NowPlayingEnabled() bool
	OfflineScrobblingEnabled() bool
}

// Pipeline routes scrobbles to the remote service, falling back to the
// offline queue, and pushes debounced now-playing updates. It owns a
// connectivity watcher that flushes the queue when the service becomes
// reachable again.
type Pipeline struct {
	remote   Remote
	queue    *Queue
	settings Settings
	diag     *diag.Sink
	log      zerolog.Logger

	mu        sync.Mutex
	online    bool
	npTimer   *time.Timer
	npPending *Record

	probe       func() bool
	watcherStop chan struct{}
	watcherDone chan struct{}
}

func NewPipeline(remote Remote, queue *Queue, settings Settings, sink *diag.Sink, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		remote:   remote,
		queue:    queue,
		settings: settings,
		diag:     sink,
		log:      log,
		online:   true,
		probe:    probeConnectivity,
	}
}

// Submit reports one play. If the live submission fails for any reason
// (including being offline) the record is appended to the offline queue
// instead; a play is either scrobbled or queued, never both, never dropped.
// Failures are diagnostics, not blocking errors; Submit only returns an
// error when queueing itself fails.
func (p *Pipeline) Submit(rec Record) error {
	if !p.settings.ScrobblingEnabled() {
		return nil
	}

	if p.Online() {
		err := p.remote.Scrobble(rec)
		if err == nil {
			p.log.Debug().Str("artist", rec.Artist).Str("track", rec.Track).Msg("scrobbled")
			return nil
		}
		p.setOnline(false)
		p.diag.ReportError(errs.OpScrobble, errs.Wrap(errs.Network, err))
	}

	if !p.settings.OfflineScrobblingEnabled() {
		p.diag.Report("scrobble", diag.Warning,
			fmt.Sprintf("dropped scrobble for %s - %s: offline and offline scrobbling disabled", rec.Artist, rec.Track))
		return nil
	}

	if err := p.queue.Add(rec); err != nil {
		err = errs.Wrap(errs.Store, err)
		p.diag.ReportError(errs.OpQueueScrobble, err)
		return err
	}
	p.log.Debug().Str("artist", rec.Artist).Str("track", rec.Track).Msg("scrobble queued offline")
	return nil
}

// NowPlaying schedules a now-playing update. Updates are debounced so rapid
// track switches coalesce into one call; they are best-effort and never
// queued when offline.
func (p *Pipeline) NowPlaying(rec Record) {
	if !p.settings.NowPlayingEnabled() || !p.Online() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.npPending = &rec
	if p.npTimer != nil {
		p.npTimer.Stop()
	}
	p.npTimer = time.AfterFunc(nowPlayingDebounce, func() {
		p.mu.Lock()
		pending := p.npPending
		p.npPending = nil
		p.mu.Unlock()

		if pending == nil {
			return
		}
		if err := p.remote.UpdateNowPlaying(*pending); err != nil {
			p.log.Debug().Err(err).Msg("now playing update failed")
		}
	})
}

// Flush submits the whole offline queue in batch calls. A batch either
// lands and its rows are deleted, or fails and every remaining row is kept;
// the error reports how many scrobbles landed and how many remain queued.
// Returns the number submitted.
func (p *Pipeline) Flush() (int, error) {
	ids, recs, err := p.queue.All()
	if err != nil {
		return 0, errs.Wrap(errs.Store, err)
	}
	if len(recs) == 0 {
		return 0, nil
	}

	submitted := 0
	for submitted < len(recs) {
		end := submitted + MaxBatchSize
		if end > len(recs) {
			end = len(recs)
		}

		if err := p.remote.ScrobbleBatch(recs[submitted:end]); err != nil {
			p.setOnline(false)
			flushErr := errs.Wrap(errs.Network,
				fmt.Errorf("%d scrobbles submitted, %d kept in cache: %w", submitted, len(recs)-submitted, err))
			p.diag.ReportError(errs.OpFlushQueue, flushErr)
			return submitted, flushErr
		}
		if err := p.queue.Remove(ids[submitted:end]); err != nil {
			return submitted, errs.Wrap(errs.Store, err)
		}
		submitted = end
	}

	p.log.Info().Int("count", submitted).Msg("flushed offline scrobbles")
	return submitted, nil
}

// Online reports the pipeline's current connectivity belief.
func (p *Pipeline) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

// SetOnline overrides the connectivity state. An offline-to-online
// transition triggers a queue flush.
func (p *Pipeline) SetOnline(online bool) {
	p.mu.Lock()
	wasOnline := p.online
	p.online = online
	p.mu.Unlock()

	if online && !wasOnline {
		if _, err := p.Flush(); err != nil {
			p.log.Warn().Err(err).Msg("flush after reconnect failed")
		}
	}
}

func (p *Pipeline) setOnline(online bool) {
	p.mu.Lock()
	p.online = online
	p.mu.Unlock()
}

// StartWatcher begins periodic connectivity probing. Each offline-to-online
// transition flushes the queue.
func (p *Pipeline) StartWatcher(period time.Duration) {
	if period <= 0 {
		period = connectivityPeriod
	}

	p.mu.Lock()
	if p.watcherStop != nil {
		p.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	p.watcherStop = stop
	p.watcherDone = done
	p.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				p.SetOnline(p.probe())
			}
		}
	}()
}

// StopWatcher stops the connectivity watcher and any pending now-playing
// timer.
func (p *Pipeline) StopWatcher() {
	p.mu.Lock()
	stop := p.watcherStop
	done := p.watcherDone
	p.watcherStop = nil
	p.watcherDone = nil
	if p.npTimer != nil {
		p.npTimer.Stop()
	}
	p.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

func probeConnectivity() bool {
	conn, err := net.DialTimeout("tcp", connectivityHost, 5*time.Second)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
