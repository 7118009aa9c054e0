package scrobble

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/shoalaudio/shoal/internal/diag"
	"github.com/shoalaudio/shoal/internal/store"
)

// mockRemote records submissions and can be scripted to fail.
type mockRemote struct {
	mu sync.Mutex

	scrobbles  []Record
	batches    [][]Record
	nowPlaying []Record

	scrobbleErr error
	batchErr    error
	failOnBatch int // 1-based batch index batchErr applies to; 0 means every batch
}

func (m *mockRemote) Scrobble(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scrobbleErr != nil {
		return m.scrobbleErr
	}
	m.scrobbles = append(m.scrobbles, rec)
	return nil
}

func (m *mockRemote) ScrobbleBatch(recs []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.batchErr != nil && (m.failOnBatch == 0 || len(m.batches)+1 == m.failOnBatch) {
		return m.batchErr
	}
	m.batches = append(m.batches, recs)
	return nil
}

func (m *mockRemote) UpdateNowPlaying(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nowPlaying = append(m.nowPlaying, rec)
	return nil
}

func (m *mockRemote) scrobbleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scrobbles)
}

func (m *mockRemote) nowPlayingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.nowPlaying)
}

// mockSettings enables everything unless flipped off.
type mockSettings struct {
	scrobbling bool
	nowPlaying bool
	offline    bool
}

func allEnabled() *mockSettings {
	return &mockSettings{scrobbling: true, nowPlaying: true, offline: true}
}

func (s *mockSettings) ScrobblingEnabled() bool { return s.scrobbling }

func (s *mockSettings) NowPlayingEnabled() bool { return s.nowPlaying }

func (s *mockSettings) OfflineScrobblingEnabled() bool { return s.offline }

func setupPipeline(t *testing.T, remote *mockRemote, settings *mockSettings) (*Pipeline, *Queue) {
	t.Helper()

	st, err := store.OpenPath(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	queue := NewQueue(st)
	sink := diag.NewSink(zerolog.Nop())
	p := NewPipeline(remote, queue, settings, sink, zerolog.Nop())
	t.Cleanup(p.StopWatcher)
	return p, queue
}

func testRecord(track string) Record {
	return Record{
		Artist:       "Artist",
		Track:        track,
		Album:        "Album",
		DurationSecs: 200,
		Timestamp:    time.Now(),
	}
}

func TestSubmit_Online(t *testing.T) {
	remote := &mockRemote{}
	p, queue := setupPipeline(t, remote, allEnabled())

	if err := p.Submit(testRecord("Song")); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if remote.scrobbleCount() != 1 {
		t.Errorf("expected 1 live scrobble, got %d", remote.scrobbleCount())
	}
	count, _ := queue.Count()
	if count != 0 {
		t.Errorf("nothing should be queued on success, got %d", count)
	}
}

func TestSubmit_OfflineQueuesExactlyOnce(t *testing.T) {
	remote := &mockRemote{}
	p, queue := setupPipeline(t, remote, allEnabled())
	p.SetOnline(false)

	if err := p.Submit(testRecord("Song")); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// Offline: zero remote calls, exactly one queue entry.
	if remote.scrobbleCount() != 0 {
		t.Errorf("expected 0 remote calls while offline, got %d", remote.scrobbleCount())
	}
	count, _ := queue.Count()
	if count != 1 {
		t.Errorf("expected exactly 1 queued entry, got %d", count)
	}
}

func TestSubmit_FailureFallsBackToQueue(t *testing.T) {
	remote := &mockRemote{scrobbleErr: errors.New("503")}
	p, queue := setupPipeline(t, remote, allEnabled())

	if err := p.Submit(testRecord("Song")); err != nil {
		t.Fatalf("Submit should not surface remote failure: %v", err)
	}

	count, _ := queue.Count()
	if count != 1 {
		t.Errorf("failed live scrobble should be queued, got %d entries", count)
	}
	if p.Online() {
		t.Error("remote failure should flip the pipeline offline")
	}
}

func TestSubmit_ScrobblingDisabled(t *testing.T) {
	remote := &mockRemote{}
	settings := allEnabled()
	settings.scrobbling = false
	p, queue := setupPipeline(t, remote, settings)

	if err := p.Submit(testRecord("Song")); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if remote.scrobbleCount() != 0 {
		t.Error("disabled scrobbling should make no remote calls")
	}
	count, _ := queue.Count()
	if count != 0 {
		t.Error("disabled scrobbling should queue nothing")
	}
}

func TestSubmit_OfflineScrobblingDisabledDropsWithDiagnostic(t *testing.T) {
	remote := &mockRemote{}
	settings := allEnabled()
	settings.offline = false
	p, queue := setupPipeline(t, remote, settings)
	p.SetOnline(false)

	if err := p.Submit(testRecord("Song")); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	count, _ := queue.Count()
	if count != 0 {
		t.Errorf("offline scrobbling disabled: nothing should be queued, got %d", count)
	}
}

func TestFlush_SuccessClearsQueue(t *testing.T) {
	remote := &mockRemote{}
	p, queue := setupPipeline(t, remote, allEnabled())
	p.SetOnline(false)

	_ = p.Submit(testRecord("One"))
	_ = p.Submit(testRecord("Two"))
	_ = p.Submit(testRecord("Three"))

	p.setOnline(true)
	n, err := p.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Flush submitted %d, want 3", n)
	}

	remote.mu.Lock()
	batches := len(remote.batches)
	remote.mu.Unlock()
	if batches != 1 {
		t.Errorf("expected 1 batch call, got %d", batches)
	}

	count, _ := queue.Count()
	if count != 0 {
		t.Errorf("queue should be empty after flush, got %d", count)
	}
}

func TestFlush_FailureLeavesQueueIntact(t *testing.T) {
	remote := &mockRemote{batchErr: errors.New("timeout")}
	p, queue := setupPipeline(t, remote, allEnabled())
	p.SetOnline(false)

	_ = p.Submit(testRecord("One"))
	_ = p.Submit(testRecord("Two"))

	_, before, _ := queue.All()
	p.setOnline(true)
	_, err := p.Flush()
	if err == nil {
		t.Fatal("expected flush error")
	}
	// The error states the exact counts so the user knows nothing was lost.
	if !strings.Contains(err.Error(), "0 scrobbles submitted, 2 kept in cache") {
		t.Errorf("error should report submitted and cached counts, got %q", err.Error())
	}

	_, after, _ := queue.All()
	if len(after) != len(before) {
		t.Fatalf("queue changed on failed flush: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("queue row %d changed on failed flush", i)
		}
	}
}

func TestFlush_ChunksLargeQueues(t *testing.T) {
	remote := &mockRemote{}
	p, queue := setupPipeline(t, remote, allEnabled())
	p.SetOnline(false)

	for i := 0; i < MaxBatchSize+1; i++ {
		_ = p.Submit(testRecord(fmt.Sprintf("Track %02d", i)))
	}

	p.setOnline(true)
	n, err := p.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if n != MaxBatchSize+1 {
		t.Errorf("Flush submitted %d, want %d", n, MaxBatchSize+1)
	}

	remote.mu.Lock()
	sizes := []int{}
	for _, b := range remote.batches {
		sizes = append(sizes, len(b))
	}
	remote.mu.Unlock()
	if len(sizes) != 2 || sizes[0] != MaxBatchSize || sizes[1] != 1 {
		t.Errorf("batch sizes = %v, want [%d 1]", sizes, MaxBatchSize)
	}

	count, _ := queue.Count()
	if count != 0 {
		t.Errorf("queue should be empty after flush, got %d", count)
	}
}

func TestFlush_LaterChunkFailureKeepsOnlyRemainder(t *testing.T) {
	remote := &mockRemote{batchErr: errors.New("timeout"), failOnBatch: 2}
	p, queue := setupPipeline(t, remote, allEnabled())
	p.SetOnline(false)

	for i := 0; i < MaxBatchSize+1; i++ {
		_ = p.Submit(testRecord(fmt.Sprintf("Track %02d", i)))
	}

	p.setOnline(true)
	n, err := p.Flush()
	if err == nil {
		t.Fatal("expected flush error")
	}
	if n != MaxBatchSize {
		t.Errorf("Flush submitted %d, want %d", n, MaxBatchSize)
	}
	// The first chunk landed and its rows are gone; the error owns up to both.
	if !strings.Contains(err.Error(), "50 scrobbles submitted, 1 kept in cache") {
		t.Errorf("error should report submitted and cached counts, got %q", err.Error())
	}

	count, _ := queue.Count()
	if count != 1 {
		t.Errorf("queue should keep only the failed chunk, got %d", count)
	}
	if p.Online() {
		t.Error("failed chunk should flip the pipeline offline")
	}
}

func TestFlush_EmptyQueueIsNoop(t *testing.T) {
	remote := &mockRemote{}
	p, _ := setupPipeline(t, remote, allEnabled())

	n, err := p.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 submitted, got %d", n)
	}
	remote.mu.Lock()
	batches := len(remote.batches)
	remote.mu.Unlock()
	if batches != 0 {
		t.Error("empty queue must not call the remote")
	}
}

func TestSetOnline_TransitionTriggersFlush(t *testing.T) {
	remote := &mockRemote{}
	p, queue := setupPipeline(t, remote, allEnabled())
	p.SetOnline(false)

	_ = p.Submit(testRecord("Queued"))

	p.SetOnline(true)

	count, _ := queue.Count()
	if count != 0 {
		t.Errorf("offline->online should flush, %d still queued", count)
	}
}

func TestSetOnline_NoFlushWhenAlreadyOnline(t *testing.T) {
	remote := &mockRemote{}
	p, _ := setupPipeline(t, remote, allEnabled())

	p.SetOnline(true)

	remote.mu.Lock()
	batches := len(remote.batches)
	remote.mu.Unlock()
	if batches != 0 {
		t.Error("online->online should not flush")
	}
}

func TestNowPlaying_Debounced(t *testing.T) {
	remote := &mockRemote{}
	p, _ := setupPipeline(t, remote, allEnabled())

	// Rapid switches coalesce into one call for the last track.
	p.NowPlaying(testRecord("One"))
	p.NowPlaying(testRecord("Two"))
	p.NowPlaying(testRecord("Three"))

	time.Sleep(nowPlayingDebounce + 200*time.Millisecond)

	if remote.nowPlayingCount() != 1 {
		t.Fatalf("expected 1 now-playing call, got %d", remote.nowPlayingCount())
	}
	remote.mu.Lock()
	track := remote.nowPlaying[0].Track
	remote.mu.Unlock()
	if track != "Three" {
		t.Errorf("now playing = %q, want the last track", track)
	}
}

func TestNowPlaying_SkippedOffline(t *testing.T) {
	remote := &mockRemote{}
	p, _ := setupPipeline(t, remote, allEnabled())
	p.SetOnline(false)

	p.NowPlaying(testRecord("Song"))
	time.Sleep(nowPlayingDebounce + 200*time.Millisecond)

	if remote.nowPlayingCount() != 0 {
		t.Error("now playing must not fire while offline")
	}
}

func TestNowPlaying_SettingGated(t *testing.T) {
	remote := &mockRemote{}
	settings := allEnabled()
	settings.nowPlaying = false
	p, _ := setupPipeline(t, remote, settings)

	p.NowPlaying(testRecord("Song"))
	time.Sleep(nowPlayingDebounce + 200*time.Millisecond)

	if remote.nowPlayingCount() != 0 {
		t.Error("now playing must respect the setting")
	}
}

func TestWatcher_FlushesOnReconnect(t *testing.T) {
	remote := &mockRemote{}
	p, queue := setupPipeline(t, remote, allEnabled())

	online := false
	var mu sync.Mutex
	p.probe = func() bool {
		mu.Lock()
		defer mu.Unlock()
		return online
	}

	p.SetOnline(false)
	_ = p.Submit(testRecord("Queued"))

	p.StartWatcher(20 * time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	online = true
	mu.Unlock()
	time.Sleep(100 * time.Millisecond)

	count, _ := queue.Count()
	if count != 0 {
		t.Errorf("watcher should flush on reconnect, %d still queued", count)
	}
}
