package files

import (
	"context"
	"sync"

	"github.com/shoalaudio/shoal/internal/frames"
)

// Mock is a test double for the tag backend.
type Mock struct {
	mu sync.Mutex

	tracks  map[string]TrackMetadata
	folders map[string][]string

	trackCalls  []string
	folderCalls []string
	writeCalls  []WriteCall
}

// WriteCall records one WriteTagFrames invocation.
type WriteCall struct {
	Path    string
	Version TagVersion
	Values  map[frames.ID]string
}

// NewMock creates an empty mock backend.
func NewMock() *Mock {
	return &Mock{
		tracks:  make(map[string]TrackMetadata),
		folders: make(map[string][]string),
	}
}

// AddTrack registers a readable track with the given tag values.
func (m *Mock) AddTrack(path string, tags map[frames.ID]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := TrackMetadata{Path: path, Name: baseName(path), Tags: tags, Valid: true}
	if t.Tags == nil {
		t.Tags = map[frames.ID]string{}
	}
	m.tracks[path] = t
}

// AddFolder registers a folder containing the given track paths.
// Paths unknown to the mock resolve as invalid entries.
func (m *Mock) AddFolder(folder string, paths ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folders[folder] = paths
}

// RemoveTrack makes a previously readable path unreadable.
func (m *Mock) RemoveTrack(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tracks, path)
}

func (m *Mock) TrackData(_ context.Context, path string) (TrackMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackCalls = append(m.trackCalls, path)
	return m.lookup(path), nil
}

func (m *Mock) TracksData(_ context.Context, paths []string) ([]TrackMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TrackMetadata, 0, len(paths))
	for _, p := range paths {
		m.trackCalls = append(m.trackCalls, p)
		out = append(out, m.lookup(p))
	}
	return out, nil
}

func (m *Mock) ReadFolder(_ context.Context, path string) ([]TrackMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folderCalls = append(m.folderCalls, path)
	var out []TrackMetadata
	for _, p := range m.folders[path] {
		out = append(out, m.lookup(p))
	}
	return out, nil
}

func (m *Mock) WriteTagFrames(_ context.Context, path string, version TagVersion, values map[frames.ID]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls = append(m.writeCalls, WriteCall{Path: path, Version: version, Values: values})
	if t, ok := m.tracks[path]; ok {
		for id, v := range values {
			if v == "" {
				delete(t.Tags, id)
			} else {
				t.Tags[id] = v
			}
		}
		m.tracks[path] = t
	}
	return nil
}

func (m *Mock) lookup(path string) TrackMetadata {
	if t, ok := m.tracks[path]; ok {
		return t
	}
	return Invalid(path)
}

// Test helpers

// TrackCalls returns all paths resolved via TrackData/TracksData.
func (m *Mock) TrackCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.trackCalls))
	copy(out, m.trackCalls)
	return out
}

// FolderCalls returns all paths passed to ReadFolder.
func (m *Mock) FolderCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.folderCalls))
	copy(out, m.folderCalls)
	return out
}

// WriteCalls returns all recorded tag writes.
func (m *Mock) WriteCalls() []WriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WriteCall, len(m.writeCalls))
	copy(out, m.writeCalls)
	return out
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// Verify Mock implements Backend at compile time.
var _ Backend = (*Mock)(nil)
