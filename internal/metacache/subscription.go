package metacache

import (
	"github.com/shoalaudio/shoal/internal/files"
)

const eventBufferSize = 64

// Update is emitted when a cache entry is loaded, refreshed, or marked
// invalid.
type Update struct {
	Path     string
	Metadata files.TrackMetadata
}

// Subscription provides an event channel for metadata updates.
type Subscription struct {
	Updated <-chan Update
	Done    <-chan struct{}

	updatedCh chan Update
	doneCh    chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		updatedCh: make(chan Update, eventBufferSize),
		doneCh:    make(chan struct{}),
	}
	s.Updated = s.updatedCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) send(u Update) {
	select {
	case s.updatedCh <- u:
	default:
		// Drop if buffer full
	}
}

// Subscribe registers for metadata update events.
func (c *Cache) Subscribe() *Subscription {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	sub := newSubscription()
	c.subs = append(c.subs, sub)
	return sub
}

// Unsubscribe removes a subscription and closes its Done channel.
func (c *Cache) Unsubscribe(sub *Subscription) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			close(sub.doneCh)
			return
		}
	}
}

func (c *Cache) notify(meta files.TrackMetadata) {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for _, sub := range c.subs {
		sub.send(Update{Path: meta.Path, Metadata: meta})
	}
}
