package listcache

const eventBufferSize = 16

// Invalidation is emitted when a cached list is purged and needs refetching.
type Invalidation struct {
	Query Query
}

// Mark is emitted when a track's validity flips in lists that contain it.
type Mark struct {
	Path    string
	Valid   bool
	Queries []Query
}

// Subscription provides event channels for list cache changes.
type Subscription struct {
	Invalidated <-chan Invalidation
	Marked      <-chan Mark
	Done        <-chan struct{}

	invalidatedCh chan Invalidation
	markedCh      chan Mark
	doneCh        chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		invalidatedCh: make(chan Invalidation, eventBufferSize),
		markedCh:      make(chan Mark, eventBufferSize),
		doneCh:        make(chan struct{}),
	}
	s.Invalidated = s.invalidatedCh
	s.Marked = s.markedCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) sendInvalidated(e Invalidation) {
	select {
	case s.invalidatedCh <- e:
	default:
		// Drop if buffer full
	}
}

func (s *Subscription) sendMarked(e Mark) {
	select {
	case s.markedCh <- e:
	default:
	}
}

// Subscribe registers for list cache events.
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

func (c *Cache) notifyInvalidated(q Query) {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendInvalidated(Invalidation{Query: q})
	}
}

func (c *Cache) notifyMarked(path string, valid bool) {
	queries := c.listsContaining(path)
	if len(queries) == 0 {
		return
	}

	c.subMu.RLock()
	defer c.subMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendMarked(Mark{Path: path, Valid: valid, Queries: queries})
	}
}
