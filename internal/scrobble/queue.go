package scrobble

import (
	"github.com/shoalaudio/shoal/internal/store"
)

// QueueStore is the slice of the store the offline queue needs.
type QueueStore interface {
	AddOfflineScrobble(sc store.OfflineScrobble) error
	OfflineScrobbles() ([]store.OfflineScrobble, error)
	DeleteOfflineScrobbles(ids []int64) error
	CountOfflineScrobbles() (int, error)
}

// Queue is the durable offline scrobble queue. Appends happen when a live
// submission fails; the whole queue is drained in one batch on flush.
type Queue struct {
	store QueueStore
}

func NewQueue(s QueueStore) *Queue {
	return &Queue{store: s}
}

// Add appends a record to the queue.
func (q *Queue) Add(rec Record) error {
	return q.store.AddOfflineScrobble(store.OfflineScrobble{
		Artist:       rec.Artist,
		Track:        rec.Track,
		Album:        rec.Album,
		AlbumArtist:  rec.AlbumArtist,
		TrackNumber:  rec.TrackNumber,
		DurationSecs: rec.DurationSecs,
		Timestamp:    rec.Timestamp,
	})
}

// All returns the queued records in insertion order with their row ids.
func (q *Queue) All() ([]int64, []Record, error) {
	rows, err := q.store.OfflineScrobbles()
	if err != nil {
		return nil, nil, err
	}

	ids := make([]int64, 0, len(rows))
	recs := make([]Record, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
		recs = append(recs, Record{
			Artist:       row.Artist,
			Track:        row.Track,
			Album:        row.Album,
			AlbumArtist:  row.AlbumArtist,
			TrackNumber:  row.TrackNumber,
			DurationSecs: row.DurationSecs,
			Timestamp:    row.Timestamp,
		})
	}
	return ids, recs, nil
}

// Remove deletes the given rows, all of them or none.
func (q *Queue) Remove(ids []int64) error {
	return q.store.DeleteOfflineScrobbles(ids)
}

// Count returns the number of queued records.
func (q *Queue) Count() (int, error) {
	return q.store.CountOfflineScrobbles()
}
