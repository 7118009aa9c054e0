package listcache

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/shoalaudio/shoal/internal/files"
)

// sortRefs orders refs by the query's sort frame. String frames compare with
// locale-aware collation, numeric frames (track number, year, disc) compare
// numerically. Invalid tracks and missing values sort last regardless of
// direction; ties fall back to path so the order is deterministic.
func (c *Cache) sortRefs(ctx context.Context, q Query, refs []TrackRef) ([]TrackRef, error) {
	if len(refs) < 2 {
		return refs, nil
	}

	paths := make([]string, len(refs))
	for i, ref := range refs {
		paths[i] = ref.Path
	}
	metas, err := c.meta.GetMany(ctx, paths)
	if err != nil {
		return nil, err
	}
	byPath := make(map[string]files.TrackMetadata, len(metas))
	for _, m := range metas {
		byPath[m.Path] = m
	}

	numeric := q.SortBy.Numeric()
	coll := collate.New(language.Und, collate.IgnoreCase)

	sort.SliceStable(refs, func(i, j int) bool {
		a, b := byPath[refs[i].Path], byPath[refs[j].Path]

		av, aOK := sortValue(a, q)
		bv, bOK := sortValue(b, q)

		// Missing values and invalid tracks go last either direction.
		if aOK != bOK {
			return aOK
		}
		if !aOK {
			return refs[i].Path < refs[j].Path
		}

		var cmp int
		if numeric {
			an, aerr := strconv.Atoi(av)
			bn, berr := strconv.Atoi(bv)
			switch {
			case aerr == nil && berr == nil:
				switch {
				case an < bn:
					cmp = -1
				case an > bn:
					cmp = 1
				}
			case aerr == nil:
				cmp = -1
			case berr == nil:
				cmp = 1
			}
		} else {
			cmp = coll.CompareString(av, bv)
		}

		if cmp == 0 {
			return refs[i].Path < refs[j].Path
		}
		if q.Order == Desc {
			return cmp > 0
		}
		return cmp < 0
	})

	return refs, nil
}

// sortValue returns the comparable value for a track, and whether one
// exists. Invalid tracks never have one.
func sortValue(m files.TrackMetadata, q Query) (string, bool) {
	if !m.Valid {
		return "", false
	}
	v := strings.TrimSpace(m.Tags[q.SortBy])
	if v == "" {
		return "", false
	}
	if q.SortBy.Numeric() {
		// Track numbers may carry a "/total" suffix.
		if i := strings.IndexByte(v, '/'); i >= 0 {
			v = strings.TrimSpace(v[:i])
		}
	}
	return v, true
}
