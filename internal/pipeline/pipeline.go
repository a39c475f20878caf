// Package pipeline turns extracted update records into the ordered,
// filtered view the API serves: deduplicate by link, sort newest-first,
// apply the caller's predicates.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"azure-watch/updates/internal/feed"
)

// Dedup removes records sharing an identical non-empty link, keeping
// the first occurrence in original order. Records with an empty link
// are never deduplicated against each other. Idempotent.
func Dedup(records []feed.Update) []feed.Update {
	seen := make(map[string]struct{}, len(records))
	out := make([]feed.Update, 0, len(records))
	for _, r := range records {
		if r.Link != "" {
			if _, dup := seen[r.Link]; dup {
				continue
			}
			seen[r.Link] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}

// SortByDate returns a new slice ordered by publication time,
// descending. The sort is stable: equal timestamps keep their
// extraction order.
func SortByDate(records []feed.Update) []feed.Update {
	out := make([]feed.Update, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

// Filter holds the active predicates. Unset fields pass everything;
// set fields combine with AND semantics.
type Filter struct {
	// Statuses is the set of allowed status labels.
	Statuses []string
	// From and To bound the publication date, inclusive. Zero means
	// unbounded on that side.
	From time.Time
	To   time.Time
	// Query is a case-insensitive substring match over title and
	// description.
	Query string
}

// Apply returns the subsequence of records satisfying every active
// predicate, in input order.
func (f Filter) Apply(records []feed.Update) []feed.Update {
	return lo.Filter(records, func(u feed.Update, _ int) bool {
		return f.matches(u)
	})
}

func (f Filter) matches(u feed.Update) bool {
	if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, u.Status) {
		return false
	}
	if !f.From.IsZero() && u.PublishedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && u.PublishedAt.After(f.To) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(u.Title), q) &&
			!strings.Contains(strings.ToLower(u.Description), q) {
			return false
		}
	}
	return true
}

// Facets summarizes a record set for building filter controls: the
// status labels present and the observed date range.
type Facets struct {
	Statuses []string  `json:"statuses"`
	MinDate  time.Time `json:"min_date"`
	MaxDate  time.Time `json:"max_date"`
}

// BuildFacets computes the facets of a record set.
func BuildFacets(records []feed.Update) Facets {
	statuses := lo.Uniq(lo.Map(records, func(u feed.Update, _ int) string {
		return u.Status
	}))
	sort.Strings(statuses)

	f := Facets{Statuses: statuses}
	for _, r := range records {
		if f.MinDate.IsZero() || r.PublishedAt.Before(f.MinDate) {
			f.MinDate = r.PublishedAt
		}
		if r.PublishedAt.After(f.MaxDate) {
			f.MaxDate = r.PublishedAt
		}
	}
	return f
}
