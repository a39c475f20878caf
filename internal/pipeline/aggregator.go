package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"azure-watch/updates/internal/cache"
	"azure-watch/updates/internal/feed"
	"azure-watch/updates/internal/source"
	"azure-watch/updates/internal/status"
)

// Aggregator orchestrates one render pass: get-or-fetch through the
// TTL cache, optional status re-validation, dedup, sort, filter. It
// owns the cache so the payload memoization is explicit state rather
// than a process-wide decorator.
type Aggregator struct {
	src        source.Source
	cache      *cache.Cache[[]feed.Update]
	ttl        time.Duration
	revalidate bool
}

// Result is the outbound view of one pass: the ordered records plus
// aggregate counts for the rendering layer.
type Result struct {
	Items         []feed.Update `json:"items"`
	TotalFound    int           `json:"total_found"`
	TotalFiltered int           `json:"total_filtered"`
	// Empty flags the informational zero-entries state, as opposed to
	// a failed fetch which surfaces as an error.
	Empty     bool `json:"empty"`
	FromCache bool `json:"from_cache"`
}

// NewAggregator wires a source to a fresh cache. When revalidate is
// set, every pass recomputes record statuses client-side instead of
// trusting what the source derived, which guards against pre-filtered
// feeds drifting.
func NewAggregator(src source.Source, ttl time.Duration, revalidate bool) *Aggregator {
	return &Aggregator{
		src:        src,
		cache:      cache.New[[]feed.Update](),
		ttl:        ttl,
		revalidate: revalidate,
	}
}

// Run executes one pass and applies the caller's filter. Fetch errors
// are fatal to the pass and come back unwrapped; zero extracted
// entries is not an error and sets Result.Empty.
func (a *Aggregator) Run(ctx context.Context, f Filter) (Result, error) {
	records, fromCache, err := a.snapshot(ctx)
	if err != nil {
		return Result{}, err
	}

	filtered := f.Apply(records)
	return Result{
		Items:         filtered,
		TotalFound:    len(records),
		TotalFiltered: len(filtered),
		Empty:         len(records) == 0,
		FromCache:     fromCache,
	}, nil
}

// Facets computes filter-control facets over the current deduped,
// sorted record set.
func (a *Aggregator) Facets(ctx context.Context) (Facets, error) {
	records, _, err := a.snapshot(ctx)
	if err != nil {
		return Facets{}, err
	}
	return BuildFacets(records), nil
}

// Snapshot returns the deduped, sorted record set of the current pass,
// for archival.
func (a *Aggregator) Snapshot(ctx context.Context) ([]feed.Update, error) {
	records, _, err := a.snapshot(ctx)
	return records, err
}

// Refresh invalidates the cached payload so the next pass refetches.
func (a *Aggregator) Refresh() {
	log.Debug().Str("source", a.src.Name()).Msg("Invalidating cached payload")
	a.cache.Invalidate(a.src.Name())
}

// SourceName identifies the acquisition strategy behind this
// aggregator.
func (a *Aggregator) SourceName() string {
	return a.src.Name()
}

func (a *Aggregator) snapshot(ctx context.Context) ([]feed.Update, bool, error) {
	records, fromCache, err := a.cache.GetOrFetch(ctx, a.src.Name(), a.ttl, func(ctx context.Context) ([]feed.Update, error) {
		records, err := a.src.Fetch(ctx)
		if errors.Is(err, feed.ErrNoUpdates) {
			// Informational: the empty state is cached and rendered,
			// not treated as a failed pass.
			return nil, nil
		}
		return records, err
	})
	if err != nil {
		return nil, false, err
	}
	if a.revalidate {
		records = reclassify(records)
	}
	return SortByDate(Dedup(records)), fromCache, nil
}

// reclassify returns a copy with every status recomputed from the
// record's own fields.
func reclassify(records []feed.Update) []feed.Update {
	out := make([]feed.Update, len(records))
	for i, r := range records {
		r.Status = status.Classify(r.Title, r.Description, r.Tags)
		out[i] = r
	}
	return out
}
