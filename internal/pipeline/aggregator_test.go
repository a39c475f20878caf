package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"azure-watch/updates/internal/feed"
	"azure-watch/updates/internal/pipeline"
	"azure-watch/updates/internal/status"
)

// stubSource counts fetches so cache behavior is observable.
type stubSource struct {
	records []feed.Update
	err     error
	fetches int
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Fetch(ctx context.Context) ([]feed.Update, error) {
	s.fetches++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func TestAggregatorRunCountsAndOrder(t *testing.T) {
	src := &stubSource{records: []feed.Update{
		{Title: "older launch", Link: "l1", Status: status.Launched, PublishedAt: day(1)},
		{Title: "newer launch", Link: "l2", Status: status.Launched, PublishedAt: day(9)},
		{Title: "dup of older", Link: "l1", Status: status.Launched, PublishedAt: day(1)},
		{Title: "a retired item", Link: "l3", Status: status.Retired, PublishedAt: day(5)},
	}}
	agg := pipeline.NewAggregator(src, time.Hour, false)

	result, err := agg.Run(context.Background(), pipeline.Filter{Statuses: []string{status.Launched}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalFound != 3 {
		t.Fatalf("expected 3 found after dedup, got %d", result.TotalFound)
	}
	if result.TotalFiltered != 2 {
		t.Fatalf("expected 2 after filtering, got %d", result.TotalFiltered)
	}
	if result.Items[0].Title != "newer launch" {
		t.Fatalf("expected newest-first ordering, got %v", titles(result.Items))
	}
	if result.Empty {
		t.Fatal("result must not be flagged empty")
	}
}

func TestAggregatorCachesWithinTTL(t *testing.T) {
	src := &stubSource{records: []feed.Update{{Title: "record", Link: "l"}}}
	agg := pipeline.NewAggregator(src, time.Hour, false)

	ctx := context.Background()
	if _, err := agg.Run(ctx, pipeline.Filter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := agg.Run(ctx, pipeline.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.fetches != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", src.fetches)
	}
	if !result.FromCache {
		t.Fatal("second pass should be served from cache")
	}
}

func TestAggregatorRefreshForcesRefetch(t *testing.T) {
	src := &stubSource{records: []feed.Update{{Title: "record", Link: "l"}}}
	agg := pipeline.NewAggregator(src, time.Hour, false)

	ctx := context.Background()
	agg.Run(ctx, pipeline.Filter{})
	agg.Refresh()
	agg.Run(ctx, pipeline.Filter{})

	if src.fetches != 2 {
		t.Fatalf("expected refetch after Refresh, got %d fetches", src.fetches)
	}
}

func TestAggregatorFetchErrorIsFatal(t *testing.T) {
	wantErr := &feed.TransportError{URL: "https://example.com/feed", StatusCode: 503}
	src := &stubSource{err: wantErr}
	agg := pipeline.NewAggregator(src, time.Hour, false)

	_, err := agg.Run(context.Background(), pipeline.Filter{})

	var transport *feed.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestAggregatorEmptyResultIsInformational(t *testing.T) {
	src := &stubSource{}
	agg := pipeline.NewAggregator(src, time.Hour, false)

	result, err := agg.Run(context.Background(), pipeline.Filter{})
	if err != nil {
		t.Fatalf("zero entries must not be an error, got %v", err)
	}
	if !result.Empty {
		t.Fatal("expected the empty flag on zero entries")
	}
}

func TestAggregatorCachesNoUpdatesSentinel(t *testing.T) {
	src := &stubSource{err: feed.ErrNoUpdates}
	agg := pipeline.NewAggregator(src, time.Hour, false)

	result, err := agg.Run(context.Background(), pipeline.Filter{})
	if err != nil {
		t.Fatalf("the no-updates sentinel must not be an error, got %v", err)
	}
	if !result.Empty {
		t.Fatal("expected the empty flag")
	}

	// The empty state memoizes like any other payload.
	if _, err := agg.Run(context.Background(), pipeline.Filter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.fetches != 1 {
		t.Fatalf("expected the empty state to be cached, got %d fetches", src.fetches)
	}
}

func TestAggregatorRevalidatesStatus(t *testing.T) {
	// The source claims "Launched" but nothing in the record supports
	// it; re-validation must downgrade it to the default label.
	src := &stubSource{records: []feed.Update{
		{Title: "Quiet change", Link: "l", Status: status.Launched},
	}}
	agg := pipeline.NewAggregator(src, time.Hour, true)

	result, err := agg.Run(context.Background(), pipeline.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Items[0].Status != status.Default {
		t.Fatalf("expected re-validated status %q, got %q", status.Default, result.Items[0].Status)
	}
}
