package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGetOrFetchCachesWithinTTL(t *testing.T) {
	c := New[int]()

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	}

	ctx := context.Background()
	v, fromCache, err := c.GetOrFetch(ctx, "k", time.Hour, fetch)
	if err != nil || v != 42 || fromCache {
		t.Fatalf("first call: v=%d fromCache=%v err=%v", v, fromCache, err)
	}

	v, fromCache, err = c.GetOrFetch(ctx, "k", time.Hour, fetch)
	if err != nil || v != 42 || !fromCache {
		t.Fatalf("second call: v=%d fromCache=%v err=%v", v, fromCache, err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", calls)
	}
}

func TestGetOrFetchExpires(t *testing.T) {
	c := New[string]()

	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		return "payload", nil
	}

	ctx := context.Background()
	c.GetOrFetch(ctx, "k", 30*time.Minute, fetch)

	current = current.Add(31 * time.Minute)
	c.GetOrFetch(ctx, "k", 30*time.Minute, fetch)

	if calls != 2 {
		t.Fatalf("expected refetch after TTL expiry, got %d fetches", calls)
	}
}

func TestGetOrFetchErrorNotCached(t *testing.T) {
	c := New[int]()

	boom := errors.New("boom")
	calls := 0
	ctx := context.Background()

	_, _, err := c.GetOrFetch(ctx, "k", time.Hour, func(ctx context.Context) (int, error) {
		calls++
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error back, got %v", err)
	}

	v, _, err := c.GetOrFetch(ctx, "k", time.Hour, func(ctx context.Context) (int, error) {
		calls++
		return 7, nil
	})
	if err != nil || v != 7 {
		t.Fatalf("expected successful refetch, v=%d err=%v", v, err)
	}
	if calls != 2 {
		t.Fatalf("failed fetch must not be cached, got %d calls", calls)
	}
}

func TestInvalidate(t *testing.T) {
	c := New[int]()

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	ctx := context.Background()
	c.GetOrFetch(ctx, "k", time.Hour, fetch)
	c.Invalidate("k")

	v, fromCache, _ := c.GetOrFetch(ctx, "k", time.Hour, fetch)
	if fromCache || v != 2 {
		t.Fatalf("expected refetch after invalidation, v=%d fromCache=%v", v, fromCache)
	}

	// Invalidating a key that is not cached is a no-op.
	c.Invalidate("missing")
}
