package source_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"azure-watch/updates/internal/dates"
	"azure-watch/updates/internal/feed"
	"azure-watch/updates/internal/source"
	"azure-watch/updates/internal/status"
)

const feedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
<title>Azure updates</title>
<item>
  <title>[Launched] Azure Widget GA</title>
  <link>https://azure.microsoft.com/en-us/updates/widget-ga/</link>
  <pubDate>Mon, 15 Jan 2024 10:00:00 GMT</pubDate>
  <category>Compute</category>
  <category>Compute</category>
  <category>Storage</category>
  <description>Short summary</description>
  <content:encoded><![CDATA[<p>Full body text</p>]]></content:encoded>
</item>
<item>
  <title>abc</title>
  <link>https://azure.microsoft.com/en-us/updates/too-short/</link>
</item>
<item>
  <title>Undated update entry</title>
  <link>https://azure.microsoft.com/en-us/updates/undated/</link>
  <description>No date on this one</description>
</item>
</channel>
</rss>`

func newRSSFixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feedFixture))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRSSFetch(t *testing.T) {
	srv := newRSSFixtureServer(t)

	client := source.NewClient(5*time.Second, "test-agent")
	src := source.NewRSSSource(client, srv.URL, dates.FallbackEpoch, false)

	updates, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The 3-character title fails the minimum viable field set.
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}

	got := updates[0]
	if got.Title != "[Launched] Azure Widget GA" {
		t.Fatalf("unexpected title %q", got.Title)
	}
	if got.Status != status.Launched {
		t.Fatalf("expected status %q, got %q", status.Launched, got.Status)
	}
	want := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	if !got.PublishedAt.Equal(want) {
		t.Fatalf("expected published at %v, got %v", want, got.PublishedAt)
	}
	if got.Description != "<p>Full body text</p>" {
		t.Fatalf("expected full content over summary, got %q", got.Description)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "Compute" || got.Tags[1] != "Storage" {
		t.Fatalf("expected deduplicated tags in order, got %v", got.Tags)
	}
}

func TestRSSFetchUndatedEntryFallsBackToEpoch(t *testing.T) {
	srv := newRSSFixtureServer(t)

	client := source.NewClient(5*time.Second, "test-agent")
	src := source.NewRSSSource(client, srv.URL, dates.FallbackEpoch, false)

	updates, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	undated := updates[len(updates)-1]
	if undated.Title != "Undated update entry" {
		t.Fatalf("unexpected record order: %q", undated.Title)
	}
	if !undated.PublishedAt.Equal(dates.Epoch) {
		t.Fatalf("expected epoch fallback, got %v", undated.PublishedAt)
	}
}

func TestRSSFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	client := source.NewClient(5*time.Second, "test-agent")
	src := source.NewRSSSource(client, srv.URL, dates.FallbackEpoch, false)

	_, err := src.Fetch(context.Background())

	var transport *feed.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transport.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", transport.StatusCode)
	}
}

func TestClientSendsUserAgent(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(feedFixture))
	}))
	t.Cleanup(srv.Close)

	client := source.NewClient(5*time.Second, "azure-watch-updates/1.0")
	src := source.NewRSSSource(client, srv.URL, dates.FallbackEpoch, false)

	if _, err := src.Fetch(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAgent != "azure-watch-updates/1.0" {
		t.Fatalf("expected custom user agent, got %q", gotAgent)
	}
}
