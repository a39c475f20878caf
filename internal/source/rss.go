package source

import (
	"context"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"azure-watch/updates/internal/dates"
	"azure-watch/updates/internal/feed"
	"azure-watch/updates/internal/status"
)

// RSSSource extracts updates from the release-communications RSS feed.
type RSSSource struct {
	client   *Client
	parser   *gofeed.Parser
	feedURL  string
	fallback dates.Fallback

	// fulltext enables best-effort retrieval of the linked page when a
	// feed entry has neither content nor summary.
	fulltext bool
}

// NewRSSSource builds an RSS source over the given feed URL.
func NewRSSSource(client *Client, feedURL string, fallback dates.Fallback, fulltext bool) *RSSSource {
	return &RSSSource{
		client:   client,
		parser:   gofeed.NewParser(),
		feedURL:  feedURL,
		fallback: fallback,
		fulltext: fulltext,
	}
}

func (s *RSSSource) Name() string { return "rss" }

// Fetch downloads and parses the feed. A single malformed entry is
// skipped; only a failed fetch or an unparsable document fails the pass.
func (s *RSSSource) Fetch(ctx context.Context) ([]feed.Update, error) {
	body, err := s.client.Get(ctx, s.feedURL)
	if err != nil {
		return nil, err
	}

	parsed, err := s.parser.ParseString(string(body))
	if err != nil {
		return nil, &feed.TransportError{URL: s.feedURL, Err: err}
	}

	updates := make([]feed.Update, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		u, ok := s.itemToUpdate(ctx, item)
		if !ok {
			log.Debug().Str("title", item.Title).Msg("Skipping feed entry without viable fields")
			continue
		}
		updates = append(updates, u)
	}
	if len(updates) == 0 {
		return nil, feed.ErrNoUpdates
	}
	return updates, nil
}

func (s *RSSSource) itemToUpdate(ctx context.Context, item *gofeed.Item) (feed.Update, bool) {
	link := item.Link
	if link == "" {
		link = item.GUID
	}

	u := feed.Update{
		Title: strings.TrimSpace(item.Title),
		Link:  link,
		Tags:  feed.UniqueTags(item.Categories),
	}
	if !u.Viable() {
		return feed.Update{}, false
	}

	structured := item.PublishedParsed
	if structured == nil {
		structured = item.UpdatedParsed
	}
	u.PublishedAt = dates.Normalize(structured, []string{item.Published, item.Updated}, s.fallback)

	u.Description = s.description(ctx, item)
	u.Status = status.Classify(u.Title, u.Description, u.Tags)

	return u, true
}

// description prefers the full content field over the short summary.
// When both are empty and fulltext retrieval is enabled, the linked
// page is fetched and run through the extraction strategies. Failures
// here degrade to an empty description, never to an error.
func (s *RSSSource) description(ctx context.Context, item *gofeed.Item) string {
	if strings.TrimSpace(item.Content) != "" {
		return item.Content
	}
	if strings.TrimSpace(item.Description) != "" {
		return item.Description
	}

	if !s.fulltext || item.Link == "" {
		return ""
	}

	page, err := s.client.Get(ctx, item.Link)
	if err != nil {
		log.Debug().Err(err).Str("link", item.Link).Msg("Full-text page fetch failed")
		return ""
	}
	return ExtractFulltext(string(page), item.Link)
}
