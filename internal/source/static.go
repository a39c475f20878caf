package source

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"azure-watch/updates/internal/dates"
	"azure-watch/updates/internal/feed"
	"azure-watch/updates/internal/status"
)

// Selector guesses for the sub-elements of an update card. The markup
// is third-party and changes without notice, so every lookup is a
// best-effort chain with a defined fallback.
const (
	updateAnchorSelector = `a[href*='/updates/']`
	cardMarkerSelector   = `article, li, [class*='card'], [class*='tile'], [class*='item']`
	statusSelector       = `[class*='status'], [class*='badge'], [class*='pill'], [class*='label']`
	tagSelector          = `[class*='tag'], [class*='category'], [class*='product']`
	dateSelector         = `[class*='date'], [class*='published']`
	headingSelector      = "h1, h2, h3, h4"
)

// maxAncestorDepth bounds the walk from an update anchor up to its
// surrounding card when no card marker matches.
const maxAncestorDepth = 4

// freeDateText matches "December 5, 2025" / "Dec 5, 2025" / "December
// 2025" shapes anywhere in a card's visible text.
var freeDateText = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+(\d{1,2},\s*)?\d{4}\b`)

// markupStrategy locates candidate update cards in a parsed page.
// Strategies are ranked: the first one yielding any containers wins,
// which keeps the fallback chain explicit and testable in isolation.
type markupStrategy interface {
	name() string
	cards(doc *goquery.Document) []*goquery.Selection
}

// cardMarkerStrategy starts from anchors pointing into /updates/ and
// takes the nearest ancestor matching a known card marker. Anchors
// outside any recognizable card are left to the next strategy.
type cardMarkerStrategy struct{}

func (cardMarkerStrategy) name() string { return "card-markers" }

func (cardMarkerStrategy) cards(doc *goquery.Document) []*goquery.Selection {
	var out []*goquery.Selection
	doc.Find(updateAnchorSelector).Each(func(_ int, link *goquery.Selection) {
		if card := link.Closest(cardMarkerSelector); card.Length() > 0 {
			out = append(out, card)
		}
	})
	return out
}

// ancestorWalkStrategy climbs a fixed number of ancestor levels from
// each update anchor and treats whatever it lands on as the card. Last
// resort for markup without recognizable card classes.
type ancestorWalkStrategy struct{}

func (ancestorWalkStrategy) name() string { return "ancestor-walk" }

func (ancestorWalkStrategy) cards(doc *goquery.Document) []*goquery.Selection {
	var out []*goquery.Selection
	doc.Find(updateAnchorSelector).Each(func(_ int, link *goquery.Selection) {
		card := link
		for i := 0; i < maxAncestorDepth; i++ {
			parent := card.Parent()
			if parent.Length() == 0 || goquery.NodeName(parent) == "body" {
				break
			}
			card = parent
		}
		if card != link {
			out = append(out, card)
		}
	})
	return out
}

// StaticSource extracts updates from the statically served updates
// page.
type StaticSource struct {
	client     *Client
	pageURL    string
	base       *url.URL
	fallback   dates.Fallback
	strategies []markupStrategy
}

// NewStaticSource builds a static-HTML source over the given page URL.
func NewStaticSource(client *Client, pageURL string, fallback dates.Fallback) *StaticSource {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}
	return &StaticSource{
		client:     client,
		pageURL:    pageURL,
		base:       base,
		fallback:   fallback,
		strategies: []markupStrategy{cardMarkerStrategy{}, ancestorWalkStrategy{}},
	}
}

func (s *StaticSource) Name() string { return "static" }

// Fetch downloads the updates page and extracts card records from it.
func (s *StaticSource) Fetch(ctx context.Context) ([]feed.Update, error) {
	body, err := s.client.Get(ctx, s.pageURL)
	if err != nil {
		return nil, err
	}
	return s.ExtractFromHTML(string(body))
}

// ExtractFromHTML runs the ranked markup strategies over already
// retrieved page markup. The rendered-HTML source reuses it for
// browser output.
func (s *StaticSource) ExtractFromHTML(pageHTML string) ([]feed.Update, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, &feed.TransportError{URL: s.pageURL, Err: err}
	}

	for _, strat := range s.strategies {
		cards := strat.cards(doc)
		if len(cards) == 0 {
			continue
		}
		log.Debug().Str("strategy", strat.name()).Int("cards", len(cards)).Msg("Markup strategy matched")

		updates := make([]feed.Update, 0, len(cards))
		for _, card := range cards {
			if u, ok := s.cardToUpdate(card); ok {
				updates = append(updates, u)
			}
		}
		if len(updates) > 0 {
			return updates, nil
		}
	}

	return nil, feed.ErrNoUpdates
}

// cardToUpdate pulls the update fields out of one card container. A
// missing field degrades to its fallback; only a card without a viable
// title and link is dropped.
func (s *StaticSource) cardToUpdate(card *goquery.Selection) (feed.Update, bool) {
	link := card.Find(updateAnchorSelector).First()

	u := feed.Update{
		Title: cardTitle(card, link),
		Link:  s.resolveHref(link),
		Tags:  cardTags(card),
	}
	if !u.Viable() {
		return feed.Update{}, false
	}

	u.PublishedAt = dates.Normalize(nil, cardDateTexts(card), s.fallback)
	u.Description = strings.TrimSpace(card.Find("p").First().Text())

	statusText := strings.TrimSpace(card.Find(statusSelector).First().Text())
	u.Status = status.Classify(u.Title, strings.TrimSpace(statusText+" "+u.Description), u.Tags)

	return u, true
}

func cardTitle(card, link *goquery.Selection) string {
	if h := strings.TrimSpace(card.Find(headingSelector).First().Text()); h != "" {
		return h
	}
	if t := strings.TrimSpace(link.Text()); t != "" {
		return t
	}
	return feed.PlaceholderTitle
}

// cardDateTexts collects date candidates in preference order: the
// machine-readable datetime attribute of a time element, its visible
// text, a date-classed element, and finally a free-text scan of the
// whole card.
func cardDateTexts(card *goquery.Selection) []string {
	var texts []string

	timeEl := card.Find("time").First()
	if attr, ok := timeEl.Attr("datetime"); ok {
		texts = append(texts, attr)
	}
	texts = append(texts, strings.TrimSpace(timeEl.Text()))
	texts = append(texts, strings.TrimSpace(card.Find(dateSelector).First().Text()))
	texts = append(texts, freeDateText.FindString(card.Text()))

	return texts
}

func cardTags(card *goquery.Selection) []string {
	var tags []string
	card.Find(tagSelector).Each(func(_ int, sel *goquery.Selection) {
		// A wrapper holding individual tag elements is not itself a tag.
		if sel.Find(tagSelector).Length() > 0 {
			return
		}
		tags = append(tags, sel.Text())
	})
	return feed.UniqueTags(tags)
}

func (s *StaticSource) resolveHref(link *goquery.Selection) string {
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return ""
	}
	if s.base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return s.base.ResolveReference(ref).String()
}
