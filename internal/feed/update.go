package feed

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

// PlaceholderTitle is substituted when a source item carries no usable title.
const PlaceholderTitle = "Untitled"

// MinTitleLength is the shortest title an item may have and still be kept.
const MinTitleLength = 5

// Update represents one product-update record extracted from a source.
// Pipeline stages treat records as immutable: filtering, deduplication
// and sorting return new slices instead of mutating in place.
type Update struct {
	Title       string    `json:"title"`
	Link        string    `json:"link,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Status      string    `json:"status"`
	Tags        []string  `json:"tags,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Viable reports whether the record has the minimum field set worth
// keeping: a real title and a link. Items failing this are skipped
// during extraction rather than propagated as errors.
func (u Update) Viable() bool {
	return len(strings.TrimSpace(u.Title)) >= MinTitleLength && u.Link != ""
}

// UniqueTags removes duplicate and blank tag values (case-sensitive
// exact match), preserving first-seen order.
func UniqueTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if s := strings.TrimSpace(t); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return lo.Uniq(cleaned)
}
