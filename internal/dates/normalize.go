// Package dates normalizes the heterogeneous date representations found
// in feed entries and scraped markup into a single UTC instant.
package dates

import (
	"strings"
	"time"
)

// Epoch is the well-known fallback instant; records carrying it sort
// after everything with a real date.
var Epoch = time.Unix(0, 0).UTC()

// Fallback selects what Normalize returns when no candidate parses.
type Fallback int

const (
	// FallbackEpoch returns the Unix epoch so the item sorts last.
	FallbackEpoch Fallback = iota
	// FallbackNow returns the current instant.
	FallbackNow
)

// ParseFallback maps a configuration string to a Fallback policy.
// Anything other than "now" resolves to the epoch policy.
func ParseFallback(s string) Fallback {
	if strings.EqualFold(strings.TrimSpace(s), "now") {
		return FallbackNow
	}
	return FallbackEpoch
}

// Time returns the fallback instant for the policy.
func (f Fallback) Time() time.Time {
	if f == FallbackNow {
		return time.Now().UTC()
	}
	return Epoch
}

// isoLayouts cover ISO-8601 strings, with or without an offset. A
// trailing literal Z parses as UTC via RFC3339.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// textLayouts cover the free-text date shapes seen on the updates page,
// tried in order. A layout must consume the whole string to win.
var textLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2006",
	"Jan 2006",
	"2006-01-02",
}

// Normalize resolves an ordered set of raw date candidates to a UTC
// instant. A structured time wins outright; otherwise each text is
// tried as ISO-8601 and then against the free-text layouts. It never
// fails: when nothing parses, the fallback policy decides the result.
func Normalize(parsed *time.Time, texts []string, fb Fallback) time.Time {
	if parsed != nil && !parsed.IsZero() {
		return parsed.UTC()
	}

	for _, raw := range texts {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
		for _, layout := range textLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
	}

	return fb.Time()
}
