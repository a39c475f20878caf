// Package status derives a release-stage label for an update from its
// title, description and feed categories.
package status

import (
	"regexp"
	"strings"
)

// Known release-stage labels.
const (
	Launched           = "Launched"
	GenerallyAvailable = "Generally Available"
	PublicPreview      = "Public Preview"
	PrivatePreview     = "Private Preview"
	Available          = "Available"
	Retired            = "Retired"
	Default            = "Update"
)

const launchedPrefix = "[launched]"

// rules map title+description phrases to labels. Order matters: the
// first matching pattern wins, so the more specific phrases come first.
var rules = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`(?i)\b(generally available|ga)\b`), GenerallyAvailable},
	{regexp.MustCompile(`(?i)\bpublic preview\b`), PublicPreview},
	{regexp.MustCompile(`(?i)\bprivate preview\b`), PrivatePreview},
	{regexp.MustCompile(`(?i)\blaunch(ed)?\b`), Launched},
	{regexp.MustCompile(`(?i)\bavailable\b`), Available},
	{regexp.MustCompile(`(?i)\b(retired?|retirement)\b`), Retired},
}

// Classify returns the release-stage label for an update. It is a pure
// function of its inputs and always returns a label:
//
//  1. a "[Launched]" title prefix wins outright;
//  2. then a tag whose normalized term equals "launched";
//  3. then the ordered phrase table over title and description;
//  4. otherwise the generic Default label.
func Classify(title, description string, tags []string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(title)), launchedPrefix) {
		return Launched
	}

	for _, tag := range tags {
		if strings.EqualFold(strings.TrimSpace(tag), "launched") {
			return Launched
		}
	}

	haystack := title + " " + description
	for _, r := range rules {
		if r.re.MatchString(haystack) {
			return r.label
		}
	}

	return Default
}

// Labels returns every label Classify can produce, in rule order.
func Labels() []string {
	return []string{Launched, GenerallyAvailable, PublicPreview, PrivatePreview, Available, Retired, Default}
}
