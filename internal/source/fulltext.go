package source

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog/log"
)

// containerVocabulary lists the id/class fragments that mark a likely
// main-content region on the updates detail pages.
var containerVocabulary = []string{"content", "article", "main", "post", "update"}

// ExtractFulltext pulls the main body text out of a fetched detail
// page. Strategies are tried in order: readability extraction, then the
// largest container whose id or class matches the vocabulary, then the
// whole cleaned page as a last resort. Returns "" when nothing useful
// is found.
func ExtractFulltext(pageHTML, pageURL string) string {
	if body := readableBody(pageHTML, pageURL); body != "" {
		return body
	}
	return largestContainerBody(pageHTML)
}

func readableBody(pageHTML, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = nil
	}
	article, err := readability.FromReader(strings.NewReader(pageHTML), parsed)
	if err != nil {
		log.Debug().Err(err).Str("url", pageURL).Msg("Readability extraction failed")
		return ""
	}
	return strings.TrimSpace(article.Content)
}

func largestContainerBody(pageHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return ""
	}

	doc.Find("script, style").Remove()

	var largest string
	doc.Find("article, main, section, div").Each(func(_ int, sel *goquery.Selection) {
		if !matchesVocabulary(sel) {
			return
		}
		if html, err := sel.Html(); err == nil && len(html) > len(largest) {
			largest = html
		}
	})
	if strings.TrimSpace(largest) != "" {
		return largest
	}

	// Last resort: the entire page with scripts and styles stripped.
	if html, err := doc.Html(); err == nil {
		return html
	}
	return ""
}

func matchesVocabulary(sel *goquery.Selection) bool {
	id, _ := sel.Attr("id")
	class, _ := sel.Attr("class")
	haystack := strings.ToLower(id + " " + class)
	for _, word := range containerVocabulary {
		if strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}
