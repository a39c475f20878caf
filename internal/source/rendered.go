package source

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"azure-watch/updates/internal/feed"
)

const renderHint = "ensure a Chrome or Chromium binary is installed and reachable"

// RenderedSource extracts updates from the JavaScript-rendered updates
// page. A headless browser navigates to the page, waits for the update
// links to appear, scrolls to the bottom to force lazy-loaded cards,
// and hands the rendered markup to the static extractor. The waits are
// coarse fixed windows and are not retried on failure.
type RenderedSource struct {
	pageURL      string
	waitSelector string
	timeout      time.Duration
	settle       time.Duration
	extractor    *StaticSource
}

// NewRenderedSource builds a browser-backed source that shares the
// static source's card extraction.
func NewRenderedSource(extractor *StaticSource, pageURL, waitSelector string, timeout, settle time.Duration) *RenderedSource {
	return &RenderedSource{
		pageURL:      pageURL,
		waitSelector: waitSelector,
		timeout:      timeout,
		settle:       settle,
		extractor:    extractor,
	}
}

func (s *RenderedSource) Name() string { return "rendered" }

func (s *RenderedSource) Fetch(ctx context.Context) ([]feed.Update, error) {
	pageHTML, err := s.renderPage(ctx)
	if err != nil {
		return nil, err
	}
	return s.extractor.ExtractFromHTML(pageHTML)
}

func (s *RenderedSource) renderPage(ctx context.Context) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, s.timeout)
	defer cancelRun()

	log.Debug().Str("url", s.pageURL).Dur("timeout", s.timeout).Msg("Rendering page in headless browser")

	var pageHTML string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(s.pageURL),
		chromedp.WaitReady(s.waitSelector, chromedp.ByQuery),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(s.settle),
		chromedp.OuterHTML("html", &pageHTML, chromedp.ByQuery),
	)
	if err != nil {
		return "", &feed.RenderEnvironmentError{Hint: renderHint, Err: err}
	}
	return pageHTML, nil
}
