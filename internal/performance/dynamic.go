package performance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/useoai/seoscan/internal/browser"
	"github.com/useoai/seoscan/internal/model"
)

// lazyImagesExpr counts images using a deferred-loading mechanism,
// evaluated in the live page so images injected by scripts are seen too.
const lazyImagesExpr = `document.querySelectorAll('img[loading="lazy"], img[data-src], img[data-lazy-src]').length`

// analyzeDynamic builds a profile from a real browser navigation.
// Every network request the page triggered is observed and classified,
// including requests that failed or were aborted mid-load.
func analyzeDynamic(ctx context.Context, page browser.Page, url string) (*model.PerformanceProfile, error) {
	nav, err := page.Navigate(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dynamic navigation failed: %w", err)
	}

	profile := model.NewPerformanceProfile()
	profile.TTFBMs = durationToMs(nav.TTFB)
	profile.GzipEnabled = strings.Contains(nav.ContentEncoding, "gzip")

	for _, req := range page.Requests() {
		profile.AddObservedRequest()
		profile.AddResource(Classify(req.Kind, req.URL))
	}

	// Lazy-image detection is best effort: an evaluation failure leaves
	// the flag false rather than failing the whole analysis.
	if n, evalErr := page.EvalInt(ctx, lazyImagesExpr); evalErr == nil && n > 0 {
		profile.LazyLoadedImages = true
	}

	return profile, nil
}

// durationToMs converts a latency to whole milliseconds, rounding
// sub-millisecond measurements up so a real measurement is never
// confused with the 0 "unmeasured" sentinel.
func durationToMs(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	ms := int(d.Milliseconds())
	if ms == 0 {
		ms = 1
	}
	return ms
}
