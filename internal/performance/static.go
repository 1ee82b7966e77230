package performance

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/useoai/seoscan/internal/fetch"
	"github.com/useoai/seoscan/internal/model"
)

// lazyImageSelector matches images using a deferred-loading mechanism,
// either the native loading attribute or the data-src convention used
// by lazy-loading libraries.
const lazyImageSelector = `img[loading="lazy"], img[data-src], img[data-lazy-src]`

// analyzeStatic builds a profile from a single HTML fetch.
//
// The static path sees only what is declared in the markup: external
// scripts, stylesheet links, image tags, and font preloads. It cannot
// observe script-initiated requests, so FetchRequestsCount and
// TotalRequests are always 0 here.
func analyzeStatic(ctx context.Context, client *fetch.Client, url string) (*model.PerformanceProfile, error) {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("static fetch failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("html parse failed: %w", err)
	}

	profile := model.NewPerformanceProfile()
	profile.TTFBMs = durationToMs(resp.TTFB)
	profile.GzipEnabled = resp.GzipEnabled

	doc.Find("script[src]").Each(func(int, *goquery.Selection) {
		profile.AddResource(model.TypeScript)
	})
	doc.Find(`link[rel="stylesheet"]`).Each(func(int, *goquery.Selection) {
		profile.AddResource(model.TypeStylesheet)
	})
	doc.Find("img").Each(func(int, *goquery.Selection) {
		profile.AddResource(model.TypeImage)
	})
	doc.Find(`link[rel="preload"][as="font"]`).Each(func(int, *goquery.Selection) {
		profile.AddResource(model.TypeFont)
	})

	profile.LazyLoadedImages = doc.Find(lazyImageSelector).Length() > 0

	return profile, nil
}
