package browser

import (
	"context"
	"time"
)

// Request is one network request observed while a page loads.
type Request struct {
	// URL is the request URL.
	URL string

	// Kind is the lowercased resource type reported by the browser
	// (document, script, stylesheet, image, font, fetch, xhr, ...).
	// Empty when the browser did not classify the request.
	Kind string

	// Failed reports whether the request was aborted or errored.
	// Failed requests still count toward the total request number.
	Failed bool
}

// NavigationInfo summarizes the main document response of a navigation.
type NavigationInfo struct {
	// TTFB is the time from navigation start to the first byte of the
	// main document response. Zero when the browser reported no timing.
	TTFB time.Duration

	// ContentEncoding is the Content-Encoding header of the main
	// document response, lowercased. Empty when absent.
	ContentEncoding string

	// Status is the HTTP status code of the main document response.
	Status int
}

// Page is a single browser tab.
//
// Design decision: We use an interface rather than exposing chromedp
// contexts because:
//  1. The performance analyzer can be tested with a fake page
//  2. Request observation and navigation stay bundled together
//  3. Swapping the CDP library later only touches this package
type Page interface {
	// Navigate loads url, waits for the page to settle, and returns the
	// main document response summary. Network requests observed during
	// the load are available from Requests afterwards.
	Navigate(ctx context.Context, url string) (*NavigationInfo, error)

	// Requests returns the network requests observed during the most
	// recent Navigate call, in arrival order.
	Requests() []Request

	// EvalInt evaluates a JavaScript expression in the page and returns
	// its integer result.
	EvalInt(ctx context.Context, expression string) (int, error)

	// Close releases the tab.
	Close() error
}
