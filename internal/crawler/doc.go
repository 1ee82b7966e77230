// Package crawler provides same-host page discovery for site-wide audits.
//
// # Architecture
//
// The package is designed around the Spider type, which coordinates the
// discovery process. It uses a work queue to manage URLs to visit and
// respects depth limits and politeness settings.
//
// Design decision: We implement our own crawler rather than using a
// third-party library because:
//  1. Discovery must go through the fetch client so target validation applies
//  2. We need tight control over request timing to stay polite
//  3. The SEO parser already extracts the links and metadata we need
//  4. Reduces external dependencies
//
// # Politeness
//
// The crawler is designed to be polite:
//   - Delays between requests (configurable)
//   - Respects max depth and max page settings
//   - Follows only same-host links
//   - Glob patterns can exclude sections like /admin/* or *.pdf
//
// # Usage
//
//	spider := crawler.NewSpider(client, crawler.WithMaxDepth(2))
//	pages, err := spider.Crawl(ctx, "https://example.com")
package crawler
