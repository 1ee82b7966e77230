// Package performance produces the resource-usage profile of a page.
//
// Analysis prefers the dynamic path (a headless browser observing real
// network requests) and degrades gracefully: if the browser is
// unavailable or fails, the page HTML is parsed statically; if that
// fails too, a zeroed default profile is returned. The only error the
// analyzer surfaces is URL validation failure, which happens before any
// network I/O.
package performance
