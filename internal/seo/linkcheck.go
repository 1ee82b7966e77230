package seo

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/useoai/seoscan/internal/fetch"
)

// LinkChecker probes outgoing links and reports the broken ones.
//
// Design decision: We use HEAD requests rather than GET because only the
// status matters and many pages link to large downloads. Servers that
// reject HEAD (405) get one GET retry before being judged.
type LinkChecker struct {
	// client performs the HTTP probes.
	client *fetch.Client

	// maxChecks caps how many links are probed per page.
	maxChecks int

	// concurrency bounds the number of parallel probes.
	concurrency int

	// logger records probe failures.
	logger *slog.Logger
}

// LinkCheckerOption configures a LinkChecker.
type LinkCheckerOption func(*LinkChecker)

// WithMaxChecks caps the number of links probed per page.
func WithMaxChecks(n int) LinkCheckerOption {
	return func(c *LinkChecker) {
		c.maxChecks = n
	}
}

// WithConcurrency bounds parallel probes.
func WithConcurrency(n int) LinkCheckerOption {
	return func(c *LinkChecker) {
		c.concurrency = n
	}
}

// WithCheckerLogger sets a custom logger.
func WithCheckerLogger(l *slog.Logger) LinkCheckerOption {
	return func(c *LinkChecker) {
		c.logger = l
	}
}

// NewLinkChecker creates a LinkChecker using the given client.
func NewLinkChecker(client *fetch.Client, opts ...LinkCheckerOption) *LinkChecker {
	c := &LinkChecker{
		client:      client,
		maxChecks:   20,
		concurrency: 5,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Check probes links and returns the broken ones, sorted.
// A link is broken when the probe errors or returns a 4xx/5xx status.
// Input is deduplicated and capped at maxChecks before probing.
func (c *LinkChecker) Check(ctx context.Context, links []string) []string {
	targets := dedupe(links)
	if len(targets) > c.maxChecks {
		targets = targets[:c.maxChecks]
	}

	var (
		mu     sync.Mutex
		broken []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, link := range targets {
		link := link
		g.Go(func() error {
			if !c.alive(gctx, link) {
				mu.Lock()
				broken = append(broken, link)
				mu.Unlock()
			}
			return nil
		})
	}
	// Workers never return errors; broken links are data, not failures.
	_ = g.Wait()

	sort.Strings(broken)
	return broken
}

// alive probes one link, retrying HEAD rejections with a GET.
func (c *LinkChecker) alive(ctx context.Context, link string) bool {
	status, err := c.client.Head(ctx, link)
	if err != nil {
		c.logger.Debug("link probe failed", "url", link, "error", err)
		return false
	}
	if status == http.StatusMethodNotAllowed {
		resp, err := c.client.Get(ctx, link)
		if err != nil {
			return false
		}
		status = resp.StatusCode
	}
	return status < http.StatusBadRequest
}

// dedupe removes duplicates preserving order.
func dedupe(links []string) []string {
	seen := make(map[string]bool, len(links))
	out := make([]string, 0, len(links))
	for _, l := range links {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
