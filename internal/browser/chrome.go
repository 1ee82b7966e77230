package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// chromeConfig holds settings shared by every tab a Chrome opens.
type chromeConfig struct {
	userAgent         string
	navigationTimeout time.Duration
	settleDelay       time.Duration
}

// ChromeOption configures a Chrome.
type ChromeOption func(*chromeConfig)

// WithUserAgent sets the User-Agent for all tabs.
func WithUserAgent(ua string) ChromeOption {
	return func(c *chromeConfig) {
		c.userAgent = ua
	}
}

// WithNavigationTimeout bounds how long a Navigate call may take,
// settle delay included.
func WithNavigationTimeout(d time.Duration) ChromeOption {
	return func(c *chromeConfig) {
		c.navigationTimeout = d
	}
}

// WithSettleDelay sets how long a page is given after the load event
// for late resources (lazy scripts, analytics beacons) to arrive.
func WithSettleDelay(d time.Duration) ChromeOption {
	return func(c *chromeConfig) {
		c.settleDelay = d
	}
}

// Chrome owns a headless Chrome process allocator and opens tabs in it.
// It implements the PageFactory contract via NewPage.
type Chrome struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	cfg         chromeConfig
}

// NewChrome launches the allocator for a headless Chrome instance.
// The process itself starts lazily with the first tab. Call Close to
// shut everything down.
func NewChrome(ctx context.Context, opts ...ChromeOption) *Chrome {
	cfg := chromeConfig{
		navigationTimeout: 30 * time.Second,
		settleDelay:       1500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
	)
	if cfg.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(cfg.userAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	return &Chrome{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		cfg:         cfg,
	}
}

// NewPage opens a fresh tab. It satisfies PageFactory.
func (c *Chrome) NewPage(_ context.Context) (Page, error) {
	tabCtx, tabCancel := chromedp.NewContext(c.allocCtx)
	return &chromePage{
		ctx:    tabCtx,
		cancel: tabCancel,
		cfg:    c.cfg,
		byID:   make(map[network.RequestID]int),
	}, nil
}

// Close shuts down the Chrome process and all tabs.
func (c *Chrome) Close() {
	c.allocCancel()
}

// chromePage is a Page backed by one chromedp tab.
type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    chromeConfig

	mu       sync.Mutex
	requests []Request
	byID     map[network.RequestID]int
	mainID   network.RequestID
	nav      NavigationInfo
}

// Navigate loads url and records every network request via CDP events.
// It waits for the load event plus the configured settle delay so that
// lazily injected resources are observed too.
func (p *chromePage) Navigate(ctx context.Context, url string) (*NavigationInfo, error) {
	p.mu.Lock()
	p.requests = nil
	p.byID = make(map[network.RequestID]int)
	p.mainID = ""
	p.nav = NavigationInfo{}
	p.mu.Unlock()

	// Events arrive on the tab context for the whole tab lifetime, but
	// the request slice is reset per navigation so only the current load
	// is observed.
	chromedp.ListenTarget(p.ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			p.recordRequest(e)
		case *network.EventResponseReceived:
			p.recordResponse(e)
		case *network.EventLoadingFailed:
			p.recordFailure(e)
		}
	})

	runCtx, cancel := context.WithTimeout(p.ctx, p.cfg.navigationTimeout)
	defer cancel()

	err := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.Sleep(p.cfg.settleDelay),
	)
	if err != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return nil, fmt.Errorf("navigation failed: %w", err)
	}

	p.mu.Lock()
	nav := p.nav
	p.mu.Unlock()
	return &nav, nil
}

func (p *chromePage) recordRequest(e *network.EventRequestWillBeSent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Redirects re-send the same request ID; keep only the first entry.
	if _, seen := p.byID[e.RequestID]; seen {
		return
	}
	if e.Type == network.ResourceTypeDocument && p.mainID == "" {
		p.mainID = e.RequestID
	}
	p.byID[e.RequestID] = len(p.requests)
	p.requests = append(p.requests, Request{
		URL:  e.Request.URL,
		Kind: strings.ToLower(string(e.Type)),
	})
}

func (p *chromePage) recordResponse(e *network.EventResponseReceived) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e.RequestID != p.mainID || e.Response == nil {
		return
	}
	p.nav.Status = int(e.Response.Status)
	p.nav.ContentEncoding = strings.ToLower(headerValue(e.Response.Headers, "content-encoding"))
	if t := e.Response.Timing; t != nil && t.ReceiveHeadersEnd > 0 {
		p.nav.TTFB = time.Duration(t.ReceiveHeadersEnd * float64(time.Millisecond))
	}
}

func (p *chromePage) recordFailure(e *network.EventLoadingFailed) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i, ok := p.byID[e.RequestID]; ok {
		p.requests[i].Failed = true
	}
}

// headerValue looks up a CDP header map case-insensitively.
// Chrome reports header names in whatever case the server sent.
func headerValue(h network.Headers, name string) string {
	for k, v := range h {
		if strings.EqualFold(k, name) {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// Requests returns the network requests observed during the last
// navigation.
func (p *chromePage) Requests() []Request {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Request, len(p.requests))
	copy(out, p.requests)
	return out
}

// EvalInt evaluates expression in the page and returns the result as int.
func (p *chromePage) EvalInt(ctx context.Context, expression string) (int, error) {
	runCtx, cancel := context.WithTimeout(p.ctx, 10*time.Second)
	defer cancel()

	var n int
	if err := chromedp.Run(runCtx, chromedp.Evaluate(expression, &n)); err != nil {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
		return 0, fmt.Errorf("evaluate failed: %w", err)
	}
	return n, nil
}

// Close releases the tab.
func (p *chromePage) Close() error {
	p.cancel()
	return nil
}
