package performance

import (
	"context"
	"log/slog"

	"github.com/useoai/seoscan/internal/browser"
	"github.com/useoai/seoscan/internal/fetch"
	"github.com/useoai/seoscan/internal/model"
)

// Result is a profile together with the path that produced it.
// The profile shape is identical on every path; callers that care
// whether the numbers came from a real browser check Path.
type Result struct {
	// Profile is the resource-usage profile. Never nil.
	Profile *model.PerformanceProfile

	// Path is model.PathDynamic, model.PathStatic, or model.PathNone.
	Path string
}

// Analyzer runs performance analysis with graceful degradation.
//
// Design decision: Degradation is the analyzer's job, not the caller's.
// The dynamic path fails for environmental reasons (no Chrome, headless
// launch blocked, navigation timeout) that say nothing about the target
// site, so falling back to static parsing inside Analyze keeps every
// caller's error handling to a single validation check.
type Analyzer struct {
	// validator rejects bad URLs before any network I/O.
	validator *fetch.Validator

	// client serves the static path.
	client *fetch.Client

	// pool hands out browser pages for the dynamic path.
	// Nil disables dynamic analysis entirely.
	pool *browser.Pool

	// logger records which path ran and why fallbacks happened.
	logger *slog.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithValidator sets the URL validator.
func WithValidator(v *fetch.Validator) AnalyzerOption {
	return func(a *Analyzer) {
		a.validator = v
	}
}

// WithClient sets the HTTP client for the static path.
func WithClient(c *fetch.Client) AnalyzerOption {
	return func(a *Analyzer) {
		a.client = c
	}
}

// WithPool enables the dynamic path using the given browser pool.
// Without a pool the analyzer goes straight to static parsing.
func WithPool(p *browser.Pool) AnalyzerOption {
	return func(a *Analyzer) {
		a.pool = p
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// NewAnalyzer creates an Analyzer with the given options.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	if a.validator == nil {
		a.validator = fetch.NewValidator()
	}
	if a.client == nil {
		a.client = fetch.NewClient()
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Analyze produces the performance profile for rawURL.
//
// The returned error is non-nil only for URL validation failures, which
// are detected before any fetch, navigation, or pool acquisition. Every
// downstream failure degrades instead: dynamic analysis falls back to
// static parsing, and if that fails too the default zeroed profile is
// returned with Path set to model.PathNone.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (*Result, error) {
	url, err := a.validator.Validate(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if a.pool != nil {
		profile, dynErr := a.analyzeDynamic(ctx, url)
		if dynErr == nil {
			return &Result{Profile: profile, Path: model.PathDynamic}, nil
		}
		a.logger.Warn("dynamic analysis failed, falling back to static",
			"url", url,
			"error", dynErr,
		)
	}

	profile, statErr := analyzeStatic(ctx, a.client, url)
	if statErr == nil {
		return &Result{Profile: profile, Path: model.PathStatic}, nil
	}
	a.logger.Warn("static analysis failed, returning default profile",
		"url", url,
		"error", statErr,
	)

	return &Result{Profile: model.DefaultPerformanceProfile(), Path: model.PathNone}, nil
}

// analyzeDynamic acquires a page from the pool and runs the browser path.
func (a *Analyzer) analyzeDynamic(ctx context.Context, url string) (*model.PerformanceProfile, error) {
	page, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer a.pool.Release(page)

	return analyzeDynamic(ctx, page, url)
}
