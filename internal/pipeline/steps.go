package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/useoai/seoscan/internal/config"
	"github.com/useoai/seoscan/internal/fetch"
	"github.com/useoai/seoscan/internal/model"
	"github.com/useoai/seoscan/internal/performance"
	"github.com/useoai/seoscan/internal/seo"
)

// PageParseStep fetches the page and extracts the on-page SEO data.
// This step is the foundation for the audit: the checks, link check,
// and recommendations all operate on what it collects.
//
// Design decision: Page parsing is a separate step because:
// 1. It's the only step whose failure is critical (no page, no audit)
// 2. Results feed every subsequent step
// 3. It keeps fetching concerns out of the check logic
type PageParseStep struct {
	// client fetches the page HTML.
	client *fetch.Client

	// logger for structured logging.
	logger *slog.Logger
}

// PageParseStepOption configures a PageParseStep.
type PageParseStepOption func(*PageParseStep)

// WithPageParseLogger sets a custom logger for the page parse step.
func WithPageParseLogger(logger *slog.Logger) PageParseStepOption {
	return func(s *PageParseStep) {
		s.logger = logger
	}
}

// NewPageParseStep creates a new page parsing step.
func NewPageParseStep(client *fetch.Client, opts ...PageParseStepOption) *PageParseStep {
	s := &PageParseStep{
		client: client,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PageParseStep) Name() string {
	return "page_parse"
}

// Do executes the page parse step.
// A fetch or parse failure is critical: without the page there is
// nothing to audit.
func (s *PageParseStep) Do(ctx context.Context, report *model.AuditReport) error {
	resp, err := s.client.Get(ctx, report.URL)
	if err != nil {
		return fmt.Errorf("page fetch failed: %w", err)
	}

	page, err := seo.ParsePage(report.URL, resp.StatusCode, resp.Body)
	if err != nil {
		return fmt.Errorf("page parse failed: %w", err)
	}
	report.Page = page

	seo.CheckPage(report, page)

	s.logger.Info("page parsed",
		"url", report.URL,
		"status", resp.StatusCode,
		"internal_links", len(page.InternalLinks),
		"external_links", len(page.ExternalLinks),
	)

	return nil
}

// PerformanceStep runs the performance analyzer and evaluates the
// resulting profile against the configured thresholds.
//
// Design decision: Performance analysis is a separate step because:
// 1. It has its own degradation logic (dynamic, static, default)
// 2. It may hold a browser slot for seconds; keeping it isolated makes
//    the cost visible in the step log
// 3. Can be disabled for markup-only audits
type PerformanceStep struct {
	// analyzer produces the profile.
	analyzer *performance.Analyzer

	// limits are the thresholds that turn numbers into findings.
	limits seo.PerformanceThresholds

	// logger for structured logging.
	logger *slog.Logger
}

// PerformanceStepOption configures a PerformanceStep.
type PerformanceStepOption func(*PerformanceStep)

// WithPerformanceThresholds sets the finding thresholds.
func WithPerformanceThresholds(limits seo.PerformanceThresholds) PerformanceStepOption {
	return func(s *PerformanceStep) {
		s.limits = limits
	}
}

// WithPerformanceLogger sets a custom logger for the performance step.
func WithPerformanceLogger(logger *slog.Logger) PerformanceStepOption {
	return func(s *PerformanceStep) {
		s.logger = logger
	}
}

// NewPerformanceStep creates a new performance analysis step.
func NewPerformanceStep(analyzer *performance.Analyzer, opts ...PerformanceStepOption) *PerformanceStep {
	s := &PerformanceStep{
		analyzer: analyzer,
		limits: seo.PerformanceThresholds{
			TTFBMs:        config.DefaultTTFBThresholdMs,
			ResourceCount: config.DefaultResourceCountThreshold,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PerformanceStep) Name() string {
	return "performance_analysis"
}

// Do executes the performance analysis step.
// The analyzer degrades internally; the only error it can surface is
// URL validation, which the audit command already performed, so a
// failure here is genuinely critical.
func (s *PerformanceStep) Do(ctx context.Context, report *model.AuditReport) error {
	res, err := s.analyzer.Analyze(ctx, report.URL)
	if err != nil {
		return fmt.Errorf("performance analysis rejected url: %w", err)
	}

	report.Performance = res.Profile
	report.PerformancePath = res.Path

	seo.CheckPerformance(report, res.Profile, res.Path, s.limits)

	s.logger.Info("performance analyzed",
		"url", report.URL,
		"path", res.Path,
		"ttfb_ms", res.Profile.TTFBMs,
		"resources", res.Profile.ResourceCount,
	)

	return nil
}

// LinkCheckStep probes the page's outgoing links for breakage.
//
// Design decision: Link checking is separate because:
// 1. It's the slowest step (one probe per link) and users may skip it
// 2. It needs the parsed page but nothing from performance analysis
// 3. Its failures are per-link data, never a step error
type LinkCheckStep struct {
	// checker performs the probes.
	checker *seo.LinkChecker

	// logger for structured logging.
	logger *slog.Logger
}

// LinkCheckStepOption configures a LinkCheckStep.
type LinkCheckStepOption func(*LinkCheckStep)

// WithLinkCheckLogger sets a custom logger for the link check step.
func WithLinkCheckLogger(logger *slog.Logger) LinkCheckStepOption {
	return func(s *LinkCheckStep) {
		s.logger = logger
	}
}

// NewLinkCheckStep creates a new link checking step.
func NewLinkCheckStep(checker *seo.LinkChecker, opts ...LinkCheckStepOption) *LinkCheckStep {
	s := &LinkCheckStep{
		checker: checker,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *LinkCheckStep) Name() string {
	return "link_check"
}

// Do executes the link check step.
func (s *LinkCheckStep) Do(ctx context.Context, report *model.AuditReport) error {
	if report.Page == nil {
		s.logger.Debug("skipping link check, no page parsed")
		return nil
	}

	report.BrokenLinks = s.checker.Check(ctx, report.Page.Links())
	seo.CheckBrokenLinks(report)

	s.logger.Info("links checked",
		"url", report.URL,
		"checked", len(report.Page.Links()),
		"broken", len(report.BrokenLinks),
	)

	return nil
}

// RecommendStep turns the accumulated findings into the remediation list.
// It must run last so every finding source has contributed.
type RecommendStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// RecommendStepOption configures a RecommendStep.
type RecommendStepOption func(*RecommendStep)

// WithRecommendLogger sets a custom logger for the recommendation step.
func WithRecommendLogger(logger *slog.Logger) RecommendStepOption {
	return func(s *RecommendStep) {
		s.logger = logger
	}
}

// NewRecommendStep creates a new recommendation step.
func NewRecommendStep(opts ...RecommendStepOption) *RecommendStep {
	s := &RecommendStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *RecommendStep) Name() string {
	return "recommendations"
}

// Do executes the recommendation step.
func (s *RecommendStep) Do(_ context.Context, report *model.AuditReport) error {
	report.Recommendations = seo.Recommend(report)

	s.logger.Info("recommendations generated",
		"url", report.URL,
		"count", len(report.Recommendations),
	)

	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// DisableLinkCheck skips the broken-link probe step.
	DisableLinkCheck bool

	// MaxLinkChecks caps the number of links probed per page.
	MaxLinkChecks int

	// LinkCheckConcurrency bounds parallel link probes.
	LinkCheckConcurrency int

	// TTFBThresholdMs is the slow-TTFB finding threshold.
	TTFBThresholdMs int

	// ResourceCountThreshold is the heavy-page finding threshold.
	ResourceCountThreshold int
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineDisableLinkCheck skips the link check step.
func WithPipelineDisableLinkCheck(disable bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DisableLinkCheck = disable
	}
}

// WithPipelineMaxLinkChecks caps the number of links probed per page.
func WithPipelineMaxLinkChecks(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxLinkChecks = n
	}
}

// WithPipelineLinkCheckConcurrency bounds parallel link probes.
func WithPipelineLinkCheckConcurrency(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.LinkCheckConcurrency = n
	}
}

// WithPipelineTTFBThreshold sets the slow-TTFB threshold in milliseconds.
func WithPipelineTTFBThreshold(ms int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.TTFBThresholdMs = ms
	}
}

// WithPipelineResourceCountThreshold sets the heavy-page threshold.
func WithPipelineResourceCountThreshold(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ResourceCountThreshold = n
	}
}

// DefaultPipeline creates a pipeline with all default steps configured.
// This is the standard pipeline for a full site audit.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want all checks
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering (recommendations always run last)
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineMaxLinkChecks, etc).
func DefaultPipeline(client *fetch.Client, analyzer *performance.Analyzer, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		MaxLinkChecks:          config.DefaultMaxLinkChecks,
		LinkCheckConcurrency:   config.DefaultLinkCheckConcurrency,
		TTFBThresholdMs:        config.DefaultTTFBThresholdMs,
		ResourceCountThreshold: config.DefaultResourceCountThreshold,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p.AddSteps(
		NewPageParseStep(client),
		NewPerformanceStep(analyzer,
			WithPerformanceThresholds(seo.PerformanceThresholds{
				TTFBMs:        cfg.TTFBThresholdMs,
				ResourceCount: cfg.ResourceCountThreshold,
			}),
		),
	)

	if !cfg.DisableLinkCheck {
		checker := seo.NewLinkChecker(client,
			seo.WithMaxChecks(cfg.MaxLinkChecks),
			seo.WithConcurrency(cfg.LinkCheckConcurrency),
		)
		p.AddStep(NewLinkCheckStep(checker))
	}

	p.AddStep(NewRecommendStep())

	return p
}
