package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/useoai/seoscan/internal/browser"
	"github.com/useoai/seoscan/internal/config"
	"github.com/useoai/seoscan/internal/crawler"
	"github.com/useoai/seoscan/internal/database"
	"github.com/useoai/seoscan/internal/fetch"
	"github.com/useoai/seoscan/internal/log"
	"github.com/useoai/seoscan/internal/model"
	"github.com/useoai/seoscan/internal/performance"
	"github.com/useoai/seoscan/internal/pipeline"
	"github.com/useoai/seoscan/internal/report"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [url]",
		Short: "Audit a website for SEO issues",
		Long: `Audit fetches a page, analyzes it, and reports prioritized SEO findings.

Each audit covers:
- On-page SEO rules (title, meta description, headings, alt text, canonical)
- Loading performance (TTFB, resource counts, compression, lazy loading)
- Broken outgoing links

Performance analysis uses a headless browser when available and falls back
to static HTML parsing when it isn't.

Examples:
  # Audit a single site
  seoscan audit https://example.com

  # Audit multiple sites concurrently
  seoscan audit site1.example site2.example site3.example

  # Static analysis only (no headless browser)
  seoscan audit --no-browser https://example.com

  # Discover and audit linked pages on the same host
  seoscan audit --crawl --depth 2 https://example.com

  # Output JSON report to a file
  seoscan audit --json -o report.json https://example.com

  # Use a custom configuration file
  seoscan audit -c myconfig.yaml https://example.com

Configuration file (.seoscan) example:
  sites:
    staging.example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
    slow.example.com:
      timeoutSeconds: 60
      skipDynamic: true`,
		Args: cobra.ArbitraryArgs,
		RunE: runAuditCmd,
	}

	// Fetch behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().Duration("navigation-timeout", config.DefaultNavigationTimeout,
		"Timeout for a full browser navigation")
	cmd.Flags().Bool("allow-private", false,
		"Allow auditing URLs that resolve to private or loopback addresses")

	// Browser flags
	cmd.Flags().Bool("no-browser", false,
		"Skip headless browser analysis and use static HTML parsing only")
	cmd.Flags().Int("pool-size", config.DefaultBrowserPoolSize,
		"Number of concurrent browser tabs")

	// Link check flags
	cmd.Flags().Bool("no-link-check", false,
		"Skip broken-link checking")
	cmd.Flags().Int("max-links", config.DefaultMaxLinkChecks,
		"Maximum number of outgoing links to check per page")

	// Batch auditing flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent audits")

	// Crawl flags
	cmd.Flags().Bool("crawl", false,
		"Discover same-host pages linked from each target and audit them too")
	cmd.Flags().Int("depth", config.DefaultCrawlDepth,
		"Link levels to follow during crawl discovery (0 = target page only)")
	cmd.Flags().Int("max-pages", config.DefaultCrawlMaxPages,
		"Maximum pages to discover per target during crawl")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .seoscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not save audit results to the history database")
	cmd.Flags().String("db-dir", "",
		"Directory for the history database (default: XDG data directory)")

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential redaction
	logger := log.NewSecureLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAudit(ctx, cfg, cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.NavigationTimeout, err = cmd.Flags().GetDuration("navigation-timeout")
	if err != nil {
		return nil, err
	}

	cfg.AllowPrivateHosts, err = cmd.Flags().GetBool("allow-private")
	if err != nil {
		return nil, err
	}

	cfg.DisableBrowser, err = cmd.Flags().GetBool("no-browser")
	if err != nil {
		return nil, err
	}

	cfg.BrowserPoolSize, err = cmd.Flags().GetInt("pool-size")
	if err != nil {
		return nil, err
	}

	cfg.DisableLinkCheck, err = cmd.Flags().GetBool("no-link-check")
	if err != nil {
		return nil, err
	}

	cfg.MaxLinkChecks, err = cmd.Flags().GetInt("max-links")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.Crawl, err = cmd.Flags().GetBool("crawl")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.CrawlMaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}
	cfg.SaveToDB = !noSave

	// Get positional arguments (URLs), defaulting bare hosts to https
	cfg.Targets = make([]string, len(args))
	for i, arg := range args {
		cfg.Targets[i] = normalizeTarget(arg)
	}

	return cfg, nil
}

// normalizeTarget defaults a bare host to an https URL.
// "example.com" audits the same page as "https://example.com".
func normalizeTarget(target string) string {
	if strings.Contains(target, "://") {
		return target
	}
	return "https://" + target
}

// runAudit executes the audit.
func runAudit(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return errors.New("no targets provided (specify one or more URLs as arguments)")
	}

	logger.Info("starting audit",
		"targets", cfg.Targets,
		"disableBrowser", cfg.DisableBrowser,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Validate all target URLs before any network I/O
	validator := fetch.NewValidator(fetch.WithAllowPrivateHosts(cfg.AllowPrivateHosts))
	for i, target := range cfg.Targets {
		normalized, err := validator.Validate(ctx, target)
		if err != nil {
			return fmt.Errorf("invalid url %q: %w", target, err)
		}
		cfg.Targets[i] = normalized
	}

	// Open database connection if saving is enabled
	var db *database.AuditDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Site-wide discovery: replace each target with the set of same-host
	// pages linked from it, then audit every discovered page
	if cfg.Crawl {
		expanded, err := expandTargetsByCrawl(ctx, cfg, db, logger)
		if err != nil {
			return err
		}
		cfg.Targets = expanded
	}

	// Start the headless browser unless disabled. A launch failure is not
	// fatal: the analyzer degrades to static parsing per navigation, so
	// the pool is created optimistically.
	var pool *browser.Pool
	if !cfg.DisableBrowser {
		chrome := browser.NewChrome(ctx,
			browser.WithUserAgent(cfg.UserAgent),
			browser.WithNavigationTimeout(cfg.NavigationTimeout),
			browser.WithSettleDelay(cfg.SettleDelay),
		)
		defer chrome.Close()

		pool = browser.NewPool(cfg.BrowserPoolSize, chrome.NewPage)
		defer pool.Close()
	}

	env := &auditEnv{
		cfg:       cfg,
		validator: validator,
		pool:      pool,
		db:        db,
		out:       out,
		logger:    logger,
	}

	// Use batch processor for parallel auditing if multiple targets
	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchAudit(ctx, env)
	}

	// Single target or sequential auditing
	return runSequentialAudit(ctx, env)
}

// auditEnv bundles the long-lived dependencies shared by every audit in
// a run so the sequential and batch paths take one argument.
type auditEnv struct {
	cfg       *config.Config
	validator *fetch.Validator
	pool      *browser.Pool
	db        *database.AuditDB
	out       io.Writer
	logger    *slog.Logger
}

// runSequentialAudit audits targets one at a time.
func runSequentialAudit(ctx context.Context, env *auditEnv) error {
	for _, target := range env.cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		domain := pipeline.DomainOf(target)

		// Create pipeline with site-specific options
		p := createPipelineForTarget(env, domain)

		auditReport := model.NewAuditReport(target, domain)

		fmt.Fprintf(env.out, "Auditing %s...\n", target)
		startTime := time.Now()

		// Execute the pipeline
		if err := p.Execute(ctx, auditReport); err != nil {
			env.logger.Error("audit failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Audit error for %s: %v\n", target, err)
		}

		elapsed := time.Since(startTime)
		fmt.Fprintf(env.out, "Audit completed in %s\n\n", elapsed.Round(time.Millisecond))

		// Generate and output report
		if err := outputReport(env.cfg, env.out, auditReport); err != nil {
			env.logger.Error("report failed", "target", target, "error", err)
		}

		// Save to database if enabled
		if err := saveAuditReport(ctx, env.db, auditReport, env.logger); err != nil {
			env.logger.Error("failed to save audit report", "target", target, "error", err)
		}
	}

	return nil
}

// runBatchAudit audits multiple targets concurrently using BatchProcessor.
func runBatchAudit(ctx context.Context, env *auditEnv) error {
	cfg := env.cfg
	fmt.Fprintf(env.out, "Starting batch audit of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		env.logger.Warn("batch processing uses default site config only; site-specific configs (cookies, headers, timeouts) are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use sequential mode (--batch 1) to apply per-site settings.\n\n")
	}

	// Create batch processor with pipeline factory
	// Batch mode shares one pipeline configuration, so per-site overrides
	// would need per-target factories; sequential mode covers that case.
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return createPipelineForTarget(env, "")
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(env.logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(auditReport *model.AuditReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(env.out, "[%d/%d] Audit completed: %s\n", index+1, len(cfg.Targets), auditReport.URL)

		// Generate and output report
		if err := outputReport(cfg, env.out, auditReport); err != nil {
			env.logger.Error("report failed", "target", auditReport.URL, "error", err)
		}

		// Save to database if enabled
		if err := saveAuditReport(ctx, env.db, auditReport, env.logger); err != nil {
			env.logger.Error("failed to save audit report", "target", auditReport.URL, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Fprintf(env.out, "\nBatch audit completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// expandTargetsByCrawl discovers same-host pages linked from each target
// and returns the full set of URLs to audit. Discovered page metadata is
// upserted into the pages table when a database is open, so the audit
// history reflects which pages a site exposed at the time.
func expandTargetsByCrawl(ctx context.Context, cfg *config.Config, db *database.AuditDB, logger *slog.Logger) ([]string, error) {
	clientOpts := []fetch.ClientOption{
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
	}
	var client *fetch.Client
	if cfg.AllowPrivateHosts {
		client = fetch.NewInsecureClient(clientOpts...)
	} else {
		client = fetch.NewClient(clientOpts...)
	}

	spider := crawler.NewSpider(client,
		crawler.WithMaxDepth(cfg.CrawlDepth),
		crawler.WithMaxPages(cfg.CrawlMaxPages),
	)

	seen := make(map[string]bool)
	expanded := make([]string, 0, len(cfg.Targets))

	for _, target := range cfg.Targets {
		logger.Info("discovering pages", "target", target, "depth", cfg.CrawlDepth, "maxPages", cfg.CrawlMaxPages)

		spider.Reset()
		pages, err := spider.Crawl(ctx, target)
		if err != nil {
			// Cancellation aborts the whole run; anything else leaves the
			// original target auditable on its own
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("discovery failed, auditing target only", "target", target, "error", err)
		}

		domain := pipeline.DomainOf(target)
		if !seen[target] {
			seen[target] = true
			expanded = append(expanded, target)
		}

		for _, page := range pages {
			if !seen[page.URL] {
				seen[page.URL] = true
				expanded = append(expanded, page.URL)
			}

			if db != nil {
				record := &database.PageRecord{
					URL:             page.URL,
					Domain:          domain,
					StatusCode:      page.StatusCode,
					Title:           page.Title,
					MetaDescription: page.MetaDescription,
				}
				if _, err := db.UpsertPageRecord(ctx, record); err != nil {
					logger.Warn("failed to record discovered page", "url", page.URL, "error", err)
				}
			}
		}

		logger.Info("discovery complete", "target", target, "pages", len(pages))
	}

	return expanded, nil
}

// createPipelineForTarget creates a pipeline with the given configuration.
// The domain selects site-specific overrides; an empty domain applies the
// config file defaults only.
func createPipelineForTarget(env *auditEnv, domain string) *pipeline.Pipeline {
	cfg := env.cfg
	siteConfig := cfg.SiteConfigs.GetSiteConfig(domain)

	// Per-site request timeout overrides the global one
	timeout := cfg.Timeout
	if siteConfig.TimeoutSeconds > 0 {
		timeout = time.Duration(siteConfig.TimeoutSeconds) * time.Second
	}

	// Build the HTTP client for the static path, page fetch, and link check
	clientOpts := []fetch.ClientOption{
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithTimeout(timeout),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
	}
	headers := make(map[string]string, len(siteConfig.Headers)+1)
	for k, v := range siteConfig.Headers {
		headers[k] = v
	}
	if siteConfig.Cookie != "" {
		headers["Cookie"] = siteConfig.Cookie
	}
	if len(headers) > 0 {
		clientOpts = append(clientOpts, fetch.WithHeaders(headers))
	}

	var client *fetch.Client
	if cfg.AllowPrivateHosts {
		client = fetch.NewInsecureClient(clientOpts...)
	} else {
		client = fetch.NewClient(clientOpts...)
	}

	// The browser pool is shared across targets; sites that block headless
	// browsers opt out via skipDynamic
	pool := env.pool
	if siteConfig.SkipDynamic {
		pool = nil
	}

	analyzerOpts := []performance.AnalyzerOption{
		performance.WithValidator(env.validator),
		performance.WithClient(client),
		performance.WithLogger(env.logger),
	}
	if pool != nil {
		analyzerOpts = append(analyzerOpts, performance.WithPool(pool))
	}
	analyzer := performance.NewAnalyzer(analyzerOpts...)

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(env.logger),
		pipeline.WithContinueOnError(true),
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineDisableLinkCheck(cfg.DisableLinkCheck),
		pipeline.WithPipelineMaxLinkChecks(cfg.MaxLinkChecks),
		pipeline.WithPipelineLinkCheckConcurrency(cfg.LinkCheckConcurrency),
		pipeline.WithPipelineTTFBThreshold(cfg.TTFBThresholdMs),
		pipeline.WithPipelineResourceCountThreshold(cfg.ResourceCountThreshold),
	}

	return pipeline.DefaultPipeline(client, analyzer, pipelineOpts, configOpts...)
}

// outputReport outputs the audit report in the requested format.
func outputReport(cfg *config.Config, stdout io.Writer, auditReport *model.AuditReport) error {
	// Determine output destination
	output := stdout
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with owner-only permissions;
		// reports can embed session cookies from site configs
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	// JSON output (detailed report with all data)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(auditReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(auditReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output)
	_, err := writer.Write(auditReport)
	return err
}

// saveAuditReport saves the audit report to the database if enabled.
// If db is nil, this function is a no-op.
func saveAuditReport(ctx context.Context, db *database.AuditDB, auditReport *model.AuditReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	if _, err := db.SaveAuditReport(ctx, auditReport); err != nil {
		return fmt.Errorf("failed to save audit report: %w", err)
	}

	logger.Info("audit report saved to database", "target", auditReport.URL)
	return nil
}
