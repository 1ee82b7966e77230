package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen based on typical clearnet site characteristics
// and the thresholds the recommendation rules are calibrated against.
const (
	// DefaultTimeout is the per-request timeout for plain HTTP fetches.
	// 20 seconds covers slow shared hosting without hanging an audit forever.
	DefaultTimeout = 20 * time.Second

	// DefaultNavigationTimeout bounds a full browser navigation including
	// subresource loading. Rendering a page takes longer than fetching its
	// HTML, so this is more generous than DefaultTimeout.
	DefaultNavigationTimeout = 30 * time.Second

	// DefaultSettleDelay is the fixed wait after the page load event before
	// the DOM is evaluated on the dynamic path. Late-loading resources that
	// fire within this window are still captured. Tests inject a shorter
	// value to keep runs fast.
	DefaultSettleDelay = 1500 * time.Millisecond

	// DefaultBrowserPoolSize bounds concurrent browser tabs. Each tab costs
	// real memory in the Chrome process, so the ceiling is deliberately low.
	DefaultBrowserPoolSize = 3

	// DefaultBatchSize of 5 concurrent audits balances throughput with the
	// load placed on audited sites and on the local browser pool.
	DefaultBatchSize = 5

	// DefaultMaxLinkChecks caps how many outgoing links the broken-link
	// checker probes per audit. Link-heavy pages would otherwise dominate
	// audit time.
	DefaultMaxLinkChecks = 20

	// DefaultLinkCheckConcurrency bounds concurrent link-check requests.
	DefaultLinkCheckConcurrency = 5

	// DefaultCrawlDepth is how many link levels site discovery follows.
	// Two levels reaches section index pages and the content they link to,
	// which covers most small sites without exploding the page count.
	DefaultCrawlDepth = 2

	// DefaultCrawlMaxPages caps discovered pages per target so a crawl of
	// a large site stays bounded.
	DefaultCrawlMaxPages = 25

	// DefaultTTFBThresholdMs is the time-to-first-byte above which the
	// recommendation rules flag the server as slow.
	DefaultTTFBThresholdMs = 600

	// DefaultResourceCountThreshold is the request count above which the
	// page is flagged as resource-heavy.
	DefaultResourceCountThreshold = 80

	// AppName is the application name used for XDG directory paths.
	AppName = "seoscan"

	// DefaultUserAgent identifies seoscan in HTTP requests.
	// A descriptive User-Agent lets site operators identify audit traffic
	// in their logs.
	DefaultUserAgent = "seoscan/1.0 (+https://github.com/useoai/seoscan)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for any sane HTML document while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Config holds all configuration options for seoscan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state, so
// tests can inject deterministic short timeouts.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, BrowserConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Timeout is the per-request timeout for plain HTTP fetches
	// (static analysis path, broken-link checks).
	Timeout time.Duration

	// NavigationTimeout bounds a browser navigation on the dynamic path.
	// Expiry is an ordinary dynamic-path failure that triggers the static
	// fallback, not a fatal error.
	NavigationTimeout time.Duration

	// SettleDelay is the wait after the load event before DOM evaluation.
	SettleDelay time.Duration

	// BrowserPoolSize is the number of browser tabs kept in the pool.
	// This is the concurrency ceiling for dynamic analysis.
	BrowserPoolSize int

	// DisableBrowser skips the dynamic path entirely and audits with
	// static analysis only. Useful on hosts without Chrome installed.
	DisableBrowser bool

	// AllowPrivateHosts permits auditing URLs that resolve to private or
	// loopback addresses. Off by default to prevent SSRF; enabled in tests
	// and for auditing intranet staging sites.
	AllowPrivateHosts bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent audits when processing
	// multiple targets.
	BatchSize int

	// DisableLinkCheck skips the broken-link probe step entirely.
	DisableLinkCheck bool

	// Crawl enables site-wide discovery: same-host pages linked from the
	// target are found first and each discovered page is audited.
	Crawl bool

	// CrawlDepth limits how many link levels the discovery follows from
	// the target. 0 means only the target page itself.
	CrawlDepth int

	// CrawlMaxPages caps the total number of pages discovered per target.
	CrawlMaxPages int

	// MaxLinkChecks caps the number of outgoing links probed per audit.
	MaxLinkChecks int

	// LinkCheckConcurrency bounds concurrent link-check requests.
	LinkCheckConcurrency int

	// TTFBThresholdMs is the slow-server threshold for recommendations.
	TTFBThresholdMs int

	// ResourceCountThreshold is the resource-heavy threshold for
	// recommendations.
	ResourceCountThreshold int

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .seoscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the
	// config file.
	SiteConfigs *File

	// JSONReport enables JSON report output instead of human-readable text.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory path for storing the SQLite database.
	// When set, audit results are saved for historical comparison.
	// When empty, audit results are not persisted.
	DBDir string

	// SaveToDB indicates whether to save audit results to the database.
	// This is automatically set to true when DBDir is configured.
	SaveToDB bool

	// Targets is the list of URLs to audit.
	Targets []string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts, pool size).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:                DefaultTimeout,
		NavigationTimeout:      DefaultNavigationTimeout,
		SettleDelay:            DefaultSettleDelay,
		BrowserPoolSize:        DefaultBrowserPoolSize,
		BatchSize:              DefaultBatchSize,
		MaxLinkChecks:          DefaultMaxLinkChecks,
		LinkCheckConcurrency:   DefaultLinkCheckConcurrency,
		CrawlDepth:             DefaultCrawlDepth,
		CrawlMaxPages:          DefaultCrawlMaxPages,
		TTFBThresholdMs:        DefaultTTFBThresholdMs,
		ResourceCountThreshold: DefaultResourceCountThreshold,
		UserAgent:              DefaultUserAgent,
		MaxBodySize:            DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for seoscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/seoscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for seoscan.
// On Linux: ~/.config/seoscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first validation error encountered, or nil if the
// configuration is usable.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.Timeout <= 0 || c.NavigationTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.BrowserPoolSize <= 0 && !c.DisableBrowser {
		return ErrInvalidPoolSize
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.Crawl {
		if c.CrawlDepth < 0 {
			return ErrInvalidCrawlDepth
		}
		if c.CrawlMaxPages <= 0 {
			return ErrInvalidCrawlMaxPages
		}
	}
	return nil
}
