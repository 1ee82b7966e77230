package model

// Severity represents the impact level of an SEO finding.
// This allows categorizing findings by how strongly they affect
// search ranking and user experience.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational findings with no direct ranking impact.
	// Examples: structured data present, robots.txt found.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor issues with limited impact.
	// Examples: title slightly outside the recommended length range,
	// missing lazy loading on images.
	SeverityLow

	// SeverityMedium indicates moderate issues that warrant attention.
	// Examples: missing meta description, images without alt attributes,
	// missing canonical URL.
	SeverityMedium

	// SeverityHigh indicates serious issues that measurably hurt ranking.
	// Examples: missing or duplicated H1, broken links, slow TTFB,
	// compression disabled.
	SeverityHigh

	// SeverityCritical indicates issues that can remove the page from
	// search results entirely. Examples: a noindex robots directive on a
	// page meant to rank, missing page title.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// FindingInfo contains metadata about a finding type including severity,
// impact description, and remediation recommendation.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// findingInfoMapping maps finding types to their metadata.
// This centralized mapping ensures consistent impact assessment across the
// application.
//
// Design decision: We use a map rather than embedding severity in each finding
// type because:
// 1. It allows updating impact assessments without modifying type definitions
// 2. It provides a single source of truth for severity levels
// 3. It makes it easy to generate severity documentation
var findingInfoMapping = map[string]FindingInfo{
	// CRITICAL - page may not rank at all
	"missing_title": {
		Severity:       SeverityCritical,
		Impact:         "The page has no <title> element. Search engines use the title as the primary ranking and display signal.",
		Recommendation: "Add a descriptive page title of 30-60 characters.",
	},
	"robots_noindex": {
		Severity:       SeverityCritical,
		Impact:         "A noindex robots directive prevents the page from appearing in search results.",
		Recommendation: "Remove the noindex directive if the page is meant to rank.",
	},

	// HIGH - measurable ranking impact
	"missing_h1": {
		Severity:       SeverityHigh,
		Impact:         "The page has no H1 heading. Search engines rely on the H1 to understand the main topic.",
		Recommendation: "Add exactly one H1 heading describing the page content.",
	},
	"multiple_h1": {
		Severity:       SeverityHigh,
		Impact:         "Multiple H1 headings dilute the page's topical focus.",
		Recommendation: "Use a single H1 and demote the others to H2/H3.",
	},
	"broken_links": {
		Severity:       SeverityHigh,
		Impact:         "Broken outgoing links waste crawl budget and hurt user trust.",
		Recommendation: "Fix or remove links that return errors.",
	},
	"slow_ttfb": {
		Severity:       SeverityHigh,
		Impact:         "High time-to-first-byte delays rendering and is a direct ranking factor.",
		Recommendation: "Improve server response time with caching or a faster backend.",
	},
	"gzip_disabled": {
		Severity:       SeverityHigh,
		Impact:         "The main document is served uncompressed, increasing transfer time.",
		Recommendation: "Enable gzip or brotli compression on the web server.",
	},

	// MEDIUM - worth fixing
	"missing_meta_description": {
		Severity:       SeverityMedium,
		Impact:         "Without a meta description, search engines generate the result snippet themselves, usually poorly.",
		Recommendation: "Add a meta description of 70-160 characters.",
	},
	"meta_description_length": {
		Severity:       SeverityMedium,
		Impact:         "A meta description outside the 70-160 character range gets truncated or ignored in result snippets.",
		Recommendation: "Rewrite the meta description to fit the recommended length.",
	},
	"images_missing_alt": {
		Severity:       SeverityMedium,
		Impact:         "Images without alt attributes are invisible to image search and screen readers.",
		Recommendation: "Add descriptive alt attributes to all content images.",
	},
	"missing_canonical": {
		Severity:       SeverityMedium,
		Impact:         "Without a canonical URL, duplicate-content variants can split ranking signals.",
		Recommendation: "Add a rel=canonical link to the preferred URL.",
	},
	"high_resource_count": {
		Severity:       SeverityMedium,
		Impact:         "A large number of resource requests slows page load, especially on mobile.",
		Recommendation: "Bundle assets and remove unused scripts and stylesheets.",
	},

	// LOW - minor polish
	"title_length": {
		Severity:       SeverityLow,
		Impact:         "A title outside the 30-60 character range gets truncated or underuses the result snippet.",
		Recommendation: "Rewrite the title to fit the recommended length.",
	},
	"no_lazy_loading": {
		Severity:       SeverityLow,
		Impact:         "Images load eagerly even when below the fold, delaying first paint.",
		Recommendation: "Add loading=\"lazy\" to below-the-fold images.",
	},

	// INFO - no direct impact
	"structured_data": {
		Severity:       SeverityInfo,
		Impact:         "Structured data (JSON-LD) was detected. Rich results may be shown.",
		Recommendation: "Validate the markup with a structured-data testing tool.",
	},
}

// GetSeverity returns the severity level for a finding type.
// Returns SeverityInfo if the finding type is not in the mapping.
func GetSeverity(findingType string) Severity {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetFindingInfo returns the full finding information for a finding type.
// Returns a default FindingInfo with SeverityInfo if the type is not in the mapping.
func GetFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{
		Severity:       SeverityInfo,
		Impact:         "Unknown finding type. Review manually.",
		Recommendation: "Investigate the finding and assess impact.",
	}
}
