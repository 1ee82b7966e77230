package model

import "time"

// Analysis path labels recorded in AuditReport.PerformancePath.
// Callers that need to distinguish a degraded profile from an accurate one
// check this side channel; the profile shape itself is identical on every path.
const (
	// PathDynamic means the profile came from browser-driven analysis.
	PathDynamic = "dynamic"

	// PathStatic means the profile came from static HTML parsing.
	PathStatic = "static"

	// PathNone means both paths failed and the default profile was returned.
	PathNone = "none"
)

// AuditReport is the main audit result structure.
// It contains everything collected during an audit of a single URL.
//
// Design decision: We use a single large struct rather than many small ones
// to simplify serialization and database storage, mirroring how the report
// is consumed as one JSON document by downstream tooling.
type AuditReport struct {
	// URL is the audited page URL.
	URL string `json:"url"`

	// Domain is the host of the audited URL without the www prefix.
	Domain string `json:"domain"`

	// AuditedAt is the timestamp when the audit was performed.
	AuditedAt time.Time `json:"audited_at"`

	// Page holds the parsed on-page SEO data. Nil if the page fetch failed.
	Page *PageContent `json:"page,omitempty"`

	// Performance is the resource-usage profile of the page.
	// Always non-nil after the performance step runs; a degraded audit
	// carries the default profile.
	Performance *PerformanceProfile `json:"performance,omitempty"`

	// PerformancePath records which analysis path produced Performance:
	// PathDynamic, PathStatic, or PathNone.
	PerformancePath string `json:"performance_path,omitempty"`

	// BrokenLinks lists outgoing links that failed the link check.
	BrokenLinks []string `json:"broken_links,omitempty"`

	// Findings contains the SEO issues discovered, ordered by discovery.
	Findings []Finding `json:"findings,omitempty"`

	// Recommendations are human-readable improvement suggestions derived
	// from the findings and the performance profile.
	Recommendations []string `json:"recommendations,omitempty"`

	// PerformedSteps tracks which pipeline steps ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// TimedOut is true if the audit was cancelled before completing.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error holds the first critical error encountered, if any.
	// Excluded from JSON; ErrorMessage carries the serializable form.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// Finding represents a single SEO issue discovered during an audit.
type Finding struct {
	// Type is the machine-readable finding type (e.g. "missing_title").
	Type string `json:"type"`

	// Title is a short human-readable summary.
	Title string `json:"title"`

	// Description explains the issue and its impact.
	Description string `json:"description"`

	// Severity is the impact level.
	Severity Severity `json:"severity"`

	// SeverityText is the string form of Severity for serialization.
	SeverityText string `json:"severity_text"`

	// Value is the offending value when one exists (e.g. the too-long title).
	Value string `json:"value,omitempty"`

	// Location describes where on the page the issue was found.
	Location string `json:"location,omitempty"`
}

// NewAuditReport creates an AuditReport for the given URL with the audit
// timestamp set to now.
func NewAuditReport(url, domain string) *AuditReport {
	return &AuditReport{
		URL:             url,
		Domain:          domain,
		AuditedAt:       time.Now(),
		BrokenLinks:     make([]string, 0),
		Findings:        make([]Finding, 0),
		Recommendations: make([]string, 0),
		PerformedSteps:  make([]string, 0),
	}
}

// AddFinding appends a finding to the report.
func (r *AuditReport) AddFinding(f Finding) {
	if f.SeverityText == "" {
		f.SeverityText = f.Severity.String()
	}
	r.Findings = append(r.Findings, f)
}

// FindingsBySeverity returns the findings at the given severity level.
func (r *AuditReport) FindingsBySeverity(s Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}

// HighestSeverity returns the highest severity present in the findings,
// or SeverityInfo if there are none.
func (r *AuditReport) HighestSeverity() Severity {
	highest := SeverityInfo
	for _, f := range r.Findings {
		if f.Severity > highest {
			highest = f.Severity
		}
	}
	return highest
}
