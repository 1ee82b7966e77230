package model

import "time"

// Summary is the condensed form of an AuditReport used by the report
// writers and the audit history database.
//
// Design decision: We keep a separate summary struct rather than
// computing counts in each writer because:
// 1. Every output format needs the same severity counts
// 2. The database stores summaries for cheap history queries
// 3. It keeps presentation logic out of the main report
type Summary struct {
	// URL is the audited page URL.
	URL string `json:"url"`

	// Domain is the host of the audited URL.
	Domain string `json:"domain"`

	// AuditedAt is when the audit was performed.
	AuditedAt time.Time `json:"audited_at"`

	// PerformancePath records which analysis path produced the profile.
	PerformancePath string `json:"performance_path,omitempty"`

	// TTFBMs is the time to first byte in milliseconds.
	TTFBMs int `json:"ttfb_ms"`

	// ResourceCount is the page's resource request count.
	ResourceCount int `json:"resource_count"`

	// TotalRequests is the total observed request count (dynamic path only).
	TotalRequests int `json:"total_requests"`

	// GzipEnabled reports main-document compression.
	GzipEnabled bool `json:"gzip_enabled"`

	// BrokenLinkCount is the number of broken outgoing links.
	BrokenLinkCount int `json:"broken_link_count"`

	// Severity counts for quick triage.
	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`
	InfoCount     int `json:"info_count"`

	// Findings carries the full finding list for detail sections.
	Findings []Finding `json:"findings,omitempty"`

	// Recommendations are the remediation suggestions.
	Recommendations []string `json:"recommendations,omitempty"`

	// TimedOut is true if the audit was cancelled before completing.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error is the audit error message, if any.
	Error string `json:"error,omitempty"`
}

// NewSummary condenses an AuditReport into a Summary.
func NewSummary(report *AuditReport) *Summary {
	s := &Summary{
		URL:             report.URL,
		Domain:          report.Domain,
		AuditedAt:       report.AuditedAt,
		PerformancePath: report.PerformancePath,
		BrokenLinkCount: len(report.BrokenLinks),
		Findings:        report.Findings,
		Recommendations: report.Recommendations,
		TimedOut:        report.TimedOut,
		Error:           report.ErrorMessage,
	}

	if report.Performance != nil {
		s.TTFBMs = report.Performance.TTFBMs
		s.ResourceCount = report.Performance.ResourceCount
		s.TotalRequests = report.Performance.TotalRequests
		s.GzipEnabled = report.Performance.GzipEnabled
	}

	for _, f := range report.Findings {
		switch f.Severity {
		case SeverityCritical:
			s.CriticalCount++
		case SeverityHigh:
			s.HighCount++
		case SeverityMedium:
			s.MediumCount++
		case SeverityLow:
			s.LowCount++
		case SeverityInfo:
			s.InfoCount++
		}
	}

	return s
}

// TotalFindings returns the total number of findings.
func (s *Summary) TotalFindings() int {
	return s.CriticalCount + s.HighCount + s.MediumCount + s.LowCount + s.InfoCount
}

// HasFindings reports whether any findings were recorded.
func (s *Summary) HasFindings() bool {
	return s.TotalFindings() > 0
}

// GetFindingsBySeverity returns the findings at the given severity level.
func (s *Summary) GetFindingsBySeverity(sev Severity) []Finding {
	var out []Finding
	for _, f := range s.Findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}
