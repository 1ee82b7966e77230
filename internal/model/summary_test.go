package model

import (
	"testing"
)

func summaryReport() *AuditReport {
	r := NewAuditReport("https://example.com/", "example.com")
	r.PerformancePath = PathDynamic
	r.Performance = NewPerformanceProfile()
	r.Performance.TTFBMs = 320
	r.Performance.ResourceCount = 18
	r.Performance.TotalRequests = 19
	r.Performance.GzipEnabled = true
	r.BrokenLinks = []string{"https://example.com/dead"}
	r.AddFinding(Finding{Type: "missing_title", Severity: SeverityCritical})
	r.AddFinding(Finding{Type: "missing_meta_description", Severity: SeverityHigh})
	r.AddFinding(Finding{Type: "missing_canonical", Severity: SeverityMedium})
	r.AddFinding(Finding{Type: "no_lazy_loading", Severity: SeverityLow})
	r.Recommendations = []string{"Add a title tag"}
	return r
}

// TestNewSummary tests condensing a report into a summary.
func TestNewSummary(t *testing.T) {
	t.Parallel()

	s := NewSummary(summaryReport())

	if s.URL != "https://example.com/" || s.Domain != "example.com" {
		t.Errorf("unexpected identity fields: %q %q", s.URL, s.Domain)
	}
	if s.PerformancePath != PathDynamic {
		t.Errorf("expected performance path %q, got %q", PathDynamic, s.PerformancePath)
	}
	if s.TTFBMs != 320 || s.ResourceCount != 18 || s.TotalRequests != 19 {
		t.Errorf("performance values not carried over: %+v", s)
	}
	if !s.GzipEnabled {
		t.Error("expected gzip flag carried over")
	}
	if s.BrokenLinkCount != 1 {
		t.Errorf("expected 1 broken link, got %d", s.BrokenLinkCount)
	}
	if s.CriticalCount != 1 || s.HighCount != 1 || s.MediumCount != 1 || s.LowCount != 1 || s.InfoCount != 0 {
		t.Errorf("unexpected severity counts: %+v", s)
	}
	if len(s.Recommendations) != 1 {
		t.Errorf("expected recommendations carried over, got %v", s.Recommendations)
	}
}

// TestNewSummaryNilPerformance tests a report without a profile.
func TestNewSummaryNilPerformance(t *testing.T) {
	t.Parallel()

	r := NewAuditReport("https://example.com/", "example.com")
	s := NewSummary(r)

	if s.TTFBMs != 0 || s.ResourceCount != 0 || s.TotalRequests != 0 || s.GzipEnabled {
		t.Errorf("expected zeroed performance values, got %+v", s)
	}
}

// TestSummaryTotals tests finding count helpers.
func TestSummaryTotals(t *testing.T) {
	t.Parallel()

	s := NewSummary(summaryReport())
	if s.TotalFindings() != 4 {
		t.Errorf("TotalFindings() = %d, want 4", s.TotalFindings())
	}
	if !s.HasFindings() {
		t.Error("expected HasFindings() true")
	}

	empty := NewSummary(NewAuditReport("https://example.com/", "example.com"))
	if empty.HasFindings() {
		t.Error("expected HasFindings() false for empty report")
	}
}

// TestGetFindingsBySeverity tests severity filtering.
func TestGetFindingsBySeverity(t *testing.T) {
	t.Parallel()

	s := NewSummary(summaryReport())

	critical := s.GetFindingsBySeverity(SeverityCritical)
	if len(critical) != 1 || critical[0].Type != "missing_title" {
		t.Errorf("unexpected critical findings: %+v", critical)
	}
	if got := s.GetFindingsBySeverity(SeverityInfo); len(got) != 0 {
		t.Errorf("expected no info findings, got %+v", got)
	}
}
