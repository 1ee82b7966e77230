package seo

import (
	"sort"

	"github.com/useoai/seoscan/internal/model"
)

// Recommend derives the remediation list from the report's findings.
// Recommendations are ordered most severe first and deduplicated, so a
// finding type that fired twice yields one line.
func Recommend(report *model.AuditReport) []string {
	findings := make([]model.Finding, len(report.Findings))
	copy(findings, report.Findings)
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity > findings[j].Severity
	})

	seen := make(map[string]bool)
	recs := make([]string, 0, len(findings))
	for _, f := range findings {
		if f.Severity == model.SeverityInfo || seen[f.Type] {
			continue
		}
		seen[f.Type] = true
		if rec := model.GetFindingInfo(f.Type).Recommendation; rec != "" {
			recs = append(recs, rec)
		}
	}
	return recs
}
