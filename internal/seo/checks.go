package seo

import (
	"fmt"
	"strings"

	"github.com/useoai/seoscan/internal/model"
)

// Recommended length ranges for title and meta description, in characters.
// Values outside these ranges get truncated or ignored in result snippets.
const (
	TitleMinLen = 30
	TitleMaxLen = 60

	MetaDescriptionMinLen = 70
	MetaDescriptionMaxLen = 160
)

// PerformanceThresholds are the limits beyond which performance numbers
// become findings.
type PerformanceThresholds struct {
	// TTFBMs is the time-to-first-byte threshold in milliseconds.
	TTFBMs int

	// ResourceCount is the maximum acceptable resource request count.
	ResourceCount int
}

// newFinding builds a Finding from the central severity mapping.
func newFinding(findingType, value, location string) model.Finding {
	info := model.GetFindingInfo(findingType)
	return model.Finding{
		Type:        findingType,
		Title:       strings.ReplaceAll(findingType, "_", " "),
		Description: info.Impact,
		Severity:    info.Severity,
		Value:       value,
		Location:    location,
	}
}

// CheckPage evaluates the on-page rules against the parsed content and
// records findings in the report.
func CheckPage(report *model.AuditReport, page *model.PageContent) {
	switch {
	case page.Title == "":
		report.AddFinding(newFinding("missing_title", "", "head"))
	case len(page.Title) < TitleMinLen || len(page.Title) > TitleMaxLen:
		report.AddFinding(newFinding("title_length",
			fmt.Sprintf("%d characters", len(page.Title)), "head"))
	}

	switch {
	case page.MetaDescription == "":
		report.AddFinding(newFinding("missing_meta_description", "", "head"))
	case len(page.MetaDescription) < MetaDescriptionMinLen || len(page.MetaDescription) > MetaDescriptionMaxLen:
		report.AddFinding(newFinding("meta_description_length",
			fmt.Sprintf("%d characters", len(page.MetaDescription)), "head"))
	}

	if strings.Contains(strings.ToLower(page.MetaRobots), "noindex") {
		report.AddFinding(newFinding("robots_noindex", page.MetaRobots, "head"))
	}

	switch n := len(page.Headings["h1"]); {
	case n == 0:
		report.AddFinding(newFinding("missing_h1", "", "body"))
	case n > 1:
		report.AddFinding(newFinding("multiple_h1",
			fmt.Sprintf("%d h1 headings", n), "body"))
	}

	if n := len(page.ImagesWithoutAlt); n > 0 {
		report.AddFinding(newFinding("images_missing_alt",
			fmt.Sprintf("%d images", n), "body"))
	}

	if page.Canonical == "" {
		report.AddFinding(newFinding("missing_canonical", "", "head"))
	}

	if page.HasStructuredData {
		report.AddFinding(newFinding("structured_data", "", "head"))
	}
}

// CheckPerformance evaluates the performance profile against the
// thresholds and records findings. A profile from the PathNone fallback
// carries no real measurements, so it produces no findings.
func CheckPerformance(report *model.AuditReport, profile *model.PerformanceProfile, path string, limits PerformanceThresholds) {
	if profile == nil || path == model.PathNone {
		return
	}

	if profile.TTFBMs > limits.TTFBMs {
		report.AddFinding(newFinding("slow_ttfb",
			fmt.Sprintf("%d ms", profile.TTFBMs), "server"))
	}

	if !profile.GzipEnabled {
		report.AddFinding(newFinding("gzip_disabled", "", "server"))
	}

	if profile.ResourceCount > limits.ResourceCount {
		report.AddFinding(newFinding("high_resource_count",
			fmt.Sprintf("%d resources", profile.ResourceCount), "page"))
	}

	if profile.ImagesCount > 0 && !profile.LazyLoadedImages {
		report.AddFinding(newFinding("no_lazy_loading",
			fmt.Sprintf("%d images", profile.ImagesCount), "body"))
	}
}

// CheckBrokenLinks records a finding when the report carries broken links.
func CheckBrokenLinks(report *model.AuditReport) {
	if n := len(report.BrokenLinks); n > 0 {
		report.AddFinding(newFinding("broken_links",
			fmt.Sprintf("%d broken links", n), "body"))
	}
}
