package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/useoai/seoscan/internal/config"
	"github.com/useoai/seoscan/internal/database"
	"github.com/useoai/seoscan/internal/model"
	"github.com/useoai/seoscan/internal/pipeline"
)

// Constants for trend direction and summary messages.
const (
	trendWorsened     = "worsened"
	trendImproved     = "improved"
	trendUnchanged    = "unchanged"
	noFindingsMessage = "No findings"
)

// NewCompareCmd creates the compare command.
// This command compares audit results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [domain]",
		Short: "Compare audit results with historical data",
		Long: `Compare displays differences between the current and previous audit results.

This command retrieves historical audit data from the database and shows:
- New findings that appeared since the last audit
- Resolved findings that are no longer present
- Changes in severity levels and performance metrics

The comparison requires at least two audits in the database for the specified
domain. Use 'seoscan audit' to perform audits and save results.

Examples:
  # Compare latest two audits for a domain
  seoscan compare example.com

  # List all audit history for a domain
  seoscan compare --list example.com

  # Compare with a specific historical audit by ID
  seoscan compare --with-audit-id 5 example.com

  # Compare audits since a specific date
  seoscan compare --since "2026-01-01" example.com

  # Output comparison in JSON format
  seoscan compare --json example.com

  # List all audited domains in the database
  seoscan compare --list-domains`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List audit history for the specified domain")
	cmd.Flags().BoolP("list-domains", "L", false,
		"List all audited domains in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-audit-id", "i", 0,
		"Compare with a specific audit by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first audit after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	// Database location
	cmd.Flags().String("db-dir", "",
		"Directory for the history database (default: XDG data directory)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-domains flag first (requires database but no domain)
	listDomains, err := cmd.Flags().GetBool("list-domains")
	if err != nil {
		return err
	}

	// Validate arguments before opening database (unless --list-domains)
	// This prevents database lock issues when validation fails
	var domain string
	if !listDomains {
		// Require a domain for other operations
		if len(args) == 0 {
			return errors.New("domain is required (use --list-domains to see available domains)")
		}

		// Accept a full URL too; the database is keyed by domain
		domain = pipeline.DomainOf(normalizeTarget(args[0]))
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Open database read-only so compare never creates an empty history
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database (run 'seoscan audit' first): %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list-domains flag
	if listDomains {
		return listAuditedDomains(ctx, db)
	}

	// Handle --list flag
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listAuditHistory(ctx, db, domain)
	}

	// Get output format flags
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	// Get comparison target flags
	withAuditID, err := cmd.Flags().GetInt64("with-audit-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	// Perform comparison
	return runComparison(ctx, db, domain, withAuditID, sinceDate, jsonOutput, markdownOutput)
}

// listAuditedDomains lists all domains that have audit records in the database.
func listAuditedDomains(ctx context.Context, db *database.AuditDB) error {
	domains, err := db.ListAuditedDomains(ctx)
	if err != nil {
		return fmt.Errorf("failed to list domains: %w", err)
	}

	if len(domains) == 0 {
		fmt.Println("No audited domains found in the database.")
		fmt.Println("\nUse 'seoscan audit <url>' to audit a website.")
		return nil
	}

	fmt.Printf("Audited domains (%d):\n\n", len(domains))
	for _, domain := range domains {
		fmt.Printf("  • %s\n", domain)
	}
	fmt.Println("\nUse 'seoscan compare --list <domain>' to see audit history for a domain.")

	return nil
}

// listAuditHistory lists all audit records for a specific domain.
func listAuditHistory(ctx context.Context, db *database.AuditDB, domain string) error {
	audits, err := db.GetAuditHistoryWithMetadata(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to get audit history: %w", err)
	}

	if len(audits) == 0 {
		fmt.Printf("No audit history found for %s\n", domain)
		fmt.Println("\nUse 'seoscan audit' to audit this domain.")
		return nil
	}

	fmt.Printf("Audit history for %s (%d audits):\n\n", domain, len(audits))
	fmt.Printf("  %-6s  %-20s  %-8s  %s\n", "ID", "Date", "Path", "Findings")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, meta := range audits {
		fmt.Printf("  %-6d  %-20s  %-8s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.PerformancePath,
			formatSeveritySummary(meta.SeveritySummary),
		)
	}

	fmt.Println("\nUse 'seoscan compare <domain>' to compare the latest two audits.")
	fmt.Println("Use 'seoscan compare --with-audit-id <id> <domain>' to compare with a specific audit.")

	return nil
}

// formatSeveritySummary formats the severity summary map into a human-readable string.
func formatSeveritySummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	if v := summary["critical"]; v > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", v))
	}
	if v := summary["high"]; v > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", v))
	}
	if v := summary["medium"]; v > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", v))
	}
	if v := summary["low"]; v > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", v))
	}
	if v := summary["info"]; v > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", v))
	}

	if len(parts) == 0 {
		return noFindingsMessage
	}
	return strings.Join(parts, " ")
}

// runComparison performs the actual comparison between audit reports.
func runComparison(ctx context.Context, db *database.AuditDB, domain string, withAuditID int64, sinceDate string, jsonOutput, markdownOutput bool) error {
	// Get the audit history
	reports, err := db.GetAuditHistory(ctx, domain, 0)
	if err != nil {
		return fmt.Errorf("failed to get audit history: %w", err)
	}

	if len(reports) == 0 {
		return fmt.Errorf("no audit history found for %s", domain)
	}

	if len(reports) < 2 && withAuditID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 audits are required for comparison (found %d)", len(reports))
	}

	// Determine which reports to compare
	var currentReport, previousReport *model.AuditReport

	// Latest report is always the current one
	currentReport = reports[0]

	if withAuditID > 0 {
		// Find the report with the specified ID
		previousReport, err = db.GetAuditReportByID(ctx, withAuditID)
		if err != nil {
			return fmt.Errorf("failed to get audit with ID %d: %w", withAuditID, err)
		}
		if previousReport == nil {
			return fmt.Errorf("audit with ID %d not found", withAuditID)
		}
		// Validate that the audit ID belongs to the same domain
		if previousReport.Domain != domain {
			return fmt.Errorf("audit ID %d belongs to %s, not %s", withAuditID, previousReport.Domain, domain)
		}
	} else if sinceDate != "" {
		// Parse the date and find the first (oldest) report at or after the specified date
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Reports are sorted by timestamp DESC (newest first), so iterate in reverse
		// to find the first (oldest) report at or after the date
		for i := len(reports) - 1; i >= 0; i-- {
			r := reports[i]
			if r.AuditedAt.After(parsedDate) || r.AuditedAt.Equal(parsedDate) {
				previousReport = r
				break // Stop at the first (oldest) matching report
			}
		}
		if previousReport == nil {
			return fmt.Errorf("no audits found since %s", sinceDate)
		}
		// If only one audit matches and it's the current report, we can't compare
		if previousReport == currentReport {
			return fmt.Errorf("only one audit found since %s; at least 2 audits are required for comparison", sinceDate)
		}
	} else {
		// Default: compare with the previous audit
		previousReport = reports[1]
	}

	// Generate comparison result
	comparison := compareReports(previousReport, currentReport)

	// Output the result
	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two audit reports.
type ComparisonResult struct {
	// Domain is the audited domain.
	Domain string `json:"domain"`

	// PreviousAudit contains metadata about the previous audit.
	PreviousAudit AuditSnapshot `json:"previous_audit"`

	// CurrentAudit contains metadata about the current audit.
	CurrentAudit AuditSnapshot `json:"current_audit"`

	// NewFindings contains findings that are new in the current audit.
	NewFindings []model.Finding `json:"new_findings,omitempty"`

	// ResolvedFindings contains findings that were in the previous audit but not in current.
	ResolvedFindings []model.Finding `json:"resolved_findings,omitempty"`

	// UnchangedCount is the number of findings that remain unchanged.
	UnchangedCount int `json:"unchanged_count"`

	// Trend describes the overall change in SEO health.
	Trend Trend `json:"trend"`
}

// AuditSnapshot contains metadata about an audit for comparison display.
type AuditSnapshot struct {
	// AuditedAt is when the audit was performed.
	AuditedAt time.Time `json:"audited_at"`

	// TotalFindings is the total number of findings in this audit.
	TotalFindings int `json:"total_findings"`

	// CriticalCount is the number of critical findings.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity findings.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity findings.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity findings.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational findings.
	InfoCount int `json:"info_count"`

	// TTFBMs is the measured time to first byte in milliseconds.
	TTFBMs int `json:"ttfb_ms"`

	// ResourceCount is the page's resource request count.
	ResourceCount int `json:"resource_count"`
}

// Trend describes the change in SEO health between audits.
type Trend struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// CriticalDelta is the change in critical findings count.
	CriticalDelta int `json:"critical_delta"`

	// HighDelta is the change in high severity findings count.
	HighDelta int `json:"high_delta"`

	// MediumDelta is the change in medium severity findings count.
	MediumDelta int `json:"medium_delta"`

	// LowDelta is the change in low severity findings count.
	LowDelta int `json:"low_delta"`

	// InfoDelta is the change in informational findings count.
	InfoDelta int `json:"info_delta"`

	// TTFBDeltaMs is the change in time to first byte.
	TTFBDeltaMs int `json:"ttfb_delta_ms"`

	// ResourceDelta is the change in resource request count.
	ResourceDelta int `json:"resource_delta"`
}

// compareReports compares two audit reports and generates a comparison result.
func compareReports(previous, current *model.AuditReport) *ComparisonResult {
	result := &ComparisonResult{
		Domain:        current.Domain,
		PreviousAudit: snapshotOf(previous),
		CurrentAudit:  snapshotOf(current),
	}

	// Build finding maps for comparison
	previousFindings := make(map[string]model.Finding)
	currentFindings := make(map[string]model.Finding)

	for _, f := range previous.Findings {
		previousFindings[findingKey(f)] = f
	}
	for _, f := range current.Findings {
		currentFindings[findingKey(f)] = f
	}

	// Find new findings (in current but not in previous)
	for key, finding := range currentFindings {
		if _, exists := previousFindings[key]; !exists {
			result.NewFindings = append(result.NewFindings, finding)
		}
	}

	// Find resolved findings (in previous but not in current)
	for key, finding := range previousFindings {
		if _, exists := currentFindings[key]; !exists {
			result.ResolvedFindings = append(result.ResolvedFindings, finding)
		} else {
			result.UnchangedCount++
		}
	}

	// Calculate trend
	result.Trend = calculateTrend(result.PreviousAudit, result.CurrentAudit)

	return result
}

// snapshotOf condenses a report into the comparison snapshot.
func snapshotOf(r *model.AuditReport) AuditSnapshot {
	summary := model.NewSummary(r)
	return AuditSnapshot{
		AuditedAt:     r.AuditedAt,
		TotalFindings: summary.TotalFindings(),
		CriticalCount: summary.CriticalCount,
		HighCount:     summary.HighCount,
		MediumCount:   summary.MediumCount,
		LowCount:      summary.LowCount,
		InfoCount:     summary.InfoCount,
		TTFBMs:        summary.TTFBMs,
		ResourceCount: summary.ResourceCount,
	}
}

// findingKey generates a unique key for a finding for comparison purposes.
func findingKey(f model.Finding) string {
	return f.Type + "|" + f.Value + "|" + f.Location
}

// calculateTrend calculates the change in SEO health between two audits.
func calculateTrend(previous, current AuditSnapshot) Trend {
	trend := Trend{
		CriticalDelta: current.CriticalCount - previous.CriticalCount,
		HighDelta:     current.HighCount - previous.HighCount,
		MediumDelta:   current.MediumCount - previous.MediumCount,
		LowDelta:      current.LowCount - previous.LowCount,
		InfoDelta:     current.InfoCount - previous.InfoCount,
		TTFBDeltaMs:   current.TTFBMs - previous.TTFBMs,
		ResourceDelta: current.ResourceCount - previous.ResourceCount,
	}

	// Determine overall direction based on weighted score
	// Critical and High severity changes have more weight
	previousScore := previous.CriticalCount*100 + previous.HighCount*50 + previous.MediumCount*10 + previous.LowCount*5 + previous.InfoCount
	currentScore := current.CriticalCount*100 + current.HighCount*50 + current.MediumCount*10 + current.LowCount*5 + current.InfoCount

	if currentScore < previousScore {
		trend.Direction = trendImproved
	} else if currentScore > previousScore {
		trend.Direction = trendWorsened
	} else {
		trend.Direction = trendUnchanged
	}

	return trend
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Audit Comparison: %s\n\n", result.Domain)

	// Trend summary
	fmt.Println("## Summary")
	fmt.Printf("\n**SEO Health:** %s\n\n", formatTrendDirection(result.Trend.Direction))

	// Audit metadata table
	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Date | %s | %s | - |\n",
		result.PreviousAudit.AuditedAt.Format("2006-01-02 15:04"),
		result.CurrentAudit.AuditedAt.Format("2006-01-02 15:04"))
	fmt.Printf("| Critical | %d | %d | %s |\n",
		result.PreviousAudit.CriticalCount,
		result.CurrentAudit.CriticalCount,
		formatDelta(result.Trend.CriticalDelta))
	fmt.Printf("| High | %d | %d | %s |\n",
		result.PreviousAudit.HighCount,
		result.CurrentAudit.HighCount,
		formatDelta(result.Trend.HighDelta))
	fmt.Printf("| Medium | %d | %d | %s |\n",
		result.PreviousAudit.MediumCount,
		result.CurrentAudit.MediumCount,
		formatDelta(result.Trend.MediumDelta))
	fmt.Printf("| Low | %d | %d | %s |\n",
		result.PreviousAudit.LowCount,
		result.CurrentAudit.LowCount,
		formatDelta(result.Trend.LowDelta))
	fmt.Printf("| Info | %d | %d | %s |\n",
		result.PreviousAudit.InfoCount,
		result.CurrentAudit.InfoCount,
		formatDelta(result.Trend.InfoDelta))
	fmt.Printf("| **Total** | **%d** | **%d** | **%s** |\n",
		result.PreviousAudit.TotalFindings,
		result.CurrentAudit.TotalFindings,
		formatDelta(result.CurrentAudit.TotalFindings-result.PreviousAudit.TotalFindings))
	fmt.Printf("| TTFB (ms) | %d | %d | %s |\n",
		result.PreviousAudit.TTFBMs,
		result.CurrentAudit.TTFBMs,
		formatDelta(result.Trend.TTFBDeltaMs))
	fmt.Printf("| Resources | %d | %d | %s |\n",
		result.PreviousAudit.ResourceCount,
		result.CurrentAudit.ResourceCount,
		formatDelta(result.Trend.ResourceDelta))

	// New findings
	if len(result.NewFindings) > 0 {
		fmt.Printf("\n## New Findings (%d)\n\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Printf("- **[%s]** %s: %s\n", f.SeverityText, f.Title, f.Value)
			if f.Location != "" {
				fmt.Printf("  - Location: `%s`\n", f.Location)
			}
		}
	}

	// Resolved findings
	if len(result.ResolvedFindings) > 0 {
		fmt.Printf("\n## Resolved Findings (%d)\n\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Printf("- ~~**[%s]** %s: %s~~\n", f.SeverityText, f.Title, f.Value)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\n---\n\n*%d findings unchanged*\n", result.UnchangedCount)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Audit Comparison: %s\n", result.Domain)
	fmt.Println(strings.Repeat("=", 60))

	// Trend summary
	fmt.Printf("\nSEO Health: %s\n", formatTrendDirection(result.Trend.Direction))

	// Audit dates
	fmt.Printf("\nPrevious audit: %s\n", result.PreviousAudit.AuditedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current audit:  %s\n", result.CurrentAudit.AuditedAt.Format("2006-01-02 15:04:05"))

	// Summary table
	fmt.Println("\nFindings Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Critical",
		result.PreviousAudit.CriticalCount, result.CurrentAudit.CriticalCount,
		formatDelta(result.Trend.CriticalDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "High",
		result.PreviousAudit.HighCount, result.CurrentAudit.HighCount,
		formatDelta(result.Trend.HighDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Medium",
		result.PreviousAudit.MediumCount, result.CurrentAudit.MediumCount,
		formatDelta(result.Trend.MediumDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Low",
		result.PreviousAudit.LowCount, result.CurrentAudit.LowCount,
		formatDelta(result.Trend.LowDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Info",
		result.PreviousAudit.InfoCount, result.CurrentAudit.InfoCount,
		formatDelta(result.Trend.InfoDelta))
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousAudit.TotalFindings, result.CurrentAudit.TotalFindings,
		formatDelta(result.CurrentAudit.TotalFindings-result.PreviousAudit.TotalFindings))

	// Performance deltas
	fmt.Println("\nPerformance:")
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "TTFB (ms)",
		result.PreviousAudit.TTFBMs, result.CurrentAudit.TTFBMs,
		formatDelta(result.Trend.TTFBDeltaMs))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Resources",
		result.PreviousAudit.ResourceCount, result.CurrentAudit.ResourceCount,
		formatDelta(result.Trend.ResourceDelta))

	// New findings
	if len(result.NewFindings) > 0 {
		fmt.Printf("\nNew Findings (%d):\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Printf("  [+] [%s] %s: %s\n", f.SeverityText, f.Title, f.Value)
			if f.Location != "" {
				fmt.Printf("      Location: %s\n", f.Location)
			}
		}
	}

	// Resolved findings
	if len(result.ResolvedFindings) > 0 {
		fmt.Printf("\nResolved Findings (%d):\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Printf("  [-] [%s] %s: %s\n", f.SeverityText, f.Title, f.Value)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d findings\n", result.UnchangedCount)
	}

	return nil
}

// formatTrendDirection formats the trend direction for display.
func formatTrendDirection(direction string) string {
	switch direction {
	case trendImproved:
		return "IMPROVED (issues decreased)"
	case trendWorsened:
		return "WORSENED (issues increased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
