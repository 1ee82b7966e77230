package main

import (
	"context"
	"testing"
	"time"

	"github.com/useoai/seoscan/internal/database"
	"github.com/useoai/seoscan/internal/model"
)

// TestNewCompareCmd tests the compare command creation.
func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "compare [domain]" {
			t.Errorf("expected use 'compare [domain]', got %q", cmd.Use)
		}
	})

	t.Run("has list flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("list")
		if flag == nil {
			t.Fatal("expected list flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
	})

	t.Run("has list-domains flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("list-domains")
		if flag == nil {
			t.Fatal("expected list-domains flag")
		}
		if flag.Shorthand != "L" {
			t.Errorf("expected shorthand 'L', got %q", flag.Shorthand)
		}
	})

	t.Run("has with-audit-id flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("with-audit-id")
		if flag == nil {
			t.Fatal("expected with-audit-id flag")
		}
		if flag.Shorthand != "i" {
			t.Errorf("expected shorthand 'i', got %q", flag.Shorthand)
		}
	})

	t.Run("has since flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("since") == nil {
			t.Fatal("expected since flag")
		}
	})

	t.Run("has db-dir flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("db-dir") == nil {
			t.Fatal("expected db-dir flag")
		}
	})
}

// TestRunCompareCmdRequiresDomain tests that compare without arguments fails.
func TestRunCompareCmdRequiresDomain(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"compare"})

	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error when no domain is given")
	}
}

// TestRunCompareCmdMissingDatabase tests that compare fails cleanly without history.
func TestRunCompareCmdMissingDatabase(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"compare", "--db-dir", t.TempDir(), "example.com"})

	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error when the database does not exist")
	}
}

// compareTestReport builds a report with the given findings and TTFB.
func compareTestReport(domain string, ttfb int, findings ...model.Finding) *model.AuditReport {
	r := model.NewAuditReport("https://"+domain+"/", domain)
	r.PerformancePath = model.PathDynamic
	r.Performance = model.NewPerformanceProfile()
	r.Performance.TTFBMs = ttfb
	for _, f := range findings {
		r.AddFinding(f)
	}
	return r
}

// TestCompareReports tests finding diffs between two audits.
func TestCompareReports(t *testing.T) {
	t.Parallel()

	missingTitle := model.Finding{Type: "missing_title", Title: "missing title", Severity: model.SeverityCritical}
	brokenLinks := model.Finding{Type: "broken_links", Title: "broken links", Severity: model.SeverityHigh, Value: "2 broken links"}
	noLazy := model.Finding{Type: "no_lazy_loading", Title: "no lazy loading", Severity: model.SeverityLow}

	previous := compareTestReport("example.com", 800, missingTitle, noLazy)
	current := compareTestReport("example.com", 300, brokenLinks, noLazy)

	result := compareReports(previous, current)

	t.Run("identifies new findings", func(t *testing.T) {
		t.Parallel()
		if len(result.NewFindings) != 1 || result.NewFindings[0].Type != "broken_links" {
			t.Errorf("unexpected new findings: %+v", result.NewFindings)
		}
	})

	t.Run("identifies resolved findings", func(t *testing.T) {
		t.Parallel()
		if len(result.ResolvedFindings) != 1 || result.ResolvedFindings[0].Type != "missing_title" {
			t.Errorf("unexpected resolved findings: %+v", result.ResolvedFindings)
		}
	})

	t.Run("counts unchanged findings", func(t *testing.T) {
		t.Parallel()
		if result.UnchangedCount != 1 {
			t.Errorf("unchanged = %d, want 1", result.UnchangedCount)
		}
	})

	t.Run("computes performance deltas", func(t *testing.T) {
		t.Parallel()
		if result.Trend.TTFBDeltaMs != -500 {
			t.Errorf("ttfb delta = %d, want -500", result.Trend.TTFBDeltaMs)
		}
	})

	t.Run("losing a critical finding improves the trend", func(t *testing.T) {
		t.Parallel()
		if result.Trend.Direction != trendImproved {
			t.Errorf("direction = %q, want %q", result.Trend.Direction, trendImproved)
		}
	})
}

// TestCalculateTrend tests the weighted trend direction.
func TestCalculateTrend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		previous AuditSnapshot
		current  AuditSnapshot
		want     string
	}{
		{
			name:     "new critical worsens",
			previous: AuditSnapshot{},
			current:  AuditSnapshot{CriticalCount: 1},
			want:     trendWorsened,
		},
		{
			name:     "resolved high improves",
			previous: AuditSnapshot{HighCount: 2},
			current:  AuditSnapshot{HighCount: 1},
			want:     trendImproved,
		},
		{
			name:     "identical counts unchanged",
			previous: AuditSnapshot{MediumCount: 3},
			current:  AuditSnapshot{MediumCount: 3},
			want:     trendUnchanged,
		},
		{
			name:     "critical outweighs many lows",
			previous: AuditSnapshot{LowCount: 10},
			current:  AuditSnapshot{CriticalCount: 1},
			want:     trendWorsened,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := calculateTrend(tt.previous, tt.current)
			if got.Direction != tt.want {
				t.Errorf("direction = %q, want %q", got.Direction, tt.want)
			}
		})
	}
}

// TestRunComparison tests the DB-backed comparison flow.
func TestRunComparison(t *testing.T) {
	t.Parallel()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	missingTitle := model.Finding{Type: "missing_title", Title: "missing title", Severity: model.SeverityCritical}

	if _, err := db.SaveAuditReport(ctx, compareTestReport("cmp.example", 700, missingTitle)); err != nil {
		t.Fatalf("SaveAuditReport failed: %v", err)
	}
	if _, err := db.SaveAuditReport(ctx, compareTestReport("cmp.example", 200)); err != nil {
		t.Fatalf("SaveAuditReport failed: %v", err)
	}

	t.Run("compares latest two audits", func(t *testing.T) {
		if err := runComparison(ctx, db, "cmp.example", 0, "", false, false); err != nil {
			t.Errorf("runComparison failed: %v", err)
		}
	})

	t.Run("fails for unknown domain", func(t *testing.T) {
		if err := runComparison(ctx, db, "nobody.example", 0, "", false, false); err == nil {
			t.Error("expected error for unknown domain")
		}
	})

	t.Run("fails with a single audit", func(t *testing.T) {
		if _, err := db.SaveAuditReport(ctx, compareTestReport("single.example", 100)); err != nil {
			t.Fatalf("SaveAuditReport failed: %v", err)
		}
		if err := runComparison(ctx, db, "single.example", 0, "", false, false); err == nil {
			t.Error("expected error when only one audit exists")
		}
	})

	t.Run("rejects audit id from another domain", func(t *testing.T) {
		id, err := db.SaveAuditReport(ctx, compareTestReport("other.example", 100))
		if err != nil {
			t.Fatalf("SaveAuditReport failed: %v", err)
		}
		if err := runComparison(ctx, db, "cmp.example", id, "", false, false); err == nil {
			t.Error("expected error for audit id of another domain")
		}
	})

	t.Run("rejects malformed since date", func(t *testing.T) {
		if err := runComparison(ctx, db, "cmp.example", 0, "26-08-2026", false, false); err == nil {
			t.Error("expected error for malformed date")
		}
	})
}

// TestFormatSeveritySummary tests history listing formatting.
func TestFormatSeveritySummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		summary map[string]int
		want    string
	}{
		{"nil map", nil, "N/A"},
		{"empty map", map[string]int{}, noFindingsMessage},
		{"all zero", map[string]int{"critical": 0, "low": 0}, noFindingsMessage},
		{"mixed", map[string]int{"critical": 1, "medium": 2, "info": 3}, "C:1 M:2 I:3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatSeveritySummary(tt.summary); got != tt.want {
				t.Errorf("formatSeveritySummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestFormatDelta tests signed delta formatting.
func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		delta int
		want  string
	}{
		{3, "+3"},
		{-2, "-2"},
		{0, "0"},
	}

	for _, tt := range tests {
		if got := formatDelta(tt.delta); got != tt.want {
			t.Errorf("formatDelta(%d) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}

// TestSnapshotOf tests condensing a report for comparison.
func TestSnapshotOf(t *testing.T) {
	t.Parallel()

	r := compareTestReport("snap.example", 250,
		model.Finding{Type: "missing_title", Severity: model.SeverityCritical},
		model.Finding{Type: "missing_canonical", Severity: model.SeverityMedium},
	)
	r.AuditedAt = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	snap := snapshotOf(r)
	if snap.TotalFindings != 2 {
		t.Errorf("total = %d, want 2", snap.TotalFindings)
	}
	if snap.CriticalCount != 1 || snap.MediumCount != 1 {
		t.Errorf("unexpected counts: %+v", snap)
	}
	if snap.TTFBMs != 250 {
		t.Errorf("ttfb = %d, want 250", snap.TTFBMs)
	}
	if !snap.AuditedAt.Equal(r.AuditedAt) {
		t.Error("audit time not preserved")
	}
}
