package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/useoai/seoscan/internal/model"
)

// openTestDB opens a database in a temporary directory.
func openTestDB(t *testing.T) *AuditDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return db
}

// testReport builds an audit report for storage tests.
func testReport(url, domain string) *model.AuditReport {
	r := model.NewAuditReport(url, domain)
	r.PerformancePath = model.PathDynamic
	r.Performance = model.NewPerformanceProfile()
	r.Performance.TTFBMs = 180
	r.Performance.GzipEnabled = true
	r.AddFinding(model.Finding{
		Type:     "missing_title",
		Title:    "missing title",
		Severity: model.SeverityCritical,
	})
	r.AddFinding(model.Finding{
		Type:     "missing_canonical",
		Title:    "missing canonical",
		Severity: model.SeverityMedium,
	})
	return r
}

// TestOpen tests database creation and open modes.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dir, "seoscan.db")); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
	})

	t.Run("fails when database missing and creation disabled", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false, EnableWAL: false}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Fatal("expected an error for a missing database")
		}
	})

	t.Run("creates nested directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested", "data")
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer db.Close()
	})
}

// TestSaveAndGetLatestAuditReport tests report round-trips.
func TestSaveAndGetLatestAuditReport(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	t.Run("round-trips a report", func(t *testing.T) {
		report := testReport("https://example.com/", "example.com")

		id, err := db.SaveAuditReport(ctx, report)
		if err != nil {
			t.Fatalf("SaveAuditReport failed: %v", err)
		}
		if id == 0 {
			t.Error("expected a non-zero report ID")
		}

		got, err := db.GetLatestAuditReport(ctx, "example.com")
		if err != nil {
			t.Fatalf("GetLatestAuditReport failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected a report")
		}
		if got.URL != "https://example.com/" {
			t.Errorf("url = %q", got.URL)
		}
		if got.Performance == nil || got.Performance.TTFBMs != 180 {
			t.Errorf("performance profile not preserved: %+v", got.Performance)
		}
		if len(got.Findings) != 2 {
			t.Errorf("findings = %d, want 2", len(got.Findings))
		}
	})

	t.Run("returns nil for unknown domain", func(t *testing.T) {
		got, err := db.GetLatestAuditReport(ctx, "nobody.example")
		if err != nil {
			t.Fatalf("GetLatestAuditReport failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil report, got %+v", got)
		}
	})

	t.Run("latest wins for repeated audits", func(t *testing.T) {
		first := testReport("https://repeat.example/", "repeat.example")
		second := testReport("https://repeat.example/about", "repeat.example")

		if _, err := db.SaveAuditReport(ctx, first); err != nil {
			t.Fatalf("SaveAuditReport failed: %v", err)
		}
		if _, err := db.SaveAuditReport(ctx, second); err != nil {
			t.Fatalf("SaveAuditReport failed: %v", err)
		}

		got, err := db.GetLatestAuditReport(ctx, "repeat.example")
		if err != nil {
			t.Fatalf("GetLatestAuditReport failed: %v", err)
		}
		if got == nil || got.URL != "https://repeat.example/about" {
			t.Errorf("expected the most recent report, got %+v", got)
		}
	})
}

// TestGetAuditHistory tests history queries and the limit parameter.
func TestGetAuditHistory(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	urls := []string{
		"https://history.example/one",
		"https://history.example/two",
		"https://history.example/three",
	}
	for _, u := range urls {
		if _, err := db.SaveAuditReport(ctx, testReport(u, "history.example")); err != nil {
			t.Fatalf("SaveAuditReport failed: %v", err)
		}
	}

	t.Run("returns full history newest first", func(t *testing.T) {
		reports, err := db.GetAuditHistory(ctx, "history.example", 0)
		if err != nil {
			t.Fatalf("GetAuditHistory failed: %v", err)
		}
		if len(reports) != 3 {
			t.Fatalf("reports = %d, want 3", len(reports))
		}
		if reports[0].URL != urls[2] {
			t.Errorf("first report = %q, want newest %q", reports[0].URL, urls[2])
		}
	})

	t.Run("honors limit", func(t *testing.T) {
		reports, err := db.GetAuditHistory(ctx, "history.example", 2)
		if err != nil {
			t.Fatalf("GetAuditHistory failed: %v", err)
		}
		if len(reports) != 2 {
			t.Errorf("reports = %d, want 2", len(reports))
		}
	})

	t.Run("empty history for unknown domain", func(t *testing.T) {
		reports, err := db.GetAuditHistory(ctx, "nobody.example", 0)
		if err != nil {
			t.Fatalf("GetAuditHistory failed: %v", err)
		}
		if len(reports) != 0 {
			t.Errorf("reports = %d, want 0", len(reports))
		}
	})
}

// TestGetAuditHistoryWithMetadata tests the lightweight history listing.
func TestGetAuditHistoryWithMetadata(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.SaveAuditReport(ctx, testReport("https://meta.example/", "meta.example")); err != nil {
		t.Fatalf("SaveAuditReport failed: %v", err)
	}

	metas, err := db.GetAuditHistoryWithMetadata(ctx, "meta.example")
	if err != nil {
		t.Fatalf("GetAuditHistoryWithMetadata failed: %v", err)
	}
	if len(metas) != 1 {
		t.Fatalf("metadata entries = %d, want 1", len(metas))
	}

	meta := metas[0]
	if meta.Domain != "meta.example" {
		t.Errorf("domain = %q", meta.Domain)
	}
	if meta.URL != "https://meta.example/" {
		t.Errorf("url = %q", meta.URL)
	}
	if meta.PerformancePath != model.PathDynamic {
		t.Errorf("performance path = %q", meta.PerformancePath)
	}
	if meta.SeveritySummary["critical"] != 1 || meta.SeveritySummary["medium"] != 1 {
		t.Errorf("severity summary = %v", meta.SeveritySummary)
	}
	if meta.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}

// TestGetAuditReportByID tests direct lookups.
func TestGetAuditReportByID(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.SaveAuditReport(ctx, testReport("https://byid.example/", "byid.example"))
	if err != nil {
		t.Fatalf("SaveAuditReport failed: %v", err)
	}

	t.Run("finds stored report", func(t *testing.T) {
		got, err := db.GetAuditReportByID(ctx, id)
		if err != nil {
			t.Fatalf("GetAuditReportByID failed: %v", err)
		}
		if got == nil || got.URL != "https://byid.example/" {
			t.Errorf("unexpected report: %+v", got)
		}
	})

	t.Run("returns nil for unknown id", func(t *testing.T) {
		got, err := db.GetAuditReportByID(ctx, id+1000)
		if err != nil {
			t.Fatalf("GetAuditReportByID failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

// TestListAuditedDomains tests distinct domain listing.
func TestListAuditedDomains(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	for _, domain := range []string{"b.example", "a.example", "b.example"} {
		if _, err := db.SaveAuditReport(ctx, testReport("https://"+domain+"/", domain)); err != nil {
			t.Fatalf("SaveAuditReport failed: %v", err)
		}
	}

	domains, err := db.ListAuditedDomains(ctx)
	if err != nil {
		t.Fatalf("ListAuditedDomains failed: %v", err)
	}
	if len(domains) != 2 {
		t.Fatalf("domains = %v, want 2 entries", domains)
	}
	if domains[0] != "a.example" || domains[1] != "b.example" {
		t.Errorf("domains not sorted: %v", domains)
	}
}

// TestHasRecentAudit tests the recency check.
func TestHasRecentAudit(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.SaveAuditReport(ctx, testReport("https://recent.example/", "recent.example")); err != nil {
		t.Fatalf("SaveAuditReport failed: %v", err)
	}

	t.Run("recent audit found", func(t *testing.T) {
		recent, err := db.HasRecentAudit(ctx, "recent.example", time.Hour)
		if err != nil {
			t.Fatalf("HasRecentAudit failed: %v", err)
		}
		if !recent {
			t.Error("expected a recent audit")
		}
	})

	t.Run("unknown domain not recent", func(t *testing.T) {
		recent, err := db.HasRecentAudit(ctx, "nobody.example", time.Hour)
		if err != nil {
			t.Fatalf("HasRecentAudit failed: %v", err)
		}
		if recent {
			t.Error("expected no recent audit")
		}
	})
}

// TestPageRecords tests the page cache upsert semantics.
func TestPageRecords(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	record := &PageRecord{
		URL:             "https://pages.example/",
		Domain:          "pages.example",
		StatusCode:      200,
		Title:           "Welcome",
		MetaDescription: "A test page",
	}

	t.Run("inserts and reads back", func(t *testing.T) {
		if _, err := db.UpsertPageRecord(ctx, record); err != nil {
			t.Fatalf("UpsertPageRecord failed: %v", err)
		}

		got, err := db.GetPageRecord(ctx, record.URL, record.Domain)
		if err != nil {
			t.Fatalf("GetPageRecord failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected a record")
		}
		if got.Title != "Welcome" || got.StatusCode != 200 {
			t.Errorf("unexpected record: %+v", got)
		}
	})

	t.Run("upsert replaces existing record", func(t *testing.T) {
		updated := *record
		updated.StatusCode = 301
		updated.Title = "Moved"

		if _, err := db.UpsertPageRecord(ctx, &updated); err != nil {
			t.Fatalf("UpsertPageRecord failed: %v", err)
		}

		got, err := db.GetPageRecord(ctx, record.URL, record.Domain)
		if err != nil {
			t.Fatalf("GetPageRecord failed: %v", err)
		}
		if got.StatusCode != 301 || got.Title != "Moved" {
			t.Errorf("record was not updated: %+v", got)
		}
	})

	t.Run("missing record returns nil", func(t *testing.T) {
		got, err := db.GetPageRecord(ctx, "https://pages.example/missing", "pages.example")
		if err != nil {
			t.Fatalf("GetPageRecord failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

// TestParseTimestamp tests the SQLite timestamp format fallbacks.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{"sqlite default", "2026-08-26 14:30:00", false},
		{"iso8601 with z", "2026-08-26T14:30:00Z", false},
		{"iso8601 no tz", "2026-08-26T14:30:00", false},
		{"rfc3339", "2026-08-26T14:30:00+09:00", false},
		{"with milliseconds", "2026-08-26 14:30:00.123", false},
		{"garbage", "not a timestamp", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) = %v, zero = %v", tt.input, got, tt.zero)
			}
		})
	}
}
