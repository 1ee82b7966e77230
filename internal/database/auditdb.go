package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/useoai/seoscan/internal/model"
)

// AuditDB provides SQLite-based storage for audit reports and history.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all audited domains
// rather than one file per domain. This simplifies history queries across
// domains and backup/restore operations.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AuditDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, "seoscan.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		// Check if database file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	-- Audit reports store complete audit results as JSON
	CREATE TABLE IF NOT EXISTS audit_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT NOT NULL,
		url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		performance_path TEXT,
		report_json TEXT NOT NULL,
		severity_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_domain ON audit_reports(domain);
	CREATE INDEX IF NOT EXISTS idx_reports_url ON audit_reports(url);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON audit_reports(timestamp);

	-- Page records cache individual page fetches so repeat audits can
	-- skip unchanged pages
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		domain TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		status_code INTEGER,
		title TEXT,
		meta_description TEXT,
		UNIQUE(url, domain)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	CREATE INDEX IF NOT EXISTS idx_pages_domain ON pages(domain);
	CREATE INDEX IF NOT EXISTS idx_pages_timestamp ON pages(timestamp);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// PageRecord represents a cached page fetch.
type PageRecord struct {
	ID              int64
	URL             string
	Domain          string
	Timestamp       time.Time
	StatusCode      int
	Title           string
	MetaDescription string
}

// UpsertPageRecord inserts or updates a page record.
// Uses UPSERT to handle duplicates (same URL + domain).
func (adb *AuditDB) UpsertPageRecord(ctx context.Context, record *PageRecord) (int64, error) {
	query := `
	INSERT INTO pages (url, domain, status_code, title, meta_description)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(url, domain) DO UPDATE SET
		status_code = excluded.status_code,
		title = excluded.title,
		meta_description = excluded.meta_description,
		timestamp = CURRENT_TIMESTAMP
	`

	result, err := adb.db.ExecContext(ctx, query,
		record.URL,
		record.Domain,
		record.StatusCode,
		record.Title,
		record.MetaDescription,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert page record: %w", err)
	}

	return result.LastInsertId()
}

// GetPageRecord retrieves a page record by URL and domain.
func (adb *AuditDB) GetPageRecord(ctx context.Context, url, domain string) (*PageRecord, error) {
	query := `
	SELECT id, url, domain, timestamp, status_code, title, meta_description
	FROM pages
	WHERE url = ? AND domain = ?
	`

	var record PageRecord
	var timestamp string

	err := adb.db.QueryRowContext(ctx, query, url, domain).Scan(
		&record.ID,
		&record.URL,
		&record.Domain,
		&timestamp,
		&record.StatusCode,
		&record.Title,
		&record.MetaDescription,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page record: %w", err)
	}

	// Parse timestamp (SQLite may return different formats depending on version/configuration)
	record.Timestamp = parseTimestamp(timestamp)

	return &record, nil
}

// HasRecentAudit checks if a domain was audited within the specified duration.
func (adb *AuditDB) HasRecentAudit(ctx context.Context, domain string, duration time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM audit_reports
	WHERE domain = ? AND timestamp > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(duration.Seconds()))

	var count int
	err := adb.db.QueryRowContext(ctx, query, domain, modifier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent audit: %w", err)
	}

	return count > 0, nil
}

// SaveAuditReport saves a complete audit report as JSON.
func (adb *AuditDB) SaveAuditReport(ctx context.Context, report *model.AuditReport) (int64, error) {
	// Serialize report to JSON
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	// Create severity summary for cheap history queries
	summary := model.NewSummary(report)
	severitySummary := map[string]int{
		"critical": summary.CriticalCount,
		"high":     summary.HighCount,
		"medium":   summary.MediumCount,
		"low":      summary.LowCount,
		"info":     summary.InfoCount,
	}
	severityJSON, _ := json.Marshal(severitySummary) //nolint:errcheck,errchkjson // severitySummary is a simple map; Marshal won't fail

	query := `
	INSERT INTO audit_reports (domain, url, performance_path, report_json, severity_summary)
	VALUES (?, ?, ?, ?, ?)
	`

	result, err := adb.db.ExecContext(ctx, query,
		report.Domain,
		report.URL,
		report.PerformancePath,
		string(reportJSON),
		string(severityJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save audit report: %w", err)
	}

	return result.LastInsertId()
}

// GetLatestAuditReport retrieves the most recent audit report for a domain.
func (adb *AuditDB) GetLatestAuditReport(ctx context.Context, domain string) (*model.AuditReport, error) {
	query := `
	SELECT report_json FROM audit_reports
	WHERE domain = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := adb.db.QueryRowContext(ctx, query, domain).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit report: %w", err)
	}

	var report model.AuditReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListAuditedDomains returns a list of all audited domains.
func (adb *AuditDB) ListAuditedDomains(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT domain FROM audit_reports
	ORDER BY domain
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}

	return domains, rows.Err()
}

// GetAuditHistory retrieves audit reports for a domain, newest first.
// A limit of 0 returns the full history.
func (adb *AuditDB) GetAuditHistory(ctx context.Context, domain string, limit int) ([]*model.AuditReport, error) {
	query := `
	SELECT report_json FROM audit_reports
	WHERE domain = ?
	ORDER BY timestamp DESC, id DESC
	`
	args := []interface{}{domain}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := adb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	defer rows.Close()

	var reports []*model.AuditReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.AuditReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// AuditMetadata contains summary information about a stored audit.
// This is used for displaying audit history without loading the full report.
type AuditMetadata struct {
	// ID is the unique identifier of the audit report in the database.
	ID int64

	// Domain is the audited domain.
	Domain string

	// URL is the audited page URL.
	URL string

	// Timestamp is when the audit was performed.
	Timestamp time.Time

	// PerformancePath records which analysis path produced the profile.
	PerformancePath string

	// SeveritySummary contains counts of findings by severity level.
	SeveritySummary map[string]int
}

// GetAuditHistoryWithMetadata retrieves audit metadata for a domain.
// This is more efficient than GetAuditHistory when only metadata is needed.
func (adb *AuditDB) GetAuditHistoryWithMetadata(ctx context.Context, domain string) ([]AuditMetadata, error) {
	query := `
	SELECT id, domain, url, timestamp, performance_path, severity_summary
	FROM audit_reports
	WHERE domain = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := adb.db.QueryContext(ctx, query, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	defer rows.Close()

	var results []AuditMetadata
	for rows.Next() {
		var meta AuditMetadata
		var timestamp string
		var path sql.NullString
		var severityJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Domain, &meta.URL, &timestamp, &path, &severityJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		// Parse timestamp
		meta.Timestamp = parseTimestamp(timestamp)
		meta.PerformancePath = path.String

		// Parse severity summary
		if severityJSON.Valid && severityJSON.String != "" {
			if err := json.Unmarshal([]byte(severityJSON.String), &meta.SeveritySummary); err != nil {
				meta.SeveritySummary = make(map[string]int)
			}
		} else {
			meta.SeveritySummary = make(map[string]int)
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetAuditReportByID retrieves an audit report by its database ID.
func (adb *AuditDB) GetAuditReportByID(ctx context.Context, id int64) (*model.AuditReport, error) {
	query := `
	SELECT report_json FROM audit_reports
	WHERE id = ?
	`

	var reportJSON string
	err := adb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit report: %w", err)
	}

	var report model.AuditReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
