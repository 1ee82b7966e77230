// Package model defines the core data structures used throughout seoscan.
//
// This package contains the following main types:
//   - PerformanceProfile: Resource-usage profile of an audited page
//   - PageContent: Parsed on-page SEO data (title, meta tags, headings, links)
//   - AuditReport: The main audit result structure
//   - Finding: A single SEO issue with a severity level
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (performance, seo, pipeline, report) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
