// Package seo parses on-page SEO data and evaluates it against a fixed
// rule set. It produces findings (issues with severity) and
// recommendations (human-readable remediation advice), and checks
// outgoing links for breakage with bounded concurrency.
package seo
