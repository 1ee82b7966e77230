// Package main provides the entry point for the seoscan CLI.
//
// seoscan is an SEO auditing tool for websites. It fetches pages,
// measures loading performance, checks on-page SEO rules, and produces
// prioritized remediation reports.
//
// Usage:
//
//	seoscan audit https://example.com
//	seoscan audit site1.example site2.example
//
// See --help for all available options.
package main

// main is the entry point for seoscan.
func main() {
	Execute()
}
