package seo

import (
	"testing"
)

const sampleHTML = `<!DOCTYPE html>
<html>
<head>
<title>  Widget Store - Hand-made Widgets  </title>
<meta name="description" content="Buy hand-made widgets with free shipping. Our widgets are crafted by artisans and guaranteed for life.">
<meta name="robots" content="index,follow">
<link rel="canonical" href="/widgets">
<script type="application/ld+json">{"@type":"Product"}</script>
</head>
<body>
<h1>Hand-made Widgets</h1>
<h2>Why widgets</h2>
<h2>Pricing</h2>
<h3>Small print</h3>
<img src="/hero.png" alt="A widget">
<img src="/naked.png">
<img src="/also-naked.jpg">
<a href="/about">About</a>
<a href="/about">About again</a>
<a href="https://www.example.com/contact">Contact</a>
<a href="https://partner.example.org/deal">Partner</a>
<a href="#top">Top</a>
<a href="mailto:sales@example.com">Mail</a>
<a href="javascript:void(0)">JS</a>
</body>
</html>`

// TestParsePage tests extraction of every PageContent field.
func TestParsePage(t *testing.T) {
	t.Parallel()

	page, err := ParsePage("https://example.com/widgets", 200, []byte(sampleHTML))
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}

	if page.Title != "Widget Store - Hand-made Widgets" {
		t.Errorf("title = %q", page.Title)
	}
	if page.MetaDescription == "" {
		t.Error("meta description missing")
	}
	if page.MetaRobots != "index,follow" {
		t.Errorf("robots = %q", page.MetaRobots)
	}
	if page.Canonical != "https://example.com/widgets" {
		t.Errorf("canonical = %q, want resolved absolute URL", page.Canonical)
	}
	if !page.HasStructuredData {
		t.Error("structured data not detected")
	}

	if got := len(page.Headings["h1"]); got != 1 {
		t.Errorf("h1 count = %d, want 1", got)
	}
	if got := len(page.Headings["h2"]); got != 2 {
		t.Errorf("h2 count = %d, want 2", got)
	}
	if got := len(page.Headings["h3"]); got != 1 {
		t.Errorf("h3 count = %d, want 1", got)
	}

	if got := len(page.ImagesWithoutAlt); got != 2 {
		t.Errorf("images without alt = %d, want 2", got)
	}

	// /about deduplicated; www.example.com counts as internal;
	// anchor, mailto and javascript links are dropped.
	if got := len(page.InternalLinks); got != 2 {
		t.Errorf("internal links = %d, want 2: %v", got, page.InternalLinks)
	}
	if got := len(page.ExternalLinks); got != 1 {
		t.Errorf("external links = %d, want 1: %v", got, page.ExternalLinks)
	}
}

// TestParsePageEmpty tests a minimal document.
func TestParsePageEmpty(t *testing.T) {
	t.Parallel()

	page, err := ParsePage("https://example.com/", 200, []byte("<html><body></body></html>"))
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}

	if page.Title != "" || page.MetaDescription != "" || page.Canonical != "" {
		t.Error("empty document must yield empty fields")
	}
	if len(page.Headings["h1"]) != 0 {
		t.Error("expected no headings")
	}
	if page.HasStructuredData {
		t.Error("expected no structured data")
	}
}

// TestParsePageBadURL tests that an unparsable page URL is rejected.
func TestParsePageBadURL(t *testing.T) {
	t.Parallel()

	if _, err := ParsePage("://bad", 200, []byte("<html></html>")); err == nil {
		t.Error("expected error for invalid page url")
	}
}

// TestSameHost tests the www-insensitive host comparison.
func TestSameHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want bool
	}{
		{"example.com", "example.com", true},
		{"www.example.com", "example.com", true},
		{"Example.COM", "www.example.com", true},
		{"example.com", "other.com", false},
		{"sub.example.com", "example.com", false},
	}

	for _, tt := range tests {
		if got := sameHost(tt.a, tt.b); got != tt.want {
			t.Errorf("sameHost(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
