package model

// PageContent holds the on-page SEO data parsed from a page's HTML.
// This structure feeds the SEO checks and the recommendation rules.
//
// Design decision: We store parsed values rather than the raw DOM because:
// 1. The checks only need a small, stable subset of the page
// 2. The struct serializes cleanly into reports and the audit database
// 3. It decouples check logic from the HTML parsing library
type PageContent struct {
	// URL is the full URL of the audited page.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// Title is the text of the <title> element. Empty if absent.
	Title string `json:"title,omitempty"`

	// MetaDescription is the content of the description meta tag.
	MetaDescription string `json:"meta_description,omitempty"`

	// MetaRobots is the content of the robots meta tag (e.g. "noindex,nofollow").
	MetaRobots string `json:"meta_robots,omitempty"`

	// Canonical is the href of the rel=canonical link, resolved to an
	// absolute URL. Empty if absent.
	Canonical string `json:"canonical,omitempty"`

	// Headings maps heading level ("h1", "h2", "h3") to the heading texts
	// in document order.
	Headings map[string][]string `json:"headings,omitempty"`

	// ImagesWithoutAlt lists image URLs that have no alt attribute.
	ImagesWithoutAlt []string `json:"images_without_alt,omitempty"`

	// InternalLinks are absolute URLs on the same host as the page.
	InternalLinks []string `json:"internal_links,omitempty"`

	// ExternalLinks are absolute URLs on other hosts.
	ExternalLinks []string `json:"external_links,omitempty"`

	// HasStructuredData reports whether any ld+json structured data block
	// was found on the page.
	HasStructuredData bool `json:"has_structured_data"`
}

// NewPageContent returns a PageContent with its collections initialized.
func NewPageContent(url string) *PageContent {
	return &PageContent{
		URL:              url,
		Headings:         make(map[string][]string),
		ImagesWithoutAlt: make([]string, 0),
		InternalLinks:    make([]string, 0),
		ExternalLinks:    make([]string, 0),
	}
}

// Links returns all outgoing links, internal first.
func (p *PageContent) Links() []string {
	links := make([]string, 0, len(p.InternalLinks)+len(p.ExternalLinks))
	links = append(links, p.InternalLinks...)
	links = append(links, p.ExternalLinks...)
	return links
}
