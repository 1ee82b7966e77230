package seo

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/useoai/seoscan/internal/model"
)

// headingLevels are the heading tags collected into PageContent.
// Deeper levels carry little SEO signal and are skipped.
var headingLevels = []string{"h1", "h2", "h3"}

// ParsePage extracts the on-page SEO data from an HTML document.
// Relative link and canonical URLs are resolved against pageURL.
func ParsePage(pageURL string, statusCode int, body []byte) (*model.PageContent, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("html parse failed: %w", err)
	}

	page := model.NewPageContent(pageURL)
	page.StatusCode = statusCode
	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	page.MetaDescription = metaContent(doc, "description")
	page.MetaRobots = metaContent(doc, "robots")

	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		if resolved := resolveURL(base, href); resolved != "" {
			page.Canonical = resolved
		}
	}

	for _, level := range headingLevels {
		doc.Find(level).Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				page.Headings[level] = append(page.Headings[level], text)
			}
		})
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if _, ok := s.Attr("alt"); ok {
			return
		}
		if src, ok := s.Attr("src"); ok && src != "" {
			page.ImagesWithoutAlt = append(page.ImagesWithoutAlt, resolveURL(base, src))
		}
	})

	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved := resolveURL(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true

		target, err := url.Parse(resolved)
		if err != nil {
			return
		}
		if sameHost(base.Hostname(), target.Hostname()) {
			page.InternalLinks = append(page.InternalLinks, resolved)
		} else {
			page.ExternalLinks = append(page.ExternalLinks, resolved)
		}
	})

	page.HasStructuredData = doc.Find(`script[type="application/ld+json"]`).Length() > 0

	return page, nil
}

// metaContent returns the content attribute of a named meta tag.
func metaContent(doc *goquery.Document, name string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[name="%s"]`, name)).First().Attr("content")
	return strings.TrimSpace(content)
}

// resolveURL resolves href against base and returns an absolute
// HTTP(S) URL, or "" for anchors, javascript:, mailto: and the like.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}

// sameHost compares hosts ignoring a www prefix, so www.example.com and
// example.com count as the same site.
func sameHost(a, b string) bool {
	return strings.TrimPrefix(strings.ToLower(a), "www.") ==
		strings.TrimPrefix(strings.ToLower(b), "www.")
}
