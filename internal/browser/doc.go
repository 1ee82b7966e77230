// Package browser manages headless Chrome sessions for dynamic page
// analysis. It exposes a small Page interface over chromedp so that
// callers (and their tests) never depend on a running browser, and a
// Pool that bounds how many tabs are open at once.
package browser
