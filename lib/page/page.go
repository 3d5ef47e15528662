// Package page defines the capability through which probes see supplier
// pages. The core never owns a browser: it is handed something that can
// navigate, expose content and answer selector queries. The default
// implementation fetches static HTML over HTTP; a rendering engine can be
// slotted in behind the same interface without touching probe logic.
package page

import (
	"context"
	"time"
)

// Element is one matched node on a page.
type Element interface {
	// Text returns the element's visible text, whitespace-collapsed.
	Text() string
	// Attr returns the named attribute or "" when absent.
	Attr(name string) string
}

// Page is a live view onto one supplier listing.
type Page interface {
	// Navigate loads url and returns the final HTTP status. The timeout
	// bounds the whole navigation including redirects.
	Navigate(ctx context.Context, url string, timeout time.Duration) (int, error)
	// Content returns the current document's full text content.
	Content(ctx context.Context) (string, error)
	// Query returns the first element matching selector, or false.
	Query(ctx context.Context, selector string) (Element, bool)
	// QueryAll returns every element matching selector.
	QueryAll(ctx context.Context, selector string) []Element
	// WaitFor blocks until one of selectors is present or timeout elapses.
	WaitFor(ctx context.Context, selectors []string, timeout time.Duration) error
	// Evaluate runs a script in the page, where supported.
	Evaluate(ctx context.Context, script string) (string, error)
	// URL reports the page's current location after redirects.
	URL() string
}
