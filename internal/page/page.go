// Package page abstracts the course page the outline is read from, so the
// extractor runs the same way against a live browser tab and an HTML snapshot.
package page

import "context"

// Element is a node in the page that can be queried, read and clicked.
type Element interface {
	// Query returns the first matching descendant, or nil when none matches.
	Query(ctx context.Context, selector string) (Element, error)
	// QueryAll returns matching descendants in document order.
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	// Attr returns an attribute value and whether it is present.
	Attr(ctx context.Context, name string) (string, bool, error)
	// Text returns the element's text content, untrimmed.
	Text(ctx context.Context) (string, error)
	Click(ctx context.Context) error
}

// Page is a loaded course page.
type Page interface {
	URL() string
	Document(ctx context.Context) (Element, error)
}
