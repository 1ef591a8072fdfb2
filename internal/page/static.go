package page

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

const ariaExpanded = "aria-expanded"

// Static is a page parsed from saved HTML. It runs no scripts; clicking a
// disclosure control flips its aria-expanded attribute from "false" to
// "true" so extraction sees the expanded state a browser would report.
type Static struct {
	url string
	doc *goquery.Document
}

// ParseHTML parses an HTML snapshot captured from url.
func ParseHTML(r io.Reader, url string) (*Static, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Static{url: url, doc: goquery.NewDocumentFromNode(root)}, nil
}

// ParseHTMLString is ParseHTML over a string.
func ParseHTMLString(s, url string) (*Static, error) {
	return ParseHTML(strings.NewReader(s), url)
}

func (p *Static) URL() string { return p.url }

func (p *Static) Document(context.Context) (Element, error) {
	return &staticElement{sel: p.doc.Selection}, nil
}

type staticElement struct {
	sel *goquery.Selection
}

func compile(selector string) (cascadia.Selector, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("selector %q: %w", selector, err)
	}
	return m, nil
}

func (e *staticElement) Query(_ context.Context, selector string) (Element, error) {
	m, err := compile(selector)
	if err != nil {
		return nil, err
	}
	found := e.sel.FindMatcher(m).First()
	if found.Length() == 0 {
		return nil, nil
	}
	return &staticElement{sel: found}, nil
}

func (e *staticElement) QueryAll(_ context.Context, selector string) ([]Element, error) {
	m, err := compile(selector)
	if err != nil {
		return nil, err
	}
	var out []Element
	e.sel.FindMatcher(m).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &staticElement{sel: s})
	})
	return out, nil
}

func (e *staticElement) Attr(_ context.Context, name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *staticElement) Text(context.Context) (string, error) {
	return e.sel.Text(), nil
}

func (e *staticElement) Click(context.Context) error {
	if v, ok := e.sel.Attr(ariaExpanded); ok && v == "false" {
		e.sel.SetAttr(ariaExpanded, "true")
	}
	return nil
}
