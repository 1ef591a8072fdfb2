package page

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Live is a course page open in a browser tab.
type Live struct {
	page *rod.Page
	url  string
}

// Open navigates a new tab to url and waits for the load event.
func Open(ctx context.Context, browser *rod.Browser, url string) (*Live, error) {
	p, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("wait load: %w", err)
	}
	return &Live{page: p, url: url}, nil
}

// Wrap adapts an already open rod page.
func Wrap(p *rod.Page) *Live {
	return &Live{page: p}
}

// URL returns the tab's current address, falling back to the opened one.
func (p *Live) URL() string {
	if info, err := p.page.Info(); err == nil && info.URL != "" {
		return info.URL
	}
	return p.url
}

func (p *Live) Document(ctx context.Context) (Element, error) {
	el, err := p.page.Context(ctx).Element("html")
	if err != nil {
		return nil, fmt.Errorf("document element: %w", err)
	}
	return &liveElement{el: el}, nil
}

// Close closes the tab.
func (p *Live) Close() error {
	return p.page.Close()
}

type liveElement struct {
	el *rod.Element
}

func (e *liveElement) Query(ctx context.Context, selector string) (Element, error) {
	has, found, err := e.el.Context(ctx).Has(selector)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	return &liveElement{el: found}, nil
}

func (e *liveElement) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	found, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	out := make([]Element, 0, len(found))
	for _, el := range found {
		out = append(out, &liveElement{el: el})
	}
	return out, nil
}

func (e *liveElement) Attr(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *liveElement) Text(ctx context.Context) (string, error) {
	v, err := e.el.Context(ctx).Property("textContent")
	if err != nil {
		return "", err
	}
	return v.Str(), nil
}

func (e *liveElement) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}
