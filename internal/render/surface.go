package render

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Size is the extent of the laid-out tree in CSS pixels.
type Size struct {
	W, H int
}

// Surface is a displayed mind map that can be manipulated and captured.
type Surface interface {
	ExpandAll(ctx context.Context) error
	CollapseAll(ctx context.Context) error
	ZoomIn(ctx context.Context) error
	ZoomOut(ctx context.Context) error
	// Size reports the extent of the whole tree, including nodes outside
	// the visible area.
	Size(ctx context.Context) (Size, error)
	// Shoot captures the tree and its watermark as a PNG, enlarging the
	// viewport to size first when it is non-zero.
	Shoot(ctx context.Context, size Size) ([]byte, error)
	Close() error
}

// Opener loads a rendered page onto a fresh surface.
type Opener interface {
	Open(ctx context.Context, pageURL string) (Surface, error)
}

// ReadyTimeout bounds how long a browser surface waits for the mind-map
// script to initialize.
const ReadyTimeout = 15 * time.Second

// RodOpener opens pages as tabs in a rod-controlled browser.
type RodOpener struct {
	Browser *rod.Browser
}

func (o RodOpener) Open(ctx context.Context, pageURL string) (Surface, error) {
	p, err := o.Browser.Context(ctx).Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", pageURL, err)
	}
	if err := p.WaitLoad(); err != nil {
		p.Close()
		return nil, fmt.Errorf("load %s: %w", pageURL, err)
	}
	if err := p.Timeout(ReadyTimeout).Wait(rod.Eval(`() => typeof window.jm !== 'undefined'`)); err != nil {
		p.Close()
		return nil, fmt.Errorf("mind map did not initialize: %w", err)
	}
	return &RodSurface{page: p}, nil
}

// RodSurface drives the page's jsMind instance.
type RodSurface struct {
	page *rod.Page
}

func (s *RodSurface) call(ctx context.Context, js string) error {
	_, err := s.page.Context(ctx).Eval(js)
	return err
}

func (s *RodSurface) ExpandAll(ctx context.Context) error {
	return s.call(ctx, `() => window.jm.expand_all()`)
}

func (s *RodSurface) CollapseAll(ctx context.Context) error {
	return s.call(ctx, `() => window.jm.collapse_all()`)
}

func (s *RodSurface) ZoomIn(ctx context.Context) error {
	return s.call(ctx, `() => window.jm.view.zoom_in()`)
}

func (s *RodSurface) ZoomOut(ctx context.Context) error {
	return s.call(ctx, `() => window.jm.view.zoom_out()`)
}

// Size reads the canvas extent jsMind computed for the current layout.
func (s *RodSurface) Size(ctx context.Context) (Size, error) {
	res, err := s.page.Context(ctx).Eval(`() => ({w: window.jm.view.size.w, h: window.jm.view.size.h})`)
	if err != nil {
		return Size{}, err
	}
	return Size{W: res.Value.Get("w").Int(), H: res.Value.Get("h").Int()}, nil
}

// Shoot hides the control panel, grows the viewport to fit the tree and
// captures the page. The viewport is restored afterwards.
func (s *RodSurface) Shoot(ctx context.Context, size Size) ([]byte, error) {
	if err := s.call(ctx, `() => { document.getElementById('controls').style.display = 'none' }`); err != nil {
		return nil, err
	}
	defer s.call(context.Background(), `() => { document.getElementById('controls').style.display = '' }`)

	if size.W > 0 && size.H > 0 {
		err := s.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             size.W,
			Height:            size.H,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			return nil, fmt.Errorf("resize viewport: %w", err)
		}
		defer s.page.SetViewport(nil)
		if err := s.call(ctx, `() => window.jm.resize()`); err != nil {
			return nil, fmt.Errorf("relayout: %w", err)
		}
	}

	img, err := s.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return img, nil
}

func (s *RodSurface) Close() error {
	return s.page.Close()
}
