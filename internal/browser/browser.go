// Package browser launches and connects to the Chromium instance used for
// live course pages and for rendering mind maps.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Options select how the browser is started.
type Options struct {
	Headless bool
	// Bin is an explicit browser binary; empty lets the launcher find or
	// download one.
	Bin string
	// ControlURL connects to an already running browser instead of
	// launching one.
	ControlURL string
}

// Browser is a connected browser and, when launched here, its process.
type Browser struct {
	rod      *rod.Browser
	launcher *launcher.Launcher
	log      *slog.Logger
}

// Launch starts (or connects to) a browser.
func Launch(ctx context.Context, opts Options, log *slog.Logger) (*Browser, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	b := &Browser{log: log}
	controlURL := opts.ControlURL
	if controlURL == "" {
		l := launcher.New().Context(ctx).Headless(opts.Headless)
		if opts.Bin != "" {
			l = l.Bin(opts.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		b.launcher = l
		controlURL = u
	}

	r := rod.New().Context(ctx).ControlURL(controlURL)
	if err := r.Connect(); err != nil {
		b.kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	b.rod = r
	log.Info("browser ready", "control_url", controlURL, "headless", opts.Headless)
	return b, nil
}

// Rod exposes the underlying rod browser.
func (b *Browser) Rod() *rod.Browser { return b.rod }

// OpenURL opens url in a new tab and leaves it open.
func (b *Browser) OpenURL(ctx context.Context, url string) error {
	p, err := b.rod.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	b.log.Info("opened page", "url", url, "target_id", p.TargetID)
	return nil
}

// Close disconnects and stops a browser this package launched.
func (b *Browser) Close() error {
	var err error
	if b.rod != nil {
		err = b.rod.Close()
	}
	b.kill()
	return err
}

func (b *Browser) kill() {
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}

// Lazy launches its browser on first use and reuses it afterwards. A failed
// launch is retried on the next call.
type Lazy struct {
	ctx  context.Context
	opts Options
	log  *slog.Logger

	mu sync.Mutex
	b  *Browser
}

// NewLazy returns a Lazy whose browser lives as long as ctx.
func NewLazy(ctx context.Context, opts Options, log *slog.Logger) *Lazy {
	return &Lazy{ctx: ctx, opts: opts, log: log}
}

// Get returns the shared browser, launching it if needed.
func (l *Lazy) Get() (*Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.b != nil {
		return l.b, nil
	}
	b, err := Launch(l.ctx, l.opts, l.log)
	if err != nil {
		return nil, err
	}
	l.b = b
	return b, nil
}

// OpenURL opens url in the shared browser.
func (l *Lazy) OpenURL(ctx context.Context, url string) error {
	b, err := l.Get()
	if err != nil {
		return err
	}
	return b.OpenURL(ctx, url)
}

// Close stops the browser if one was launched.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.b == nil {
		return nil
	}
	err := l.b.Close()
	l.b = nil
	return err
}
