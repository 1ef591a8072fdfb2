package render

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/dgallion1/coursemap/internal/clock"
	"github.com/dgallion1/coursemap/internal/mindmap"
)

// DefaultSettle is how long a surface is given to lay out before capture.
const DefaultSettle = 500 * time.Millisecond

// Artifact is a captured image.
type Artifact struct {
	Path     string
	Filename string
}

// Renderer writes a document's page, loads it on a surface, lets it settle
// and stores the captured PNG next to the other artifacts.
type Renderer struct {
	artifacts *Artifacts
	opener    Opener
	settle    time.Duration
	clk       clock.Clock
	log       *slog.Logger
}

// RendererOptions configure a Renderer.
type RendererOptions struct {
	Settle time.Duration
	Clock  clock.Clock
}

func NewRenderer(artifacts *Artifacts, opener Opener, opts RendererOptions, log *slog.Logger) *Renderer {
	if opts.Settle < 0 {
		opts.Settle = 0
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Renderer{
		artifacts: artifacts,
		opener:    opener,
		settle:    opts.Settle,
		clk:       opts.Clock,
		log:       log,
	}
}

// Render captures doc as an image named by Filename(doc, override). The
// surface works on a copy; doc is not modified.
func (r *Renderer) Render(ctx context.Context, doc *mindmap.Document, override string) (Artifact, error) {
	name := Filename(doc, override)
	view := doc.Clone()

	written, err := r.artifacts.Write(view)
	if err != nil {
		return Artifact{}, err
	}

	surface, err := r.opener.Open(ctx, fileURL(written.PagePath))
	if err != nil {
		return Artifact{}, fmt.Errorf("open surface: %w", err)
	}
	defer surface.Close()

	if !clock.Sleep(r.clk, r.settle, ctx.Done()) {
		return Artifact{}, ctx.Err()
	}
	if err := surface.ExpandAll(ctx); err != nil {
		return Artifact{}, fmt.Errorf("expand surface: %w", err)
	}
	size, err := surface.Size(ctx)
	if err != nil {
		return Artifact{}, fmt.Errorf("measure surface: %w", err)
	}
	png, err := surface.Shoot(ctx, size)
	if err != nil {
		return Artifact{}, fmt.Errorf("shoot surface: %w", err)
	}

	path, err := r.artifacts.WriteImage(name, png)
	if err != nil {
		return Artifact{}, err
	}
	r.log.Info("rendered mind map", "filename", name, "path", path, "bytes", len(png))
	return Artifact{Path: path, Filename: name}, nil
}

func fileURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
