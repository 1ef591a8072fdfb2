// Package pipeline sequences extraction, tree building, local persistence,
// remote submission and rendering for one course page.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/dgallion1/coursemap/internal/clock"
	"github.com/dgallion1/coursemap/internal/mindmap"
	"github.com/dgallion1/coursemap/internal/outline"
	"github.com/dgallion1/coursemap/internal/page"
	"github.com/dgallion1/coursemap/internal/remote"
	"github.com/dgallion1/coursemap/internal/render"
)

const (
	DefaultCourseHost       = "www.udemy.com"
	DefaultCoursePathPrefix = "/course/"
)

// Extractor reads an outline from a page; nil means no outline.
type Extractor interface {
	Extract(ctx context.Context, p page.Page) *outline.CourseOutline
}

// TreeBuilder turns a valid outline into a document.
type TreeBuilder interface {
	Build(o *outline.CourseOutline) *mindmap.Document
}

// LocalSink persists the outline. Its failure fails the run.
type LocalSink interface {
	SaveOutline(ctx context.Context, o *outline.CourseOutline) error
}

// RemoteSink submits the outline to a collaborator. Its failure is
// tolerated.
type RemoteSink interface {
	SubmitCourse(ctx context.Context, o *outline.CourseOutline) (*remote.Submission, error)
}

// RenderSink captures the document as an image.
type RenderSink interface {
	Render(ctx context.Context, doc *mindmap.Document, override string) (render.Artifact, error)
}

// Deps are the collaborators of an Orchestrator. Remote and Render are
// optional.
type Deps struct {
	Extractor Extractor
	Builder   TreeBuilder
	Local     LocalSink
	Remote    RemoteSink
	Render    RenderSink
}

// Options tune an Orchestrator.
type Options struct {
	CourseHost       string
	CoursePathPrefix string
	// Filename overrides the rendered image name.
	Filename string
	Clock    clock.Clock
}

// Orchestrator runs the pipeline for one page at a time. Each Run owns its
// outline and document; nothing is shared between runs.
type Orchestrator struct {
	deps     Deps
	host     string
	prefix   string
	filename string
	clk      clock.Clock
	log      *slog.Logger
}

func NewOrchestrator(deps Deps, opts Options, log *slog.Logger) *Orchestrator {
	if deps.Builder == nil {
		deps.Builder = mindmap.NewBuilder(nil)
	}
	if opts.CourseHost == "" {
		opts.CourseHost = DefaultCourseHost
	}
	if opts.CoursePathPrefix == "" {
		opts.CoursePathPrefix = DefaultCoursePathPrefix
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		deps:     deps,
		host:     opts.CourseHost,
		prefix:   opts.CoursePathPrefix,
		filename: opts.Filename,
		clk:      opts.Clock,
		log:      log,
	}
}

// CheckPage reports whether rawURL has the course-page shape: the fixed host
// and path prefix.
func (o *Orchestrator) CheckPage(rawURL string) error {
	return CheckCourseURL(rawURL, o.host, o.prefix)
}

// CheckCourseURL validates rawURL against host and path prefix.
func CheckCourseURL(rawURL, host, prefix string) error {
	if strings.TrimSpace(rawURL) == "" {
		return ErrNoActivePage
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrongPage, err)
	}
	if !strings.EqualFold(u.Hostname(), host) || !strings.HasPrefix(u.Path, prefix) {
		return fmt.Errorf("%w: %s", ErrWrongPage, rawURL)
	}
	return nil
}

// Run executes the pipeline against p. Local persistence always finishes
// before submission starts, and rendering never starts before persistence.
func (o *Orchestrator) Run(ctx context.Context, p page.Page) Outcome {
	run := newRun(uuid.NewString(), p.URL(), o.clk.Now())
	log := o.log.With("run_id", run.ID, "page_url", run.PageURL)
	out := Outcome{RunID: run.ID}

	advance := func(status RunStatus, phase string) {
		if err := run.SetStatus(status, phase, o.clk.Now()); err != nil {
			log.Error("run state", "error", err)
		}
	}
	finish := func(err error) Outcome {
		out.Err = err
		out.Status = run.Status()
		out.Run = run.Snapshot()
		return out
	}
	fail := func(phase string, err error) Outcome {
		advance(StatusFailed, phase)
		log.Info("run failed", "phase", phase, "error", err)
		return finish(err)
	}

	if err := o.CheckPage(run.PageURL); err != nil {
		return fail(PhaseWrongPage, err)
	}

	advance(StatusExtracting, "")
	ol := o.deps.Extractor.Extract(ctx, p)
	if err := ctx.Err(); err != nil {
		return fail(PhaseCancelled, err)
	}
	if !ol.Valid() {
		return fail(PhaseNoOutline, ErrNoOutline)
	}
	out.Outline = ol

	advance(StatusBuilding, "")
	doc := o.deps.Builder.Build(ol)
	out.Document = doc
	advance(StatusBuilt, "")
	log.Info("built mind map", "course", ol.Course, "sections", len(ol.Sections), "items", ol.ItemCount())

	advance(StatusPersisting, "")
	out.Local.Attempted = true
	if err := o.deps.Local.SaveOutline(ctx, ol); err != nil {
		out.Local.Err = err
		return fail(PhasePersistence, &PersistenceError{Err: err})
	}
	out.Local.OK = true

	if o.deps.Remote != nil {
		o.submit(ctx, log, ol, doc, &out.Remote)
	}
	if out.Remote.OK {
		advance(StatusSubmitted, "")
	} else {
		advance(StatusLocalOnly, "")
	}

	if o.deps.Render != nil {
		advance(StatusRenderTriggered, "")
		o.render(ctx, log, doc, &out.Render)
	}

	advance(StatusDone, "")
	log.Info("run done", "remote_ok", out.Remote.OK, "render_ok", out.Render.Attempted && out.Render.Err == nil)
	return finish(nil)
}

func (o *Orchestrator) submit(ctx context.Context, log *slog.Logger, ol *outline.CourseOutline, doc *mindmap.Document, step *StepOutcome) {
	step.Attempted = true
	sub, err := o.deps.Remote.SubmitCourse(ctx, ol)
	if err != nil {
		step.Err = &TransportError{Err: err}
		log.Warn("remote submission failed, kept local copy", "error", err)
		return
	}
	step.OK = true
	step.Locator = sub.Locator
	if sub.Document != nil && !mindmap.SameShape(doc, sub.Document) {
		step.ShapeMismatch = true
		log.Warn("remote document differs from local build")
	}
}

func (o *Orchestrator) render(ctx context.Context, log *slog.Logger, doc *mindmap.Document, step *RenderOutcome) {
	step.Attempted = true
	art, err := o.deps.Render.Render(ctx, doc, o.filename)
	if err != nil {
		step.Err = &RenderError{Err: err}
		if errors.Is(err, context.Canceled) {
			log.Info("render cancelled")
		} else {
			log.Warn("render failed", "error", err)
		}
		return
	}
	step.Filename = art.Filename
	step.Path = art.Path
}
