// Package extract reads a course outline off a course page.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/coursemap/internal/clock"
	"github.com/dgallion1/coursemap/internal/outline"
	"github.com/dgallion1/coursemap/internal/page"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultTimeout      = 5000 * time.Millisecond
)

// Selectors locate the parts of a course page.
type Selectors struct {
	Curriculum     string
	ExpandToggle   string
	ExpandedAttr   string
	CourseTitle    string
	Instructor     string
	PanelContainer string
	Panel          string
	SectionTitle   string
	SectionList    string
	ListItem       string
	ItemRow        string
	ItemText       string
}

// DefaultSelectors matches the course landing page markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Curriculum:     `[data-purpose="course-curriculum"]`,
		ExpandToggle:   `[data-purpose="expand-toggle"]`,
		ExpandedAttr:   "aria-expanded",
		CourseTitle:    `[data-purpose="lead-title"]`,
		Instructor:     ".ud-instructor-links span",
		PanelContainer: "div:not([class]):not([id]):not([name]):not([style])",
		Panel:          ".accordion-panel-module--panel--Eb0it.section--panel--qYPjj",
		SectionTitle:   ".ud-accordion-panel-heading .section--section-title--svpHP",
		SectionList:    "ul.ud-unstyled-list",
		ListItem:       "li",
		ItemRow:        ".section--row--MuPRa",
		ItemText:       "span",
	}
}

// Options tune the expansion wait.
type Options struct {
	Selectors    Selectors
	PollInterval time.Duration
	Timeout      time.Duration
	Clock        clock.Clock
}

// Extractor reads course outlines from pages.
type Extractor struct {
	sel     Selectors
	poll    time.Duration
	timeout time.Duration
	clk     clock.Clock
	log     *slog.Logger
}

// New creates an Extractor; zero options take the defaults.
func New(opts Options, log *slog.Logger) *Extractor {
	if opts.Selectors == (Selectors{}) {
		opts.Selectors = DefaultSelectors()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Extractor{
		sel:     opts.Selectors,
		poll:    opts.PollInterval,
		timeout: opts.Timeout,
		clk:     opts.Clock,
		log:     log,
	}
}

// errNoOutline marks page shapes that carry no outline.
var errNoOutline = errors.New("no outline on page")

// Extract returns the page's outline, or nil when the page has no
// recognizable curriculum or no sections. It never fails: read errors are
// logged and degrade to nil.
func (x *Extractor) Extract(ctx context.Context, p page.Page) (result *outline.CourseOutline) {
	log := x.log.With("page_url", p.URL())
	defer func() {
		if r := recover(); r != nil {
			log.Error("extraction panicked", "panic", r)
			result = nil
		}
	}()

	o, err := x.extract(ctx, p, log)
	if err != nil {
		if errors.Is(err, errNoOutline) {
			log.Info("no outline found", "reason", err)
		} else {
			log.Debug("extraction failed", "error", err)
		}
		return nil
	}
	return o
}

func (x *Extractor) extract(ctx context.Context, p page.Page, log *slog.Logger) (*outline.CourseOutline, error) {
	doc, err := p.Document(ctx)
	if err != nil {
		return nil, err
	}

	curriculum, err := doc.Query(ctx, x.sel.Curriculum)
	if err != nil {
		return nil, fmt.Errorf("curriculum: %w", err)
	}
	if curriculum == nil {
		return nil, fmt.Errorf("%w: curriculum container missing", errNoOutline)
	}

	if err := x.expand(ctx, curriculum, log); err != nil {
		return nil, err
	}

	course, err := x.textOr(ctx, doc, x.sel.CourseTitle, outline.NotFound)
	if err != nil {
		return nil, fmt.Errorf("course title: %w", err)
	}
	instructor, err := x.textOr(ctx, doc, x.sel.Instructor, outline.NotFound)
	if err != nil {
		return nil, fmt.Errorf("instructor: %w", err)
	}

	container, err := curriculum.Query(ctx, x.sel.PanelContainer)
	if err != nil {
		return nil, fmt.Errorf("panel container: %w", err)
	}
	if container == nil {
		return nil, fmt.Errorf("%w: panel container missing", errNoOutline)
	}

	panels, err := container.QueryAll(ctx, x.sel.Panel)
	if err != nil {
		return nil, fmt.Errorf("panels: %w", err)
	}

	var sections []outline.Section
	for _, panel := range panels {
		section, ok, err := x.readPanel(ctx, panel)
		if err != nil {
			return nil, err
		}
		if ok {
			sections = append(sections, section)
		}
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: no sections", errNoOutline)
	}

	log.Debug("extracted outline", "sections", len(sections))
	return &outline.CourseOutline{
		Course:     course,
		Instructor: instructor,
		Sections:   sections,
	}, nil
}

// expand clicks the expand control when it reports collapsed, then waits for
// it to report expanded. Running out of time is not an error.
func (x *Extractor) expand(ctx context.Context, curriculum page.Element, log *slog.Logger) error {
	toggle, err := curriculum.Query(ctx, x.sel.ExpandToggle)
	if err != nil {
		return fmt.Errorf("expand toggle: %w", err)
	}
	if toggle == nil {
		return nil
	}
	state, _, err := toggle.Attr(ctx, x.sel.ExpandedAttr)
	if err != nil {
		return fmt.Errorf("expand state: %w", err)
	}
	if state != "false" {
		return nil
	}

	if err := toggle.Click(ctx); err != nil {
		return fmt.Errorf("click expand: %w", err)
	}

	start := x.clk.Now()
	expanded, err := WaitFor(ctx, x.clk, x.poll, x.timeout, func(ctx context.Context) (bool, error) {
		v, _, err := toggle.Attr(ctx, x.sel.ExpandedAttr)
		return v == "true", err
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("expansion wait aborted, reading current state", "error", err)
		return nil
	}
	if !expanded {
		log.Warn("curriculum did not report expanded, reading partial state", "waited", x.clk.Now().Sub(start))
	}
	return nil
}

func (x *Extractor) readPanel(ctx context.Context, panel page.Element) (outline.Section, bool, error) {
	title, err := panel.Query(ctx, x.sel.SectionTitle)
	if err != nil {
		return outline.Section{}, false, fmt.Errorf("section title: %w", err)
	}
	if title == nil {
		return outline.Section{}, false, nil
	}
	heading, err := trimmedText(ctx, title)
	if err != nil {
		return outline.Section{}, false, err
	}

	section := outline.Section{Heading: heading, Items: []string{}}

	list, err := panel.Query(ctx, x.sel.SectionList)
	if err != nil {
		return outline.Section{}, false, fmt.Errorf("section list: %w", err)
	}
	if list == nil {
		return section, true, nil
	}

	entries, err := list.QueryAll(ctx, x.sel.ListItem)
	if err != nil {
		return outline.Section{}, false, fmt.Errorf("list items: %w", err)
	}
	for _, entry := range entries {
		row, err := entry.Query(ctx, x.sel.ItemRow)
		if err != nil {
			return outline.Section{}, false, fmt.Errorf("item row: %w", err)
		}
		if row == nil {
			continue
		}
		label, err := row.Query(ctx, x.sel.ItemText)
		if err != nil {
			return outline.Section{}, false, fmt.Errorf("item text: %w", err)
		}
		if label == nil {
			continue
		}
		text, err := trimmedText(ctx, label)
		if err != nil {
			return outline.Section{}, false, err
		}
		section.Items = append(section.Items, text)
	}
	return section, true, nil
}

// textOr returns the trimmed text of the first match under root, or fallback
// when nothing matches or the text is empty.
func (x *Extractor) textOr(ctx context.Context, root page.Element, selector, fallback string) (string, error) {
	el, err := root.Query(ctx, selector)
	if err != nil {
		return "", err
	}
	if el == nil {
		return fallback, nil
	}
	text, err := trimmedText(ctx, el)
	if err != nil {
		return "", err
	}
	if text == "" {
		return fallback, nil
	}
	return text, nil
}

func trimmedText(ctx context.Context, el page.Element) (string, error) {
	text, err := el.Text(ctx)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
