package render

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/coursemap/internal/clock"
	"github.com/dgallion1/coursemap/internal/mindmap"
	"github.com/dgallion1/coursemap/internal/outline"
)

func sampleDoc(course string) *mindmap.Document {
	b := mindmap.NewBuilder(&mindmap.Counter{})
	return b.Build(&outline.CourseOutline{
		Course:     course,
		Instructor: "Y",
		Sections: []outline.Section{
			{Heading: "Intro", Items: []string{"A", "B"}},
			{Heading: "Empty", Items: []string{}},
		},
	})
}

func TestPage_EmbedsDocumentAndControls(t *testing.T) {
	doc := sampleDoc("Go in Practice")
	page, err := Page(doc, PageOptions{})
	require.NoError(t, err)
	html := string(page)

	for _, want := range []string{
		"Take Screenshot", "Expand All", "Collapse All", "Zoom In", "Zoom Out",
		DefaultWatermark, "jsmind@0.8.1", "node_tree", "1.2. B", `filename: "Go in Practice",`,
	} {
		assert.Contains(t, html, want)
	}
}

func TestPage_ScreenshotFilenameWithoutExtension(t *testing.T) {
	page, err := Page(sampleDoc("X"), PageOptions{})
	require.NoError(t, err)
	assert.Contains(t, string(page), `filename: "X",`)
	assert.NotContains(t, string(page), "X.png")

	page, err = Page(sampleDoc("X"), PageOptions{Filename: "map.png"})
	require.NoError(t, err)
	assert.Contains(t, string(page), `filename: "map",`)
	assert.NotContains(t, string(page), "map.png")
}

func TestPage_EscapesScriptBreakout(t *testing.T) {
	doc := sampleDoc(`</script><script>alert(1)</script>`)
	page, err := Page(doc, PageOptions{Watermark: "wm"})
	require.NoError(t, err)
	html := string(page)
	assert.NotContains(t, html, "<script>alert(1)")
	assert.Contains(t, html, ">wm<")
}

func TestPage_NilDocument(t *testing.T) {
	_, err := Page(nil, PageOptions{})
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	doc := sampleDoc("X")
	assert.Equal(t, "X.png", Filename(doc, ""))
	assert.Equal(t, "custom.png", Filename(doc, "custom.png"))
}

func TestArtifacts_OverwriteKeepsOneOfEach(t *testing.T) {
	dir := t.TempDir()
	a, err := NewArtifacts(dir, PageOptions{})
	require.NoError(t, err)

	_, err = a.ReadPage()
	assert.ErrorIs(t, err, ErrNoPage)

	for _, name := range []string{"first", "second", "third"} {
		w, err := a.Write(sampleDoc(name))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, DocumentFile), w.DocumentPath)
		assert.Equal(t, filepath.Join(dir, PageFile), w.PagePath)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	assert.ElementsMatch(t, []string{DocumentFile, PageFile}, names)

	data, err := os.ReadFile(a.DocumentPath())
	require.NoError(t, err)
	var doc mindmap.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "third", doc.Root().Topic)

	page, err := a.ReadPage()
	require.NoError(t, err)
	assert.Contains(t, string(page), "third")
}

func TestArtifacts_ConcurrentWrites(t *testing.T) {
	a, err := NewArtifacts(t.TempDir(), PageOptions{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.Write(sampleDoc("X"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(a.DocumentPath())
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestArtifacts_WriteImageStaysInDir(t *testing.T) {
	dir := t.TempDir()
	a, err := NewArtifacts(dir, PageOptions{})
	require.NoError(t, err)

	path, err := a.WriteImage("../escape/a.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, ".._escape_a.png", filepath.Base(path))
}

type fakeSurface struct {
	calls    []string
	size     Size
	sizeErr  error
	shotSize Size
	png      []byte
	err      error
	closed   bool
}

func (s *fakeSurface) record(name string) error {
	s.calls = append(s.calls, name)
	return nil
}

func (s *fakeSurface) ExpandAll(context.Context) error   { return s.record("expand") }
func (s *fakeSurface) CollapseAll(context.Context) error { return s.record("collapse") }
func (s *fakeSurface) ZoomIn(context.Context) error      { return s.record("zoom_in") }
func (s *fakeSurface) ZoomOut(context.Context) error     { return s.record("zoom_out") }
func (s *fakeSurface) Size(context.Context) (Size, error) {
	s.record("size")
	return s.size, s.sizeErr
}
func (s *fakeSurface) Shoot(_ context.Context, size Size) ([]byte, error) {
	s.record("shoot")
	s.shotSize = size
	return s.png, s.err
}
func (s *fakeSurface) Close() error { s.closed = true; return nil }

type fakeOpener struct {
	surface *fakeSurface
	url     string
	err     error
}

func (o *fakeOpener) Open(_ context.Context, pageURL string) (Surface, error) {
	o.url = pageURL
	if o.err != nil {
		return nil, o.err
	}
	return o.surface, nil
}

func TestRenderer_Render(t *testing.T) {
	dir := t.TempDir()
	a, err := NewArtifacts(dir, PageOptions{})
	require.NoError(t, err)
	surface := &fakeSurface{png: []byte("\x89PNG")}
	opener := &fakeOpener{surface: surface}
	start := time.Unix(0, 0)
	clk := clock.NewFake(start)

	r := NewRenderer(a, opener, RendererOptions{Settle: DefaultSettle, Clock: clk}, nil)
	doc := sampleDoc("X")
	before := doc.Clone()

	art, err := r.Render(context.Background(), doc, "")
	require.NoError(t, err)

	assert.Equal(t, "X.png", art.Filename)
	assert.Equal(t, filepath.Join(dir, "X.png"), art.Path)
	img, err := os.ReadFile(art.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), img)

	assert.True(t, strings.HasPrefix(opener.url, "file://"))
	assert.True(t, strings.HasSuffix(opener.url, PageFile))
	assert.Equal(t, []string{"expand", "size", "shoot"}, surface.calls)
	assert.True(t, surface.closed)
	assert.Equal(t, DefaultSettle, clk.Now().Sub(start))
	assert.Equal(t, before, doc, "canonical document is untouched")
}

func TestRenderer_ShootsWholeTree(t *testing.T) {
	a, err := NewArtifacts(t.TempDir(), PageOptions{})
	require.NoError(t, err)
	// A tree larger than any default browser window.
	full := Size{W: 4200, H: 3100}
	surface := &fakeSurface{png: []byte("p"), size: full}
	r := NewRenderer(a, &fakeOpener{surface: surface}, RendererOptions{Clock: clock.NewFake(time.Unix(0, 0))}, nil)

	_, err = r.Render(context.Background(), sampleDoc("X"), "")
	require.NoError(t, err)
	assert.Equal(t, full, surface.shotSize)
	assert.Equal(t, []string{"expand", "size", "shoot"}, surface.calls, "measured after expanding")
}

func TestRenderer_Override(t *testing.T) {
	a, err := NewArtifacts(t.TempDir(), PageOptions{})
	require.NoError(t, err)
	r := NewRenderer(a, &fakeOpener{surface: &fakeSurface{png: []byte("p")}}, RendererOptions{Clock: clock.NewFake(time.Unix(0, 0))}, nil)

	art, err := r.Render(context.Background(), sampleDoc("X"), "map.png")
	require.NoError(t, err)
	assert.Equal(t, "map.png", art.Filename)
}

func TestRenderer_Failures(t *testing.T) {
	a, err := NewArtifacts(t.TempDir(), PageOptions{})
	require.NoError(t, err)
	clk := clock.NewFake(time.Unix(0, 0))

	_, err = NewRenderer(a, &fakeOpener{err: errors.New("no browser")}, RendererOptions{Clock: clk}, nil).
		Render(context.Background(), sampleDoc("X"), "")
	assert.ErrorContains(t, err, "no browser")

	surface := &fakeSurface{err: errors.New("capture failed")}
	_, err = NewRenderer(a, &fakeOpener{surface: surface}, RendererOptions{Clock: clk}, nil).
		Render(context.Background(), sampleDoc("X"), "")
	assert.ErrorContains(t, err, "capture failed")
	assert.True(t, surface.closed)

	surface = &fakeSurface{sizeErr: errors.New("no layout")}
	_, err = NewRenderer(a, &fakeOpener{surface: surface}, RendererOptions{Clock: clk}, nil).
		Render(context.Background(), sampleDoc("X"), "")
	assert.ErrorContains(t, err, "no layout")
	assert.NotContains(t, surface.calls, "shoot")
	assert.True(t, surface.closed)
}
