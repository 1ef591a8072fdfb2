// Package render turns mind-map documents into the self-contained page the
// rendering surface displays, and captures that page as a PNG.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/dgallion1/coursemap/internal/mindmap"
)

// DefaultWatermark is burned into every rendered image.
const DefaultWatermark = "map-my-udemy"

// PageOptions control the rendered page.
type PageOptions struct {
	Title     string
	Watermark string
	// Filename is the name the in-page screenshot button downloads as. The
	// screenshot plugin adds the .png extension itself.
	Filename string
}

type pageData struct {
	Title     string
	Watermark string
	Filename  string
	Doc       *mindmap.Document
}

// The document is embedded as a JS value; html/template JSON-encodes it
// and escapes anything that could close the script element.
var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<link type="text/css" rel="stylesheet" href="https://cdn.jsdelivr.net/npm/jsmind@0.8.1/style/jsmind.css" />
<script src="https://cdn.jsdelivr.net/npm/dom-to-image@2.6.0/dist/dom-to-image.min.js"></script>
<script src="https://cdn.jsdelivr.net/npm/jsmind@0.8.1/es6/jsmind.js"></script>
<script src="https://cdn.jsdelivr.net/npm/jsmind@0.8.1/es6/jsmind.draggable-node.js"></script>
<script src="https://cdn.jsdelivr.net/npm/jsmind@0.8.1/es6/jsmind.screenshot.js"></script>
<style>
  jmnode { max-width: fit-content; }
  jmnodes.theme-greensea jmnode.selected { background-color: #1abc9c; color: #fff; }
  #jsmind_container { width: 100%; height: 100vh; border: 0; background: #ffffff; overflow: hidden; }
  #controls { position: absolute; top: 0.5rem; right: 25px; width: 10rem; padding: 0.5rem; background-color: aliceblue; z-index: 500; display: flex; flex-direction: column; gap: 0.5rem; }
  #watermark { position: fixed; right: 1rem; bottom: 0.5rem; color: #7f8c8d; font: 12px sans-serif; z-index: 400; }
</style>
</head>
<body>
<div id="jsmind_container"></div>
<div id="controls">
  <button id="shoot-button">Take Screenshot</button>
  <button id="expand-button">Expand All</button>
  <button id="collapse-button">Collapse All</button>
  <button id="zoom-in-button">Zoom In</button>
  <button id="zoom-out-button">Zoom Out</button>
</div>
<div id="watermark">{{.Watermark}}</div>
<script>
  var mindMap = {{.Doc}};
  function initMindMap() {
    if (typeof jsMind === 'undefined') {
      setTimeout(initMindMap, 100);
      return;
    }
    var jm = new jsMind({
      container: 'jsmind_container',
      editable: false,
      theme: 'greensea',
      support_html: false,
      view: { enable_device_pixel_ratio: true },
      plugin: {
        screenshot: {
          filename: {{.Filename}},
          watermark: { left: '', right: {{.Watermark}} }
        }
      }
    });
    jm.init();
    jm.show(mindMap);
    document.getElementById('shoot-button').onclick = function () { jm.expand_all(); jm.shoot(); };
    document.getElementById('expand-button').onclick = function () { jm.expand_all(); };
    document.getElementById('collapse-button').onclick = function () { jm.collapse_all(); };
    document.getElementById('zoom-in-button').onclick = function () { jm.view.zoom_in(); };
    document.getElementById('zoom-out-button').onclick = function () { jm.view.zoom_out(); };
    window.jm = jm;
  }
  initMindMap();
</script>
</body>
</html>
`))

// WritePage renders doc as an HTML page to w.
func WritePage(w io.Writer, doc *mindmap.Document, opts PageOptions) error {
	if doc == nil {
		return fmt.Errorf("render page: nil document")
	}
	if opts.Title == "" {
		opts.Title = "Map My Udemy"
	}
	if opts.Watermark == "" {
		opts.Watermark = DefaultWatermark
	}
	if opts.Filename == "" {
		opts.Filename = Filename(doc, "")
	}
	return pageTmpl.Execute(w, pageData{
		Title:     opts.Title,
		Watermark: opts.Watermark,
		Filename:  strings.TrimSuffix(opts.Filename, ".png"),
		Doc:       doc,
	})
}

// Page renders doc and returns the page bytes.
func Page(doc *mindmap.Document, opts PageOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePage(&buf, doc, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename is the download name for doc's image: the override when set,
// otherwise the root label with a .png suffix.
func Filename(doc *mindmap.Document, override string) string {
	if override != "" {
		return override
	}
	return doc.Root().Topic + ".png"
}
