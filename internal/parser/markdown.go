package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/coursemap/internal/outline"
)

// MarkdownParser imports an outline written as Markdown:
//
//	# Course name
//	Instructor: Jane Doe
//	## Section heading
//	- item
//
// Lists directly under an H2 become that section's items. Nested lists are
// folded into their parent item.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, _ string) (*outline.CourseOutline, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	o := &outline.CourseOutline{}
	var current *outline.Section

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := inlineText(node, src)
			switch {
			case node.Level == 1 && o.Course == "":
				o.Course = title
			case node.Level == 2:
				o.Sections = append(o.Sections, outline.Section{Heading: title, Items: []string{}})
				current = &o.Sections[len(o.Sections)-1]
			}
		case *ast.Paragraph:
			if o.Instructor != "" {
				continue
			}
			if name, ok := instructorName(inlineText(node, src)); ok {
				o.Instructor = name
			}
		case *ast.List:
			if current == nil {
				continue
			}
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				if t := listItemText(item, src); t != "" {
					current.Items = append(current.Items, t)
				}
			}
		}
	}

	return fillMissing(o), nil
}

// listItemText joins the text blocks of a list item, skipping nested lists.
func listItemText(item ast.Node, src []byte) string {
	var parts []string
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() == ast.KindList {
			continue
		}
		if t := inlineText(c, src); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// inlineText collects the literal text of a node's inline descendants.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(t.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}
