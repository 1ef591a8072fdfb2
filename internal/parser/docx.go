package parser

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/coursemap/internal/outline"
)

// DOCXParser reads Word documents laid out as the outline export writes
// them.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, _ string) (*outline.CourseOutline, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	return ParseDOCX(bytes.NewReader(data), int64(len(data)))
}

var (
	sectionOrdinal = regexp.MustCompile(`^\d+\. `)
	itemOrdinal    = regexp.MustCompile(`^\d+\.\d+\. `)
)

// ParseDOCX reads an outline from a document where the first level-1
// heading is the course, an "Instructor:" paragraph names the instructor,
// level-2 headings start sections and other paragraphs under a section are
// its items. One leading ordinal is stripped from headings and items.
func ParseDOCX(r io.ReaderAt, size int64) (*outline.CourseOutline, error) {
	doc, err := docx.Parse(r, size)
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	o := &outline.CourseOutline{Sections: []outline.Section{}}
	var current *outline.Section
	flush := func() {
		if current != nil {
			o.Sections = append(o.Sections, *current)
			current = nil
		}
	}

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}

		switch headingLevel(para) {
		case 1:
			if o.Course == "" {
				o.Course = text
			}
		case 2:
			flush()
			current = &outline.Section{
				Heading: sectionOrdinal.ReplaceAllString(text, ""),
				Items:   []string{},
			}
		case 0:
			if name, ok := instructorName(text); ok && o.Instructor == "" {
				o.Instructor = name
				continue
			}
			if current != nil {
				current.Items = append(current.Items, itemOrdinal.ReplaceAllString(text, ""))
			}
		}
	}
	flush()

	return fillMissing(o), nil
}

func headingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	switch strings.TrimPrefix(style, "heading") {
	case "1":
		return 1
	case "2":
		return 2
	case "3", "4", "5", "6":
		return 3
	}
	return 0
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
