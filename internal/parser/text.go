package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/coursemap/internal/outline"
)

// TextParser handles plain text outlines. Paragraphs are separated by blank
// lines. The first line of the file is the course and an "Instructor:" line
// in the opening paragraph names the instructor. Every later paragraph is a
// section: its first line is the heading and the remaining lines, with any
// bullet marker removed, are its items.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, _ string) (*outline.CourseOutline, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs [][]string
	var current []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, current)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	o := &outline.CourseOutline{}
	for i, para := range paragraphs {
		if i == 0 {
			o.Course = para[0]
			for _, line := range para[1:] {
				if name, ok := instructorName(line); ok && o.Instructor == "" {
					o.Instructor = name
				}
			}
			continue
		}
		if name, ok := instructorName(para[0]); ok && o.Instructor == "" && len(o.Sections) == 0 {
			o.Instructor = name
			continue
		}

		section := outline.Section{Heading: para[0], Items: []string{}}
		for _, line := range para[1:] {
			if item := stripBullet(line); item != "" {
				section.Items = append(section.Items, item)
			}
		}
		o.Sections = append(o.Sections, section)
	}

	return fillMissing(o), nil
}

func stripBullet(line string) string {
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):])
		}
	}
	return line
}
