// Package parser imports course outlines from files.
package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/coursemap/internal/outline"
)

// Parser converts raw file bytes into a CourseOutline.
type Parser interface {
	Parse(r io.Reader, filename string) (*outline.CourseOutline, error)
}

// SupportedExtensions lists file extensions outlines can be imported from.
var SupportedExtensions = map[string]bool{
	".json":     true,
	".md":       true,
	".markdown": true,
	".txt":      true,
	".csv":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported outline format: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ParseFile opens path and parses it with the parser for its extension.
func ParseFile(path string) (*outline.CourseOutline, error) {
	p, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open outline: %w", err)
	}
	defer f.Close()
	return p.Parse(f, filepath.Base(path))
}

// JSONParser reads the outline record as stored and submitted.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, _ string) (*outline.CourseOutline, error) {
	return outline.Decode(r)
}

// instructorName returns the name from an "Instructor: name" line.
func instructorName(line string) (string, bool) {
	label := strings.ToLower(outline.InstructorLabel)
	if !strings.HasPrefix(strings.ToLower(line), label) {
		return "", false
	}
	return strings.TrimSpace(line[len(label):]), true
}

// fillMissing replaces empty names with the sentinel.
func fillMissing(o *outline.CourseOutline) *outline.CourseOutline {
	if o.Course == "" {
		o.Course = outline.NotFound
	}
	if o.Instructor == "" {
		o.Instructor = outline.NotFound
	}
	if o.Sections == nil {
		o.Sections = []outline.Section{}
	}
	return o
}
