package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/coursemap/internal/outline"
)

// CSVParser handles spreadsheet exports with one row per item. The first row
// names the columns; "section" is required, "item", "course" and
// "instructor" are optional. Rows sharing a section name are grouped in
// first-seen order and a row with an empty item adds an empty section.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, _ string) (*outline.CourseOutline, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	o := &outline.CourseOutline{}
	if len(records) == 0 {
		return fillMissing(o), nil
	}

	// First row is headers.
	col := map[string]int{}
	for i, h := range records[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["section"]; !ok {
		return nil, errors.New("parse csv: no section column")
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	index := map[string]int{}
	for _, row := range records[1:] {
		if o.Course == "" {
			o.Course = cell(row, "course")
		}
		if o.Instructor == "" {
			o.Instructor = cell(row, "instructor")
		}

		heading := cell(row, "section")
		if heading == "" {
			continue
		}
		i, ok := index[heading]
		if !ok {
			i = len(o.Sections)
			index[heading] = i
			o.Sections = append(o.Sections, outline.Section{Heading: heading, Items: []string{}})
		}
		if item := cell(row, "item"); item != "" {
			o.Sections[i].Items = append(o.Sections[i].Items, item)
		}
	}

	return fillMissing(o), nil
}
