package outline

import (
	"encoding/json"
	"fmt"
	"io"
)

// NotFound stands in for a course or instructor name the page did not carry.
const NotFound = "Not found"

// StorageKey is the local persistence key the latest extracted outline is kept under.
const StorageKey = "udemy-course"

// InstructorLabel prefixes the instructor line in document forms of an outline.
const InstructorLabel = "Instructor:"

// CourseOutline is the normalized record produced by one extraction attempt.
type CourseOutline struct {
	Course     string    `json:"course"`
	Instructor string    `json:"instructor"`
	Sections   []Section `json:"section-content"`
}

// Section is one curriculum panel: a heading and its ordered items.
type Section struct {
	Heading string   `json:"section-heading"`
	Items   []string `json:"section-items"`
}

// Valid reports whether the outline has at least one section.
func (o *CourseOutline) Valid() bool {
	return o != nil && len(o.Sections) > 0
}

// ItemCount returns the total number of items across all sections.
func (o *CourseOutline) ItemCount() int {
	n := 0
	for _, s := range o.Sections {
		n += len(s.Items)
	}
	return n
}

// CheckRequired returns the names of required fields that are missing.
// Empty strings count as missing, as does an empty section list.
func (o *CourseOutline) CheckRequired() []string {
	var missing []string
	if o.Course == "" {
		missing = append(missing, "course")
	}
	if o.Instructor == "" {
		missing = append(missing, "instructor")
	}
	if len(o.Sections) == 0 {
		missing = append(missing, "section-content")
	}
	return missing
}

// Decode reads a JSON outline.
func Decode(r io.Reader) (*CourseOutline, error) {
	var o CourseOutline
	if err := json.NewDecoder(r).Decode(&o); err != nil {
		return nil, fmt.Errorf("decode outline: %w", err)
	}
	for i := range o.Sections {
		if o.Sections[i].Items == nil {
			o.Sections[i].Items = []string{}
		}
	}
	return &o, nil
}
