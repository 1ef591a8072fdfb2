package export

import (
	"fmt"
	"io"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/coursemap/internal/outline"
)

const (
	DOCXFilename    = "outline.docx"
	DOCXContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	styleTitle   = "Heading1"
	styleSection = "Heading2"
	styleItem    = "ListParagraph"
)

// WriteDOCX writes o as a Word document: the course as a title, the
// instructor line, then numbered section headings each followed by their
// numbered items.
func WriteDOCX(w io.Writer, o *outline.CourseOutline) error {
	if o == nil {
		return fmt.Errorf("export docx: nil outline")
	}
	doc := docx.New().WithDefaultTheme()

	doc.AddParagraph().Style(styleTitle).AddText(o.Course).Bold().Size("32")
	doc.AddParagraph().AddText(outline.InstructorLabel + " " + o.Instructor)

	for i, s := range o.Sections {
		doc.AddParagraph().Style(styleSection).AddText(fmt.Sprintf("%d. %s", i+1, s.Heading)).Bold().Size("28")
		for j, item := range s.Items {
			doc.AddParagraph().Style(styleItem).AddText(fmt.Sprintf("%d.%d. %s", i+1, j+1, item))
		}
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("export docx: %w", err)
	}
	return nil
}
