// Package export produces downloadable forms of outlines and mind maps.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/dgallion1/coursemap/internal/mindmap"
)

const (
	JSONFilename    = "mind-map.json"
	JSONContentType = "application/json"
)

// JSON returns doc as an indented JSON blob.
func JSON(doc *mindmap.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("export json: nil document")
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export json: %w", err)
	}
	return append(data, '\n'), nil
}
