package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/coursemap/internal/mindmap"
	"github.com/dgallion1/coursemap/internal/outline"
	"github.com/dgallion1/coursemap/internal/parser"
)

// readOutline imports an outline from any supported file format.
func readOutline(path string) (*outline.CourseOutline, error) {
	if !parser.IsSupportedExtension(path) {
		return nil, fmt.Errorf("%s: unsupported outline format", path)
	}
	return parser.ParseFile(path)
}

func newBuilder() (*mindmap.Builder, error) {
	ids, err := mindmap.NewIDGenerator(cfg.IDStrategy)
	if err != nil {
		return nil, err
	}
	return mindmap.NewBuilder(ids), nil
}

// writeOutput writes data to path, or to stdout when path is "" or "-".
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
