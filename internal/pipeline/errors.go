package pipeline

import (
	"errors"
	"fmt"
)

// Page-shape failures. The flow stops before anything is written.
var (
	ErrNoActivePage = errors.New("no active page")
	ErrWrongPage    = errors.New("not a course page")
	ErrNoOutline    = errors.New("course not found")
)

// TransportError wraps a failed remote submission. It degrades a run to
// local-only success.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("remote submission: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed local write. It fails the run.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("local persistence: %v", e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

// RenderError wraps a failed render. It is reported but does not fail the
// run.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("render: %v", e.Err) }
func (e *RenderError) Unwrap() error { return e.Err }
