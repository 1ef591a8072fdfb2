package pipeline

import (
	"errors"
	"time"

	"github.com/dgallion1/coursemap/internal/mindmap"
	"github.com/dgallion1/coursemap/internal/outline"
)

// User-facing status messages.
const (
	MsgNoActivePage    = "No active tab found"
	MsgWrongPage       = "This is not a Udemy course URL"
	MsgNoOutline       = "Course not found"
	MsgSaveFailed      = "Error saving course"
	MsgCheckFailed     = "Error checking course. Please make sure you are on a Udemy course page."
	MsgGenerated       = "Mind map generated successfully!"
	MsgSavedAndSent    = "Course data saved and sent to server"
	MsgSavedLocalOnly  = "Course data saved locally but failed to send to server"
	StatusMessageClear = 2 * time.Second
)

// StepOutcome reports one sink hand-off.
type StepOutcome struct {
	Attempted bool
	OK        bool
	Err       error
	// Locator is where the remote render can be viewed.
	Locator string
	// ShapeMismatch is set when the remote document differs from the local
	// build in meta, labels or structure.
	ShapeMismatch bool
}

// RenderOutcome reports the render step.
type RenderOutcome struct {
	Attempted bool
	Filename  string
	Path      string
	Err       error
}

// Outcome is the single result of Orchestrator.Run. Err is nil when the
// outline was extracted and stored locally; remote and render failures are
// reported in their own fields.
type Outcome struct {
	RunID    string
	Status   RunStatus
	Err      error
	Outline  *outline.CourseOutline
	Document *mindmap.Document
	Local    StepOutcome
	Remote   StepOutcome
	Render   RenderOutcome
	Run      RunSnapshot
}

// OK reports whether the local guarantee held.
func (o Outcome) OK() bool { return o.Err == nil }

// StatusMessage is the short transient message shown to the user. Callers
// clear it after StatusMessageClear.
func (o Outcome) StatusMessage() string {
	var pe *PersistenceError
	switch {
	case o.Err == nil:
		return MsgGenerated
	case errors.Is(o.Err, ErrNoActivePage):
		return MsgNoActivePage
	case errors.Is(o.Err, ErrWrongPage):
		return MsgWrongPage
	case errors.Is(o.Err, ErrNoOutline):
		return MsgNoOutline
	case errors.As(o.Err, &pe):
		return MsgSaveFailed
	default:
		return MsgCheckFailed
	}
}

// RemoteMessage describes the remote hand-off, or "" when none was made.
func (o Outcome) RemoteMessage() string {
	if !o.Remote.Attempted {
		return ""
	}
	if o.Remote.OK {
		return MsgSavedAndSent
	}
	return MsgSavedLocalOnly
}
