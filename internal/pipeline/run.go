package pipeline

import (
	"fmt"
	"sync"
	"time"
)

// RunStatus is the state of a single pipeline invocation.
type RunStatus string

const (
	StatusIdle            RunStatus = "idle"
	StatusExtracting      RunStatus = "extracting"
	StatusBuilding        RunStatus = "building"
	StatusBuilt           RunStatus = "built"
	StatusPersisting      RunStatus = "persisting"
	StatusLocalOnly       RunStatus = "local_only"
	StatusSubmitted       RunStatus = "submitted"
	StatusRenderTriggered RunStatus = "render_triggered"
	StatusDone            RunStatus = "done"
	StatusFailed          RunStatus = "failed"
)

// Failure phases recorded with StatusFailed.
const (
	PhaseWrongPage   = "wrong-page"
	PhaseNoOutline   = "no-outline"
	PhasePersistence = "persistence"
	PhaseCancelled   = "cancelled"
)

// transitions lists the legal next states. Done is reachable straight from
// LocalOnly or Submitted when no renderer is configured.
var transitions = map[RunStatus][]RunStatus{
	StatusIdle:            {StatusExtracting, StatusFailed},
	StatusExtracting:      {StatusBuilding, StatusFailed},
	StatusBuilding:        {StatusBuilt, StatusFailed},
	StatusBuilt:           {StatusPersisting},
	StatusPersisting:      {StatusLocalOnly, StatusSubmitted, StatusFailed},
	StatusLocalOnly:       {StatusRenderTriggered, StatusDone},
	StatusSubmitted:       {StatusRenderTriggered, StatusDone},
	StatusRenderTriggered: {StatusDone},
}

func canTransition(from, to RunStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Run tracks the state of one invocation. Terminal states are Done and
// Failed; there is no retry.
type Run struct {
	mu sync.Mutex

	ID      string
	PageURL string

	status    RunStatus
	phase     string
	history   []RunStatus
	createdAt time.Time
	updatedAt time.Time
}

func newRun(id, pageURL string, now time.Time) *Run {
	return &Run{
		ID:        id,
		PageURL:   pageURL,
		status:    StatusIdle,
		history:   []RunStatus{StatusIdle},
		createdAt: now,
		updatedAt: now,
	}
}

// SetStatus moves the run to status. Illegal transitions are rejected and
// leave the run unchanged.
func (r *Run) SetStatus(status RunStatus, phase string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !canTransition(r.status, status) {
		return fmt.Errorf("run %s: illegal transition %s -> %s", r.ID, r.status, status)
	}
	r.status = status
	r.phase = phase
	r.history = append(r.history, status)
	r.updatedAt = now
	return nil
}

// Status returns the current status.
func (r *Run) Status() RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// RunSnapshot is a read-only, JSON-safe copy of run state.
type RunSnapshot struct {
	ID        string      `json:"run_id"`
	PageURL   string      `json:"page_url"`
	Status    RunStatus   `json:"status"`
	Phase     string      `json:"phase,omitempty"`
	History   []RunStatus `json:"history"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Snapshot returns a copy of the run state.
func (r *Run) Snapshot() RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RunSnapshot{
		ID:        r.ID,
		PageURL:   r.PageURL,
		Status:    r.status,
		Phase:     r.phase,
		History:   append([]RunStatus(nil), r.history...),
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	}
}
