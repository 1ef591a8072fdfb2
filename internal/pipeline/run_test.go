package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_StateTransitions(t *testing.T) {
	now := time.Unix(0, 0)
	r := newRun("r1", courseURL, now)
	assert.Equal(t, StatusIdle, r.Status())

	for _, s := range []RunStatus{StatusExtracting, StatusBuilding, StatusBuilt, StatusPersisting, StatusSubmitted, StatusRenderTriggered, StatusDone} {
		now = now.Add(time.Second)
		require.NoError(t, r.SetStatus(s, "", now))
	}

	snap := r.Snapshot()
	assert.Equal(t, StatusDone, snap.Status)
	assert.Len(t, snap.History, 8)
	assert.Equal(t, time.Unix(7, 0), snap.UpdatedAt)
	assert.Equal(t, time.Unix(0, 0), snap.CreatedAt)
}

func TestRun_IllegalTransition(t *testing.T) {
	r := newRun("r1", courseURL, time.Unix(0, 0))
	assert.Error(t, r.SetStatus(StatusPersisting, "", time.Unix(1, 0)))
	assert.Equal(t, StatusIdle, r.Status())

	require.NoError(t, r.SetStatus(StatusFailed, PhaseWrongPage, time.Unix(1, 0)))
	assert.Error(t, r.SetStatus(StatusExtracting, "", time.Unix(2, 0)), "failed is terminal")
}

func TestRun_SnapshotIsACopy(t *testing.T) {
	r := newRun("r1", courseURL, time.Unix(0, 0))
	snap := r.Snapshot()
	snap.History[0] = StatusDone
	assert.Equal(t, StatusIdle, r.Snapshot().History[0])
}
