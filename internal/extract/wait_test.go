package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/coursemap/internal/clock"
)

func TestWaitFor_ImmediatelyTrue(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	met, err := WaitFor(context.Background(), clk, 100*time.Millisecond, time.Second, func(context.Context) (bool, error) {
		return true, nil
	})
	require.NoError(t, err)
	assert.True(t, met)
	assert.Equal(t, 0, clk.Waits())
}

func TestWaitFor_TimesOutAtCeiling(t *testing.T) {
	start := time.Unix(100, 0)
	clk := clock.NewFake(start)
	calls := 0
	met, err := WaitFor(context.Background(), clk, 100*time.Millisecond, 5*time.Second, func(context.Context) (bool, error) {
		calls++
		return false, nil
	})
	require.NoError(t, err)
	assert.False(t, met)
	assert.Equal(t, 5*time.Second, clk.Now().Sub(start))
	assert.Equal(t, 51, calls, "one check up front and one after every wait")
}

func TestWaitFor_LastWaitIsClipped(t *testing.T) {
	start := time.Unix(0, 0)
	clk := clock.NewFake(start)
	_, err := WaitFor(context.Background(), clk, 300*time.Millisecond, time.Second, func(context.Context) (bool, error) {
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, time.Second, clk.Now().Sub(start))
	assert.Equal(t, 4, clk.Waits())
}

func TestWaitFor_ConditionError(t *testing.T) {
	boom := errors.New("boom")
	met, err := WaitFor(context.Background(), clock.NewFake(time.Unix(0, 0)), 0, time.Second, func(context.Context) (bool, error) {
		return false, boom
	})
	assert.False(t, met)
	assert.ErrorIs(t, err, boom)
}

func TestWaitFor_RealClock(t *testing.T) {
	n := 0
	met, err := WaitFor(context.Background(), clock.Real{}, 5*time.Millisecond, time.Second, func(context.Context) (bool, error) {
		n++
		return n >= 3, nil
	})
	require.NoError(t, err)
	assert.True(t, met)
}
