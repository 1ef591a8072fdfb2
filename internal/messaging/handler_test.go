package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/coursemap/internal/pipeline"
	"github.com/dgallion1/coursemap/internal/remote"
	"github.com/dgallion1/coursemap/internal/store"
)

const courseJSON = `{"course":"X","instructor":"Y","section-content":[{"section-heading":"Intro","section-items":["A","B"]}]}`

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type fakeForwarder struct {
	err    error
	bodies []any
}

func (f *fakeForwarder) Post(_ context.Context, body any) (*remote.Submission, error) {
	f.bodies = append(f.bodies, body)
	if f.err != nil {
		return nil, f.err
	}
	return &remote.Submission{Locator: "http://remote/screenshot"}, nil
}

type brokenKV struct{}

func (brokenKV) Put(context.Context, string, []byte) error { return errors.New("disk full") }
func (brokenKV) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk full")
}

func TestSave_StoresAndForwards(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	fwd := &fakeForwarder{}
	h := NewHandler(s, fwd, nil)

	resp := h.Handle(ctx, Request{Action: ActionSave, Data: json.RawMessage(courseJSON)})
	assert.True(t, resp.Success)
	assert.Equal(t, pipeline.MsgSavedAndSent, resp.Message)
	assert.True(t, resp.Local.OK)
	assert.True(t, resp.Remote.Attempted)
	assert.True(t, resp.Remote.OK)
	require.Len(t, fwd.bodies, 1)

	stored, err := s.Get(ctx, MindMapKey)
	require.NoError(t, err)
	assert.JSONEq(t, courseJSON, string(stored))
}

func TestSave_ForwardFailureStillSucceeds(t *testing.T) {
	h := NewHandler(newStore(t), &fakeForwarder{err: errors.New("connection refused")}, nil)

	resp := h.Handle(context.Background(), Request{Action: ActionSave, Data: json.RawMessage(courseJSON)})
	assert.True(t, resp.Success)
	assert.Equal(t, pipeline.MsgSavedLocalOnly, resp.Message)
	assert.True(t, resp.Local.OK)
	assert.True(t, resp.Remote.Attempted)
	assert.False(t, resp.Remote.OK)
	assert.Contains(t, resp.Remote.Error, "connection refused")
}

func TestSave_NoForwarder(t *testing.T) {
	h := NewHandler(newStore(t), nil, nil)
	resp := h.Handle(context.Background(), Request{Action: ActionSave, Data: json.RawMessage(courseJSON)})
	assert.True(t, resp.Success)
	assert.Equal(t, MsgSavedLocal, resp.Message)
	assert.False(t, resp.Remote.Attempted)
}

func TestSave_LocalFailureIsFailure(t *testing.T) {
	fwd := &fakeForwarder{}
	h := NewHandler(brokenKV{}, fwd, nil)
	resp := h.Handle(context.Background(), Request{Action: ActionSave, Data: json.RawMessage(courseJSON)})
	assert.False(t, resp.Success)
	assert.False(t, resp.Local.OK)
	assert.Empty(t, fwd.bodies, "nothing is forwarded after a failed save")
}

func TestSave_RejectsInvalidData(t *testing.T) {
	h := NewHandler(newStore(t), nil, nil)
	for _, data := range []string{"", "  ", "{not json"} {
		resp := h.Handle(context.Background(), Request{Action: ActionSave, Data: json.RawMessage(data)})
		assert.False(t, resp.Success, "data %q", data)
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	h := NewHandler(newStore(t), nil, nil)

	resp := h.Handle(ctx, Request{Action: ActionExport})
	assert.False(t, resp.Success)
	assert.Equal(t, MsgNoData, resp.Error)

	h.Handle(ctx, Request{Action: ActionSave, Data: json.RawMessage(`{"a":1}`)})
	h.Handle(ctx, Request{Action: ActionSave, Data: json.RawMessage(courseJSON)})

	resp = h.Handle(ctx, Request{Action: ActionExport})
	require.True(t, resp.Success)
	require.NotNil(t, resp.Blob)
	assert.Equal(t, ExportFilename, resp.Blob.Filename)
	assert.Equal(t, ExportContentType, resp.Blob.ContentType)
	assert.JSONEq(t, courseJSON, string(resp.Blob.Data))
	assert.Contains(t, string(resp.Blob.Data), "\n  \"course\"")
}

func TestExport_StorageError(t *testing.T) {
	resp := NewHandler(brokenKV{}, nil, nil).Handle(context.Background(), Request{Action: ActionExport})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "disk full")
}

func TestUnknownAction(t *testing.T) {
	resp := NewHandler(newStore(t), nil, nil).Handle(context.Background(), Request{Action: "dance"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "dance")
}
