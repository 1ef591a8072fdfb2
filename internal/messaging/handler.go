// Package messaging handles the requests the page-side script sends to the
// privileged process: saving mind-map data and exporting it again.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/coursemap/internal/pipeline"
	"github.com/dgallion1/coursemap/internal/remote"
	"github.com/dgallion1/coursemap/internal/store"
)

// MindMapKey is where saved mind-map data lives.
const MindMapKey = "mind-map-data"

const (
	ActionSave   = "saveMindMap"
	ActionExport = "exportMindMap"

	ExportFilename    = "mind-map.json"
	ExportContentType = "application/json"

	MsgNoData     = "No mind map data found"
	MsgSavedLocal = "Course data saved locally"
)

// Request is an inbound message.
type Request struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Outcome is one side of a two-part save result.
type Outcome struct {
	Attempted bool   `json:"attempted"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// Blob is a downloadable file.
type Blob struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Response answers a Request. Save responses carry both the local and the
// remote outcome; Success reflects the local one only.
type Response struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Local   *Outcome `json:"local,omitempty"`
	Remote  *Outcome `json:"remote,omitempty"`
	Blob    *Blob    `json:"blob,omitempty"`
}

// KV is the storage the handler needs.
type KV interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Forwarder sends saved data on to the remote /courses endpoint.
type Forwarder interface {
	Post(ctx context.Context, body any) (*remote.Submission, error)
}

// Handler dispatches messages. Forward may be nil.
type Handler struct {
	kv      KV
	forward Forwarder
	log     *slog.Logger
}

func NewHandler(kv KV, forward Forwarder, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handler{kv: kv, forward: forward, log: log}
}

// Handle processes one request.
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	switch req.Action {
	case ActionSave:
		return h.save(ctx, req.Data)
	case ActionExport:
		return h.export(ctx)
	default:
		return Response{Success: false, Error: fmt.Sprintf("unknown action %q", req.Action)}
	}
}

func (h *Handler) save(ctx context.Context, data json.RawMessage) Response {
	if len(bytes.TrimSpace(data)) == 0 || !json.Valid(data) {
		return Response{Success: false, Error: "data must be a JSON value"}
	}

	local := &Outcome{Attempted: true}
	if err := h.kv.Put(ctx, MindMapKey, data); err != nil {
		h.log.Error("save mind map", "error", err)
		local.Error = err.Error()
		return Response{Success: false, Error: pipeline.MsgSaveFailed, Local: local, Remote: &Outcome{}}
	}
	local.OK = true

	remoteOut := &Outcome{}
	if h.forward != nil {
		remoteOut.Attempted = true
		if _, err := h.forward.Post(ctx, data); err != nil {
			h.log.Warn("forward mind map failed", "error", err)
			remoteOut.Error = err.Error()
		} else {
			remoteOut.OK = true
		}
	}

	msg := pipeline.MsgSavedAndSent
	switch {
	case !remoteOut.Attempted:
		msg = MsgSavedLocal
	case !remoteOut.OK:
		msg = pipeline.MsgSavedLocalOnly
	}
	return Response{Success: true, Message: msg, Local: local, Remote: remoteOut}
}

func (h *Handler) export(ctx context.Context) Response {
	data, err := h.kv.Get(ctx, MindMapKey)
	if errors.Is(err, store.ErrNotFound) {
		return Response{Success: false, Error: MsgNoData}
	}
	if err != nil {
		h.log.Error("export mind map", "error", err)
		return Response{Success: false, Error: err.Error()}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return Response{Success: false, Error: fmt.Sprintf("stored data is not JSON: %v", err)}
	}
	return Response{
		Success: true,
		Blob: &Blob{
			Filename:    ExportFilename,
			ContentType: ExportContentType,
			Data:        buf.Bytes(),
		},
	}
}
