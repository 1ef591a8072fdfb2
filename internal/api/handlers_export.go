package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/coursemap/internal/export"
	"github.com/dgallion1/coursemap/internal/messaging"
	"github.com/dgallion1/coursemap/internal/store"
)

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if s.deps.Messages == nil {
		jsonError(w, "messaging is not configured", http.StatusNotImplemented)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req messaging.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Messages.Handle(r.Context(), req))
}

func (s *Server) handleExportMindMap(w http.ResponseWriter, r *http.Request) {
	if s.deps.Messages == nil {
		jsonError(w, "messaging is not configured", http.StatusNotImplemented)
		return
	}
	resp := s.deps.Messages.Handle(r.Context(), messaging.Request{Action: messaging.ActionExport})
	if !resp.Success {
		code := http.StatusInternalServerError
		if resp.Error == messaging.MsgNoData {
			code = http.StatusNotFound
		}
		jsonError(w, resp.Error, code)
		return
	}
	attachment(w, resp.Blob.Filename, resp.Blob.ContentType, resp.Blob.Data)
}

func (s *Server) handleExportOutline(w http.ResponseWriter, r *http.Request) {
	if s.deps.Outlines == nil {
		jsonError(w, "outline storage is not configured", http.StatusNotImplemented)
		return
	}
	o, err := s.deps.Outlines.LoadOutline(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "No course outline found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("load outline", "error", err)
		jsonError(w, "failed to load outline", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteDOCX(&buf, o); err != nil {
		s.log.Error("export outline", "error", err)
		jsonError(w, "failed to export outline", http.StatusInternalServerError)
		return
	}
	attachment(w, export.DOCXFilename, export.DOCXContentType, buf.Bytes())
}

func attachment(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}
