package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dgallion1/coursemap/internal/outline"
	"github.com/dgallion1/coursemap/internal/render"
)

const (
	msgMissingFields = "Missing required fields"
	msgSaveFailed    = "Error saving course"

	openTimeout = 30 * time.Second
)

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	o, err := outline.Decode(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if missing := o.CheckRequired(); len(missing) > 0 {
		s.log.Warn("rejected course", "missing", missing)
		jsonError(w, msgMissingFields, http.StatusBadRequest)
		return
	}
	doc := s.deps.Builder.Build(o)

	if _, err := s.deps.Artifacts.Write(doc); err != nil {
		s.log.Error("write artifacts", "course", o.Course, "error", err)
		jsonError(w, msgSaveFailed, http.StatusInternalServerError)
		return
	}
	if s.deps.Outlines != nil {
		if err := s.deps.Outlines.SaveOutline(r.Context(), o); err != nil {
			s.log.Error("save outline", "course", o.Course, "error", err)
			jsonError(w, msgSaveFailed, http.StatusInternalServerError)
			return
		}
	}

	s.openScreenshot()
	s.log.Info("saved course", "course", o.Course, "sections", len(o.Sections), "items", o.ItemCount())
	writeJSON(w, http.StatusCreated, doc)
}

// openScreenshot shows the rendered page in a browser without holding up
// the response.
func (s *Server) openScreenshot() {
	if s.deps.Opener == nil || !s.cfg.OpenBrowser {
		return
	}
	target := s.cfg.ScreenshotURL()
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()
		if err := s.deps.Opener.OpenURL(ctx, target); err != nil {
			s.log.Warn("open screenshot page", "url", target, "error", err)
		}
	}()
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	page, err := s.deps.Artifacts.ReadPage()
	if errors.Is(err, render.ErrNoPage) {
		jsonError(w, "no mind map has been generated yet", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("read screenshot page", "error", err)
		jsonError(w, "failed to read page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}
