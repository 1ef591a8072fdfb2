package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/dgallion1/coursemap/internal/config"
	"github.com/dgallion1/coursemap/internal/messaging"
	"github.com/dgallion1/coursemap/internal/outline"
	"github.com/dgallion1/coursemap/internal/pipeline"
	"github.com/dgallion1/coursemap/internal/render"
)

const welcomeMessage = "Welcome to Map My Udemy API"

// OutlineStore keeps the last accepted outline for export.
type OutlineStore interface {
	SaveOutline(ctx context.Context, o *outline.CourseOutline) error
	LoadOutline(ctx context.Context) (*outline.CourseOutline, error)
}

// PageOpener shows a URL in a browser.
type PageOpener interface {
	OpenURL(ctx context.Context, url string) error
}

// Deps are the server's collaborators. Outlines, Messages and Opener are
// optional.
type Deps struct {
	Builder   pipeline.TreeBuilder
	Artifacts *render.Artifacts
	Outlines  OutlineStore
	Messages  *messaging.Handler
	Opener    PageOpener
}

// Server is the HTTP API server for coursemap.
type Server struct {
	router chi.Router
	deps   Deps
	log    *slog.Logger
	cfg    config.Config

	// background tracks open-in-browser side effects.
	background sync.WaitGroup
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		deps: deps,
		log:  log,
		cfg:  cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Wait blocks until background side effects started by requests finish.
func (s *Server) Wait() {
	s.background.Wait()
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Accept", "Origin"},
		MaxAge:         86400,
	}).Handler)

	// Public endpoints.
	r.Get("/", s.handleWelcome)
	r.Get("/health", s.handleHealth)
	r.Post("/courses", s.handleCreateCourse)
	r.Get("/screenshot", s.handleScreenshot)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/messages", s.handleMessage)
		r.Get("/api/export/mind-map.json", s.handleExportMindMap)
		r.Get("/api/export/outline.docx", s.handleExportOutline)
	})

	s.router = r
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": welcomeMessage})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
