package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/pocketgenie/entity"
	"github.com/poiesic/pocketgenie/prioritize"
	"github.com/poiesic/pocketgenie/search"
	"github.com/poiesic/pocketgenie/summarize"
)

// Version is reported by the root endpoint.
const Version = "0.1.0"

var (
	// ErrServiceRequired is returned when a Services field is nil.
	ErrServiceRequired = errors.New("all services are required")
)

// Services are the components the handlers call.
type Services struct {
	Tasks       *entity.TaskService
	Notes       *entity.NoteService
	Searcher    *search.Searcher
	Summarizer  *summarize.Summarizer
	Prioritizer *prioritize.Prioritizer
}

// Server routes HTTP requests to the services.
type Server struct {
	router *chi.Mux
	svc    Services
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for access and error logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds the router.
func New(svc Services, opts ...Option) (*Server, error) {
	if svc.Tasks == nil || svc.Notes == nil || svc.Searcher == nil ||
		svc.Summarizer == nil || svc.Prioritizer == nil {
		return nil, ErrServiceRequired
	}

	r := chi.NewRouter()
	s := &Server{
		router: r,
		svc:    svc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "api")

	r.Use(middleware.RequestID)
	r.Use(s.accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", s.handleCreateTask)
			r.Get("/", s.handleListTasks)
			r.Get("/{id}", s.handleGetTask)
			r.Put("/{id}", s.handleUpdateTask)
			r.Delete("/{id}", s.handleDeleteTask)
			r.Post("/{id}/complete", s.handleCompleteTask)
		})
		r.Route("/notes", func(r chi.Router) {
			r.Post("/", s.handleCreateNote)
			r.Get("/", s.handleListNotes)
			r.Get("/{id}", s.handleGetNote)
			r.Put("/{id}", s.handleUpdateNote)
			r.Delete("/{id}", s.handleDeleteNote)
		})
		r.Post("/search/semantic", s.handleSemanticSearch)
		r.Post("/ai/summarize", s.handleSummarize)
		r.Post("/ai/prioritize", s.handlePrioritize)
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func (s *Server) accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to PocketGenie API",
		"version": Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
