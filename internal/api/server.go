// Package api serves the question bank and feedback endpoints the terminal
// client talks to.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/examcoach/internal/marking"
	"github.com/abhisek/examcoach/internal/session"
	"github.com/abhisek/examcoach/internal/store"
)

// Marker generates feedback for an answer.
type Marker interface {
	Feedback(ctx context.Context, tier marking.Tier, item marking.Item, answer string) (string, error)
}

// Options configures a Server.
type Options struct {
	Questions   store.QuestionRepo
	Sessions    *session.Manager
	Marker      Marker
	CORSOrigins []string
}

// Server represents the HTTP API server
type Server struct {
	router    *chi.Mux
	questions store.QuestionRepo
	sessions  *session.Manager
	marker    Marker
	origins   []string
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	s := &Server{
		questions: opts.Questions,
		sessions:  opts.Sessions,
		marker:    opts.Marker,
		origins:   opts.CORSOrigins,
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Get("/", s.handleCurrent)
		r.Get("/previous", s.handleNavigate(directionPrevious))
		r.Get("/next", s.handleNavigate(directionNext))
		r.Get("/get_navigation_info", s.handleNavigationInfo)
		r.Get("/number", s.handleNumber)
		r.Get("/ai_response/{tier}", s.handleFeedback)
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
