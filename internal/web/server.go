// Package web serves the admin dashboard and the JSON API for imports, tasks,
// reference data and the assignee directory.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/taskdesk/internal/config"
	"github.com/JonMunkholm/taskdesk/internal/core"
	"github.com/JonMunkholm/taskdesk/internal/web/middleware"
)

// multipartOverhead is the allowance for form boundaries and headers on top
// of the file size limit.
const multipartOverhead = 1 << 20

// Server is the HTTP server.
type Server struct {
	service  *core.Service
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
	limiters []*middleware.RateLimiter
}

// NewServer builds the router for service using cfg.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
}

func (s *Server) setupRoutes() {
	general, imports := s.rateLimits()
	requireKey := middleware.APIKeyAuth(s.cfg.Security)
	timeout := passThrough
	if s.cfg.Server.RequestTimeout > 0 {
		timeout = chimw.Timeout(s.cfg.Server.RequestTimeout)
	}

	s.router.With(timeout).Get("/", s.handleDashboard)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(general)

		// Imports carry their own deadline from the service.
		r.Get("/imports/kinds", s.handleListKinds)
		r.Get("/templates/{kind}", s.handleTemplate)
		r.Get("/imports", s.handleImportHistory)
		r.With(imports).Post("/preview/{kind}", s.handlePreview)
		r.With(imports, requireKey).Post("/import/{kind}", s.handleImport)

		r.Group(func(r chi.Router) {
			r.Use(timeout)

			r.Get("/tasks", s.handleListTasks)
			r.Get("/tasks/{id}", s.handleGetTask)
			r.Get("/dashboard/counts", s.handleCounts)
			r.Get("/reference/{kind}", s.handleListReference)
			r.Get("/assignees", s.handleListAssignees)

			r.Group(func(r chi.Router) {
				r.Use(requireKey)

				r.Post("/tasks", s.handleCreateTask)
				r.Put("/tasks/{id}", s.handleUpdateTask)
				r.Post("/tasks/delete", s.handleDeleteTasks)
				r.Post("/reference/{kind}", s.handleCreateReference)
				r.Put("/assignees/{name}", s.handleSetCaptain)
				r.Post("/assignees/delete", s.handleDeleteAssignees)
			})
		})
	})
}

// rateLimits returns the per-IP limiters for all API routes and for the
// import routes, or pass-through middleware when rate limiting is disabled.
func (s *Server) rateLimits() (general, imports func(http.Handler) http.Handler) {
	if !s.cfg.Rate.Enabled {
		return passThrough, passThrough
	}
	g := middleware.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
	i := middleware.NewRateLimiter(s.cfg.Rate.ImportLimit, time.Minute)
	s.limiters = append(s.limiters, g, i)
	return g.Handler, i.Handler
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for active ones, then stops
// the rate limiter cleanup loops.
func (s *Server) Shutdown(ctx context.Context) error {
	defer func() {
		for _, l := range s.limiters {
			l.Stop()
		}
	}()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func passThrough(next http.Handler) http.Handler { return next }

func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				h.Set("Content-Security-Policy",
					"default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.service.Store().Ping(ctx); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"imports": s.service.Limiter().Status(),
	})
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}
