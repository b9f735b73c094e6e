// Package web provides the HTTP server and handlers for the LinkSort UI and API.
package web

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/LinkSort/internal/config"
	"github.com/JonMunkholm/LinkSort/internal/core"
	"github.com/JonMunkholm/LinkSort/internal/history"
	mw "github.com/JonMunkholm/LinkSort/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed static
var staticFiles embed.FS

// HistoryStore lists recorded processing runs.
type HistoryStore interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
	Ping(ctx context.Context) error
}

// Server is the HTTP server for LinkSort.
type Server struct {
	service  *core.Service
	history  HistoryStore // nil when history is disabled
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
	limiters []*ipRateLimiter
}

// NewServer creates a new Server instance. hist may be nil.
func NewServer(service *core.Service, cfg *config.Config, hist HistoryStore) *Server {
	s := &Server{
		service: service,
		history: hist,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(s.sessions)

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newRateLimit(s.cfg.Rate.RequestsPerMinute))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// /upload and /api/process share one stricter bucket per IP.
	uploadLimit := func(next http.Handler) http.Handler { return next }
	if s.cfg.Rate.Enabled {
		uploadLimit = s.newRateLimit(s.cfg.Rate.UploadLimit)
	}

	// Pages
	s.router.Get("/", s.handlePage)
	s.router.With(uploadLimit).Post("/upload", s.handleUpload)
	s.router.Post("/reset", s.handleReset)
	s.router.Get("/export/{format}", s.handleExport)
	s.router.Get("/healthz", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		r.With(uploadLimit).Post("/process", s.handleProcess)
		r.Get("/report", s.handleReport)
		r.Post("/rederive/{format}", s.handleRederive)
		r.Get("/history", s.handleHistory)
	})
}

// newRateLimit builds a per-IP limiter that is stopped with the server.
func (s *Server) newRateLimit(perMinute int) func(http.Handler) http.Handler {
	rl := newIPRateLimiter(perMinute)
	s.limiters = append(s.limiters, rl)
	return rl.middleware(s)
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its rate limiters.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.limiters {
		rl.Stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'none'; style-src 'self'; img-src 'self' data:; form-action 'self'; frame-ancestors 'none'")
			}

			next.ServeHTTP(w, r)
		})
	}
}
