// Package web provides the HTTP server and handlers for the DataSweeper UI
// and its JSON API.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/DataSweeper/internal/config"
	"github.com/JonMunkholm/DataSweeper/internal/core"
	"github.com/JonMunkholm/DataSweeper/internal/metrics"
	mw "github.com/JonMunkholm/DataSweeper/internal/web/middleware"
)

// Server is the HTTP server for the DataSweeper application.
type Server struct {
	cfg      *config.Config
	service  *core.Service
	metrics  *metrics.Metrics
	validate *requestValidator
	limiter  *ipRateLimiter

	router *chi.Mux
	server *http.Server
}

// NewServer creates a new Server instance. m may be nil.
func NewServer(cfg *config.Config, service *core.Service, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:      cfg,
		service:  service,
		metrics:  m,
		validate: newRequestValidator(),
		router:   chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.limiter = newIPRateLimiter(cfg.Rate.RequestsPerMinute, cfg.Rate.Burst)
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
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Probes and scrapes are not rate limited.
	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.middleware(s))
		}

		// Pages
		r.Get("/", s.handleIndex)
		r.Post("/files", s.handleUploadForm)
		r.Route("/files/{id}", func(r chi.Router) {
			r.Get("/", s.handleFilePage)
			r.Post("/dedupe", s.handleDedupeForm)
			r.Post("/fill", s.handleFillForm)
			r.Post("/columns", s.handleColumnsForm)
			r.Get("/download", s.handleDownload)
		})

		// API routes
		r.Route("/api", func(r chi.Router) {
			r.Use(mw.APIKeyAuth(&s.cfg.Security))
			r.Use(render.SetContentType(render.ContentTypeJSON))

			r.Post("/files", s.handleAPIUpload)
			r.Route("/files/{id}", func(r chi.Router) {
				r.Get("/", s.handleAPISnapshot)
				r.Delete("/", s.handleAPIDiscard)
				r.Post("/dedupe", s.handleAPIDedupe)
				r.Post("/fill", s.handleAPIFill)
				r.Put("/columns", s.handleAPIColumns)
				r.Get("/chart", s.handleAPIChart)
				r.Get("/export", s.handleDownload)
			})
		})
	})
}

// Start begins listening for HTTP requests.
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

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status   string                   `json:"status"`
	Sessions int                      `json:"sessions"`
	Ingest   core.IngestLimiterStatus `json:"ingest"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{
		Status:   "ok",
		Sessions: s.service.SessionCount(),
		Ingest:   s.service.IngestStatus(),
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// Pages carry an inline stylesheet and inline SVG, no scripts.
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'none'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}

			next.ServeHTTP(w, r)
		})
	}
}
