// Package web serves the employer search UI and its JSON API.
package web

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/pension/internal/config"
	"github.com/JonMunkholm/pension/internal/core"
	"github.com/JonMunkholm/pension/internal/metrics"
	"github.com/JonMunkholm/pension/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// rateLimitSweep is how often idle rate limiter entries are evicted.
const rateLimitSweep = time.Minute

// Server is the HTTP server over a loaded registry.
type Server struct {
	registry *core.Registry
	metrics  *metrics.Metrics
	cfg      *config.Config
	validate *validator.Validate
	limiter  *middleware.RateLimiter

	router *chi.Mux
	server *http.Server

	stop context.CancelFunc
}

// NewServer builds the router. The registry is read-only and shared by all handlers.
func NewServer(reg *core.Registry, m *metrics.Metrics, cfg *config.Config) *Server {
	s := &Server{
		registry: reg,
		metrics:  m,
		cfg:      cfg,
		validate: newValidator(),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes. The rate limiter is
// created here but mounted per route group in setupRoutes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.limiter = middleware.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
		ctx, cancel := context.WithCancel(context.Background())
		s.stop = cancel
		go s.limiter.Run(ctx, rateLimitSweep)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Probes and scrapes are not rate limited.
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.metrics.Handler())

	// Pages
	s.router.Group(func(r chi.Router) {
		s.useRateLimit(r)
		r.Get("/", s.handleSearchPage)
		r.Get("/company", s.handleCompanyPage)
	})

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		s.useRateLimit(r)
		r.Use(middleware.APIKeyAuth(&s.cfg.Security))

		r.Get("/find", s.handleFind)
		r.Get("/compare", s.handleCompare)
		r.Get("/company", s.handleCompany)
		r.Get("/data", s.handleData)
		r.Get("/stats", s.handleStats)

		r.Route("/export", func(r chi.Router) {
			for _, f := range []exportFormat{formatCSV, formatXLSX} {
				r.Get("/find."+f.ext, s.handleExport("employers", f, s.findSheet))
				r.Get("/compare."+f.ext, s.handleExport("comparison", f, s.compareSheet))
				r.Get("/data."+f.ext, s.handleExport("registry", f, s.dataSheet))
			}
		})
	})
}

func (s *Server) useRateLimit(r chi.Router) {
	if s.limiter != nil {
		r.Use(s.limiter.Handler)
	}
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

	slog.Info("starting server", "addr", s.server.Addr, "rows", s.registry.Len())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and the rate limiter sweeper.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.stop != nil {
		s.stop()
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
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// Pages are server rendered with no scripts.
			if enableCSP {
				h.Set("Content-Security-Policy", "default-src 'self'; script-src 'none'; style-src 'self'; img-src 'self' data:; frame-ancestors 'none'")
			}

			next.ServeHTTP(w, r)
		})
	}
}
