// Package web provides the HTTP server that renders the item table.
//
// Each page load creates a view: a server-side itemlist.Table identified by a
// UUID. HTMX requests from the page (header clicks, row clicks and width
// reports) are applied to that view and answered with a re-rendered table
// partial.
package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/JonMunkholm/itemlist/internal/config"
	"github.com/JonMunkholm/itemlist/internal/itemlist"
	"github.com/JonMunkholm/itemlist/internal/store"
	"github.com/JonMunkholm/itemlist/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

var errRateLimited = errors.New("rate limit exceeded")

// Server is the HTTP server for the item table.
type Server struct {
	cfg     *config.Config
	source  store.Source
	columns []itemlist.Column
	views   *viewRegistry
	metrics *metrics
	limiter *rateLimiter
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server that loads items from source.
func NewServer(source store.Source, cfg *config.Config) *Server {
	s := &Server{
		cfg:     cfg,
		source:  source,
		columns: itemlist.Columns(cfg.Display.Location()),
		views:   newViewRegistry(cfg.Views.TTL, cfg.Views.MaxViews),
		metrics: newMetrics(),
		limiter: newRateLimiter(cfg.Rate.RequestsPerMinute, time.Minute),
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(s.metrics.instrument)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.rateLimit)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/", s.handlePage)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.metrics.handler())

	s.router.Route("/views/{viewID}", func(r chi.Router) {
		r.Get("/table", s.handleTable)
		r.Post("/sort/{columnID}", s.handleSort)
		r.Post("/width", s.handleWidth)
		r.Post("/rows/{rowID}/select", s.handleSelect)
		r.Post("/refresh", s.handleRefresh)
	})
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

// RunJanitors expires idle views and stale rate-limit entries until ctx is
// cancelled.
func (s *Server) RunJanitors(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		s.views.run(ctx, s.cfg.Views.CleanupInterval, func(removed, live int) {
			s.metrics.viewsLive.Set(float64(live))
			if removed > 0 {
				s.metrics.viewsEvicted.WithLabelValues("expired").Add(float64(removed))
				slog.Debug("expired views removed", "removed", removed, "live", live)
			}
		})
		return nil
	})
	g.Go(func() error {
		s.limiter.run(ctx)
		return nil
	})
	_ = g.Wait()
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if enableCSP {
				// htmx is loaded from unpkg and injects its own indicator styles
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter keeps a token bucket per client IP. The bucket holds one
// window's worth of requests and refills continuously.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	window  time.Duration
	now     func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(requests int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(float64(requests) / window.Seconds()),
		burst:   requests,
		window:  window,
		now:     time.Now,
	}
}

// run removes idle clients every window until ctx is done.
func (rl *rateLimiter) run(ctx context.Context) {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, c := range rl.clients {
		if now.Sub(c.lastSeen) > rl.window*2 {
			delete(rl.clients, ip)
		}
	}
}

// allow reports whether ip may make a request now and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// rateLimit rejects clients that exceed the per-IP limit.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		if !s.limiter.allow(ip) {
			s.metrics.rateLimitHits.Inc()
			w.Header().Set("Retry-After", "60")
			s.respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
