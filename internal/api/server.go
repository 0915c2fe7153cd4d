// Package api exposes the availability engine over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"dastarkhan/internal/audit"
	"dastarkhan/internal/availability"
	"dastarkhan/internal/cache"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Pinger reports whether the backing store is reachable. Satisfied by *sql.DB.
type Pinger interface {
	Ping() error
}

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	engine  *availability.Engine
	cache   *cache.Cache
	audit   *audit.Service
	pinger  Pinger
	rdb     *redis.Client
	limiter *rate.Limiter
	log     zerolog.Logger
	router  *chi.Mux
}

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	WriteRatePerSec float64
	WriteBurst      int
}

// NewServer builds the router. The cache, audit service and pinger may be nil;
// the matching features then degrade gracefully.
func NewServer(engine *availability.Engine, c *cache.Cache, auditSvc *audit.Service, pinger Pinger, logger zerolog.Logger, opts Options) *Server {
	if opts.WriteRatePerSec <= 0 {
		opts.WriteRatePerSec = 10
	}
	if opts.WriteBurst <= 0 {
		opts.WriteBurst = 20
	}

	s := &Server{
		engine:  engine,
		cache:   c,
		audit:   auditSvc,
		pinger:  pinger,
		limiter: rate.NewLimiter(rate.Limit(opts.WriteRatePerSec), opts.WriteBurst),
		log:     logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stores/{storeID}/availability", s.handleGetAvailability)
		r.Post("/stores/availability", s.handleToggleAvailability)
		r.Get("/admin/status-log/export", s.handleStatusLogExport)
	})

	s.router = r
	return s
}

// UseRedis includes the redis client in readiness checks.
func (s *Server) UseRedis(rdb *redis.Client) {
	s.rdb = rdb
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	if s.rdb != nil {
		if err := s.rdb.Ping(r.Context()).Err(); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
