// Package diag serves a read-mostly HTTP API over the geodata engine for
// operators and tooling.
package diag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/door"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/fence"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo/pathfinding"
	"github.com/itzfoxbrz/KamikaZL2/internal/movement"
)

// Deps are the components exposed by the API. Everything but Engine may be
// nil; the matching endpoints then answer 404.
type Deps struct {
	Engine  *geo.Engine
	Paths   *pathfinding.PathFinder
	Moves   *movement.Validator
	Doors   *door.Table
	Fences  *fence.Table
	Persist FenceStore
	DB      Pinger
}

// Pinger reports database reachability. *db.DB implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// FenceStore persists fence state changes. *db.FenceRepository implements it.
type FenceStore interface {
	UpdateState(ctx context.Context, id int32, state fence.State) error
}

// Server is the diagnostics HTTP server.
type Server struct {
	deps Deps
	srv  *http.Server
}

// New creates a diagnostics server bound to addr.
func New(addr string, allowedOrigins []string, deps Deps) *Server {
	s := &Server{deps: deps}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(allowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

// Router builds the API routes.
func (s *Server) Router(allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.health)
	r.Route("/regions", func(sub chi.Router) {
		sub.Get("/", s.listRegions)
		sub.Get("/{tile}", s.region)
	})
	r.Get("/height", s.height)
	r.Get("/los", s.lineOfSight)
	r.Get("/move", s.move)
	r.Get("/path", s.path)
	r.Get("/pathfinding/stats", s.pathStats)
	r.Put("/doors/{id}", s.setDoor)
	r.Put("/fences/{id}", s.setFence)

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		slog.Info("diagnostics API listening", "addr", s.srv.Addr)
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("diagnostics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down diagnostics server: %w", err)
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("diagnostics request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
