// ABOUTME: HTTP JSON API over wellness.Service.
// ABOUTME: Wires chi routes and middleware and runs the listener with graceful shutdown.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/harperreed/cortitrack/internal/logging"
	"github.com/harperreed/cortitrack/internal/wellness"
)

// Server is the HTTP surface.
type Server struct {
	router  chi.Router
	svc     *wellness.Service
	metrics *Metrics
	logger  *log.Logger
}

// New builds the router. metrics should be the same value whose UpsertHook
// was passed to the service; a nil metrics gets a private registry.
func New(svc *wellness.Service, metrics *Metrics, logger *log.Logger) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	s := &Server{
		router:  chi.NewRouter(),
		svc:     svc,
		metrics: metrics,
		logger:  logging.OrDiscard(logger),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger, s.metrics))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(requirePrincipal(s.svc))

		r.Get("/me", s.handleMe)

		r.Post("/readings", s.handleSaveReading)
		r.Patch("/readings/today", s.handleEditReading)

		r.Get("/users", s.handleListUsers)
		r.Post("/users", s.handleCreateUser)
		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetUser)
			r.Patch("/", s.handleUpdateUser)
			r.Delete("/", s.handleDeleteUser)
			r.Get("/readings", s.handleListReadings)
			r.Get("/readings/today", s.handleTodaysReading)
			r.Get("/trend", s.handleTrend)
			r.Get("/comparison", s.handleCompare)
			r.Get("/medical-history", s.handleMedicalHistory)
			r.Post("/medical-history", s.handleAddMedicalRecord)
		})

		r.Get("/teams/{team}/overview", s.handleTeamOverview)

		r.Get("/gauges", s.handleGetGauges)
		r.Put("/gauges", s.handlePutGauges)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	}
}
