// Package api serves layouts over HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /v1/stats
//	GET    /v1/scenarios
//	POST   /v1/layouts                        inline dataset, not stored
//	POST   /v1/scenarios/{scenario}/layouts   fetch, lay out and store
//	GET    /v1/layouts                        ?scenario=&mode=&limit=
//	GET    /v1/layouts/{id}
//	DELETE /v1/layouts/{id}
//
// Errors are returned as {"code": "...", "message": "..."} with the
// status derived from the code.
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/tierviz/pkg/integrations/coeqwal"
	"github.com/matzehuels/tierviz/pkg/observability"
	"github.com/matzehuels/tierviz/pkg/pipeline"
	"github.com/matzehuels/tierviz/pkg/store"
)

// ScenarioLister lists the scenarios the API can lay out.
// *coeqwal.Client implements it.
type ScenarioLister interface {
	ListScenarios(ctx context.Context) ([]coeqwal.Scenario, error)
}

// Server holds the API dependencies.
type Server struct {
	runner    *pipeline.Runner
	store     store.Store
	scenarios ScenarioLister
	counters  *observability.Counters
	logger    *log.Logger

	// RequestTimeout bounds each handler. Zero disables the limit.
	RequestTimeout time.Duration
}

// New creates a server. scenarios and counters may be nil; the
// corresponding routes then respond 501 and empty stats.
func New(runner *pipeline.Runner, st store.Store, scenarios ScenarioLister, counters *observability.Counters, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if counters == nil {
		counters = observability.NewCounters()
	}
	return &Server{
		runner:         runner,
		store:          st,
		scenarios:      scenarios,
		counters:       counters,
		logger:         logger,
		RequestTimeout: 60 * time.Second,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if s.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.RequestTimeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/scenarios", s.handleListScenarios)
		r.Post("/scenarios/{scenario}/layouts", s.handleCreateScenarioLayout)
		r.Post("/layouts", s.handleComputeLayout)
		r.Get("/layouts", s.handleListLayouts)
		r.Get("/layouts/{id}", s.handleGetLayout)
		r.Delete("/layouts/{id}", s.handleDeleteLayout)
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
