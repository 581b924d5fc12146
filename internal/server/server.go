package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"scoreline/server/internal/alerts"
	"scoreline/server/internal/cache"
	"scoreline/server/internal/client"
	"scoreline/server/internal/metrics"
	"scoreline/server/internal/models"
	"scoreline/server/internal/repository"
	"scoreline/server/internal/snapshot"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Server wires the repositories, snapshot builder and prediction service into
// the HTTP API. Handlers are pure plumbing: assemble inputs, call the engine,
// JSON out.
type Server struct {
	db        *repository.Database
	builder   *snapshot.Builder
	service   *snapshot.Service
	feed      *client.SportsFeed
	cache     cache.Store
	publisher *alerts.Publisher

	playerTTL time.Duration
}

// New creates the API server. feed and publisher may be nil, which disables
// the player routes and the alerts route respectively.
func New(db *repository.Database, builder *snapshot.Builder, service *snapshot.Service, feed *client.SportsFeed, store cache.Store, publisher *alerts.Publisher) *Server {
	if store == nil {
		store = cache.Null{}
	}
	return &Server{
		db:        db,
		builder:   builder,
		service:   service,
		feed:      feed,
		cache:     store,
		publisher: publisher,
		playerTTL: time.Hour,
	}
}

// Router returns the HTTP router with all API endpoints
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/health", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/games", s.listGames)
		r.Get("/games/{id}", s.getGame)
		r.Get("/games/{id}/odds", s.getGameOdds)
		r.Get("/games/{id}/prediction", s.getPrediction)
		r.Get("/games/{id}/value-bets", s.getValueBets)
		r.Get("/teams", s.listTeams)
		r.Get("/teams/{id}/snapshot", s.getTeamSnapshot)
		r.Get("/players/{id}", s.getPlayer)
		r.Get("/alerts", s.listAlerts)
	})

	return r
}

// Serve runs the API until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", port).Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("api server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown failed: %w", err)
	}

	log.Info().Msg("API server stopped")
	return nil
}

// instrument records request metrics per route pattern
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		metrics.RecordHTTPRequest(route, r.Method, strconv.Itoa(ww.Status()), time.Since(start).Seconds())
	})
}

// sportParam reads the ?sport= query parameter, defaulting to the NBA
func sportParam(r *http.Request) (models.Sport, error) {
	raw := r.URL.Query().Get("sport")
	if raw == "" {
		return models.SportNBA, nil
	}
	sport := models.Sport(raw)
	if !sport.Valid() {
		return "", fmt.Errorf("unsupported sport %q", raw)
	}
	return sport, nil
}

func idParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}
