// Package server provides the HTTP JSON API for résumé search.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/keywords"
	"github.com/jonathan/talent-search/internal/logger"
	"github.com/jonathan/talent-search/internal/metrics"
	"github.com/jonathan/talent-search/internal/query"
	"github.com/jonathan/talent-search/internal/search"
	"github.com/jonathan/talent-search/internal/server/middleware"
	"github.com/jonathan/talent-search/internal/server/ratelimit"
	"github.com/jonathan/talent-search/internal/types"
)

// VacancyAPI is the part of the résumé-platform client the vacancy routes use.
type VacancyAPI interface {
	Me(ctx context.Context) (*types.User, error)
	ActiveVacancies(ctx context.Context, employerID string) ([]types.Vacancy, error)
	Vacancy(ctx context.Context, id string) (*types.Vacancy, error)
}

// AreaSource returns the flattened region dictionary.
type AreaSource interface {
	Get(ctx context.Context) ([]types.Area, error)
}

// KeywordSource returns memoized keyword sets for a vacancy.
type KeywordSource interface {
	Keywords(ctx context.Context, key keywords.Key, name, descriptionHTML string) (*types.KeywordSet, error)
	LegacyKeywords(ctx context.Context, key keywords.Key, name, descriptionHTML string) (*types.LegacyKeywordSet, error)
}

// SearchService runs résumé searches.
type SearchService interface {
	Run(ctx context.Context, kw types.KeywordSet, f types.SearchFilters, page int, extra search.Reporter) (*search.Outcome, error)
	SearchLegacy(ctx context.Context, kw types.LegacyKeywordSet, mode query.Mode, f types.SearchFilters, page int) (*types.ResultEnvelope, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	logger      *zap.Logger
	rateLimiter *ratelimit.Limiter

	employerID string
	vacancies  VacancyAPI
	areas      AreaSource
	keywords   KeywordSource
	searcher   SearchService
	onClose    []func()
}

// Config holds server configuration
type Config struct {
	Port       int
	EmployerID string
	RateLimit  *ratelimit.Config // nil reads the environment
}

// Deps are the collaborators the routes call.
type Deps struct {
	Vacancies VacancyAPI
	Areas     AreaSource
	Keywords  KeywordSource
	Searcher  SearchService
	Logger    *zap.Logger
	OnClose   []func() // run after shutdown, e.g. closing the database pool
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	switch {
	case deps.Searcher == nil:
		return nil, errors.New("server: searcher is required")
	case deps.Vacancies == nil:
		return nil, errors.New("server: vacancy API is required")
	case deps.Areas == nil:
		return nil, errors.New("server: area source is required")
	case deps.Keywords == nil:
		return nil, errors.New("server: keyword source is required")
	}

	rl := cfg.RateLimit
	if rl == nil {
		rl = ratelimit.LoadConfig()
	}

	s := &Server{
		logger:      logger.OrNop(deps.Logger),
		rateLimiter: ratelimit.NewLimiter(rl),
		employerID:  cfg.EmployerID,
		vacancies:   deps.Vacancies,
		areas:       deps.Areas,
		keywords:    deps.Keywords,
		searcher:    deps.Searcher,
		onClose:     deps.OnClose,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Dictionaries and vacancies
	mux.HandleFunc("GET /areas", s.handleAreas)
	mux.HandleFunc("GET /vacancies", s.handleListVacancies)
	mux.HandleFunc("GET /vacancies/{id}", s.handleGetVacancy)
	mux.HandleFunc("POST /vacancies/{id}/keywords", s.handleVacancyKeywords)
	mux.HandleFunc("POST /keywords", s.handleKeywords)

	// Query compilation and search
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("POST /search/stream", s.handleSearchStream)
	mux.HandleFunc("POST /search/legacy", s.handleSearchLegacy)

	// metrics.Middleware sits next to the mux so it sees the matched pattern.
	s.handler = middleware.RequestID(s.withRateLimit(s.withLogging(s.withCORS(metrics.Middleware(mux)))))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // streamed searches run two upstream calls
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped route handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT/SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	s.logger.Info("server stopped")
	return nil
}

// Close stops background work and runs the OnClose hooks.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	for _, fn := range s.onClose {
		fn()
	}
	s.onClose = nil
}
