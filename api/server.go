package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpupo63/company-rating-backend/config"
	"github.com/rpupo63/company-rating-backend/database"
	"github.com/rpupo63/company-rating-backend/metrics"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(cfg config.Config, db database.Database, m *metrics.Metrics) (Server, error) {
	startupTime := time.Now()

	router := newRouter(db,
		withAcceptedOrigins(cfg.AcceptedOrigins),
		withMaxUploadBytes(cfg.MaxUploadBytes),
		withMetrics(m),
		withStartupTime(startupTime),
	)

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,  // Timeout for reading the entire request
		WriteTimeout: cfg.WriteTimeout, // Timeout for writing the response
		IdleTimeout:  cfg.IdleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	acceptedOrigins []string
	maxUploadBytes  int64
	metrics         *metrics.Metrics
	startupTime     time.Time
}

func withAcceptedOrigins(origins []string) func(*router) {
	return func(r *router) {
		r.acceptedOrigins = origins
	}
}

func withMaxUploadBytes(n int64) func(*router) {
	return func(r *router) {
		r.maxUploadBytes = n
	}
}

func withMetrics(m *metrics.Metrics) func(*router) {
	return func(r *router) {
		r.metrics = m
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(db database.Database, opts ...func(*router)) *chi.Mux {
	router := router{
		acceptedOrigins: []string{"*"},
		maxUploadBytes:  32 << 20,
		startupTime:     time.Now(),
	}
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(corsMiddleware(router.acceptedOrigins))

	handlers := initializeHandlers(db, router.metrics, router.maxUploadBytes, router.startupTime)
	setupRoutes(chiRouter, handlers, router.metrics)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
