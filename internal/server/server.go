package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"financial-import-platform/internal/config"
	"financial-import-platform/internal/handlers"
	"financial-import-platform/internal/logger"
	"financial-import-platform/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	config            *config.Config
	logger            *logger.Logger
	router            *mux.Router
	httpServer        *http.Server
	mappingHandler    *handlers.MappingHandler
	configHandler     *handlers.ConfigurationHandler
	healthHandler     *handlers.HealthHandler
	loggingMiddleware *middleware.LoggingMiddleware
}

// NewServer creates a new HTTP server
func NewServer(
	config *config.Config,
	logger *logger.Logger,
	mappingHandler *handlers.MappingHandler,
	configHandler *handlers.ConfigurationHandler,
	healthHandler *handlers.HealthHandler,
	loggingMiddleware *middleware.LoggingMiddleware,
) *Server {
	router := mux.NewRouter()

	server := &Server{
		config:            config,
		logger:            logger,
		router:            router,
		mappingHandler:    mappingHandler,
		configHandler:     configHandler,
		healthHandler:     healthHandler,
		loggingMiddleware: loggingMiddleware,
	}

	server.setupRoutes()
	server.setupHTTPServer()

	return server
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health check endpoints (no auth required)
	s.router.HandleFunc("/health", s.healthHandler.HandleHealthCheck).Methods("GET")
	s.router.HandleFunc("/health/ready", s.healthHandler.HandleReadinessProbe).Methods("GET")
	s.router.HandleFunc("/health/live", s.healthHandler.HandleLivenessProbe).Methods("GET")

	// Metrics endpoint for monitoring systems
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Mapping engine routes
	s.mappingHandler.RegisterRoutes(s.router)

	// Configuration management routes
	s.configHandler.RegisterRoutes(s.router)

	s.router.Use(s.loggingMiddleware.Handler)
}

// setupHTTPServer configures the HTTP server
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.config.Server.IdleTimeout) * time.Second,
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.config.Server.Port).Info("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.WithError(err).Error("HTTP server error")
		return err
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	s.logger.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}
