package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veridian-hq/callisto/pkg/config"
	"veridian-hq/callisto/pkg/service"
)

// Server is the HTTP API server.
type Server struct {
	config       *config.ServerConfig
	metricsCfg   *config.MetricsConfig
	service      *service.Service
	registry     *prometheus.Registry
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a Server. registry may be nil when metrics are disabled.
func New(cfg *config.ServerConfig, metricsCfg *config.MetricsConfig, svc *service.Service, registry *prometheus.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:       cfg,
		metricsCfg:   metricsCfg,
		service:      svc,
		registry:     registry,
		logger:       logger,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		defer close(s.shutdownChan)

		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("API server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/evaluate", s.handleEvaluate)

	mux.HandleFunc("GET /v1/policy", s.handleGetPolicy)
	mux.HandleFunc("PUT /v1/policy", s.handlePutPolicy)

	mux.HandleFunc("GET /v1/subjects", s.handleListSubjects)
	mux.HandleFunc("PUT /v1/subjects/{id}", s.handlePutSubject)
	mux.HandleFunc("GET /v1/subjects/{id}", s.handleGetSubject)
	mux.HandleFunc("DELETE /v1/subjects/{id}", s.handleDeleteSubject)
	mux.HandleFunc("PUT /v1/subjects/{id}/preference", s.handlePutPreference)

	mux.HandleFunc("GET /v1/requesters", s.handleListRequesters)
	mux.HandleFunc("PUT /v1/requesters/{id}", s.handlePutRequester)
	mux.HandleFunc("GET /v1/requesters/{id}", s.handleGetRequester)
	mux.HandleFunc("DELETE /v1/requesters/{id}", s.handleDeleteRequester)

	mux.HandleFunc("GET /health", s.handleHealth)

	if s.metricsCfg != nil && s.metricsCfg.Enabled && s.registry != nil {
		mux.Handle("GET "+s.metricsCfg.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	var handler http.Handler = mux
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	return handler
}
