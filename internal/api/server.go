package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quorum-wallet/quorum-wallet/internal/config"
	"github.com/quorum-wallet/quorum-wallet/internal/logger"
	"github.com/quorum-wallet/quorum-wallet/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	config        *config.Config
	walletService WalletService
	rateLimiter   *middleware.RateLimiter
	httpServer    *http.Server
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, walletService WalletService, rateLimiter *middleware.RateLimiter) *Server {
	return &Server{
		config:        cfg,
		walletService: walletService,
		rateLimiter:   rateLimiter,
	}
}

// Handler builds the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Operational endpoints, outside the rate limit.
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	api := http.NewServeMux()
	api.HandleFunc("/v1/wallets", s.handleWallets)
	api.HandleFunc("/v1/wallets/", s.handleWalletOperationsRouter)

	var apiHandler http.Handler = api
	if s.rateLimiter != nil {
		apiHandler = s.rateLimiter.Limit(apiHandler)
	}
	mux.Handle("/v1/", apiHandler)

	// Chain: RequestID -> Logging -> Routes
	return middleware.RequestID(middleware.Logging(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info(context.Background(), "starting server", "port", s.config.Port)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
