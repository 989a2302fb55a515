// Package api exposes the relay queue over HTTP for scripts and other
// services.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/krau/RelayAny-Bot/config"
	"github.com/krau/RelayAny-Bot/core/relay"
)

// Relays is the queue the API submits to.
type Relays interface {
	Enqueue(ctx context.Context, req relay.Request) (string, error)
	Pending() int
	Cancel(id string) error
}

// Init starts the HTTP API server when it is enabled. Relays it accepts
// run under ctx, and the server shuts down when ctx is done.
func Init(ctx context.Context, relays Relays) error {
	cfg := config.C()
	if !cfg.API.Enable {
		return nil
	}
	if cfg.API.Token == "" {
		return fmt.Errorf("API is enabled but token is not configured. Please set 'api.token' in your configuration file for security")
	}

	logger := log.FromContext(ctx).WithPrefix("api")
	h := &handler{
		ctx:      ctx,
		relays:   relays,
		allowed:  cfg.IsAllowed,
		batchMax: cfg.Relay.BatchMax,
	}
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.API.Port),
		Handler:      newHandler(logger, h, cfg.API.Token, cfg.API.TrustedIPs),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Starting API server on port %d", cfg.API.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("API server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Failed to shutdown API server: %v", err)
		} else {
			logger.Info("API server stopped")
		}
	}()
	return nil
}

func newHandler(logger *log.Logger, h *handler, token string, trustedIPs []string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("POST /api/v1/relays", h.handleCreateRelay)
	mux.HandleFunc("GET /api/v1/relays", h.handleQueueStatus)
	mux.HandleFunc("DELETE /api/v1/relays/{id}", h.handleCancelRelay)
	return loggingMiddleware(logger)(authMiddleware(token, trustedIPs)(mux))
}
