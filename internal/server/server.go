// Package server exposes the scoring service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/ats"
	"github.com/spigell/ats-scorer/internal/logger"
	"github.com/spigell/ats-scorer/internal/resume"
)

const (
	// DefaultAddr is used when no listen address is configured.
	DefaultAddr = ":8080"

	shutdownTimeout = 10 * time.Second
)

// Scorer is satisfied by *ats.Service.
type Scorer interface {
	ComputeScore(ctx context.Context, data *resume.Data, jobText string) (*ats.Result, error)
	ComputeScoreRaw(ctx context.Context, raw any, jobText string) (*ats.Result, error)
	AIEnabled() bool
}

// Options configure the HTTP adapter.
type Options struct {
	Logger *zap.Logger
	Scorer Scorer
	// Concurrency bounds parallel scoring in /v1/rank. Zero uses GOMAXPROCS.
	Concurrency int
}

type handler struct {
	logger      *zap.Logger
	scorer      Scorer
	concurrency int
}

// NewEngine builds the gin engine with middleware and routes registered.
func NewEngine(opts Options) *gin.Engine {
	h := &handler{
		logger:      logger.OrNop(opts.Logger),
		scorer:      opts.Scorer,
		concurrency: opts.Concurrency,
	}

	engine := gin.New()
	engine.Use(requestID(), accessLog(h.logger), recovery(h.logger))

	engine.GET("/healthz", h.health)

	v1 := engine.Group("/v1")
	v1.POST("/score", h.score)
	v1.POST("/rank", h.rank)

	return engine
}

// Run serves engine on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, addr string, engine http.Handler, log *zap.Logger) error {
	log = logger.OrNop(log)
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting http server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
