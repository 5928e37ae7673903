// Package server exposes the design generator, the Uc response model and
// the surface regressor over a JSON HTTP API built on gin.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/YuminosukeSato/electrospin/config"
	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/YuminosukeSato/electrospin/pkg/log"
	"github.com/gin-gonic/gin"
)

const (
	shutdownTimeout = 10 * time.Second

	// MaxResolution bounds per-request grid sizes.
	MaxResolution = 2000
	// MaxFactors bounds the design size: 4·C(50,2) = 4900 runs.
	MaxFactors = 50
	// MaxCenterPoints bounds the repeated center runs of one design.
	MaxCenterPoints = 1000
	// MaxFeatures bounds uploaded datasets: 12 features expand to 90 terms
	// and 66 surfaces.
	MaxFeatures = 12
	// MaxSurfaceCells bounds pairs·resolution² for one multi-surface request.
	MaxSurfaceCells = 16_000_000
)

// Server is the HTTP presentation shell. Fitted models are cached so that
// surfaces can be re-evaluated without refitting.
type Server struct {
	cfg    config.Config
	logger log.Logger
	router *gin.Engine
	models *modelCache
}

// New builds the router. A nil logger selects log.GetLoggerWithName("server").
func New(cfg config.Config, logger log.Logger) *Server {
	if logger == nil {
		logger = log.GetLoggerWithName("server")
	}
	gin.SetMode(cfg.GinMode)

	logger = logger.With(log.ComponentKey, "server")
	s := &Server{
		cfg:    cfg,
		logger: logger,
		router: gin.New(),
		models: newModelCache(cfg.ModelCacheSize, logger),
	}
	s.router.Use(requestIDMiddleware(), s.loggingMiddleware(), s.recoveryMiddleware())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.health)

	api := s.router.Group("/api/v1")
	{
		api.POST("/designs", s.createDesign)
		api.POST("/uc", s.evaluateUc)
		api.POST("/uc/sweep", s.sweepUc)
		api.POST("/uc/sweep.png", s.sweepUcPlot)
		api.POST("/surfaces", s.fitSurfaces)
		api.GET("/models/:id", s.getModel)
		api.GET("/models/:id/surfaces", s.getSurfaces)
		api.GET("/models/:id/surfaces/:index/plot.png", s.getSurfacePlot)
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "http.addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown failed")
	}
	return nil
}
