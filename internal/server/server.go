// Package server exposes the dashboard as a JSON API over gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/sentidash/internal/cache"
	"github.com/ppiankov/sentidash/internal/dashboard"
	"github.com/ppiankov/sentidash/internal/logger"
	"github.com/ppiankov/sentidash/internal/model"
	"github.com/ppiankov/sentidash/internal/session"
	"github.com/ppiankov/sentidash/internal/worker"
)

const (
	shutdownTimeout = 10 * time.Second
	pruneInterval   = time.Minute
	limiterIdle     = 10 * time.Minute
)

// Server serves one dashboard to many concurrent sessions. Each session
// keeps its own selection snapshot in the session store.
type Server struct {
	dash     *dashboard.Dashboard
	sessions *session.Store
	limiter  *worker.Limiter // nil when rate limiting is disabled
	router   *gin.Engine
	http     *http.Server
}

// New builds the server and registers its routes
func New(ctx context.Context, dash *dashboard.Dashboard, cfg *model.Config) *Server {
	sessionCache := cache.NewMemoryCache(cfg.Session.TTL, 10*time.Minute)

	s := &Server{
		dash:     dash,
		sessions: session.NewStore(sessionCache, cfg.Session.TTL),
	}
	if cfg.RateLimiting.RequestsPerSecond > 0 {
		s.limiter = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), withLogger(ctx), observe())
	if s.limiter != nil {
		router.Use(rateLimit(s.limiter))
	}
	s.routes(router)
	s.router = router

	s.http = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) routes(router *gin.Engine) {
	router.GET("/healthz", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/session", s.newSession)
		v1.GET("/selection", s.getSelection)
		v1.PUT("/selection", s.putSelection)
		v1.GET("/options", s.options)
		v1.GET("/options/:dimension", s.optionsFor)
		v1.GET("/chart", s.chart)
		v1.GET("/timeseries", s.timeseries)
		v1.GET("/features", s.features)
		v1.GET("/highlights", s.highlights)
		v1.GET("/view", s.view)
		v1.POST("/click", s.click)
		v1.GET("/digest/:model", s.digest)
	}
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if s.limiter != nil {
		go s.pruneLimiter(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.limiter.Prune(limiterIdle); n > 0 {
				logger.FromContext(ctx).V(1).Info("pruned idle rate limiters", "count", n)
			}
		}
	}
}
