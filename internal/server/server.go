package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

type Server struct {
	Engine *gin.Engine
	Addr   string
	db     HealthChecker
	cache  CacheProbe
	nowFn  func() time.Time
}

// HealthChecker is an interface for components that can report their health status.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// CacheProbe round-trips a value through the response cache.
type CacheProbe interface {
	Ping() bool
}

// ComponentStatus is one entry of the health report.
type ComponentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                     `json:"status"`
	Timestamp time.Time                  `json:"timestamp"`
	Checks    map[string]ComponentStatus `json:"checks"`
}

// New builds the HTTP server with /health and /metrics mounted. db and
// cache may be nil, in which case their checks are skipped.
func New(addr string, db HealthChecker, cache CacheProbe, mode string) *Server {
	// Set Gin mode based on configuration
	if mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	s := &Server{
		Engine: r,
		Addr:   addr,
		db:     db,
		cache:  cache,
		nowFn:  time.Now,
	}

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    statusHealthy,
		Timestamp: s.nowFn().UTC(),
		Checks:    make(map[string]ComponentStatus, 2),
	}

	if s.db != nil {
		check := ComponentStatus{Status: statusHealthy}
		if err := s.db.Ping(ctx); err != nil {
			slog.Error("Health check failed: database unreachable", "error", err)
			check = ComponentStatus{Status: statusUnhealthy, Error: "database unreachable"}
			resp.Status = statusUnhealthy
		}
		resp.Checks["database"] = check
	}

	if s.cache != nil {
		check := ComponentStatus{Status: statusHealthy}
		if !s.cache.Ping() {
			slog.Error("Health check failed: cache round-trip")
			check = ComponentStatus{Status: statusUnhealthy, Error: "cache round-trip failed"}
			resp.Status = statusUnhealthy
		}
		resp.Checks["cache"] = check
	}

	code := http.StatusOK
	if resp.Status != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Starting HTTP Server...", "address", s.Addr)

	go func() {
		<-ctx.Done()
		slog.Info("Stopping HTTP Server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP Server forced to shutdown", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
