package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Server struct {
	Engine *gin.Engine
	Addr   string
	checks map[string]HealthChecker
}

// HealthChecker is implemented by stores that can report connectivity.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// New builds the gin engine. checks maps a component name ("local", "remote")
// to its checker; nil entries are skipped.
func New(addr, mode string, checks map[string]HealthChecker) *Server {
	if mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	s := &Server{
		Engine: r,
		Addr:   addr,
		checks: make(map[string]HealthChecker, len(checks)),
	}
	for name, check := range checks {
		if check != nil {
			s.checks[name] = check
		}
	}

	r.GET("/health", s.healthHandler)

	return s
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	components := make(gin.H, len(s.checks))
	healthy := true
	for name, check := range s.checks {
		if err := check.PingContext(ctx); err != nil {
			slog.Error("[Server] Health check failed", "component", name, "error", err)
			components[name] = "unreachable"
			healthy = false
			continue
		}
		components[name] = "connected"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "unhealthy",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"components": components,
	})
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("[Server] Starting HTTP server", "address", s.Addr)

	go func() {
		<-ctx.Done()
		slog.Info("[Server] Stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("[Server] HTTP server forced to shutdown", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
