package internalhttp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Fuchsoria/genre-bandit/internal/app"
	"github.com/Fuchsoria/genre-bandit/internal/bandit"
	"github.com/Fuchsoria/genre-bandit/internal/metrics"
	"github.com/Fuchsoria/genre-bandit/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type Application interface {
	DefaultPolicy() (bandit.Kind, float64)
	Simulate(ctx context.Context, req app.SimulationRequest) (*app.SimulationReport, error)
	SimulationHistory(ctx context.Context) ([]storage.SimulationRun, error)
	CreateSession(ctx context.Context, kind bandit.Kind, epsilon float64) (app.SessionView, error)
	GetSession(ctx context.Context, id string) (app.SessionView, error)
	ResetSession(ctx context.Context, id string, kind bandit.Kind, epsilon float64) (app.SessionView, error)
	StartRecommendations(ctx context.Context, id string) (app.SessionView, error)
	Feedback(ctx context.Context, id string, reward int) (app.SessionView, error)
	SessionSummary(ctx context.Context, id string) (metrics.Summary, error)
	ReplaySummary(ctx context.Context, id string) (metrics.Summary, error)
	DeleteSession(ctx context.Context, id string) error
}

type Server struct {
	logger Logger
	engine *gin.Engine
	server *http.Server
}

func NewServer(application Application, logger Logger, host string, port string) *Server {
	registry := prometheus.NewRegistry()
	handlers := NewHandlers(application, NewMetrics(registry))

	engine := gin.New()
	engine.Use(gin.Recovery(), loggingMiddleware(logger))

	engine.GET("/health", handlers.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	RegisterRoutes(engine.Group("/v1"), handlers)

	return &Server{
		logger: logger,
		engine: engine,
		server: &http.Server{
			Addr:              net.JoinHostPort(host, port),
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("http server is listening", "addr", s.server.Addr)

	s.server.BaseContext = func(net.Listener) context.Context { return ctx }

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// RegisterRoutes mounts the simulation and live session endpoints.
//
//	POST   /simulations
//	GET    /simulations
//	POST   /sessions
//	GET    /sessions/:id
//	DELETE /sessions/:id
//	POST   /sessions/:id/reset
//	POST   /sessions/:id/start
//	POST   /sessions/:id/feedback
//	GET    /sessions/:id/summary
//	GET    /sessions/:id/replay
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.POST("/simulations", h.Simulate)
	rg.GET("/simulations", h.SimulationHistory)

	sessions := rg.Group("/sessions")
	sessions.POST("", h.CreateSession)
	sessions.GET("/:id", h.GetSession)
	sessions.DELETE("/:id", h.DeleteSession)
	sessions.POST("/:id/reset", h.ResetSession)
	sessions.POST("/:id/start", h.Start)
	sessions.POST("/:id/feedback", h.Feedback)
	sessions.GET("/:id/summary", h.Summary)
	sessions.GET("/:id/replay", h.Replay)
}

func loggingMiddleware(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("http request",
			"ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"userAgent", c.Request.UserAgent())
	}
}
