// Package api exposes the reconciliation backend over HTTP: trigger a
// run, inspect run history, and read aggregate stats. The upload and
// extraction pipeline has its own surface; this API only covers
// reconciliation.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/purelyibiza/invoice-reconciler/internal/application/reconcile"
	"github.com/purelyibiza/invoice-reconciler/internal/infrastructure/config"
	"github.com/purelyibiza/invoice-reconciler/internal/infrastructure/storage"
)

// defaultAllowedOrigins backs an empty allowed_origins list. The CORS
// middleware rejects an empty origin list outright when credentials are
// allowed, so NewServer always supplies at least these.
var defaultAllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// Runner starts a reconciliation run. Implemented by the reconcile
// orchestrator.
type Runner interface {
	Run(ctx context.Context, opts reconcile.Options) (*reconcile.Summary, error)
}

// Server is the HTTP API server.
type Server struct {
	cfg        config.APIConfig
	httpServer *http.Server
	repo       storage.Repository
	runner     Runner
	logger     *slog.Logger
}

// NewServer creates the API server and its routes.
func NewServer(cfg config.APIConfig, repo storage.Repository, runner Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		repo:   repo,
		runner: runner,
		logger: logger,
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultAllowedOrigins
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		api.GET("/health", s.health)
		api.POST("/reconcile", s.startReconcile)
		api.GET("/runs", s.listRuns)
		api.GET("/runs/:id", s.getRun)
		api.GET("/stats", s.getStats)
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the underlying HTTP handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving. It blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("API server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// requestLogger logs each request through the structured logger.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) startReconcile(c *gin.Context) {
	var req StartReconcileRequest
	// An empty body means a live run with defaults.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	summary, err := s.runner.Run(c.Request.Context(), reconcile.Options{DryRun: req.DryRun})
	if err != nil {
		if errors.Is(err, reconcile.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "a reconciliation run is already in progress"})
			return
		}
		s.logger.Error("Reconciliation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (s *Server) listRuns(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
	}

	runs, err := s.repo.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch runs"})
		return
	}

	resp := RunListResponse{Runs: make([]RunResponse, 0, len(runs)), Count: len(runs)}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, toRunResponse(run))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getRun(c *gin.Context) {
	run, err := s.repo.GetRun(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch run"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, toRunResponse(run))
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := s.repo.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
