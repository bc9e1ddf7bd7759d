// Package admin exposes a read-only HTTP surface for operators: daemon info
// and activity counters. It never mutates chat state; all writes go through
// the wire protocol.
package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parley-im/parley/internal/chat"
	"github.com/parley-im/parley/internal/stats"
	"go.uber.org/zap"
)

// Server is the admin HTTP server.
type Server struct {
	model      *chat.Model
	collector  *stats.Collector
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// InfoResponse is the body of GET /api/v1/info.
type InfoResponse struct {
	Version   string    `json:"version"`
	StartTime time.Time `json:"start_time"`
	Uptime    string    `json:"uptime"`
}

// StatsResponse is the body of GET /api/v1/stats.
type StatsResponse struct {
	Users         int            `json:"users"`
	Conversations int            `json:"conversations"`
	Messages      int            `json:"messages"`
	Activity      stats.Counters `json:"activity"`
}

// New creates the admin server bound to addr. Nothing listens until Start.
func New(addr string, model *chat.Model, collector *stats.Collector, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		model:     model,
		collector: collector,
		router:    router,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger,
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/info", s.handleInfo)
		v1.GET("/stats", s.handleStats)
	}
	router.GET("/health", s.handleHealth)

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		s.logger.Info("admin api listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("admin api failed", zap.Error(err))
		}
	}()
}

// Stop shuts the server down, waiting for in-flight requests up to the
// context deadline.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleInfo(c *gin.Context) {
	info := s.model.Info()
	c.JSON(http.StatusOK, InfoResponse{
		Version:   info.Version.String(),
		StartTime: info.StartTime,
		Uptime:    time.Since(info.StartTime).Round(time.Second).String(),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	users, conversations, messages := s.model.Counts()
	resp := StatsResponse{
		Users:         users,
		Conversations: conversations,
		Messages:      messages,
	}
	if s.collector != nil {
		resp.Activity = s.collector.Snapshot()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
