// Package server exposes the tracker as a JSON API.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verte-zerg/cleanse369/internal/session"
)

const (
	cookieName     = "cleanse_session"
	userHeader     = "X-User-ID"
	tokenParam     = "s"
	maxImportSize  = 1 << 20 // 1MB
	cookieMaxAge   = 30 * 24 * 60 * 60
	shutdownPeriod = 5 * time.Second
)

// Server is the tracker web server.
type Server struct {
	remote session.RemoteStore
	logger *zap.Logger
	now    func() time.Time
	router *gin.Engine

	mu       sync.Mutex
	sessions map[string]*entry
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides time.Now for every session.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates the server. remote stores signed-in users' cycles and may be
// nil, in which case only anonymous sessions persist.
func New(remote session.RemoteStore, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()
	s := &Server{
		remote:   remote,
		logger:   logger,
		now:      time.Now,
		router:   router,
		sessions: map[string]*entry{},
	}
	for _, opt := range opts {
		opt(s)
	}

	router.Use(requestLogger(logger), gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/programs", s.handlePrograms)
		api.GET("/cycle", s.handleGetCycle)
		api.POST("/cycle", s.handleBegin)
		api.DELETE("/cycle", s.handleStartOver)
		api.POST("/cycle/toggle", s.handleToggle)
		api.POST("/cycle/finish", s.handleFinish)
		api.GET("/cycle/export", s.handleExport)
		api.POST("/cycle/import", s.handleImport)
	}

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
