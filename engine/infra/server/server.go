package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/howzat/howzat/engine/infra/cache"
	"github.com/howzat/howzat/engine/infra/monitoring"
	"github.com/howzat/howzat/engine/pipeline"
	"github.com/howzat/howzat/engine/registry"
	"github.com/howzat/howzat/pkg/config"
	"github.com/howzat/howzat/pkg/logger"
)

const (
	httpReadTimeout       = 15 * time.Second
	httpWriteTimeout      = 30 * time.Second
	httpIdleTimeout       = 60 * time.Second
	serverShutdownTimeout = 5 * time.Second
)

// Server is the HTTP surface over the query pipeline.
type Server struct {
	cfg          *config.Config
	pipeline     *pipeline.Service
	registry     *registry.Registry
	cache        *cache.Cache
	monitoring   *monitoring.Service
	router       *gin.Engine
	httpServer   *http.Server
	shutdownOnce sync.Once
}

// Deps carries the wired components the server exposes.
type Deps struct {
	Pipeline   *pipeline.Service
	Registry   *registry.Registry
	Cache      *cache.Cache
	Monitoring *monitoring.Service
}

func NewServer(ctx context.Context, cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Pipeline == nil || deps.Registry == nil {
		return nil, fmt.Errorf("server requires a pipeline and a registry")
	}
	s := &Server{
		cfg:        cfg,
		pipeline:   deps.Pipeline,
		registry:   deps.Registry,
		cache:      deps.Cache,
		monitoring: deps.Monitoring,
	}
	s.router = s.buildRouter(ctx)
	return s, nil
}

func (s *Server) buildRouter(ctx context.Context) *gin.Engine {
	log := logger.FromContext(ctx)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	if s.cfg.Server.CORSEnabled {
		router.Use(CORSMiddleware(s.cfg.Server.CORS))
	}
	if s.monitoring != nil {
		router.Use(s.monitoring.GinMiddleware(ctx))
		router.GET(s.monitoring.Path(), gin.WrapH(s.monitoring.ExporterHandler()))
	}

	router.GET("/healthz", s.handleHealth)
	api := router.Group("/api/v0")
	{
		api.POST("/query", s.handleQuery)
		api.POST("/query/batch", s.handleQueryBatch)
		api.GET("/tools", s.handleTools)
	}
	return router
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves HTTP until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	addr := s.cfg.Server.Host + ":" + strconv.Itoa(s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  httpReadTimeout,
		WriteTimeout: httpWriteTimeout,
		IdleTimeout:  httpIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down HTTP server")
		return s.Shutdown()
	}
}

// Shutdown stops the HTTP server, waiting for in-flight requests.
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.httpServer == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}
