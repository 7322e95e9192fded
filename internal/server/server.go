package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackzampolin/tagsheet/internal/api"
	"github.com/jackzampolin/tagsheet/internal/config"
	"github.com/jackzampolin/tagsheet/internal/history"
	"github.com/jackzampolin/tagsheet/internal/home"
	"github.com/jackzampolin/tagsheet/internal/metrics"
	"github.com/jackzampolin/tagsheet/internal/pipeline"
	"github.com/jackzampolin/tagsheet/internal/server/endpoints"
	"github.com/jackzampolin/tagsheet/internal/svcctx"
	"github.com/jackzampolin/tagsheet/internal/tags"
)

// Server is the tagsheet HTTP server.
// It opens run history on start and closes it on shutdown.
type Server struct {
	httpServer *http.Server
	configMgr  *config.Manager
	home       *home.Dir
	logger     *slog.Logger
	metrics    *metrics.Collector
	history    *history.Store

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Home is the tagsheet home directory; history defaults to live there
	Home *home.Dir
	// Logger is the structured logger to use
	Logger *slog.Logger
	// SwaggerSpecPath overrides the embedded OpenAPI document
	SwaggerSpecPath string
	// MaxUploadBytes caps upload request bodies
	MaxUploadBytes int64
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		home:      cfg.Home,
		logger:    cfg.Logger,
		metrics:   metrics.New(metrics.DefaultConfig()),
	}

	if cfg.ConfigManager != nil {
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			s.reload(c)
		})
	}

	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{
		SwaggerSpecPath: cfg.SwaggerSpecPath,
		MaxUploadBytes:  cfg.MaxUploadBytes,
	}) {
		s.endpointRegistry.Register(ep)
	}

	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           s.withServices(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute, // uploads of large drawing sets
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	return s, nil
}

// Start opens run history, builds the pipeline and serves HTTP.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.init(ctx); err != nil {
		s.setNotRunning()
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// init opens history and attaches services. Requests that need them get
// 503 until this has run.
func (s *Server) init(ctx context.Context) error {
	cfg := s.config()

	var store *history.Store
	if cfg.History.Enabled {
		path := cfg.History.Path
		if path == "" && s.home != nil {
			path = s.home.HistoryPath()
		}
		if path == "" {
			return errors.New("history enabled but no history path or home directory set")
		}
		var err error
		store, err = history.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open run history: %w", err)
		}
		if _, err := store.Totals(ctx); err != nil {
			store.Close()
			return fmt.Errorf("run history health check failed: %w", err)
		}
		s.logger.Info("run history ready", "path", path)
	} else {
		s.logger.Info("run history disabled")
	}

	s.mu.Lock()
	s.history = store
	s.services = s.buildServices(cfg)
	s.mu.Unlock()
	return nil
}

// buildServices wires a runner for cfg around the long-lived stores.
func (s *Server) buildServices(cfg *config.Config) *svcctx.Services {
	runnerCfg := pipeline.Config{
		Logger:       s.logger,
		Extractor:    tags.NewExtractor(tags.ExtractorConfig{Workers: cfg.Extraction.Workers}),
		Metrics:      s.metrics,
		BatchWorkers: cfg.Batch.Workers,
	}
	// A nil *history.Store inside the interface would not read as disabled.
	if s.history != nil {
		runnerCfg.History = s.history
	}
	return &svcctx.Services{
		Runner:        pipeline.New(runnerCfg),
		History:       s.history,
		Metrics:       s.metrics,
		ConfigManager: s.configMgr,
		Logger:        s.logger,
		Home:          s.home,
	}
}

// reload swaps in a runner built from the new configuration. History
// location changes take effect on restart.
func (s *Server) reload(c *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.services == nil {
		return
	}
	s.services = s.buildServices(c)
	s.logger.Info("pipeline reloaded from config",
		"extraction_workers", c.Extraction.Workers,
		"batch_workers", c.Batch.Workers)
}

func (s *Server) config() *config.Config {
	if s.configMgr != nil {
		return s.configMgr.Get()
	}
	return config.DefaultConfig()
}

// shutdown performs graceful shutdown of the HTTP server and closes history.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.mu.Lock()
	store := s.history
	s.services = nil
	s.history = nil
	s.mu.Unlock()

	if store != nil {
		if err := store.Close(); err != nil {
			s.logger.Error("run history close error", "error", err)
		}
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Metrics returns the server's metrics collector.
func (s *Server) Metrics() *metrics.Collector {
	return s.metrics
}

func (s *Server) currentServices() *svcctx.Services {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.services
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc := s.currentServices(); svc != nil {
			ctx = svcctx.WithServices(ctx, svc)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable until the pipeline is attached.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.currentServices() == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
