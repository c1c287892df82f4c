package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/halcyon-desktop/halcyon/internal/api/http"
	"github.com/halcyon-desktop/halcyon/internal/api/middleware"
	"github.com/halcyon-desktop/halcyon/internal/api/ws"
	"github.com/halcyon-desktop/halcyon/internal/domain/bridge"
	"github.com/halcyon-desktop/halcyon/internal/domain/input"
	"github.com/halcyon-desktop/halcyon/internal/domain/lifecycle"
	"github.com/halcyon-desktop/halcyon/internal/domain/registry"
	"github.com/halcyon-desktop/halcyon/internal/domain/session"
	"github.com/halcyon-desktop/halcyon/internal/domain/window"
	"github.com/halcyon-desktop/halcyon/internal/infrastructure/config"
	"github.com/halcyon-desktop/halcyon/internal/infrastructure/logging"
	"github.com/halcyon-desktop/halcyon/internal/infrastructure/monitoring"
	"github.com/halcyon-desktop/halcyon/internal/shared/types"
	"github.com/halcyon-desktop/halcyon/internal/storage"
)

// Server wires the desktop core together behind one HTTP listener
type Server struct {
	router   *gin.Engine
	windows  *window.Manager
	apps     *registry.Manager
	engine   *lifecycle.Manager
	bridge   *bridge.Bridge
	input    *input.Router
	sessions *session.Manager
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("initializing halcyon desktop core",
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Path),
	)

	metrics := monitoring.NewMetrics()

	var store storage.Store
	if fileStore, err := storage.NewFile(cfg.Storage.Path); err != nil {
		logger.Warn("file store unavailable, sessions held in memory", zap.Error(err))
		store = storage.NewMemory()
	} else {
		store = fileStore
	}

	windows := window.NewManager(logger.Named("window")).WithMetrics(metrics)
	apps := registry.NewManager(logger.Named("registry"))
	engine := lifecycle.NewManager(apps, logger.Named("lifecycle")).WithMetrics(metrics)
	br := bridge.New(windows, engine, apps, logger.Named("bridge"))
	router := input.NewRouter(cfg.Input, logger.Named("input")).WithMetrics(metrics)
	sessions := session.NewManager(windows, store, logger.Named("session")).WithMetrics(metrics)

	if cfg.Storage.ManifestDir != "" {
		seedApps(cfg.Storage.ManifestDir, apps, engine, logger)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(monitoring.Middleware(metrics))
	ginRouter.Use(middleware.CORS())
	if cfg.RateLimit.Enabled {
		logger.Info("rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		ginRouter.Use(middleware.RateLimit(cfg.RateLimit))
	}

	handlers := api.NewHandlers(windows, apps, engine, br, router, sessions, logger.Named("http"))
	handlers.Register(ginRouter)

	wsHandler := ws.NewHandler(windows, apps, engine, router, logger.Named("ws")).WithMetrics(metrics)
	ginRouter.GET("/stream", wsHandler.HandleConnection)

	ginRouter.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		metrics.Registry(), promhttp.HandlerOpts{},
	)))

	logger.Info("server initialized")

	return &Server{
		router:   ginRouter,
		windows:  windows,
		apps:     apps,
		engine:   engine,
		bridge:   br,
		input:    router,
		sessions: sessions,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Run starts the HTTP server
func (s *Server) Run() error {
	go s.trackUptime()

	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close flushes and shuts down server resources
func (s *Server) Close() error {
	s.logger.Info("shutting down")
	s.logger.Sync()
	return nil
}

func (s *Server) trackUptime() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		s.metrics.UpdateUptime()
	}
}

// seedApps loads manifest files into the catalog and launches any
// autostart applications.
func seedApps(dir string, apps *registry.Manager, engine *lifecycle.Manager, logger *logging.Logger) {
	seeder := registry.NewSeeder(apps, dir)
	seeded, err := seeder.Seed()
	if err != nil {
		logger.Warn("manifest seeding failed", zap.String("dir", dir), zap.Error(err))
		return
	}
	logger.Info("manifests seeded", zap.Int("count", len(seeded)))

	for _, desc := range registry.Autostarts(seeded) {
		if _, err := engine.Launch(context.Background(), desc.ID, types.LaunchContext{}); err != nil {
			logger.Warn("autostart launch failed", zap.String("app_id", desc.ID), zap.Error(err))
		}
	}
}
