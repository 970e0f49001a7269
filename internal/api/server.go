package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tmdbcat/tmdbcat/internal/catalog"
	"github.com/tmdbcat/tmdbcat/internal/config"
	"github.com/tmdbcat/tmdbcat/internal/health"
	"github.com/tmdbcat/tmdbcat/internal/metadata"
	"github.com/tmdbcat/tmdbcat/internal/scheduler"
	"github.com/tmdbcat/tmdbcat/internal/scheduler/tasks"
	"github.com/tmdbcat/tmdbcat/internal/websocket"
)

// Server handles HTTP requests for the addon and its admin API.
type Server struct {
	echo      *echo.Echo
	logger    zerolog.Logger
	cfg       *config.Config
	startTime time.Time
	logs      LogsProvider
	hub       *websocket.Hub
	hubCancel context.CancelFunc

	// Services
	healthService   *health.Service
	healthChecker   *health.Checker
	scheduler       *scheduler.Scheduler
	metadataService *metadata.Service
	lists           *metadata.Lists
	options         *catalog.Options
	manifests       *catalog.Builder
	resolver        *catalog.Resolver
	clients         metadataClients
}

// NewServer creates a new API server instance with every service wired.
func NewServer(cfg *config.Config, logs LogsProvider, logger zerolog.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		logger:    logger,
		cfg:       cfg,
		startTime: time.Now(),
		logs:      logs,
	}

	s.hub = websocket.NewHub()
	s.healthService = health.NewService(logger)
	s.healthService.SetBroadcaster(s.hub)
	s.healthChecker = health.NewChecker(s.healthService, cfg.Scheduler.HealthCheckTimeout, logger)

	// Initialize upstream clients, real or canned
	s.clients = s.newMetadataClients()

	// Initialize metadata adapters
	lookups := metadata.NewCache(metadata.CacheConfig{
		TTL:      cfg.Cache.LookupTTL,
		MaxItems: cfg.Cache.LookupMaxItems,
	})
	general := metadata.NewGeneral(s.clients.tmdb, lookups, logger)
	s.lists = metadata.NewLists(s.clients.mdblist, general, cfg.Metadata.MDBList.Concurrency, logger)
	overlay := metadata.NewPosterOverlay(s.clients.posters, cfg.Metadata.RPDB.ProbeConcurrency, logger)

	s.metadataService = metadata.NewService(general, overlay, cfg.Cache, &logger)
	s.metadataService.SetHealthService(s.healthService)
	s.metadataService.RegisterMetadataProviders()
	if s.metadataService.IsTMDBConfigured() {
		s.healthChecker.Register(health.CategoryMetadata, "tmdb", "TMDB", s.metadataService.TestTMDB)
	}

	// Initialize catalog services
	registry, err := catalog.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog registry: %w", err)
	}
	s.options = catalog.NewOptions(general, cfg.Catalog.Years, logger)
	s.manifests = catalog.NewBuilder(registry, s.options, s.lists, cfg.Addon, logger)
	s.resolver = catalog.NewResolver(registry, general, s.lists, overlay, s.options, logger)

	if err := s.initScheduler(); err != nil {
		return nil, err
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// initScheduler creates the scheduler and registers the background tasks.
func (s *Server) initScheduler() error {
	sched, err := scheduler.New(s.logger)
	if err != nil {
		return err
	}
	sched.SetHealthReporter(s.healthService)

	if err := tasks.RegisterCacheSweepTask(sched, s.metadataService, s.cfg.Scheduler, s.logger); err != nil {
		return fmt.Errorf("failed to register cache sweep task: %w", err)
	}
	if err := tasks.RegisterOptionsRefreshTask(sched, s.options, s.cfg, s.logger); err != nil {
		return fmt.Errorf("failed to register options refresh task: %w", err)
	}
	if err := tasks.RegisterProviderHealthTask(sched, s.healthChecker, s.cfg.Scheduler, s.logger); err != nil {
		return fmt.Errorf("failed to register provider health task: %w", err)
	}

	s.scheduler = sched
	return nil
}

// Start starts the scheduler and begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")

	hubCtx, cancel := context.WithCancel(context.Background())
	s.hubCancel = cancel
	go s.hub.Run(hubCtx)

	if err := s.scheduler.Start(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to start scheduler")
	}

	return s.echo.Start(address)
}

// Shutdown gracefully stops the server, then the background tasks.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	err := s.echo.Shutdown(ctx)
	if s.hubCancel != nil {
		s.hubCancel()
	}

	if stopErr := s.scheduler.Stop(); stopErr != nil {
		s.logger.Warn().Err(stopErr).Msg("Failed to stop scheduler")
	}
	s.metadataService.Wait()

	return err
}

// Hub returns the live event hub.
func (s *Server) Hub() *websocket.Hub {
	return s.hub
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// WarmUp loads the filter options the first manifests need. It is meant to
// run under startup retry since it needs the network.
func (s *Server) WarmUp(ctx context.Context) error {
	return s.options.Refresh(ctx, s.cfg.Catalog.WarmLanguages)
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"version":       s.cfg.Addon.Version,
		"startTime":     s.startTime.Format(time.RFC3339),
		"uptime":        time.Since(s.startTime).Round(time.Second).String(),
		"developerMode": s.cfg.Metadata.Mock,
		"tmdbAvailable": s.metadataService.IsTMDBConfigured(),
		"cacheEntries":  s.metadataService.CacheLen(),
		"healthy":       !s.healthService.GetSummary().HasIssues,
	})
}
