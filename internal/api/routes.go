package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tmdbcat/tmdbcat/internal/api/handlers"
	apimw "github.com/tmdbcat/tmdbcat/internal/api/middleware"
	"github.com/tmdbcat/tmdbcat/internal/catalog"
	"github.com/tmdbcat/tmdbcat/internal/health"
	"github.com/tmdbcat/tmdbcat/internal/metadata"
)

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	// Security headers
	s.echo.Use(apimw.SecurityHeaders())

	// Request body size limit (2MB)
	s.echo.Use(middleware.BodyLimit("2M"))

	// Addon routes are fetched by players on any origin
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"*"},
	}))

	s.echo.Use(apimw.Metrics())

	// Request logging. The route template is logged instead of the URI since
	// addon URIs carry the user's keys in their first segment.
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogRoutePath: true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("route", v.RoutePath).
					Str("requestId", v.RequestID).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Debug().
					Str("method", v.Method).
					Str("route", v.RoutePath).
					Str("requestId", v.RequestID).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	// Gzip compression
	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

// setupRoutes configures admin and addon routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api/v1")
	api.GET("/status", s.getStatus)
	api.GET("/ws", s.hub.HandleWebSocket)

	health.NewHandlers(s.healthService, s.healthChecker).RegisterRoutes(api.Group("/health"))

	if s.logs != nil {
		NewLogsHandlers(s.logs).RegisterRoutes(api.Group("/logs"))
	}

	metadataHandlers := metadata.NewHandlers(s.metadataService, s.lists)
	metadataHandlers.RegisterRoutes(api.Group("/metadata"))

	handlers.NewSchedulerHandler(s.scheduler).RegisterRoutes(api.Group("/scheduler/tasks"))

	// Addon routes last: their first segment is a wildcard
	catalog.NewHandlers(s.manifests, s.resolver).RegisterAddonRoutes(s.echo)
	metadataHandlers.RegisterAddonRoutes(s.echo)
}
