package catalog

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tmdbcat/tmdbcat/internal/metadata"
	"github.com/tmdbcat/tmdbcat/internal/userconfig"
)

// Cache windows advertised to clients and intermediaries.
var (
	manifestCacheControl = metadata.CacheControl(12*time.Hour, 14*24*time.Hour, 30*24*time.Hour)
	catalogCacheControl  = metadata.CacheControl(24*time.Hour, 7*24*time.Hour, 14*24*time.Hour)
)

// Handlers serves the manifest and catalog routes.
type Handlers struct {
	builder  *Builder
	resolver *Resolver
}

// NewHandlers creates new catalog handlers.
func NewHandlers(builder *Builder, resolver *Resolver) *Handlers {
	return &Handlers{
		builder:  builder,
		resolver: resolver,
	}
}

// RegisterAddonRoutes registers the public addon routes.
func (h *Handlers) RegisterAddonRoutes(e *echo.Echo) {
	e.GET("/manifest.json", h.GetManifest)
	e.GET("/:config/manifest.json", h.GetManifest)

	e.GET("/catalog/:type/:id", h.GetCatalog)
	e.GET("/:config/catalog/:type/:id", h.GetCatalog)
	e.GET("/:config/catalog/:type/:id/:extra", h.GetCatalog)
}

// GetManifest returns the manifest for the configuration in the path.
// GET /:config/manifest.json
func (h *Handlers) GetManifest(c echo.Context) error {
	cfg := userconfig.Parse(c.Param("config"))
	manifest := h.builder.Build(c.Request().Context(), cfg)

	c.Response().Header().Set("Cache-Control", manifestCacheControl)
	return c.JSON(http.StatusOK, manifest)
}

// GetCatalog returns one page of a catalog.
// GET /:config/catalog/:type/:id/:extra.json
func (h *Handlers) GetCatalog(c echo.Context) error {
	typ, ok := metadata.ParseMediaType(c.Param("type"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid media type, must be 'movie' or 'series'")
	}

	req := Request{
		Type:      typ,
		CatalogID: strings.TrimSuffix(c.Param("id"), ".json"),
		Filters:   ParseExtra(c.Param("extra")),
	}
	cfg := userconfig.Parse(c.Param("config"))

	// Resolve reports every failure as ErrNotFound.
	result, err := h.resolver.Resolve(c.Request().Context(), req, cfg)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "catalog not found")
	}

	c.Response().Header().Set("Cache-Control", catalogCacheControl)
	return c.JSON(http.StatusOK, result)
}
