package metadata

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tmdbcat/tmdbcat/internal/metadata/mdblist"
	"github.com/tmdbcat/tmdbcat/internal/userconfig"
)

// CacheControl renders a public Cache-Control header value.
func CacheControl(maxAge, staleRevalidate, staleIfError time.Duration) string {
	return fmt.Sprintf("max-age=%d, stale-while-revalidate=%d, stale-if-error=%d, public",
		int(maxAge.Seconds()), int(staleRevalidate.Seconds()), int(staleIfError.Seconds()))
}

// Handlers provides HTTP handlers for metadata operations.
type Handlers struct {
	service *Service
	lists   *Lists
}

// NewHandlers creates new metadata handlers.
func NewHandlers(service *Service, lists *Lists) *Handlers {
	return &Handlers{
		service: service,
		lists:   lists,
	}
}

// RegisterAddonRoutes registers the public addon routes.
func (h *Handlers) RegisterAddonRoutes(e *echo.Echo) {
	e.GET("/meta/:type/:id", h.GetMeta)
	e.GET("/:config/meta/:type/:id", h.GetMeta)

	// Used by the configuration page to offer list catalogs
	e.GET("/mdblist/lists/user", h.GetUserLists)
}

// RegisterRoutes registers the admin metadata routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.DELETE("/cache", h.ClearCache)
	g.GET("/status", h.GetStatus)
}

// GetMeta returns the detail record for one title.
// GET /:config/meta/:type/:id.json
func (h *Handlers) GetMeta(c echo.Context) error {
	typ, ok := ParseMediaType(c.Param("type"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid media type, must be 'movie' or 'series'")
	}
	ref := strings.TrimSuffix(c.Param("id"), ".json")
	cfg := userconfig.Parse(c.Param("config"))

	result, err := h.service.GetDetail(c.Request().Context(), cfg, typ, ref)
	if err != nil {
		if errors.Is(err, ErrNoProvidersConfigured) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "no metadata providers configured")
		}
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "meta not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.Response().Header().Set("Cache-Control", CacheControl(result.MaxAge, result.StaleRevalidate, result.StaleIfError))
	return c.JSON(http.StatusOK, result)
}

// UserList is one list offered to the configuration page.
type UserList struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"mediatype"`
	Items     int    `json:"items"`
}

// GetUserLists enumerates the lists behind a list-provider key.
// GET /mdblist/lists/user?apikey=...
func (h *Handlers) GetUserLists(c echo.Context) error {
	apiKey := c.QueryParam("apikey")
	if apiKey == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "apikey parameter is required")
	}

	lists, err := h.lists.UserLists(c.Request().Context(), apiKey)
	if err != nil {
		if errors.Is(err, mdblist.ErrInvalidKey) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid MDBList API key")
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	response := make([]UserList, 0, len(lists))
	for _, l := range lists {
		response = append(response, UserList{ID: l.ID, Name: l.Name, MediaType: l.MediaType, Items: l.Items})
	}
	return c.JSON(http.StatusOK, response)
}

// ClearCache clears the detail cache.
// DELETE /api/v1/metadata/cache
func (h *Handlers) ClearCache(c echo.Context) error {
	h.service.ClearCache()
	return c.NoContent(http.StatusNoContent)
}

// ProviderStatus represents the status of a metadata provider.
type ProviderStatus struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

// StatusResponse represents the metadata service status.
type StatusResponse struct {
	Providers    []ProviderStatus `json:"providers"`
	CacheEntries int              `json:"cacheEntries"`
}

// GetStatus returns the status of configured metadata providers.
// GET /api/v1/metadata/status
func (h *Handlers) GetStatus(c echo.Context) error {
	response := StatusResponse{
		Providers: []ProviderStatus{
			{Name: "tmdb", Configured: h.service.IsTMDBConfigured()},
			// Keys for these travel in each user's configuration.
			{Name: "mdblist", Configured: true},
			{Name: "rpdb", Configured: true},
		},
		CacheEntries: h.service.CacheLen(),
	}

	return c.JSON(http.StatusOK, response)
}
