package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmdbcat/tmdbcat/internal/catalog"
	"github.com/tmdbcat/tmdbcat/internal/config"
	"github.com/tmdbcat/tmdbcat/internal/scheduler"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.Metadata.Mock = true

	server, err := NewServer(cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	return server
}

func serve(s *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Origin", "https://web.stremio.example")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	s := setupTestServer(t)

	rec := serve(s, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Errorf("HealthCheck status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("HealthCheck status = %q, want %q", response["status"], "ok")
	}
}

func TestGetStatus(t *testing.T) {
	s := setupTestServer(t)

	rec := serve(s, http.MethodGet, "/api/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, true, response["developerMode"])
	assert.Equal(t, "1.0.0", response["version"])
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
}

func TestAddonRoutes(t *testing.T) {
	s := setupTestServer(t)

	t.Run("manifest", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/manifest.json")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Cache-Control"), "public")

		var manifest catalog.Manifest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &manifest))
		assert.Equal(t, "org.tmdbcat.catalog", manifest.ID)
		assert.NotEmpty(t, manifest.Catalogs)
	})

	t.Run("catalog", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/catalog/movie/tmdb.top.json")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Metas []map[string]interface{} `json:"metas"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body.Metas)
	})

	t.Run("unknown catalog", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/catalog/movie/tmdb.nope.json")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("meta", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/meta/movie/tmdb:603.json")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "The Matrix")
	})
}

func TestSchedulerRoutes(t *testing.T) {
	s := setupTestServer(t)

	rec := serve(s, http.MethodGet, "/api/v1/scheduler/tasks")
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks []scheduler.TaskInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"catalog-options-refresh", "detail-cache-sweep", "provider-health-check"}, ids)

	rec = serve(s, http.MethodGet, "/api/v1/scheduler/tasks/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(s, http.MethodPost, "/api/v1/scheduler/tasks/nope/run")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthRoutes(t *testing.T) {
	s := setupTestServer(t)

	rec := serve(s, http.MethodGet, "/api/v1/health/metadata")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tmdb")

	rec = serve(s, http.MethodGet, "/api/v1/health/bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	s := setupTestServer(t)

	serve(s, http.MethodGet, "/manifest.json")
	rec := serve(s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "tmdbcat_http_request_duration_seconds"))
}
