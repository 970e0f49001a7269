package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func setupTestHandlers() *Handlers {
	s := NewService(zerolog.Nop())
	c := NewChecker(s, time.Second, zerolog.Nop())
	c.Register(CategoryMetadata, "tmdb", "TMDB", func(ctx context.Context) error { return nil })
	return NewHandlers(s, c)
}

func TestHandlers_GetByCategory(t *testing.T) {
	h := setupTestHandlers()
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/health/metadata", nil), rec)
	c.SetParamNames("category")
	c.SetParamValues("metadata")
	if err := h.GetByCategory(c); err != nil {
		t.Fatalf("GetByCategory() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/health/indexers", nil), httptest.NewRecorder())
	c.SetParamNames("category")
	c.SetParamValues("indexers")
	var he *echo.HTTPError
	if err := h.GetByCategory(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("GetByCategory(indexers) error = %v, want 400", err)
	}
}

func TestHandlers_TestItem(t *testing.T) {
	h := setupTestHandlers()
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/v1/health/metadata/tmdb/test", nil), rec)
	c.SetParamNames("category", "id")
	c.SetParamValues("metadata", "tmdb")
	if err := h.TestItem(c); err != nil {
		t.Fatalf("TestItem() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodPost, "/api/v1/health/metadata/omdb/test", nil), httptest.NewRecorder())
	c.SetParamNames("category", "id")
	c.SetParamValues("metadata", "omdb")
	var he *echo.HTTPError
	if err := h.TestItem(c); !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Errorf("TestItem(omdb) error = %v, want 404", err)
	}
}
