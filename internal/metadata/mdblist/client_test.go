package mdblist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmdbcat/tmdbcat/internal/config"
)

func newTestClient(server *httptest.Server) *Client {
	return NewClient(config.MDBListConfig{BaseURL: server.URL, Timeout: 5}, zerolog.Nop(), nil)
}

func TestClient_UserLists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lists/user", r.URL.Path)
		assert.Equal(t, "user-key", r.URL.Query().Get("apikey"))
		_ = json.NewEncoder(w).Encode([]List{
			{ID: 1, Name: "Weekend", MediaType: MediaMovie},
			{ID: 2, Name: "Shows", MediaType: MediaShow},
		})
	}))
	defer server.Close()

	lists, err := newTestClient(server).UserLists(context.Background(), "user-key")
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "Weekend", lists[0].Name)
	assert.Equal(t, MediaShow, lists[1].MediaType)
}

func TestClient_ListItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lists/77/items", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "40", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"movies":[{"id":603,"title":"The Matrix","release_year":1999,"imdb_id":"tt0133093"}],"shows":[]}`))
	}))
	defer server.Close()

	resp, err := newTestClient(server).ListItems(context.Background(), "k", 77, 20, 40)
	require.NoError(t, err)
	require.Len(t, resp.Movies, 1)
	assert.True(t, resp.Movies[0].HasCrossReference())
	assert.Equal(t, 1999, resp.Movies[0].ReleaseYear)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"not found", http.StatusNotFound, ErrListNotFound},
		{"bad key", http.StatusUnauthorized, ErrInvalidKey},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"server", http.StatusInternalServerError, ErrAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer server.Close()

			_, err := newTestClient(server).ListItems(context.Background(), "k", 1, 20, 0)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestClient_MissingKey(t *testing.T) {
	c := NewClient(config.MDBListConfig{BaseURL: "http://127.0.0.1:1"}, zerolog.Nop(), nil)
	_, err := c.UserLists(context.Background(), "")
	assert.ErrorIs(t, err, ErrAPIKeyMissing)
}

func TestClient_TransportErrorOmitsKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(server)
	server.Close()

	_, err := client.ListItems(context.Background(), "SECRET-USER-KEY", 14, 20, 0)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-USER-KEY")
	assert.True(t, strings.Contains(err.Error(), "/lists/14/items"), "error should name the path: %v", err)
}
