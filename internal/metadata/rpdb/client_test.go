package rpdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/tmdbcat/tmdbcat/internal/config"
)

func TestPosterURL(t *testing.T) {
	c := NewClient(config.RPDBConfig{BaseURL: "https://api.ratingposterdb.com", ProbeTimeoutMS: 100}, zerolog.Nop())

	tests := []struct {
		name string
		key  string
		typ  string
		id   string
		lang string
		want string
	}{
		{
			"english language omits lang",
			"t2-abc", "movie", "603", "en-US",
			"https://api.ratingposterdb.com/t2-abc/tmdb/poster-default/movie-603.jpg?fallback=true",
		},
		{
			"low tier omits lang",
			"t1-abc", "series", "1396", "fr-FR",
			"https://api.ratingposterdb.com/t1-abc/tmdb/poster-default/series-1396.jpg?fallback=true",
		},
		{
			"higher tier adds lang",
			"t2-abc", "series", "1396", "pt-BR",
			"https://api.ratingposterdb.com/t2-abc/tmdb/poster-default/series-1396.jpg?fallback=true&lang=pt",
		},
		{
			"imdb ids use the imdb path",
			"t3-abc", "movie", "tt0133093", "en",
			"https://api.ratingposterdb.com/t3-abc/imdb/poster-default/tt0133093.jpg?fallback=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.PosterURL(tt.key, tt.typ, tt.id, tt.lang))
		})
	}
}

func TestExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		switch r.URL.Path {
		case "/ok.jpg":
			w.WriteHeader(http.StatusOK)
		case "/slow.jpg":
			time.Sleep(200 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewClient(config.RPDBConfig{BaseURL: server.URL, ProbeTimeoutMS: 50}, zerolog.Nop())
	ctx := context.Background()

	assert.True(t, c.Exists(ctx, server.URL+"/ok.jpg"))
	assert.False(t, c.Exists(ctx, server.URL+"/missing.jpg"))
	assert.False(t, c.Exists(ctx, server.URL+"/slow.jpg"), "probe timeout reads as missing")
	assert.False(t, c.Exists(ctx, "://bad-url"))
}
