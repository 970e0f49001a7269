package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/tmdbcat/tmdbcat/internal/config"
)

func newTestClient(server *httptest.Server, opts ...Option) *Client {
	cfg := config.TMDBConfig{
		APIKey:       "test-api-key",
		BaseURL:      server.URL,
		ImageBaseURL: "https://image.tmdb.org/t/p",
		Timeout:      5,
		Retries:      2,
	}
	c := NewClient(cfg, zerolog.Nop(), opts...)
	c.retryDelay = time.Millisecond
	return c
}

func strPtr(s string) *string { return &s }

func TestClient_Name(t *testing.T) {
	client := NewClient(config.TMDBConfig{}, zerolog.Nop())
	if client.Name() != "tmdb" {
		t.Errorf("Name() = %q, want %q", client.Name(), "tmdb")
	}
}

func TestClient_IsConfigured(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		want   bool
	}{
		{"with key", "abc123", true},
		{"without key", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(config.TMDBConfig{APIKey: tt.apiKey}, zerolog.Nop())
			if got := client.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClient_MissingKey(t *testing.T) {
	client := NewClient(config.TMDBConfig{}, zerolog.Nop())
	_, err := client.Trending(context.Background(), MediaMovie, WindowDay, "en-US", 1)
	if !errors.Is(err, ErrAPIKeyMissing) {
		t.Fatalf("expected ErrAPIKeyMissing, got %v", err)
	}
}

func TestClient_Discover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/discover/movie" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api_key") != "test-api-key" {
			t.Errorf("api_key = %q", q.Get("api_key"))
		}
		if q.Get("with_genres") != "28" {
			t.Errorf("with_genres = %q", q.Get("with_genres"))
		}

		_ = json.NewEncoder(w).Encode(PageResponse{
			Page: 1,
			Results: []MediaResult{
				{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-30", PosterPath: strPtr("/m.jpg")},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	params := map[string][]string{"with_genres": {"28"}, "page": {"1"}}
	resp, err := client.Discover(context.Background(), MediaMovie, params)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].DisplayTitle() != "The Matrix" {
		t.Fatalf("unexpected results: %+v", resp.Results)
	}
	if got := client.GetImageURL(resp.Results[0].PosterPath, "w500"); got != "https://image.tmdb.org/t/p/w500/m.jpg" {
		t.Errorf("GetImageURL() = %q", got)
	}
}

func TestClient_SearchAndTrending(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/tv":
			if r.URL.Query().Get("query") != "Breaking Bad" {
				t.Errorf("query = %q", r.URL.Query().Get("query"))
			}
			if r.URL.Query().Get("include_adult") != "false" {
				t.Errorf("include_adult = %q", r.URL.Query().Get("include_adult"))
			}
		case "/trending/movie/week":
			if r.URL.Query().Get("page") != "2" {
				t.Errorf("page = %q", r.URL.Query().Get("page"))
			}
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(PageResponse{Page: 1, Results: []MediaResult{{ID: 1, Name: "x"}}})
	}))
	defer server.Close()

	client := newTestClient(server)
	ctx := context.Background()

	if _, err := client.Search(ctx, MediaTV, SearchParams{Query: "Breaking Bad", Language: "en-US", Page: 1}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if _, err := client.Trending(ctx, MediaMovie, WindowWeek, "en-US", 2); err != nil {
		t.Fatalf("Trending() error = %v", err)
	}
}

func TestClient_AccountList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/account/42/watchlist/movies" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("session_id") != "sess" {
			t.Errorf("session_id = %q", r.URL.Query().Get("session_id"))
		}
		if r.URL.Query().Get("sort_by") != "created_at.desc" {
			t.Errorf("sort_by = %q", r.URL.Query().Get("sort_by"))
		}
		_ = json.NewEncoder(w).Encode(PageResponse{Page: 1})
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.AccountList(context.Background(), AccountListRequest{
		AccountID: 42,
		SessionID: "sess",
		List:      ListWatchlist,
		Media:     MediaMovie,
		Page:      1,
		SortBy:    "created_at.desc",
	})
	if err != nil {
		t.Fatalf("AccountList() error = %v", err)
	}

	if _, err := client.AccountList(context.Background(), AccountListRequest{AccountID: 42}); !errors.Is(err, ErrSessionMissing) {
		t.Errorf("expected ErrSessionMissing, got %v", err)
	}
}

func TestClient_GetSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/1396" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("append_to_response") != "videos,external_ids" {
			t.Errorf("append_to_response = %q", r.URL.Query().Get("append_to_response"))
		}
		_ = json.NewEncoder(w).Encode(TVDetails{
			ID:           1396,
			Name:         "Breaking Bad",
			Status:       "Ended",
			FirstAirDate: "2008-01-20",
			LastAirDate:  "2013-09-29",
			ExternalIDs:  &ExternalIDs{ImdbID: "tt0903747"},
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	details, err := client.GetSeries(context.Background(), 1396, "en-US")
	if err != nil {
		t.Fatalf("GetSeries() error = %v", err)
	}
	if !details.Ended() {
		t.Error("expected series to be ended")
	}
	if details.ExternalIDs == nil || details.ExternalIDs.ImdbID != "tt0903747" {
		t.Errorf("unexpected external ids: %+v", details.ExternalIDs)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantErr   error
		wantCalls int32
	}{
		{"not found", http.StatusNotFound, ErrNotFound, 1},
		{"unauthorized", http.StatusUnauthorized, ErrAPIError, 1},
		{"rate limited is retried", http.StatusTooManyRequests, ErrRateLimited, 3},
		{"server error is retried", http.StatusBadGateway, ErrServerError, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(ErrorResponse{StatusMessage: "nope"})
			}))
			defer server.Close()

			client := newTestClient(server)
			_, err := client.GetMovie(context.Background(), 1, "en-US")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
		})
	}
}

func TestClient_RetryRecovers(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(GenreListResponse{Genres: []Genre{{ID: 28, Name: "Action"}}})
	}))
	defer server.Close()

	client := newTestClient(server)
	genres, err := client.GetGenres(context.Background(), MediaMovie, "en-US")
	if err != nil {
		t.Fatalf("GetGenres() error = %v", err)
	}
	if len(genres) != 1 || genres[0].Name != "Action" {
		t.Errorf("unexpected genres: %+v", genres)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestClient_BreakerOpens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var opened atomic.Bool
	client := newTestClient(server, WithStateListener(func(_ string, _, to gobreaker.State) {
		if to == gobreaker.StateOpen {
			opened.Store(true)
		}
	}))

	ctx := context.Background()
	for range 3 {
		_, _ = client.GetLanguages(ctx)
	}

	if !opened.Load() {
		t.Fatal("expected breaker to open after consecutive server errors")
	}
	if client.BreakerState() != gobreaker.StateOpen {
		t.Errorf("BreakerState() = %v", client.BreakerState())
	}

	_, err := client.GetLanguages(ctx)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected open-state error, got %v", err)
	}
}

func TestClient_FindByIMDb(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/find/tt0133093" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("external_source") != "imdb_id" {
			t.Errorf("external_source = %q", r.URL.Query().Get("external_source"))
		}
		_ = json.NewEncoder(w).Encode(FindResponse{MovieResults: []MediaResult{{ID: 603}}})
	}))
	defer server.Close()

	client := newTestClient(server)
	resp, err := client.FindByIMDb(context.Background(), "tt0133093")
	if err != nil {
		t.Fatalf("FindByIMDb() error = %v", err)
	}
	if len(resp.MovieResults) != 1 || resp.MovieResults[0].ID != 603 {
		t.Errorf("unexpected results: %+v", resp)
	}
}

func TestClient_TransportErrorOmitsCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(server)
	server.Close()

	_, err := client.AccountList(context.Background(), AccountListRequest{
		AccountID: 42,
		SessionID: "SECRET-SESSION",
		List:      ListFavorite,
		Media:     MediaMovie,
		Page:      1,
	})
	if err == nil {
		t.Fatal("expected an error from a closed server")
	}
	for _, secret := range []string{"SECRET-SESSION", "test-api-key"} {
		if strings.Contains(err.Error(), secret) {
			t.Errorf("error leaks %q: %v", secret, err)
		}
	}
	if !strings.Contains(err.Error(), "/account/42/favorite/movies") {
		t.Errorf("error should name the path: %v", err)
	}
}
