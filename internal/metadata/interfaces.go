package metadata

import (
	"context"
	"net/url"

	"github.com/tmdbcat/tmdbcat/internal/metadata/mdblist"
	"github.com/tmdbcat/tmdbcat/internal/metadata/tmdb"
)

// TMDBClient defines the general provider operations.
type TMDBClient interface {
	Name() string
	IsConfigured() bool
	Test(ctx context.Context) error
	Discover(ctx context.Context, media tmdb.MediaType, params url.Values) (*tmdb.PageResponse, error)
	Search(ctx context.Context, media tmdb.MediaType, p tmdb.SearchParams) (*tmdb.PageResponse, error)
	Trending(ctx context.Context, media tmdb.MediaType, window, language string, page int) (*tmdb.PageResponse, error)
	Account(ctx context.Context, sessionID string) (*tmdb.Account, error)
	AccountList(ctx context.Context, r tmdb.AccountListRequest) (*tmdb.PageResponse, error)
	GetMovie(ctx context.Context, id int, language string) (*tmdb.MovieDetails, error)
	GetSeries(ctx context.Context, id int, language string) (*tmdb.TVDetails, error)
	GetSeason(ctx context.Context, seriesID, season int, language string) (*tmdb.SeasonDetails, error)
	FindByIMDb(ctx context.Context, imdbID string) (*tmdb.FindResponse, error)
	GetGenres(ctx context.Context, media tmdb.MediaType, language string) ([]tmdb.Genre, error)
	GetLanguages(ctx context.Context) ([]tmdb.Language, error)
	GetImageURL(path *string, size string) string
}

// MDBListClient defines the list provider operations.
type MDBListClient interface {
	Name() string
	UserLists(ctx context.Context, apiKey string) ([]mdblist.List, error)
	ListItems(ctx context.Context, apiKey string, listID, limit, offset int) (*mdblist.ListItemsResponse, error)
}

// PosterClient builds and probes poster override URLs.
type PosterClient interface {
	PosterURL(key, mediaType, id, lang string) string
	Exists(ctx context.Context, posterURL string) bool
}
