package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmdbcat/tmdbcat/internal/metadata"
	"github.com/tmdbcat/tmdbcat/internal/metadata/mdblist"
	"github.com/tmdbcat/tmdbcat/internal/metadata/mock"
	"github.com/tmdbcat/tmdbcat/internal/metadata/tmdb"
	"github.com/tmdbcat/tmdbcat/internal/userconfig"
)

type resolverFixture struct {
	resolver *Resolver
	tmdb     *mock.TMDBClient
	lists    *mock.MDBListClient
	posters  *mock.PosterClient
}

func newTestResolver() *resolverFixture {
	tmdbClient := mock.NewTMDBClient()
	listClient := mock.NewMDBListClient()
	posterClient := mock.NewPosterClient()

	general := metadata.NewGeneral(tmdbClient, metadata.NewCache(metadata.DefaultCacheConfig()), zerolog.Nop())
	lists := metadata.NewLists(listClient, general, 2, zerolog.Nop())
	overlay := metadata.NewPosterOverlay(posterClient, 4, zerolog.Nop())
	opts := NewOptions(general, 20, zerolog.Nop())

	return &resolverFixture{
		resolver: NewResolver(MustLoadRegistry(), general, lists, overlay, opts, zerolog.Nop()),
		tmdb:     tmdbClient,
		lists:    listClient,
		posters:  posterClient,
	}
}

func TestParseExtra(t *testing.T) {
	tests := []struct {
		raw  string
		want Filters
	}{
		{"", Filters{}},
		{"skip=20.json", Filters{Skip: 20}},
		{"genre=Drama&skip=40", Filters{Genre: "Drama", Skip: 40}},
		{"genre=Science%20Fiction.json", Filters{Genre: "Science Fiction"}},
		{"search=the%20matrix", Filters{Search: "the matrix"}},
		{"skip=abc", Filters{}},
		{"skip=-5", Filters{}},
		{"genre=%zz", Filters{}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseExtra(tt.raw))
		})
	}
}

func TestPage(t *testing.T) {
	tests := []struct {
		skip int
		want int
	}{
		{0, 1},
		{19, 1},
		{20, 2},
		{45, 3},
		{-1, 1},
	}

	for _, tt := range tests {
		if got := Page(tt.skip); got != tt.want {
			t.Errorf("Page(%d) = %d, want %d", tt.skip, got, tt.want)
		}
	}
}

func TestResolver_SkipSelectsPage(t *testing.T) {
	f := newTestResolver()
	cfg := userconfig.Default()

	for skip, page := range map[int]string{0: "1", 20: "2", 45: "3"} {
		_, err := f.resolver.Resolve(context.Background(), Request{
			Type: metadata.MediaMovie, CatalogID: "tmdb.top", Filters: Filters{Skip: skip},
		}, cfg)
		require.NoError(t, err)
		assert.Equal(t, page, f.tmdb.LastDiscover.Get("page"), "skip %d", skip)
	}
}

func TestResolver_TopIsNeverForwarded(t *testing.T) {
	f := newTestResolver()

	result, err := f.resolver.Resolve(context.Background(), Request{
		Type: metadata.MediaMovie, CatalogID: "tmdb.top", Filters: Filters{Genre: TopOption},
	}, userconfig.Default())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Metas)
	assert.False(t, f.tmdb.LastDiscover.Has("with_genres"))
	assert.Equal(t, 0, f.tmdb.Calls("genres"), "no genre lookup for the sentinel")
}

func TestResolver_FilterTranslation(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		param   string
		want    string
		missing string
	}{
		{
			name:  "genre name to id",
			req:   Request{Type: metadata.MediaMovie, CatalogID: "tmdb.top", Filters: Filters{Genre: "Drama"}},
			param: "with_genres", want: "18",
		},
		{
			name:  "series genre",
			req:   Request{Type: metadata.MediaSeries, CatalogID: "tmdb.top", Filters: Filters{Genre: "Sci-Fi & Fantasy"}},
			param: "with_genres", want: "10765",
		},
		{
			name:  "movie year",
			req:   Request{Type: metadata.MediaMovie, CatalogID: "tmdb.year", Filters: Filters{Genre: "2010"}},
			param: "primary_release_year", want: "2010", missing: "with_genres",
		},
		{
			name:  "series year",
			req:   Request{Type: metadata.MediaSeries, CatalogID: "tmdb.year", Filters: Filters{Genre: "2013"}},
			param: "first_air_date_year", want: "2013",
		},
		{
			name:  "language name to code",
			req:   Request{Type: metadata.MediaMovie, CatalogID: "tmdb.language", Filters: Filters{Genre: "Japanese"}},
			param: "with_original_language", want: "ja",
		},
		{
			name:  "streaming provider",
			req:   Request{Type: metadata.MediaMovie, CatalogID: "streaming.nfx", Filters: Filters{Genre: "Crime"}},
			param: "with_watch_providers", want: "8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestResolver()
			_, err := f.resolver.Resolve(context.Background(), tt.req, userconfig.Default())
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.tmdb.LastDiscover.Get(tt.param))
			if tt.missing != "" {
				assert.False(t, f.tmdb.LastDiscover.Has(tt.missing))
			}
		})
	}
}

func TestResolver_TrendingMovies(t *testing.T) {
	f := newTestResolver()

	result, err := f.resolver.Resolve(context.Background(), Request{
		Type: metadata.MediaMovie, CatalogID: "tmdb.trending",
	}, userconfig.Default())
	require.NoError(t, err)
	require.NotEmpty(t, result.Metas)
	for _, m := range result.Metas {
		assert.Equal(t, metadata.MediaMovie, m.Type)
	}
	assert.Equal(t, 1, f.tmdb.Calls("trending"))
	assert.Equal(t, 0, f.tmdb.Calls("discover"))
}

func TestResolver_AccountLists(t *testing.T) {
	f := newTestResolver()
	cfg := userconfig.Default()

	result, err := f.resolver.Resolve(context.Background(), Request{
		Type: metadata.MediaMovie, CatalogID: "tmdb.favorites",
	}, cfg)
	require.NoError(t, err)
	assert.Empty(t, result.Metas, "no session means no favorites")
	assert.Equal(t, 0, f.tmdb.Calls(tmdb.ListFavorite))

	cfg.SessionID = "session"
	result, err = f.resolver.Resolve(context.Background(), Request{
		Type: metadata.MediaSeries, CatalogID: "tmdb.watchlist", Filters: Filters{Genre: "Added (Oldest First)"},
	}, cfg)
	require.NoError(t, err)
	assert.Len(t, result.Metas, 2)
	assert.Equal(t, "created_at.asc", f.tmdb.LastAccountList.SortBy)

	_, err = f.resolver.Resolve(context.Background(), Request{
		Type: metadata.MediaMovie, CatalogID: "tmdb.favorites",
	}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "created_at.desc", f.tmdb.LastAccountList.SortBy, "first option is the default")
}

func TestResolver_SearchWinsOverCatalogID(t *testing.T) {
	f := newTestResolver()

	result, err := f.resolver.Resolve(context.Background(), Request{
		Type: metadata.MediaMovie, CatalogID: "tmdb.search", Filters: Filters{Search: "matrix"},
	}, userconfig.Default())
	require.NoError(t, err)
	require.Len(t, result.Metas, 1)
	assert.Equal(t, "tmdb:603", result.Metas[0].ID)
	assert.Equal(t, 1, f.tmdb.Calls("search"))
}

func TestResolver_SearchWithoutQueryIsNotFound(t *testing.T) {
	f := newTestResolver()

	_, err := f.resolver.Resolve(context.Background(), Request{
		Type: metadata.MediaMovie, CatalogID: "tmdb.search",
	}, userconfig.Default())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolver_ListCatalog(t *testing.T) {
	f := newTestResolver()
	cfg := userconfig.Default()
	cfg.MDBListKey = "key"

	result, err := f.resolver.Resolve(context.Background(), Request{
		Type: metadata.MediaMovie, CatalogID: "mdblist.14",
	}, cfg)
	require.NoError(t, err)
	assert.Len(t, result.Metas, 3)

	result, err = f.resolver.Resolve(context.Background(), Request{
		Type: metadata.MediaMovie, CatalogID: "mdblist.abc",
	}, cfg)
	require.NoError(t, err)
	assert.Empty(t, result.Metas)
}

func TestResolver_ListSkipSelectsNextWindow(t *testing.T) {
	f := newTestResolver()
	cfg := userconfig.Default()
	cfg.MDBListKey = "key"

	items := make([]mdblist.Item, 80)
	for i := range items {
		items[i] = mdblist.Item{ID: i + 1, Rank: i + 1, Title: "Item"}
	}
	f.lists.SetItems(77, &mdblist.ListItemsResponse{Movies: items})

	result, err := f.resolver.Resolve(context.Background(), Request{
		Type: metadata.MediaMovie, CatalogID: "mdblist.77", Filters: Filters{Skip: PageSize},
	}, cfg)
	require.NoError(t, err)
	require.Len(t, result.Metas, PageSize)
	assert.Equal(t, "mdblist:21", result.Metas[0].ID, "skip=20 continues right after the first page")
}

func TestResolver_UnknownFamily(t *testing.T) {
	f := newTestResolver()

	_, err := f.resolver.Resolve(context.Background(), Request{
		Type: metadata.MediaMovie, CatalogID: "tmdb.unknown",
	}, userconfig.Default())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolver_CancellationIsNotFound(t *testing.T) {
	f := newTestResolver()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.resolver.Resolve(ctx, Request{
		Type: metadata.MediaMovie, CatalogID: "tmdb.top",
	}, userconfig.Default())
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestResolver_UpstreamFailureIsEmpty(t *testing.T) {
	f := newTestResolver()
	f.tmdb.SetErr(tmdb.ErrServerError)

	result, err := f.resolver.Resolve(context.Background(), Request{
		Type: metadata.MediaMovie, CatalogID: "tmdb.top",
	}, userconfig.Default())
	require.NoError(t, err)
	assert.Empty(t, result.Metas)
}

func TestResolver_PosterOverlay(t *testing.T) {
	f := newTestResolver()
	cfg := userconfig.Default()
	cfg.RPDBKey = "t0-key"
	f.posters.SetExists("https://posters.test/t0-key/movie/603.jpg", true)

	result, err := f.resolver.Resolve(context.Background(), Request{
		Type: metadata.MediaMovie, CatalogID: "tmdb.trending",
	}, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, result.Metas)

	assert.Equal(t, "https://posters.test/t0-key/movie/603.jpg", result.Metas[0].Poster)
	for _, m := range result.Metas[1:] {
		assert.Contains(t, m.Poster, "image.tmdb.org", "unconfirmed posters are kept")
	}
	assert.Equal(t, len(result.Metas), f.posters.Probes())
}

func TestResolver_CancelledDuringOverlayIsNotFound(t *testing.T) {
	f := newTestResolver()
	cfg := userconfig.Default()
	cfg.RPDBKey = "t0-key"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.posters.SetOnProbe(cancel)

	result, err := f.resolver.Resolve(ctx, Request{
		Type: metadata.MediaMovie, CatalogID: "tmdb.trending",
	}, cfg)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Positive(t, f.posters.Probes())
}
