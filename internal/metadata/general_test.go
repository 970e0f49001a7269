package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmdbcat/tmdbcat/internal/metadata/mock"
	"github.com/tmdbcat/tmdbcat/internal/metadata/tmdb"
)

func newTestGeneral() (*General, *mock.TMDBClient) {
	client := mock.NewTMDBClient()
	return NewGeneral(client, NewCache(DefaultCacheConfig()), zerolog.Nop()), client
}

func TestGeneral_TrendingMovies(t *testing.T) {
	g, _ := newTestGeneral()

	result, err := g.Trending(context.Background(), MediaMovie, "en-US", 1, tmdb.WindowDay)
	require.NoError(t, err)
	require.NotEmpty(t, result.Metas)

	assert.Equal(t, "tmdb:603", result.Metas[0].ID, "upstream order is kept")
	for _, m := range result.Metas {
		assert.Equal(t, MediaMovie, m.Type)
		assert.NotEmpty(t, m.Name)
	}
	assert.Equal(t, []string{"Action", "Science Fiction"}, result.Metas[0].Genres)
}

func TestGeneral_UpstreamFailureDegradesToEmpty(t *testing.T) {
	g, client := newTestGeneral()
	client.SetErr(tmdb.ErrServerError)

	result, err := g.Discover(context.Background(), DiscoverQuery{Type: MediaMovie, Language: "en-US", Page: 1})
	require.NoError(t, err)
	assert.Empty(t, result.Metas)
	assert.NotNil(t, result.Metas, "encodes as an empty array")
}

func TestGeneral_CanceledContextIsReturned(t *testing.T) {
	g, client := newTestGeneral()
	client.SetErr(context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Search(ctx, SearchQuery{Type: MediaMovie, Query: "matrix", Page: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGeneral_SearchBlankQuery(t *testing.T) {
	g, client := newTestGeneral()

	result, err := g.Search(context.Background(), SearchQuery{Type: MediaMovie, Query: "  "})
	require.NoError(t, err)
	assert.Empty(t, result.Metas)
	assert.Equal(t, 0, client.Calls("search"))
}

func TestGeneral_AccountListsRequireSession(t *testing.T) {
	g, client := newTestGeneral()
	ctx := context.Background()

	result, err := g.Favorites(ctx, AccountQuery{Type: MediaMovie, Page: 1})
	require.NoError(t, err)
	assert.Empty(t, result.Metas)
	assert.Equal(t, 0, client.Calls(tmdb.ListFavorite))

	result, err = g.Watchlist(ctx, AccountQuery{Type: MediaSeries, Page: 1, SessionID: "s1"})
	require.NoError(t, err)
	assert.Len(t, result.Metas, 2)

	_, err = g.Watchlist(ctx, AccountQuery{Type: MediaSeries, Page: 2, SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, 1, client.Calls("account"), "account id is cached per session")
}

func TestGeneral_GenreID(t *testing.T) {
	g, client := newTestGeneral()
	ctx := context.Background()

	assert.Equal(t, 878, g.GenreID(ctx, MediaMovie, "en-US", "Science Fiction"))
	assert.Equal(t, 878, g.GenreID(ctx, MediaMovie, "en-US", "science fiction"))
	assert.Equal(t, 0, g.GenreID(ctx, MediaMovie, "en-US", "Western"))
	assert.Equal(t, 35, g.GenreID(ctx, MediaMovie, "en-US", "35"))
	assert.Equal(t, 1, client.Calls("genres"))
}

func TestGeneral_DetailSeries(t *testing.T) {
	g, client := newTestGeneral()

	meta, err := g.Detail(context.Background(), MediaSeries, "en-US", 1396)
	require.NoError(t, err)

	assert.True(t, meta.Ended)
	assert.Equal(t, "2008-2013", meta.ReleaseInfo)
	assert.Equal(t, "tt0903747", meta.IMDbID)
	require.Len(t, meta.Videos, 6, "two seasons of three episodes, specials skipped")
	assert.Equal(t, "tmdb:1396:1:1", meta.Videos[0].ID)
	assert.Equal(t, 2, client.Calls("season"))
}

func TestGeneral_DetailNotFound(t *testing.T) {
	g, _ := newTestGeneral()

	_, err := g.Detail(context.Background(), MediaMovie, "en-US", 999999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGeneral_ResolveIMDb(t *testing.T) {
	g, client := newTestGeneral()
	ctx := context.Background()

	id, err := g.ResolveIMDb(ctx, MediaMovie, "tt0133093")
	require.NoError(t, err)
	assert.Equal(t, 603, id)

	_, err = g.ResolveIMDb(ctx, MediaMovie, "tt0133093")
	require.NoError(t, err)
	assert.Equal(t, 1, client.Calls("find"))

	_, err = g.ResolveIMDb(ctx, MediaSeries, "tt0133093")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGeneral_EnrichByIMDb(t *testing.T) {
	g, _ := newTestGeneral()

	meta, err := g.Enrich(context.Background(), MediaMovie, "en-US", 0, "tt0137523")
	require.NoError(t, err)
	assert.Equal(t, "tmdb:550", meta.ID)
	assert.Equal(t, "Fight Club", meta.Name)
	assert.Equal(t, "2h19min", meta.Runtime)
}
