package metadata

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tmdbcat/tmdbcat/internal/metadata/tmdb"
	"github.com/tmdbcat/tmdbcat/internal/metrics"
)

// Account list sort orders accepted by the general provider.
const (
	SortCreatedAsc  = "created_at.asc"
	SortCreatedDesc = "created_at.desc"
)

const seasonFetchConcurrency = 4

// General adapts the general metadata provider. Catalog operations never
// fail on upstream errors: they log and return an empty page. Only the
// caller's own cancellation is returned as an error.
type General struct {
	client  TMDBClient
	lookups *Cache
	logger  zerolog.Logger
}

// NewGeneral creates the general provider adapter.
func NewGeneral(client TMDBClient, lookups *Cache, logger zerolog.Logger) *General {
	if lookups == nil {
		lookups = NewCache(DefaultCacheConfig())
	}
	return &General{
		client:  client,
		lookups: lookups,
		logger:  logger.With().Str("component", "general-adapter").Logger(),
	}
}

// IsConfigured reports whether the underlying client can make calls.
func (g *General) IsConfigured() bool {
	return g.client != nil && g.client.IsConfigured()
}

// Discover runs a filtered discovery query.
func (g *General) Discover(ctx context.Context, q DiscoverQuery) (*PagedResult, error) {
	resp, err := g.client.Discover(ctx, q.Type.TMDB(), q.Params())
	return g.page(ctx, "discover", q.Type, q.Language, resp, err)
}

// SearchQuery is a free-text search request.
type SearchQuery struct {
	Type         MediaType
	Language     string
	Query        string
	Page         int
	IncludeAdult bool
}

// Search runs a free-text search.
func (g *General) Search(ctx context.Context, q SearchQuery) (*PagedResult, error) {
	if strings.TrimSpace(q.Query) == "" {
		return EmptyPage(), nil
	}
	resp, err := g.client.Search(ctx, q.Type.TMDB(), tmdb.SearchParams{
		Query:        q.Query,
		Language:     q.Language,
		Page:         q.Page,
		IncludeAdult: q.IncludeAdult,
	})
	return g.page(ctx, "search", q.Type, q.Language, resp, err)
}

// Trending returns trending titles for a day or week window.
func (g *General) Trending(ctx context.Context, typ MediaType, language string, page int, window string) (*PagedResult, error) {
	resp, err := g.client.Trending(ctx, typ.TMDB(), window, language, page)
	return g.page(ctx, "trending", typ, language, resp, err)
}

// AccountQuery addresses a page of a session-scoped list.
type AccountQuery struct {
	Type      MediaType
	Language  string
	Page      int
	SessionID string
	SortBy    string
}

// Favorites returns the session's favorites. No session means an empty page.
func (g *General) Favorites(ctx context.Context, q AccountQuery) (*PagedResult, error) {
	return g.accountList(ctx, tmdb.ListFavorite, q)
}

// Watchlist returns the session's watchlist. No session means an empty page.
func (g *General) Watchlist(ctx context.Context, q AccountQuery) (*PagedResult, error) {
	return g.accountList(ctx, tmdb.ListWatchlist, q)
}

func (g *General) accountList(ctx context.Context, list string, q AccountQuery) (*PagedResult, error) {
	if q.SessionID == "" {
		return EmptyPage(), nil
	}

	accountID, err := g.AccountID(ctx, q.SessionID)
	if err != nil {
		return g.page(ctx, list, q.Type, q.Language, nil, err)
	}

	resp, err := g.client.AccountList(ctx, tmdb.AccountListRequest{
		AccountID: accountID,
		SessionID: q.SessionID,
		List:      list,
		Media:     q.Type.TMDB(),
		Language:  q.Language,
		Page:      q.Page,
		SortBy:    q.SortBy,
	})
	return g.page(ctx, list, q.Type, q.Language, resp, err)
}

// AccountID returns the account id behind a session, cached per session.
func (g *General) AccountID(ctx context.Context, sessionID string) (int, error) {
	key := "account:" + sessionID
	if id, ok := g.lookups.GetInt(key); ok {
		return id, nil
	}

	account, err := g.client.Account(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	g.lookups.Set(key, account.ID)
	return account.ID, nil
}

// Genres returns the localized genre list, cached per media type and language.
func (g *General) Genres(ctx context.Context, typ MediaType, language string) ([]tmdb.Genre, error) {
	key := fmt.Sprintf("genres:%s:%s", typ.TMDB(), language)
	if genres, ok := g.lookups.GetGenres(key); ok {
		return genres, nil
	}

	genres, err := g.client.GetGenres(ctx, typ.TMDB(), language)
	if err != nil {
		return nil, err
	}
	g.lookups.Set(key, genres)
	return genres, nil
}

// GenreID resolves a localized genre display name (or a numeric id) to an id.
// Unknown names resolve to 0.
func (g *General) GenreID(ctx context.Context, typ MediaType, language, name string) int {
	if id, err := strconv.Atoi(name); err == nil {
		return id
	}
	genres, err := g.Genres(ctx, typ, language)
	if err != nil {
		g.logger.Debug().Err(err).Str("genre", name).Msg("genre lookup failed")
		return 0
	}
	for _, genre := range genres {
		if strings.EqualFold(genre.Name, name) {
			return genre.ID
		}
	}
	return 0
}

// Languages returns every provider-supported language, cached.
func (g *General) Languages(ctx context.Context) ([]tmdb.Language, error) {
	const key = "languages"
	if languages, ok := g.lookups.GetLanguages(key); ok {
		return languages, nil
	}

	languages, err := g.client.GetLanguages(ctx)
	if err != nil {
		return nil, err
	}
	g.lookups.Set(key, languages)
	return languages, nil
}

// ResolveIMDb maps an IMDb id to a TMDB id, cached.
func (g *General) ResolveIMDb(ctx context.Context, typ MediaType, imdbID string) (int, error) {
	key := fmt.Sprintf("imdb:%s:%s", typ, imdbID)
	if id, ok := g.lookups.GetInt(key); ok {
		return id, nil
	}

	resp, err := g.client.FindByIMDb(ctx, imdbID)
	if err != nil {
		return 0, err
	}

	results := resp.MovieResults
	if typ == MediaSeries {
		results = resp.TVResults
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, imdbID)
	}

	g.lookups.Set(key, results[0].ID)
	return results[0].ID, nil
}

// Enrich fetches details for a title known by TMDB id or IMDb id. Series are
// returned without episodes.
func (g *General) Enrich(ctx context.Context, typ MediaType, language string, tmdbID int, imdbID string) (Meta, error) {
	if tmdbID == 0 {
		if imdbID == "" {
			return Meta{}, ErrNotFound
		}
		id, err := g.ResolveIMDb(ctx, typ, imdbID)
		if err != nil {
			return Meta{}, err
		}
		tmdbID = id
	}

	if typ == MediaSeries {
		d, err := g.client.GetSeries(ctx, tmdbID, language)
		if err != nil {
			return Meta{}, err
		}
		return FromTMDBSeries(d, nil, g.client.GetImageURL), nil
	}

	d, err := g.client.GetMovie(ctx, tmdbID, language)
	if err != nil {
		return Meta{}, err
	}
	return FromTMDBMovie(d, g.client.GetImageURL), nil
}

// Detail fetches full details, including every season's episodes for series.
// Unlike the catalog operations it returns upstream errors.
func (g *General) Detail(ctx context.Context, typ MediaType, language string, tmdbID int) (Meta, error) {
	if typ == MediaMovie {
		d, err := g.client.GetMovie(ctx, tmdbID, language)
		if err != nil {
			return Meta{}, mapNotFound(err)
		}
		return FromTMDBMovie(d, g.client.GetImageURL), nil
	}

	d, err := g.client.GetSeries(ctx, tmdbID, language)
	if err != nil {
		return Meta{}, mapNotFound(err)
	}

	seasons := make([]*tmdb.SeasonDetails, len(d.Seasons))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(seasonFetchConcurrency)
	for i, s := range d.Seasons {
		if s.SeasonNumber == 0 {
			continue
		}
		eg.Go(func() error {
			season, err := g.client.GetSeason(egCtx, tmdbID, s.SeasonNumber, language)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				g.logger.Warn().Err(err).Int("series", tmdbID).Int("season", s.SeasonNumber).Msg("season fetch failed")
				return nil
			}
			seasons[i] = season
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Meta{}, err
	}

	fetched := make([]tmdb.SeasonDetails, 0, len(seasons))
	for _, s := range seasons {
		if s != nil {
			fetched = append(fetched, *s)
		}
	}
	return FromTMDBSeries(d, fetched, g.client.GetImageURL), nil
}

// page converts an upstream page into canonical items, degrading failures
// to an empty page.
func (g *General) page(ctx context.Context, op string, typ MediaType, language string, resp *tmdb.PageResponse, err error) (*PagedResult, error) {
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		g.logger.Warn().Err(err).Str("operation", op).Str("type", string(typ)).Msg("upstream call failed, returning empty page")
		metrics.RecordUpstreamFailure("tmdb", op)
		return EmptyPage(), nil
	}

	genres := g.genreNames(ctx, typ, language)
	result := &PagedResult{Metas: make([]Meta, 0, len(resp.Results))}
	for _, r := range resp.Results {
		if r.ID == 0 {
			continue
		}
		result.Metas = append(result.Metas, FromTMDBResult(r, typ, genres, g.client.GetImageURL))
	}
	return result, nil
}

func (g *General) genreNames(ctx context.Context, typ MediaType, language string) map[int]string {
	genres, err := g.Genres(ctx, typ, language)
	if err != nil {
		g.logger.Debug().Err(err).Msg("genre list unavailable, items will carry no genres")
		return nil
	}
	names := make(map[int]string, len(genres))
	for _, genre := range genres {
		names[genre.ID] = genre.Name
	}
	return names
}

func mapNotFound(err error) error {
	if errors.Is(err, tmdb.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
