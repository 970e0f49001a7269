package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tmdbcat/tmdbcat/internal/metadata"
	"github.com/tmdbcat/tmdbcat/internal/metadata/tmdb"
	"github.com/tmdbcat/tmdbcat/internal/metrics"
	"github.com/tmdbcat/tmdbcat/internal/userconfig"
)

// ErrNotFound is returned when a catalog cannot be served.
var ErrNotFound = errors.New("catalog not found")

// Filters are the extra arguments of a catalog request.
type Filters struct {
	Genre  string
	Search string
	Skip   int
}

// ParseExtra decodes the extra path segment ("genre=Drama&skip=20.json").
// Malformed input yields zero filters.
func ParseExtra(raw string) Filters {
	raw = strings.TrimSuffix(raw, ".json")
	if raw == "" {
		return Filters{}
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return Filters{}
	}
	f := Filters{
		Genre:  strings.TrimSpace(values.Get(ExtraGenre)),
		Search: strings.TrimSpace(values.Get(ExtraSearch)),
	}
	if skip, err := strconv.Atoi(values.Get(ExtraSkip)); err == nil && skip > 0 {
		f.Skip = skip
	}
	return f
}

// PageSize is the number of items per catalog page. It matches the fixed
// page size of the general provider, so it is not configurable.
const PageSize = 20

// Page converts an item offset into a 1-based page number.
func Page(skip int) int {
	if skip <= 0 {
		return 1
	}
	return skip/PageSize + 1
}

// Request addresses one catalog page.
type Request struct {
	Type      metadata.MediaType
	CatalogID string
	Filters   Filters
}

// Family returns the catalog family of the request.
func (r Request) Family() string {
	return userconfig.FamilyOf(r.CatalogID)
}

type resolveFunc func(ctx context.Context, req Request, cfg userconfig.Config, page int) (*metadata.PagedResult, error)

type route struct {
	name    string
	matches func(Request) bool
	resolve resolveFunc
}

// Resolver dispatches catalog requests to the metadata adapters.
type Resolver struct {
	registry *Registry
	general  *metadata.General
	lists    *metadata.Lists
	overlay  *metadata.PosterOverlay
	options  *Options
	routes   []route
	special  map[string]resolveFunc
	logger   zerolog.Logger
}

// NewResolver creates a catalog resolver.
func NewResolver(registry *Registry, general *metadata.General, lists *metadata.Lists, overlay *metadata.PosterOverlay, options *Options, logger zerolog.Logger) *Resolver {
	r := &Resolver{
		registry: registry,
		general:  general,
		lists:    lists,
		overlay:  overlay,
		options:  options,
		logger:   logger.With().Str("component", "catalog-resolver").Logger(),
	}

	r.special = map[string]resolveFunc{
		"trending":  r.trending,
		"favorites": r.account((*metadata.General).Favorites),
		"watchlist": r.account((*metadata.General).Watchlist),
	}

	// Checked in order; the first match serves the request.
	r.routes = []route{
		{name: "search", matches: func(req Request) bool { return req.Filters.Search != "" }, resolve: r.search},
		{name: "list", matches: func(req Request) bool { return strings.HasPrefix(req.CatalogID, PrefixList) }, resolve: r.list},
		{name: "special", matches: func(req Request) bool { _, ok := r.special[req.Family()]; return ok }, resolve: r.dispatchSpecial},
		{name: "discover", matches: func(Request) bool { return true }, resolve: r.discover},
	}
	return r
}

// Resolve returns one page of a catalog. Any failure, including
// cancellation, is reported as ErrNotFound and no partial page is returned.
func (r *Resolver) Resolve(ctx context.Context, req Request, cfg userconfig.Config) (*metadata.PagedResult, error) {
	page := Page(req.Filters.Skip)

	for _, rt := range r.routes {
		if !rt.matches(req) {
			continue
		}

		result, err := rt.resolve(ctx, req, cfg, page)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			metrics.RecordCatalogRequest(rt.name, 0, err)
			if !errors.Is(err, ErrNotFound) {
				r.logger.Debug().Err(err).Str("catalog", req.CatalogID).Str("type", string(req.Type)).Msg("Catalog request failed")
			}
			return nil, fmt.Errorf("%s/%s: %w", req.Type, req.CatalogID, ErrNotFound)
		}

		if cfg.RPDBKey != "" && len(result.Metas) > 0 {
			result = &metadata.PagedResult{Metas: r.overlay.Apply(ctx, result.Metas, cfg.RPDBKey, cfg.LanguageBase())}
			if err := ctx.Err(); err != nil {
				metrics.RecordCatalogRequest(rt.name, 0, err)
				return nil, fmt.Errorf("%s/%s: %w", req.Type, req.CatalogID, ErrNotFound)
			}
		}
		metrics.RecordCatalogRequest(rt.name, len(result.Metas), nil)
		return result, nil
	}

	return nil, ErrNotFound
}

func (r *Resolver) search(ctx context.Context, req Request, cfg userconfig.Config, page int) (*metadata.PagedResult, error) {
	return r.general.Search(ctx, metadata.SearchQuery{
		Type:         req.Type,
		Language:     cfg.Language,
		Query:        req.Filters.Search,
		Page:         page,
		IncludeAdult: cfg.IncludeAdult,
	})
}

func (r *Resolver) list(ctx context.Context, req Request, cfg userconfig.Config, page int) (*metadata.PagedResult, error) {
	return r.lists.FetchList(ctx, metadata.ListQuery{
		ListID:   strings.TrimPrefix(req.CatalogID, PrefixList),
		Type:     req.Type,
		Page:     page,
		PageSize: PageSize,
		Language: cfg.Language,
		APIKey:   cfg.MDBListKey,
	})
}

func (r *Resolver) dispatchSpecial(ctx context.Context, req Request, cfg userconfig.Config, page int) (*metadata.PagedResult, error) {
	return r.special[req.Family()](ctx, req, cfg, page)
}

func (r *Resolver) trending(ctx context.Context, req Request, cfg userconfig.Config, page int) (*metadata.PagedResult, error) {
	window := tmdb.WindowDay
	if def, ok := r.registry.Lookup(req.Family()); ok {
		if key := r.registry.Translations(cfg.Language).OptionKey(def.DefaultOptions, req.Filters.Genre); key != "" {
			window = key
		}
	}
	return r.general.Trending(ctx, req.Type, cfg.Language, page, window)
}

type accountFunc func(*metadata.General, context.Context, metadata.AccountQuery) (*metadata.PagedResult, error)

func (r *Resolver) account(fetch accountFunc) resolveFunc {
	return func(ctx context.Context, req Request, cfg userconfig.Config, page int) (*metadata.PagedResult, error) {
		var sortBy string
		if def, ok := r.registry.Lookup(req.Family()); ok {
			sortBy = r.registry.Translations(cfg.Language).OptionKey(def.DefaultOptions, req.Filters.Genre)
			if sortBy == "" && len(def.DefaultOptions) > 0 {
				sortBy = def.DefaultOptions[0]
			}
		}
		return fetch(r.general, ctx, metadata.AccountQuery{
			Type:      req.Type,
			Language:  cfg.Language,
			Page:      page,
			SessionID: cfg.SessionID,
			SortBy:    sortBy,
		})
	}
}

func (r *Resolver) discover(ctx context.Context, req Request, cfg userconfig.Config, page int) (*metadata.PagedResult, error) {
	def, ok := r.registry.Lookup(req.Family())
	if !ok || def.Group == GroupSearch {
		return nil, ErrNotFound
	}

	q := metadata.DiscoverQuery{
		Type:      req.Type,
		Language:  cfg.Language,
		Page:      page,
		Row:       def.Discover,
		AgeRating: cfg.AgeRating,
	}

	option := req.Filters.Genre
	if option != "" && option != TopOption {
		switch def.Discover.Filter {
		case metadata.FilterGenre:
			q.GenreID = r.general.GenreID(ctx, req.Type, cfg.Language, option)
		case metadata.FilterYear:
			if year, err := strconv.Atoi(option); err == nil {
				q.Year = year
			}
		case metadata.FilterLanguage:
			q.OriginalLanguage = r.options.LanguageCode(ctx, option)
		}
	}

	return r.general.Discover(ctx, q)
}
