package metadata

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"

	"github.com/tmdbcat/tmdbcat/internal/metadata/mdblist"
	"github.com/tmdbcat/tmdbcat/internal/metrics"
)

const (
	defaultEnrichConcurrency = 5
	defaultListPageSize      = 20
)

// Enricher resolves a cross-referenced title into a richer canonical item.
type Enricher interface {
	IsConfigured() bool
	Enrich(ctx context.Context, typ MediaType, language string, tmdbID int, imdbID string) (Meta, error)
}

// ListQuery addresses one page of a user list.
type ListQuery struct {
	ListID   string
	Type     MediaType
	Page     int
	PageSize int // items per page; also the offset unit
	Language string
	APIKey   string
}

// Lists adapts the list provider.
type Lists struct {
	client      MDBListClient
	enricher    Enricher
	concurrency int
	logger      zerolog.Logger
}

// NewLists creates the list provider adapter. enricher may be nil, in which
// case items are always normalized from their own fields.
func NewLists(client MDBListClient, enricher Enricher, concurrency int, logger zerolog.Logger) *Lists {
	if concurrency <= 0 {
		concurrency = defaultEnrichConcurrency
	}
	return &Lists{
		client:      client,
		enricher:    enricher,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "list-adapter").Logger(),
	}
}

// FetchList returns one page of a list. A missing key, a non-numeric list id
// or an upstream failure yields an empty page; only the caller's own
// cancellation is returned as an error.
func (l *Lists) FetchList(ctx context.Context, q ListQuery) (*PagedResult, error) {
	if q.APIKey == "" {
		return EmptyPage(), nil
	}
	listID, err := strconv.Atoi(q.ListID)
	if err != nil || listID <= 0 {
		l.logger.Debug().Str("list", q.ListID).Msg("ignoring non-numeric list id")
		return EmptyPage(), nil
	}

	page := max(q.Page, 1)
	size := q.PageSize
	if size <= 0 {
		size = defaultListPageSize
	}
	// Lists without a media type serve both catalog types from one ranking,
	// so the window covers movies and shows together and a typed page may
	// hold fewer than size items.
	resp, err := l.client.ListItems(ctx, q.APIKey, listID, size, (page-1)*size)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		l.logger.Warn().Err(err).Int("list", listID).Msg("list fetch failed, returning empty page")
		metrics.RecordUpstreamFailure(l.client.Name(), "list_items")
		return EmptyPage(), nil
	}

	items := resp.Movies
	if q.Type == MediaSeries {
		items = resp.Shows
	}

	mapper := iter.Mapper[mdblist.Item, Meta]{MaxGoroutines: l.concurrency}
	metas := mapper.Map(items, func(it *mdblist.Item) Meta {
		return l.normalize(ctx, *it, q.Type, q.Language)
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &PagedResult{Metas: metas}, nil
}

// UserLists enumerates the lists owned by the key's user.
func (l *Lists) UserLists(ctx context.Context, apiKey string) ([]mdblist.List, error) {
	return l.client.UserLists(ctx, apiKey)
}

// normalize maps one raw item, enriching it from the general provider when
// the item is bare and carries a cross-reference.
func (l *Lists) normalize(ctx context.Context, it mdblist.Item, typ MediaType, language string) Meta {
	direct := FromListItem(it, typ)

	if it.Poster != "" && len(it.Genres) > 0 {
		metrics.RecordEnrichment("skipped")
		return direct
	}
	if !it.HasCrossReference() || l.enricher == nil || !l.enricher.IsConfigured() {
		metrics.RecordEnrichment("skipped")
		return direct
	}

	enriched, err := l.enricher.Enrich(ctx, typ, language, it.TMDBID, it.IMDbID)
	if err != nil {
		l.logger.Debug().Err(err).Int("item", it.ID).Msg("enrichment failed, using list fields")
		metrics.RecordEnrichment("fallback")
		return direct
	}
	metrics.RecordEnrichment("enriched")
	return enriched
}
