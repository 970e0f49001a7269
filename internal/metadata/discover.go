package metadata

import (
	"net/url"
	"strconv"
	"strings"
)

// FilterKind names what a catalog's single filter option selects.
type FilterKind string

const (
	FilterGenre    FilterKind = "genre"
	FilterYear     FilterKind = "year"
	FilterLanguage FilterKind = "language"
	FilterNone     FilterKind = "none"
)

// DiscoverRow maps a catalog family onto /discover parameters. New discovery
// facets are added as rows, not as code.
type DiscoverRow struct {
	Filter          FilterKind        `yaml:"filter"`
	SortBy          string            `yaml:"sortBy"`
	MinVoteCount    int               `yaml:"minVoteCount"`
	WatchProviderID int               `yaml:"watchProviderId"`
	WatchRegion     string            `yaml:"watchRegion"` // empty means the user's region
	Monetization    []string          `yaml:"monetization"`
	MovieParams     map[string]string `yaml:"movieParams"`
	SeriesParams    map[string]string `yaml:"seriesParams"`
}

// certificationTiers maps an age rating to the US certifications allowed for
// each media type.
var certificationTiers = map[string]struct{ movie, series []string }{
	"G":     {[]string{"G"}, []string{"TV-G"}},
	"PG":    {[]string{"G", "PG"}, []string{"TV-G", "TV-PG"}},
	"PG-13": {[]string{"G", "PG", "PG-13"}, []string{"TV-G", "TV-PG", "TV-14"}},
	"R":     {[]string{"G", "PG", "PG-13", "R"}, []string{"TV-G", "TV-PG", "TV-14", "TV-MA"}},
}

const defaultRegion = "US"

// DiscoverQuery is a fully translated discovery request.
type DiscoverQuery struct {
	Type             MediaType
	Language         string
	Page             int
	Row              DiscoverRow
	GenreID          int
	Year             int
	OriginalLanguage string
	AgeRating        string
}

// Params renders the query as /discover parameters.
func (q DiscoverQuery) Params() url.Values {
	p := url.Values{}
	p.Set("language", q.Language)
	p.Set("page", strconv.Itoa(max(q.Page, 1)))

	sortBy := q.Row.SortBy
	if sortBy == "" {
		sortBy = "popularity.desc"
	}
	p.Set("sort_by", sortBy)

	if q.Row.MinVoteCount > 0 {
		p.Set("vote_count.gte", strconv.Itoa(q.Row.MinVoteCount))
	}

	if tier, ok := certificationTiers[strings.ToUpper(q.AgeRating)]; ok {
		certs := tier.movie
		if q.Type == MediaSeries {
			certs = tier.series
		}
		p.Set("certification_country", defaultRegion)
		p.Set("certification", strings.Join(certs, "|"))
	}

	if q.Row.WatchProviderID > 0 {
		p.Set("with_watch_providers", strconv.Itoa(q.Row.WatchProviderID))
		p.Set("watch_region", q.region())
		if len(q.Row.Monetization) > 0 {
			p.Set("with_watch_monetization_types", strings.Join(q.Row.Monetization, "|"))
		}
	}

	if q.GenreID > 0 {
		p.Set("with_genres", strconv.Itoa(q.GenreID))
	}

	if q.Year > 0 {
		if q.Type == MediaSeries {
			p.Set("first_air_date_year", strconv.Itoa(q.Year))
		} else {
			p.Set("primary_release_year", strconv.Itoa(q.Year))
		}
	}

	if q.OriginalLanguage != "" {
		p.Set("with_original_language", q.OriginalLanguage)
	}

	extra := q.Row.MovieParams
	if q.Type == MediaSeries {
		extra = q.Row.SeriesParams
	}
	for k, v := range extra {
		p.Set(k, strings.ReplaceAll(v, "{region}", q.region()))
	}

	return p
}

func (q DiscoverQuery) region() string {
	if q.Row.WatchRegion != "" {
		return q.Row.WatchRegion
	}
	if _, region, ok := strings.Cut(q.Language, "-"); ok && region != "" {
		return strings.ToUpper(region)
	}
	return defaultRegion
}
