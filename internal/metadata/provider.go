package metadata

import (
	"slices"
	"strings"
	"time"

	"github.com/tmdbcat/tmdbcat/internal/metadata/tmdb"
)

// MediaType is the client-facing media kind.
type MediaType string

const (
	MediaMovie  MediaType = "movie"
	MediaSeries MediaType = "series"
)

// ParseMediaType validates a client-supplied media type.
func ParseMediaType(s string) (MediaType, bool) {
	switch MediaType(s) {
	case MediaMovie, MediaSeries:
		return MediaType(s), true
	default:
		return "", false
	}
}

// TMDB returns the general provider's path segment for the media type.
func (m MediaType) TMDB() tmdb.MediaType {
	if m == MediaSeries {
		return tmdb.MediaTV
	}
	return tmdb.MediaMovie
}

// ID namespaces.
const (
	PrefixTMDB    = "tmdb:"
	PrefixMDBList = "mdblist:"
	PrefixIMDb    = "tt"
)

// Meta is the canonical item every provider result is normalized into.
// Optional fields are left empty when the source lacks them.
type Meta struct {
	ID          string    `json:"id"`
	Type        MediaType `json:"type"`
	Name        string    `json:"name"`
	Poster      string    `json:"poster,omitempty"`
	PosterShape string    `json:"posterShape,omitempty"`
	Background  string    `json:"background,omitempty"`
	Year        int       `json:"year,omitempty"`
	ReleaseInfo string    `json:"releaseInfo,omitempty"`
	Genres      []string  `json:"genres,omitempty"`
	Description string    `json:"description,omitempty"`
	Rating      string    `json:"imdbRating,omitempty"`
	Runtime     string    `json:"runtime,omitempty"`
	IMDbID      string    `json:"imdb_id,omitempty"`
	Trailers    []Trailer `json:"trailers,omitempty"`
	Videos      []Video   `json:"videos,omitempty"`

	// Ended is set on series details and drives cache tiering.
	Ended bool `json:"-"`
}

// Trailer is a playable trailer reference.
type Trailer struct {
	Source string `json:"source"` // YouTube video id
	Type   string `json:"type"`
}

// Video is one episode of a series.
type Video struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Season    int    `json:"season"`
	Episode   int    `json:"episode"`
	Released  string `json:"released,omitempty"`
	Overview  string `json:"overview,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// TMDBID returns the numeric TMDB id for "tmdb:" ids, or "" otherwise.
func (m Meta) TMDBID() string {
	if id, ok := strings.CutPrefix(m.ID, PrefixTMDB); ok {
		return id
	}
	return ""
}

// Clone returns a deep copy so callers can modify it without touching
// cached or shared values.
func (m Meta) Clone() Meta {
	m.Genres = slices.Clone(m.Genres)
	m.Trailers = slices.Clone(m.Trailers)
	m.Videos = slices.Clone(m.Videos)
	return m
}

// PagedResult is one catalog page, in upstream order.
type PagedResult struct {
	Metas []Meta `json:"metas"`
}

// EmptyPage returns a result that encodes as {"metas":[]}.
func EmptyPage() *PagedResult {
	return &PagedResult{Metas: []Meta{}}
}

// DetailResult is a detail lookup with the cache hints that produced it.
type DetailResult struct {
	Meta            Meta          `json:"meta"`
	MaxAge          time.Duration `json:"-"`
	StaleRevalidate time.Duration `json:"-"`
	StaleIfError    time.Duration `json:"-"`
}
