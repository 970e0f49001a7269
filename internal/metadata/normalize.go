package metadata

import (
	"fmt"
	"strconv"

	"github.com/tmdbcat/tmdbcat/internal/metadata/mdblist"
	"github.com/tmdbcat/tmdbcat/internal/metadata/tmdb"
)

// Image sizes used for canonical items.
const (
	posterSize     = "w500"
	backgroundSize = "original"
	stillSize      = "w300"
)

// ImageURLFunc builds a full image URL from a provider path.
type ImageURLFunc func(path *string, size string) string

// FromTMDBResult normalizes a general provider list entry. genres maps genre
// ids to localized names; unknown ids are dropped.
func FromTMDBResult(r tmdb.MediaResult, typ MediaType, genres map[int]string, image ImageURLFunc) Meta {
	m := Meta{
		ID:          PrefixTMDB + strconv.Itoa(r.ID),
		Type:        typ,
		Name:        r.DisplayTitle(),
		Poster:      image(r.PosterPath, posterSize),
		Background:  image(r.BackdropPath, backgroundSize),
		Year:        yearOf(r.Date()),
		Description: r.Overview,
		Rating:      formatRating(r.VoteAverage),
	}
	if m.Poster != "" {
		m.PosterShape = "regular"
	}
	if m.Year > 0 {
		m.ReleaseInfo = strconv.Itoa(m.Year)
	}
	for _, id := range r.GenreIDs {
		if name, ok := genres[id]; ok {
			m.Genres = append(m.Genres, name)
		}
	}
	return m
}

// FromTMDBMovie normalizes movie details.
func FromTMDBMovie(d *tmdb.MovieDetails, image ImageURLFunc) Meta {
	m := Meta{
		ID:          PrefixTMDB + strconv.Itoa(d.ID),
		Type:        MediaMovie,
		Name:        d.Title,
		Poster:      image(d.PosterPath, posterSize),
		Background:  image(d.BackdropPath, backgroundSize),
		Year:        yearOf(d.ReleaseDate),
		Description: d.Overview,
		Rating:      formatRating(d.VoteAverage),
		Runtime:     FormatRuntime(d.Runtime),
		IMDbID:      d.ImdbID,
		Genres:      genreNames(d.Genres),
		Trailers:    trailers(d.Videos),
	}
	if m.IMDbID == "" && d.ExternalIDs != nil {
		m.IMDbID = d.ExternalIDs.ImdbID
	}
	if m.Poster != "" {
		m.PosterShape = "regular"
	}
	if m.Year > 0 {
		m.ReleaseInfo = strconv.Itoa(m.Year)
	}
	return m
}

// FromTMDBSeries normalizes series details. seasons may be nil when episodes
// are not needed; season 0 (specials) is skipped.
func FromTMDBSeries(d *tmdb.TVDetails, seasons []tmdb.SeasonDetails, image ImageURLFunc) Meta {
	m := Meta{
		ID:          PrefixTMDB + strconv.Itoa(d.ID),
		Type:        MediaSeries,
		Name:        d.Name,
		Poster:      image(d.PosterPath, posterSize),
		Background:  image(d.BackdropPath, backgroundSize),
		Year:        yearOf(d.FirstAirDate),
		ReleaseInfo: seriesReleaseInfo(d),
		Description: d.Overview,
		Rating:      formatRating(d.VoteAverage),
		Genres:      genreNames(d.Genres),
		Trailers:    trailers(d.Videos),
		Ended:       d.Ended(),
	}
	if len(d.EpisodeRunTime) > 0 {
		m.Runtime = FormatRuntime(d.EpisodeRunTime[0])
	}
	if d.ExternalIDs != nil {
		m.IMDbID = d.ExternalIDs.ImdbID
	}
	if m.Poster != "" {
		m.PosterShape = "regular"
	}

	for _, season := range seasons {
		if season.SeasonNumber == 0 {
			continue
		}
		for _, ep := range season.Episodes {
			m.Videos = append(m.Videos, Video{
				ID:        fmt.Sprintf("%s:%d:%d", m.ID, ep.SeasonNumber, ep.EpisodeNumber),
				Title:     ep.Name,
				Season:    ep.SeasonNumber,
				Episode:   ep.EpisodeNumber,
				Released:  releasedAt(ep.AirDate),
				Overview:  ep.Overview,
				Thumbnail: image(ep.StillPath, stillSize),
			})
		}
	}
	return m
}

// FromListItem normalizes a raw list-provider item using only the fields it
// carries. Items with a TMDB id are keyed in the tmdb namespace.
func FromListItem(it mdblist.Item, typ MediaType) Meta {
	id := PrefixMDBList + strconv.Itoa(it.ID)
	if it.TMDBID > 0 {
		id = PrefixTMDB + strconv.Itoa(it.TMDBID)
	}

	m := Meta{
		ID:          id,
		Type:        typ,
		Name:        it.Title,
		Poster:      it.Poster,
		Background:  it.Backdrop,
		Year:        it.ReleaseYear,
		Description: it.Description,
		IMDbID:      it.IMDbID,
		Runtime:     FormatRuntime(it.Runtime),
	}
	if it.Poster != "" {
		m.PosterShape = "regular"
	}
	if it.ReleaseYear > 0 {
		m.ReleaseInfo = strconv.Itoa(it.ReleaseYear)
	}
	for _, g := range it.Genres {
		if g.Name != "" {
			m.Genres = append(m.Genres, g.Name)
		}
	}
	return m
}

// FormatRuntime renders minutes as "45min" or "2h16min"; zero renders empty.
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	if minutes <= 60 {
		return fmt.Sprintf("%dmin", minutes)
	}
	return fmt.Sprintf("%dh%dmin", minutes/60, minutes%60)
}

func formatRating(v float64) string {
	if v <= 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}

// seriesReleaseInfo renders "2008-2013" for ended series and "2019-" otherwise.
func seriesReleaseInfo(d *tmdb.TVDetails) string {
	first := yearOf(d.FirstAirDate)
	if first == 0 {
		return ""
	}
	if d.Ended() {
		if last := yearOf(d.LastAirDate); last > 0 {
			return fmt.Sprintf("%d-%d", first, last)
		}
	}
	return fmt.Sprintf("%d-", first)
}

func releasedAt(date string) string {
	if len(date) != len("2006-01-02") {
		return ""
	}
	return date + "T00:00:00.000Z"
}

func genreNames(genres []tmdb.Genre) []string {
	if len(genres) == 0 {
		return nil
	}
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		out = append(out, g.Name)
	}
	return out
}

func trailers(videos *tmdb.VideosResponse) []Trailer {
	if videos == nil {
		return nil
	}
	var out []Trailer
	for _, v := range videos.Results {
		if v.Site == "YouTube" && v.Type == "Trailer" && v.Key != "" {
			out = append(out, Trailer{Source: v.Key, Type: v.Type})
		}
	}
	return out
}
