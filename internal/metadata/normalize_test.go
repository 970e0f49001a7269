package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tmdbcat/tmdbcat/internal/metadata/mdblist"
	"github.com/tmdbcat/tmdbcat/internal/metadata/tmdb"
)

func testImageURL(path *string, size string) string {
	if path == nil || *path == "" {
		return ""
	}
	return "img/" + size + *path
}

func TestFormatRuntime(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, ""},
		{45, "45min"},
		{60, "60min"},
		{61, "1h1min"},
		{136, "2h16min"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRuntime(tt.minutes), tt.minutes)
	}
}

func TestFromTMDBResult(t *testing.T) {
	poster := "/p.jpg"
	r := tmdb.MediaResult{
		ID:           1396,
		Name:         "Breaking Bad",
		FirstAirDate: "2008-01-20",
		PosterPath:   &poster,
		VoteAverage:  8.94,
		GenreIDs:     []int{18, 99999},
	}

	m := FromTMDBResult(r, MediaSeries, map[int]string{18: "Drama"}, testImageURL)

	assert.Equal(t, "tmdb:1396", m.ID)
	assert.Equal(t, MediaSeries, m.Type)
	assert.Equal(t, "img/w500/p.jpg", m.Poster)
	assert.Equal(t, "regular", m.PosterShape)
	assert.Empty(t, m.Background)
	assert.Equal(t, 2008, m.Year)
	assert.Equal(t, "8.9", m.Rating)
	assert.Equal(t, []string{"Drama"}, m.Genres)
}

func TestFromTMDBSeries_ReleaseInfo(t *testing.T) {
	ongoing := &tmdb.TVDetails{ID: 1, FirstAirDate: "2019-04-01", LastAirDate: "2024-01-01", Status: "Returning Series"}
	ended := &tmdb.TVDetails{ID: 2, FirstAirDate: "2008-01-20", LastAirDate: "2013-09-29", Status: "Ended"}

	assert.Equal(t, "2019-", FromTMDBSeries(ongoing, nil, testImageURL).ReleaseInfo)
	assert.False(t, FromTMDBSeries(ongoing, nil, testImageURL).Ended)
	assert.Equal(t, "2008-2013", FromTMDBSeries(ended, nil, testImageURL).ReleaseInfo)
	assert.True(t, FromTMDBSeries(ended, nil, testImageURL).Ended)
}

func TestFromTMDBMovie_Trailers(t *testing.T) {
	d := &tmdb.MovieDetails{
		ID:    603,
		Title: "The Matrix",
		Videos: &tmdb.VideosResponse{Results: []tmdb.Video{
			{Key: "a", Site: "YouTube", Type: "Teaser"},
			{Key: "b", Site: "Vimeo", Type: "Trailer"},
			{Key: "c", Site: "YouTube", Type: "Trailer"},
		}},
		ExternalIDs: &tmdb.ExternalIDs{ImdbID: "tt0133093"},
	}

	m := FromTMDBMovie(d, testImageURL)
	assert.Equal(t, []Trailer{{Source: "c", Type: "Trailer"}}, m.Trailers)
	assert.Equal(t, "tt0133093", m.IMDbID)
}

func TestFromListItem(t *testing.T) {
	withTMDB := FromListItem(mdblist.Item{ID: 7, TMDBID: 603, Title: "The Matrix", Poster: "p", Genres: []mdblist.Genre{{Name: "Action"}, {Name: ""}}}, MediaMovie)
	assert.Equal(t, "tmdb:603", withTMDB.ID)
	assert.Equal(t, []string{"Action"}, withTMDB.Genres)
	assert.Equal(t, "regular", withTMDB.PosterShape)

	bare := FromListItem(mdblist.Item{ID: 8, Title: "Primer"}, MediaMovie)
	assert.Equal(t, Meta{ID: "mdblist:8", Type: MediaMovie, Name: "Primer"}, bare)
}

func TestMeta_CloneIsDeep(t *testing.T) {
	m := Meta{Genres: []string{"Drama"}, Videos: []Video{{Thumbnail: "t"}}}
	c := m.Clone()
	c.Genres[0] = "Comedy"
	c.Videos[0].Thumbnail = ""

	assert.Equal(t, "Drama", m.Genres[0])
	assert.Equal(t, "t", m.Videos[0].Thumbnail)
}
