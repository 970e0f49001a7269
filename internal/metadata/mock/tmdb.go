// Package mock provides in-memory implementations of the upstream clients for
// developer mode and tests.
package mock

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/tmdbcat/tmdbcat/internal/metadata/tmdb"
)

// TMDBClient is a mock implementation of the TMDB client backed by a small
// fixed catalog. Calls are counted per operation.
type TMDBClient struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
	gate  chan struct{}

	// LastDiscover holds the parameters of the most recent Discover call.
	LastDiscover url.Values
	// LastAccountList holds the most recent favorites or watchlist request.
	LastAccountList tmdb.AccountListRequest
}

// NewTMDBClient creates a new mock TMDB client.
func NewTMDBClient() *TMDBClient {
	return &TMDBClient{calls: make(map[string]int)}
}

// SetErr makes every following call fail with err. nil restores normal
// behavior.
func (c *TMDBClient) SetErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// SetGate makes detail calls block until gate is closed or the context ends.
func (c *TMDBClient) SetGate(gate chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = gate
}

// Calls returns how many times op was called.
func (c *TMDBClient) Calls(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

func (c *TMDBClient) record(op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[op]++
	return c.err
}

func (c *TMDBClient) wait(ctx context.Context) error {
	c.mu.Lock()
	gate := c.gate
	c.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *TMDBClient) Name() string {
	return "tmdb-mock"
}

func (c *TMDBClient) IsConfigured() bool {
	return true
}

func (c *TMDBClient) Test(ctx context.Context) error {
	return c.record("test")
}

func (c *TMDBClient) GetImageURL(path *string, size string) string {
	if path == nil || *path == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/" + size + *path
}

func (c *TMDBClient) Discover(ctx context.Context, media tmdb.MediaType, params url.Values) (*tmdb.PageResponse, error) {
	if err := c.record("discover"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.LastDiscover = params
	c.mu.Unlock()
	return page(resultsFor(media)), nil
}

func (c *TMDBClient) Search(ctx context.Context, media tmdb.MediaType, p tmdb.SearchParams) (*tmdb.PageResponse, error) {
	if err := c.record("search"); err != nil {
		return nil, err
	}
	query := strings.ToLower(p.Query)
	var matches []tmdb.MediaResult
	for _, r := range resultsFor(media) {
		if strings.Contains(strings.ToLower(r.DisplayTitle()), query) {
			matches = append(matches, r)
		}
	}
	return page(matches), nil
}

func (c *TMDBClient) Trending(ctx context.Context, media tmdb.MediaType, window, language string, pageNum int) (*tmdb.PageResponse, error) {
	if err := c.record("trending"); err != nil {
		return nil, err
	}
	return page(resultsFor(media)), nil
}

func (c *TMDBClient) Account(ctx context.Context, sessionID string) (*tmdb.Account, error) {
	if err := c.record("account"); err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, tmdb.ErrSessionMissing
	}
	return &tmdb.Account{ID: 1, Username: "mock"}, nil
}

func (c *TMDBClient) AccountList(ctx context.Context, r tmdb.AccountListRequest) (*tmdb.PageResponse, error) {
	if err := c.record(r.List); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.LastAccountList = r
	c.mu.Unlock()
	results := resultsFor(r.Media)
	if len(results) > 2 {
		results = results[:2]
	}
	return page(results), nil
}

func (c *TMDBClient) GetMovie(ctx context.Context, id int, language string) (*tmdb.MovieDetails, error) {
	if err := c.record("movie"); err != nil {
		return nil, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	for i := range mockMovies {
		if mockMovies[i].ID == id {
			d := mockMovies[i]
			return &d, nil
		}
	}
	return nil, tmdb.ErrNotFound
}

func (c *TMDBClient) GetSeries(ctx context.Context, id int, language string) (*tmdb.TVDetails, error) {
	if err := c.record("series"); err != nil {
		return nil, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	for i := range mockSeries {
		if mockSeries[i].ID == id {
			d := mockSeries[i]
			return &d, nil
		}
	}
	return nil, tmdb.ErrNotFound
}

func (c *TMDBClient) GetSeason(ctx context.Context, seriesID, season int, language string) (*tmdb.SeasonDetails, error) {
	if err := c.record("season"); err != nil {
		return nil, err
	}
	details := &tmdb.SeasonDetails{
		ID:           seriesID*100 + season,
		Name:         fmt.Sprintf("Season %d", season),
		SeasonNumber: season,
	}
	for ep := 1; ep <= 3; ep++ {
		still := fmt.Sprintf("/still-%d-%d-%d.jpg", seriesID, season, ep)
		details.Episodes = append(details.Episodes, tmdb.EpisodeDetails{
			ID:            seriesID*10000 + season*100 + ep,
			Name:          fmt.Sprintf("Episode %d", ep),
			AirDate:       fmt.Sprintf("20%02d-01-%02d", 10+season, ep),
			EpisodeNumber: ep,
			SeasonNumber:  season,
			StillPath:     &still,
		})
	}
	return details, nil
}

func (c *TMDBClient) FindByIMDb(ctx context.Context, imdbID string) (*tmdb.FindResponse, error) {
	if err := c.record("find"); err != nil {
		return nil, err
	}
	resp := &tmdb.FindResponse{}
	for _, m := range mockMovies {
		if m.ImdbID == imdbID {
			resp.MovieResults = append(resp.MovieResults, tmdb.MediaResult{ID: m.ID, Title: m.Title})
		}
	}
	for _, s := range mockSeries {
		if s.ExternalIDs != nil && s.ExternalIDs.ImdbID == imdbID {
			resp.TVResults = append(resp.TVResults, tmdb.MediaResult{ID: s.ID, Name: s.Name})
		}
	}
	return resp, nil
}

func (c *TMDBClient) GetGenres(ctx context.Context, media tmdb.MediaType, language string) ([]tmdb.Genre, error) {
	if err := c.record("genres"); err != nil {
		return nil, err
	}
	if media == tmdb.MediaTV {
		return append([]tmdb.Genre(nil), tvGenres...), nil
	}
	return append([]tmdb.Genre(nil), movieGenres...), nil
}

func (c *TMDBClient) GetLanguages(ctx context.Context) ([]tmdb.Language, error) {
	if err := c.record("languages"); err != nil {
		return nil, err
	}
	return append([]tmdb.Language(nil), mockLanguages...), nil
}

func page(results []tmdb.MediaResult) *tmdb.PageResponse {
	return &tmdb.PageResponse{
		Page:         1,
		Results:      results,
		TotalPages:   1,
		TotalResults: len(results),
	}
}

func resultsFor(media tmdb.MediaType) []tmdb.MediaResult {
	var out []tmdb.MediaResult
	if media == tmdb.MediaTV {
		for _, s := range mockSeries {
			out = append(out, tmdb.MediaResult{
				ID:           s.ID,
				Name:         s.Name,
				Overview:     s.Overview,
				FirstAirDate: s.FirstAirDate,
				PosterPath:   s.PosterPath,
				BackdropPath: s.BackdropPath,
				VoteAverage:  s.VoteAverage,
				GenreIDs:     genreIDs(s.Genres),
			})
		}
		return out
	}
	for _, m := range mockMovies {
		out = append(out, tmdb.MediaResult{
			ID:           m.ID,
			Title:        m.Title,
			Overview:     m.Overview,
			ReleaseDate:  m.ReleaseDate,
			PosterPath:   m.PosterPath,
			BackdropPath: m.BackdropPath,
			VoteAverage:  m.VoteAverage,
			GenreIDs:     genreIDs(m.Genres),
		})
	}
	return out
}

func genreIDs(genres []tmdb.Genre) []int {
	ids := make([]int, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	return ids
}

func ptr(s string) *string {
	return &s
}

var movieGenres = []tmdb.Genre{
	{ID: 28, Name: "Action"},
	{ID: 80, Name: "Crime"},
	{ID: 18, Name: "Drama"},
	{ID: 878, Name: "Science Fiction"},
	{ID: 53, Name: "Thriller"},
}

var tvGenres = []tmdb.Genre{
	{ID: 10759, Name: "Action & Adventure"},
	{ID: 80, Name: "Crime"},
	{ID: 18, Name: "Drama"},
	{ID: 10765, Name: "Sci-Fi & Fantasy"},
}

var mockLanguages = []tmdb.Language{
	{ISO6391: "en", EnglishName: "English", Name: "English"},
	{ISO6391: "fr", EnglishName: "French", Name: "Français"},
	{ISO6391: "de", EnglishName: "German", Name: "Deutsch"},
	{ISO6391: "es", EnglishName: "Spanish", Name: "Español"},
	{ISO6391: "pt", EnglishName: "Portuguese", Name: "Português"},
	{ISO6391: "ja", EnglishName: "Japanese", Name: "日本語"},
}

var mockMovies = []tmdb.MovieDetails{
	{
		ID:           603,
		Title:        "The Matrix",
		Overview:     "A hacker learns the world he lives in is a simulation.",
		ReleaseDate:  "1999-03-30",
		PosterPath:   ptr("/f89U3ADr1oiB1s9GkdPOEpXUk5H.jpg"),
		BackdropPath: ptr("/fNG7i7RqMErkcqhohV2a6cV1Ehy.jpg"),
		VoteAverage:  8.2,
		Runtime:      136,
		ImdbID:       "tt0133093",
		Genres:       []tmdb.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
		Videos: &tmdb.VideosResponse{Results: []tmdb.Video{
			{Key: "vKQi3bBA1y8", Site: "YouTube", Type: "Trailer", Name: "Trailer"},
		}},
	},
	{
		ID:           550,
		Title:        "Fight Club",
		Overview:     "An insomniac office worker crosses paths with a soap salesman.",
		ReleaseDate:  "1999-10-15",
		PosterPath:   ptr("/pB8BM7pdSp6B6Ih7QZ4DrQ3PmJK.jpg"),
		BackdropPath: ptr("/hZkgoQYus5vegHoetLkCJzb17zJ.jpg"),
		VoteAverage:  8.4,
		Runtime:      139,
		ImdbID:       "tt0137523",
		Genres:       []tmdb.Genre{{ID: 18, Name: "Drama"}, {ID: 53, Name: "Thriller"}},
	},
	{
		ID:           27205,
		Title:        "Inception",
		Overview:     "A thief who steals secrets through dream-sharing technology.",
		ReleaseDate:  "2010-07-15",
		PosterPath:   ptr("/oYuLEt3zVCKq57qu2F8dT7NIa6f.jpg"),
		BackdropPath: ptr("/8ZTVqvKDQ8emSGUEMjsS4yHAwrp.jpg"),
		VoteAverage:  8.4,
		Runtime:      148,
		ImdbID:       "tt1375666",
		Genres:       []tmdb.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
	},
	{
		ID:           155,
		Title:        "The Dark Knight",
		Overview:     "Batman raises the stakes in his war on crime.",
		ReleaseDate:  "2008-07-16",
		PosterPath:   ptr("/qJ2tW6WMUDux911r6m7haRef0WH.jpg"),
		BackdropPath: ptr("/nMKdUUepR0i5zn0y1T4CsSB5chy.jpg"),
		VoteAverage:  8.5,
		Runtime:      152,
		ImdbID:       "tt0468569",
		Genres:       []tmdb.Genre{{ID: 28, Name: "Action"}, {ID: 80, Name: "Crime"}, {ID: 18, Name: "Drama"}},
	},
}

var mockSeries = []tmdb.TVDetails{
	{
		ID:             1396,
		Name:           "Breaking Bad",
		Overview:       "A chemistry teacher turns to manufacturing methamphetamine.",
		FirstAirDate:   "2008-01-20",
		LastAirDate:    "2013-09-29",
		PosterPath:     ptr("/ztkUQFLlC19CCMYHW9o1zWhJRNq.jpg"),
		BackdropPath:   ptr("/tsRy63Mu5cu8etL1X7ZLyf7UP1M.jpg"),
		VoteAverage:    8.9,
		Status:         "Ended",
		EpisodeRunTime: []int{47},
		Genres:         []tmdb.Genre{{ID: 18, Name: "Drama"}, {ID: 80, Name: "Crime"}},
		Seasons: []tmdb.Season{
			{ID: 3577, Name: "Specials", SeasonNumber: 0},
			{ID: 3572, Name: "Season 1", SeasonNumber: 1, EpisodeCount: 7},
			{ID: 3573, Name: "Season 2", SeasonNumber: 2, EpisodeCount: 13},
		},
		ExternalIDs: &tmdb.ExternalIDs{ImdbID: "tt0903747", TvdbID: 81189},
	},
	{
		ID:             100088,
		Name:           "The Last of Us",
		Overview:       "Joel and Ellie cross a post-pandemic United States.",
		FirstAirDate:   "2023-01-15",
		LastAirDate:    "2025-05-25",
		PosterPath:     ptr("/uKvVjHNqB5VmOrdxqAt2F7J78ED.jpg"),
		BackdropPath:   ptr("/uDgy6hyPd82kOHh6I95FLtLnj6p.jpg"),
		VoteAverage:    8.6,
		Status:         "Returning Series",
		EpisodeRunTime: []int{},
		Genres:         []tmdb.Genre{{ID: 18, Name: "Drama"}, {ID: 10765, Name: "Sci-Fi & Fantasy"}},
		Seasons: []tmdb.Season{
			{ID: 144593, Name: "Season 1", SeasonNumber: 1, EpisodeCount: 9},
		},
		ExternalIDs: &tmdb.ExternalIDs{ImdbID: "tt3581920", TvdbID: 392256},
	},
}
