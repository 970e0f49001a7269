package tmdb

// MediaType is the TMDB path segment for a media kind.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// PageResponse is a paged result list shared by discover, search, trending
// and the account list endpoints.
type PageResponse struct {
	Page         int           `json:"page"`
	Results      []MediaResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// MediaResult is one entry of a paged result. Movies fill Title and
// ReleaseDate, series fill Name and FirstAirDate.
type MediaResult struct {
	ID               int      `json:"id"`
	Title            string   `json:"title,omitempty"`
	Name             string   `json:"name,omitempty"`
	OriginalTitle    string   `json:"original_title,omitempty"`
	OriginalName     string   `json:"original_name,omitempty"`
	Overview         string   `json:"overview"`
	ReleaseDate      string   `json:"release_date,omitempty"`
	FirstAirDate     string   `json:"first_air_date,omitempty"`
	PosterPath       *string  `json:"poster_path"`
	BackdropPath     *string  `json:"backdrop_path"`
	VoteAverage      float64  `json:"vote_average"`
	VoteCount        int      `json:"vote_count"`
	Popularity       float64  `json:"popularity"`
	Adult            bool     `json:"adult"`
	GenreIDs         []int    `json:"genre_ids"`
	OriginalLanguage string   `json:"original_language"`
	OriginCountry    []string `json:"origin_country,omitempty"`
	MediaType        string   `json:"media_type,omitempty"`
}

// DisplayTitle returns Title for movies and Name for series.
func (r MediaResult) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// Date returns the release date for movies or first air date for series.
func (r MediaResult) Date() string {
	if r.ReleaseDate != "" {
		return r.ReleaseDate
	}
	return r.FirstAirDate
}

// MovieDetails is the detailed movie info from TMDB.
type MovieDetails struct {
	ID               int             `json:"id"`
	Title            string          `json:"title"`
	OriginalTitle    string          `json:"original_title"`
	Overview         string          `json:"overview"`
	ReleaseDate      string          `json:"release_date"`
	PosterPath       *string         `json:"poster_path"`
	BackdropPath     *string         `json:"backdrop_path"`
	VoteAverage      float64         `json:"vote_average"`
	VoteCount        int             `json:"vote_count"`
	Popularity       float64         `json:"popularity"`
	Adult            bool            `json:"adult"`
	Runtime          int             `json:"runtime"`
	Status           string          `json:"status"`
	Tagline          string          `json:"tagline"`
	ImdbID           string          `json:"imdb_id"`
	OriginalLanguage string          `json:"original_language"`
	Genres           []Genre         `json:"genres"`
	ExternalIDs      *ExternalIDs    `json:"external_ids,omitempty"`
	Videos           *VideosResponse `json:"videos,omitempty"`
}

// TVDetails is the detailed TV series info from TMDB.
type TVDetails struct {
	ID               int             `json:"id"`
	Name             string          `json:"name"`
	OriginalName     string          `json:"original_name"`
	Overview         string          `json:"overview"`
	FirstAirDate     string          `json:"first_air_date"`
	LastAirDate      string          `json:"last_air_date"`
	PosterPath       *string         `json:"poster_path"`
	BackdropPath     *string         `json:"backdrop_path"`
	VoteAverage      float64         `json:"vote_average"`
	VoteCount        int             `json:"vote_count"`
	Popularity       float64         `json:"popularity"`
	Status           string          `json:"status"`
	Type             string          `json:"type"`
	Tagline          string          `json:"tagline"`
	InProduction     bool            `json:"in_production"`
	OriginalLanguage string          `json:"original_language"`
	Genres           []Genre         `json:"genres"`
	Networks         []Network       `json:"networks"`
	NumberOfSeasons  int             `json:"number_of_seasons"`
	NumberOfEpisodes int             `json:"number_of_episodes"`
	EpisodeRunTime   []int           `json:"episode_run_time"`
	Seasons          []Season        `json:"seasons"`
	ExternalIDs      *ExternalIDs    `json:"external_ids,omitempty"`
	Videos           *VideosResponse `json:"videos,omitempty"`
}

// Ended reports whether TMDB considers the series finished.
func (d TVDetails) Ended() bool {
	return d.Status == "Ended" || d.Status == "Canceled"
}

// Genre represents a genre from TMDB.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreListResponse is the response from /genre/{movie,tv}/list.
type GenreListResponse struct {
	Genres []Genre `json:"genres"`
}

// Language is one entry of /configuration/languages.
type Language struct {
	ISO6391     string `json:"iso_639_1"`
	EnglishName string `json:"english_name"`
	Name        string `json:"name"`
}

// Network represents a TV network from TMDB.
type Network struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	OriginCountry string `json:"origin_country"`
}

// Season represents a TV season summary from TMDB.
type Season struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	AirDate      string  `json:"air_date"`
	EpisodeCount int     `json:"episode_count"`
	PosterPath   *string `json:"poster_path"`
	SeasonNumber int     `json:"season_number"`
}

// SeasonDetails is the detailed season info from TMDB /tv/{id}/season/{number} endpoint.
type SeasonDetails struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	Overview     string           `json:"overview"`
	AirDate      string           `json:"air_date"`
	PosterPath   *string          `json:"poster_path"`
	SeasonNumber int              `json:"season_number"`
	Episodes     []EpisodeDetails `json:"episodes"`
}

// EpisodeDetails is the episode info from TMDB season details.
type EpisodeDetails struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	AirDate       string  `json:"air_date"`
	EpisodeNumber int     `json:"episode_number"`
	SeasonNumber  int     `json:"season_number"`
	StillPath     *string `json:"still_path"`
	Runtime       int     `json:"runtime"`
}

// ExternalIDs contains external IDs from TMDB.
type ExternalIDs struct {
	ImdbID string `json:"imdb_id"`
	TvdbID int    `json:"tvdb_id"`
}

// FindResponse is the response from /find/{external_id}.
type FindResponse struct {
	MovieResults []MediaResult `json:"movie_results"`
	TVResults    []MediaResult `json:"tv_results"`
}

// Account is the response from /account.
type Account struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// VideosResponse is the appended videos block on detail responses.
type VideosResponse struct {
	Results []Video `json:"results"`
}

// Video represents a video (trailer, teaser, etc.) from TMDB.
type Video struct {
	Key      string `json:"key"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Official bool   `json:"official"`
}

// ErrorResponse is an error from the TMDB API.
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}
