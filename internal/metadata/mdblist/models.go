package mdblist

// List is one of a user's lists from /lists/user.
type List struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	MediaType   string `json:"mediatype"` // "movie", "show" or "" for mixed
	Items       int    `json:"items"`
	Likes       int    `json:"likes"`
	Private     bool   `json:"private"`
	Dynamic     bool   `json:"dynamic"`
}

// Media types reported by MDBList.
const (
	MediaMovie = "movie"
	MediaShow  = "show"
)

// ListItemsResponse is the response from /lists/{id}/items.
type ListItemsResponse struct {
	Movies []Item `json:"movies"`
	Shows  []Item `json:"shows"`
}

// Item is a raw list entry. Only ID and Title are guaranteed; the poster,
// genres and cross-references are present on some lists and absent on others.
type Item struct {
	ID          int     `json:"id"`
	Rank        int     `json:"rank"`
	Title       string  `json:"title"`
	ReleaseYear int     `json:"release_year"`
	MediaType   string  `json:"mediatype"`
	TMDBID      int     `json:"tmdb_id,omitempty"`
	IMDbID      string  `json:"imdb_id,omitempty"`
	TVDBID      int     `json:"tvdb_id,omitempty"`
	Poster      string  `json:"poster,omitempty"`
	Backdrop    string  `json:"backdrop,omitempty"`
	Description string  `json:"description,omitempty"`
	Genres      []Genre `json:"genres,omitempty"`
	Runtime     int     `json:"runtime,omitempty"`
	Score       float64 `json:"score,omitempty"`
}

// Genre is a genre reference on a list item.
type Genre struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// HasCrossReference reports whether the item can be enriched from the
// general provider.
func (i Item) HasCrossReference() bool {
	return i.TMDBID > 0 || i.IMDbID != ""
}

// ErrorResponse is an error body from the MDBList API.
type ErrorResponse struct {
	Error string `json:"error"`
}
