package mock

import (
	"context"
	"sync"

	"github.com/tmdbcat/tmdbcat/internal/metadata/mdblist"
)

// MDBListClient is a mock implementation of the MDBList client. Lists are
// keyed by id; any non-empty key is accepted.
type MDBListClient struct {
	mu    sync.Mutex
	lists []mdblist.List
	items map[int]*mdblist.ListItemsResponse
	err   error
	calls int

	lastLimit, lastOffset int
}

// NewMDBListClient creates a mock list client with two sample lists.
func NewMDBListClient() *MDBListClient {
	return &MDBListClient{
		lists: []mdblist.List{
			{ID: 14, Name: "Mind Benders", Slug: "mind-benders", MediaType: mdblist.MediaMovie, Items: 3},
			{ID: 27, Name: "Prestige TV", Slug: "prestige-tv", MediaType: mdblist.MediaShow, Items: 2},
		},
		items: map[int]*mdblist.ListItemsResponse{
			14: {Movies: []mdblist.Item{
				{ID: 1, Rank: 1, Title: "The Matrix", ReleaseYear: 1999, MediaType: mdblist.MediaMovie, TMDBID: 603, IMDbID: "tt0133093"},
				{ID: 2, Rank: 2, Title: "Inception", ReleaseYear: 2010, MediaType: mdblist.MediaMovie, TMDBID: 27205,
					Poster: "https://example.org/inception.jpg", Genres: []mdblist.Genre{{Name: "Science Fiction"}}},
				{ID: 3, Rank: 3, Title: "Primer", ReleaseYear: 2004, MediaType: mdblist.MediaMovie},
			}},
			27: {Shows: []mdblist.Item{
				{ID: 4, Rank: 1, Title: "Breaking Bad", ReleaseYear: 2008, MediaType: mdblist.MediaShow, TMDBID: 1396},
				{ID: 5, Rank: 2, Title: "The Wire", ReleaseYear: 2002, MediaType: mdblist.MediaShow, IMDbID: "tt0306414"},
			}},
		},
	}
}

// SetLists replaces the user's lists.
func (c *MDBListClient) SetLists(lists []mdblist.List) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists = lists
}

// SetItems replaces the items of one list.
func (c *MDBListClient) SetItems(listID int, items *mdblist.ListItemsResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[listID] = items
}

// SetErr makes every following call fail with err.
func (c *MDBListClient) SetErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Calls returns the number of calls made.
func (c *MDBListClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// LastWindow returns the limit and offset of the latest ListItems call.
func (c *MDBListClient) LastWindow() (limit, offset int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastLimit, c.lastOffset
}

func (c *MDBListClient) Name() string {
	return "mdblist-mock"
}

func (c *MDBListClient) UserLists(ctx context.Context, apiKey string) ([]mdblist.List, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if apiKey == "" {
		return nil, mdblist.ErrAPIKeyMissing
	}
	if c.err != nil {
		return nil, c.err
	}
	return append([]mdblist.List(nil), c.lists...), nil
}

func (c *MDBListClient) ListItems(ctx context.Context, apiKey string, listID, limit, offset int) (*mdblist.ListItemsResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.lastLimit, c.lastOffset = limit, offset
	if apiKey == "" {
		return nil, mdblist.ErrAPIKeyMissing
	}
	if c.err != nil {
		return nil, c.err
	}
	items, ok := c.items[listID]
	if !ok {
		return nil, mdblist.ErrListNotFound
	}
	return &mdblist.ListItemsResponse{
		Movies: window(items.Movies, limit, offset),
		Shows:  window(items.Shows, limit, offset),
	}, nil
}

func window(items []mdblist.Item, limit, offset int) []mdblist.Item {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return append([]mdblist.Item(nil), items[offset:end]...)
}
