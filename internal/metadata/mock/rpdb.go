package mock

import (
	"context"
	"fmt"
	"sync"
)

// PosterClient is a mock poster override client. Only URLs marked with
// SetExists are reported as existing.
type PosterClient struct {
	mu      sync.Mutex
	exists  map[string]bool
	probes  int
	langs   []string
	onProbe func()
}

// NewPosterClient creates a mock poster client where nothing exists.
func NewPosterClient() *PosterClient {
	return &PosterClient{exists: make(map[string]bool)}
}

// SetExists marks a poster URL as existing or missing.
func (c *PosterClient) SetExists(posterURL string, exists bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exists[posterURL] = exists
}

// SetOnProbe registers fn to run at the start of every probe.
func (c *PosterClient) SetOnProbe(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onProbe = fn
}

// Languages returns the language passed to every PosterURL call.
func (c *PosterClient) Languages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.langs...)
}

// Probes returns how many probes were made.
func (c *PosterClient) Probes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.probes
}

func (c *PosterClient) PosterURL(key, mediaType, id, lang string) string {
	c.mu.Lock()
	c.langs = append(c.langs, lang)
	c.mu.Unlock()
	return fmt.Sprintf("https://posters.test/%s/%s/%s.jpg", key, mediaType, id)
}

func (c *PosterClient) Exists(ctx context.Context, posterURL string) bool {
	c.mu.Lock()
	c.probes++
	hook := c.onProbe
	exists := c.exists[posterURL]
	c.mu.Unlock()

	if hook != nil {
		hook()
	}
	return exists
}
