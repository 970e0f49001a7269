// Package rpdb builds RatingPosterDB poster URLs and checks that they resolve.
package rpdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/tmdbcat/tmdbcat/internal/config"
)

// Key tiers that only serve English posters.
var englishOnlyTiers = map[string]bool{"t0": true, "t1": true}

// Client builds poster URLs and probes them.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewClient creates a new poster client.
func NewClient(cfg config.RPDBConfig, logger zerolog.Logger) *Client {
	timeout := cfg.ProbeTimeout()
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			// Redirects are followed so fallback images count as existing.
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		logger:  logger.With().Str("component", "rpdb").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "rpdb"
}

// PosterURL returns the override poster for a title. id is either a TMDB
// numeric id or an IMDb "tt" id; mediaType is "movie" or "series".
func (c *Client) PosterURL(key, mediaType, id, lang string) string {
	var path string
	if strings.HasPrefix(id, "tt") {
		path = fmt.Sprintf("%s/%s/imdb/poster-default/%s.jpg", c.baseURL, url.PathEscape(key), id)
	} else {
		path = fmt.Sprintf("%s/%s/tmdb/poster-default/%s-%s.jpg", c.baseURL, url.PathEscape(key), mediaType, id)
	}

	q := url.Values{}
	q.Set("fallback", "true")
	if l := posterLanguage(key, lang); l != "" {
		q.Set("lang", l)
	}
	return path + "?" + q.Encode()
}

// posterLanguage returns the language parameter, or "" when the key tier or
// the language itself means English posters.
func posterLanguage(key, lang string) string {
	tier, _, _ := strings.Cut(key, "-")
	if englishOnlyTiers[tier] {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	if base.String() == "en" {
		return ""
	}
	return base.String()
}

// Exists reports whether the poster URL resolves. Any failure, including the
// probe's own timeout, reads as "does not exist".
func (c *Client) Exists(ctx context.Context, posterURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, posterURL, nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Msg("poster probe failed")
		return false
	}
	resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
