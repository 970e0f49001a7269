package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tmdbcat/tmdbcat/internal/config"
	"github.com/tmdbcat/tmdbcat/internal/startup"
)

var (
	ErrAPIKeyMissing  = errors.New("TMDB API key is not configured")
	ErrNotFound       = errors.New("TMDB resource not found")
	ErrAPIError       = errors.New("TMDB API error")
	ErrRateLimited    = errors.New("TMDB API rate limited")
	ErrServerError    = errors.New("TMDB server error")
	ErrSessionMissing = errors.New("TMDB session is required")
)

// Trending time windows.
const (
	WindowDay  = "day"
	WindowWeek = "week"
)

// Account lists.
const (
	ListFavorite  = "favorite"
	ListWatchlist = "watchlist"
)

// StateListener is notified when the client's circuit breaker changes state.
type StateListener func(name string, from, to gobreaker.State)

// Option configures a Client.
type Option func(*Client)

// WithStateListener registers a breaker state listener.
func WithStateListener(fn StateListener) Option {
	return func(c *Client) {
		c.onStateChange = fn
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Client is a TMDB API client. Every request passes through a rate limiter,
// a circuit breaker and a bounded retry for transient failures.
type Client struct {
	httpClient    *http.Client
	config        config.TMDBConfig
	limiter       *rate.Limiter
	breaker       *gobreaker.CircuitBreaker[struct{}]
	onStateChange StateListener
	retryDelay    time.Duration
	logger        zerolog.Logger
}

// NewClient creates a new TMDB client.
func NewClient(cfg config.TMDBConfig, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config:     cfg,
		limiter:    rate.NewLimiter(rate.Inf, 0),
		retryDelay: 250 * time.Millisecond,
		logger:     logger.With().Str("component", "tmdb").Logger(),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        c.Name(),
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return !isTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			if c.onStateChange != nil {
				c.onStateChange(name, from, to)
			}
		},
	})

	return c
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "tmdb"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// BreakerState returns the current circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// Test verifies connectivity to the TMDB API by making a configuration request.
func (c *Client) Test(ctx context.Context) error {
	var result struct {
		Images struct {
			SecureBaseURL string `json:"secure_base_url"`
		} `json:"images"`
	}
	return c.doRequest(ctx, "/configuration", nil, &result)
}

// Discover runs /discover/{media} with caller-built filter parameters.
func (c *Client) Discover(ctx context.Context, media MediaType, params url.Values) (*PageResponse, error) {
	var response PageResponse
	if err := c.doRequest(ctx, "/discover/"+string(media), params, &response); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("media", string(media)).
		Str("params", params.Encode()).
		Int("results", len(response.Results)).
		Msg("Discover completed")

	return &response, nil
}

// SearchParams holds the inputs of a free-text search.
type SearchParams struct {
	Query        string
	Language     string
	Page         int
	IncludeAdult bool
}

// Search runs /search/{media}.
func (c *Client) Search(ctx context.Context, media MediaType, p SearchParams) (*PageResponse, error) {
	params := url.Values{}
	params.Set("query", p.Query)
	params.Set("include_adult", strconv.FormatBool(p.IncludeAdult))
	setLanguagePage(params, p.Language, p.Page)

	var response PageResponse
	if err := c.doRequest(ctx, "/search/"+string(media), params, &response); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("media", string(media)).
		Str("query", p.Query).
		Int("results", len(response.Results)).
		Msg("Search completed")

	return &response, nil
}

// Trending runs /trending/{media}/{window}.
func (c *Client) Trending(ctx context.Context, media MediaType, window, language string, page int) (*PageResponse, error) {
	if window != WindowWeek {
		window = WindowDay
	}
	params := url.Values{}
	setLanguagePage(params, language, page)

	var response PageResponse
	endpoint := fmt.Sprintf("/trending/%s/%s", media, window)
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Account returns the account behind a session.
func (c *Client) Account(ctx context.Context, sessionID string) (*Account, error) {
	if sessionID == "" {
		return nil, ErrSessionMissing
	}
	params := url.Values{}
	params.Set("session_id", sessionID)

	var account Account
	if err := c.doRequest(ctx, "/account", params, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// AccountListRequest addresses one page of a session-scoped list.
type AccountListRequest struct {
	AccountID int
	SessionID string
	List      string // ListFavorite or ListWatchlist
	Media     MediaType
	Language  string
	Page      int
	SortBy    string
}

// AccountList runs /account/{id}/{favorite|watchlist}/{movies|tv}.
func (c *Client) AccountList(ctx context.Context, r AccountListRequest) (*PageResponse, error) {
	if r.SessionID == "" {
		return nil, ErrSessionMissing
	}
	segment := "tv"
	if r.Media == MediaMovie {
		segment = "movies"
	}

	params := url.Values{}
	params.Set("session_id", r.SessionID)
	setLanguagePage(params, r.Language, r.Page)
	if r.SortBy != "" {
		params.Set("sort_by", r.SortBy)
	}

	var response PageResponse
	endpoint := fmt.Sprintf("/account/%d/%s/%s", r.AccountID, r.List, segment)
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetMovie returns movie details with videos and external ids appended.
func (c *Client) GetMovie(ctx context.Context, id int, language string) (*MovieDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "videos,external_ids")
	setLanguagePage(params, language, 0)

	var details MovieDetails
	if err := c.doRequest(ctx, fmt.Sprintf("/movie/%d", id), params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// GetSeries returns series details with videos and external ids appended.
func (c *Client) GetSeries(ctx context.Context, id int, language string) (*TVDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "videos,external_ids")
	setLanguagePage(params, language, 0)

	var details TVDetails
	if err := c.doRequest(ctx, fmt.Sprintf("/tv/%d", id), params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// GetSeason returns one season with its episodes.
func (c *Client) GetSeason(ctx context.Context, seriesID, season int, language string) (*SeasonDetails, error) {
	params := url.Values{}
	setLanguagePage(params, language, 0)

	var details SeasonDetails
	endpoint := fmt.Sprintf("/tv/%d/season/%d", seriesID, season)
	if err := c.doRequest(ctx, endpoint, params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// FindByIMDb resolves an IMDb id to TMDB results.
func (c *Client) FindByIMDb(ctx context.Context, imdbID string) (*FindResponse, error) {
	params := url.Values{}
	params.Set("external_source", "imdb_id")

	var response FindResponse
	if err := c.doRequest(ctx, "/find/"+url.PathEscape(imdbID), params, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetGenres returns the localized genre list for a media type.
func (c *Client) GetGenres(ctx context.Context, media MediaType, language string) ([]Genre, error) {
	params := url.Values{}
	setLanguagePage(params, language, 0)

	var response GenreListResponse
	if err := c.doRequest(ctx, fmt.Sprintf("/genre/%s/list", media), params, &response); err != nil {
		return nil, err
	}
	return response.Genres, nil
}

// GetLanguages returns every language TMDB knows about.
func (c *Client) GetLanguages(ctx context.Context) ([]Language, error) {
	var languages []Language
	if err := c.doRequest(ctx, "/configuration/languages", nil, &languages); err != nil {
		return nil, err
	}
	return languages, nil
}

// GetImageURL constructs a full image URL from a path.
func (c *Client) GetImageURL(path *string, size string) string {
	if path == nil || *path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", c.config.ImageBaseURL, size, *path)
}

func setLanguagePage(params url.Values, language string, page int) {
	if language != "" {
		params.Set("language", language)
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
}

// doRequest performs a GET with rate limiting, circuit breaking and retry of
// transient failures, decoding the JSON body into result.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values, result any) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("api_key", c.config.APIKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.config.BaseURL, path, q.Encode())

	attempts := c.config.Retries + 1
	return retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			_, err := c.breaker.Execute(func() (struct{}, error) {
				return struct{}{}, c.fetch(ctx, reqURL, path, result)
			})
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return retry.Unrecoverable(fmt.Errorf("%w: %w", ErrAPIError, err))
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)
}

func (c *Client) fetch(ctx context.Context, reqURL, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Error().Err(requestError(path, err)).Msg("HTTP request failed")
		}
		return requestError(path, err)
	}
	defer resp.Body.Close()

	// Handle error responses
	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.StatusMessage != "" {
			c.logger.Warn().
				Int("status", resp.StatusCode).
				Str("path", path).
				Str("message", errResp.StatusMessage).
				Msg("TMDB API error")
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return ErrNotFound
		case resp.StatusCode == http.StatusUnauthorized:
			return fmt.Errorf("%w: unauthorized", ErrAPIError)
		case resp.StatusCode == http.StatusTooManyRequests:
			return ErrRateLimited
		case resp.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%w: status %d", ErrServerError, resp.StatusCode)
		default:
			return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// isTransient reports failures worth retrying that also count against the
// circuit breaker.
func isTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrServerError) ||
		startup.IsNetworkError(err)
}

// requestError drops the request URL from a transport error. The query
// string carries API keys and session ids, so only the path is kept.
func requestError(path string, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("HTTP request failed: %s %s: %w", urlErr.Op, path, urlErr.Err)
	}
	return fmt.Errorf("HTTP request failed: %s: %w", path, err)
}
