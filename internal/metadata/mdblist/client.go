package mdblist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/tmdbcat/tmdbcat/internal/config"
)

var (
	ErrAPIKeyMissing = errors.New("MDBList API key is not configured")
	ErrListNotFound  = errors.New("MDBList list not found")
	ErrInvalidKey    = errors.New("MDBList API key rejected")
	ErrAPIError      = errors.New("MDBList API error")
	ErrRateLimited   = errors.New("MDBList API rate limited")
)

// StateListener is notified when the client's circuit breaker changes state.
type StateListener func(name string, from, to gobreaker.State)

// Client is an MDBList API client. The API key belongs to the end user and is
// passed on every call.
type Client struct {
	httpClient *http.Client
	config     config.MDBListConfig
	breaker    *gobreaker.CircuitBreaker[struct{}]
	logger     zerolog.Logger
}

// NewClient creates a new MDBList client.
func NewClient(cfg config.MDBListConfig, logger zerolog.Logger, onStateChange StateListener) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "mdblist").Logger(),
	}

	c.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:     c.Name(),
		Interval: time.Minute,
		Timeout:  time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// A bad user key or a missing list says nothing about upstream health.
			return err == nil ||
				errors.Is(err, ErrListNotFound) ||
				errors.Is(err, ErrAPIKeyMissing) ||
				errors.Is(err, ErrInvalidKey) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			if onStateChange != nil {
				onStateChange(name, from, to)
			}
		},
	})

	return c
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "mdblist"
}

// UserLists enumerates the lists owned by the key's user.
func (c *Client) UserLists(ctx context.Context, apiKey string) ([]List, error) {
	var lists []List
	if err := c.doRequest(ctx, apiKey, "/lists/user", nil, &lists); err != nil {
		return nil, err
	}

	c.logger.Debug().Int("lists", len(lists)).Msg("Fetched user lists")
	return lists, nil
}

// ListItems returns one page of a list.
func (c *Client) ListItems(ctx context.Context, apiKey string, listID, limit, offset int) (*ListItemsResponse, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var response ListItemsResponse
	endpoint := fmt.Sprintf("/lists/%d/items", listID)
	if err := c.doRequest(ctx, apiKey, endpoint, params, &response); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("list", listID).
		Int("offset", offset).
		Int("movies", len(response.Movies)).
		Int("shows", len(response.Shows)).
		Msg("Fetched list items")

	return &response, nil
}

func (c *Client) doRequest(ctx context.Context, apiKey, path string, params url.Values, result any) error {
	if apiKey == "" {
		return ErrAPIKeyMissing
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("apikey", apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.config.BaseURL, path, q.Encode())

	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.fetch(ctx, reqURL, path, result)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrAPIError, err)
	}
	return err
}

func (c *Client) fetch(ctx context.Context, reqURL, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return requestError(path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			c.logger.Warn().
				Int("status", resp.StatusCode).
				Str("path", path).
				Str("message", errResp.Error).
				Msg("MDBList API error")
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrListNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrInvalidKey
		case http.StatusTooManyRequests:
			return ErrRateLimited
		default:
			return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
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
