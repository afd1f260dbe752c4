// Package tmdb is a small client for the parts of the TMDB API used to
// identify movies and episodes.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	mhttp "github.com/kasuboski/medialink/pkg/http"
)

// ErrNotFound is returned when the provider has no record for an id.
var ErrNotFound = errors.New("not found")

// ITmdb is the subset of the provider used for identification.
type ITmdb interface {
	SearchMovie(ctx context.Context, query string) ([]MovieResult, error)
	SearchTv(ctx context.Context, query string) ([]TvResult, error)
	GetMovie(ctx context.Context, id int32) (MovieDetails, error)
	GetTvShow(ctx context.Context, id int32) (TvDetails, error)
	GetTvExternalIds(ctx context.Context, id int32) (ExternalIDs, error)
	GetTvSeason(ctx context.Context, id int32, season int32) (SeasonDetails, error)
	GetTvEpisode(ctx context.Context, id int32, season int32, episode int32) (EpisodeDetails, error)
}

var _ ITmdb = (*Client)(nil)

type Client struct {
	baseURL *url.URL
	apiKey  string
	client  mhttp.HTTPClient
}

type ClientOption func(*Client)

// WithHTTPClient sets the http client used for requests
func WithHTTPClient(client mhttp.HTTPClient) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// New creates a client for the api at baseURL authenticated with apiKey.
func New(baseURL, apiKey string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid tmdb url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid tmdb url %q: scheme and host are required", baseURL)
	}

	c := &Client{
		baseURL: u,
		apiKey:  apiKey,
		client:  mhttp.NewRateLimitedClient(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type pagedResults[T any] struct {
	Page    int32 `json:"page"`
	Results []T   `json:"results"`
}

func (c *Client) SearchMovie(ctx context.Context, query string) ([]MovieResult, error) {
	var res pagedResults[MovieResult]
	err := c.get(ctx, "/3/search/movie", url.Values{"query": {query}}, &res)
	return res.Results, err
}

func (c *Client) SearchTv(ctx context.Context, query string) ([]TvResult, error) {
	var res pagedResults[TvResult]
	err := c.get(ctx, "/3/search/tv", url.Values{"query": {query}}, &res)
	return res.Results, err
}

func (c *Client) GetMovie(ctx context.Context, id int32) (MovieDetails, error) {
	var res MovieDetails
	err := c.get(ctx, "/3/movie/"+itoa(id), nil, &res)
	return res, err
}

func (c *Client) GetTvShow(ctx context.Context, id int32) (TvDetails, error) {
	var res TvDetails
	err := c.get(ctx, "/3/tv/"+itoa(id), nil, &res)
	return res, err
}

func (c *Client) GetTvExternalIds(ctx context.Context, id int32) (ExternalIDs, error) {
	var res ExternalIDs
	err := c.get(ctx, "/3/tv/"+itoa(id)+"/external_ids", nil, &res)
	return res, err
}

func (c *Client) GetTvSeason(ctx context.Context, id int32, season int32) (SeasonDetails, error) {
	var res SeasonDetails
	err := c.get(ctx, fmt.Sprintf("/3/tv/%d/season/%d", id, season), nil, &res)
	return res, err
}

func (c *Client) GetTvEpisode(ctx context.Context, id int32, season int32, episode int32) (EpisodeDetails, error) {
	var res EpisodeDetails
	err := c.get(ctx, fmt.Sprintf("/3/tv/%d/season/%d/episode/%d", id, season, episode), nil, &res)
	return res, err
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	if err := SetRequestAPIKey(c.apiKey)(ctx, req); err != nil {
		return err
	}

	res, err := c.client.Do(req)
	if res != nil {
		defer res.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("tmdb request %s failed: %w", path, err)
	}

	return parseResponse(res, out)
}

func parseResponse(res *http.Response, out any) error {
	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("unexpected status code %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode tmdb response: %w", err)
	}

	return nil
}

// SetRequestAPIKey authenticates a request with a bearer token.
func SetRequestAPIKey(apiKey string) func(ctx context.Context, req *http.Request) error {
	return func(ctx context.Context, req *http.Request) error {
		req.Header.Set("Authorization", "Bearer "+apiKey)
		req.Header.Set("accept", "application/json")
		return nil
	}
}

func itoa(i int32) string {
	return strconv.FormatInt(int64(i), 10)
}
