// Package tmdb wraps the TMDB API for search, discovery, listings and
// detail pages. All calls are read-only.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
)

// Config points the client at a TMDB-compatible API. Everything the
// client needs is injected here so tests can aim it at a fake server.
type Config struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

func New(cfg Config) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if strings.TrimSpace(cfg.ImageBaseURL) == "" {
		cfg.ImageBaseURL = DefaultImageBaseURL
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		// TMDB allows roughly 50 req/s per key; stay under it.
		limiter: rate.NewLimiter(rate.Limit(40), 40),
	}
}

// ImageBaseURL returns the configured base for poster/backdrop paths.
func (c *Client) ImageBaseURL() string { return c.cfg.ImageBaseURL }

// StatusError is a non-success HTTP response from TMDB.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string { return "tmdb: " + e.Status }

// IsNotFound reports whether err is a TMDB 404.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dst any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.cfg.APIKey)
	params.Set("language", "en-US")
	endpoint := c.cfg.BaseURL + path + "?" + params.Encode()

	return retry.Do(
		func() error { return c.fetch(ctx, endpoint, dst) },
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)
}

func (c *Client) fetch(ctx context.Context, endpoint string, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		statusErr := &StatusError{Code: resp.StatusCode, Status: resp.Status}
		if cerr := resp.Body.Close(); cerr != nil {
			return errors.Join(statusErr, cerr)
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		if cerr := resp.Body.Close(); cerr != nil {
			return errors.Join(err, cerr)
		}
		return err
	}
	return resp.Body.Close()
}

func isTransient(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// SearchMovies runs a free-text movie search. The optional year pins
// results to a single primary release year; the search endpoint
// supports no other structured filters.
func (c *Client) SearchMovies(ctx context.Context, query string, page int, primaryReleaseYear *int) (Page[Movie], error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(normalizePage(page)))
	params.Set("include_adult", "false")
	if primaryReleaseYear != nil {
		params.Set("primary_release_year", strconv.Itoa(*primaryReleaseYear))
	}
	var out Page[Movie]
	err := c.get(ctx, "/search/movie", params, &out)
	return out, err
}

// SearchTV runs a free-text TV search, optionally pinned to a first
// air date year.
func (c *Client) SearchTV(ctx context.Context, query string, page int, firstAirDateYear *int) (Page[TVShow], error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(normalizePage(page)))
	params.Set("include_adult", "false")
	if firstAirDateYear != nil {
		params.Set("first_air_date_year", strconv.Itoa(*firstAirDateYear))
	}
	var out Page[TVShow]
	err := c.get(ctx, "/search/tv", params, &out)
	return out, err
}

// DiscoverFilters are the structured constraints for discover queries.
type DiscoverFilters struct {
	Sort       string // "<property>.<direction>", empty means popularity.desc
	GenreIDs   []int
	YearFrom   string // 4-digit year, inclusive
	YearTo     string
	RatingFrom *float64
	RatingTo   *float64
}

func (c *Client) DiscoverMovies(ctx context.Context, filters DiscoverFilters, page int) (Page[Movie], error) {
	params := discoverParams(filters, page, "primary_release_date")
	params.Set("include_video", "false")
	var out Page[Movie]
	err := c.get(ctx, "/discover/movie", params, &out)
	return out, err
}

func (c *Client) DiscoverTV(ctx context.Context, filters DiscoverFilters, page int) (Page[TVShow], error) {
	params := discoverParams(filters, page, "first_air_date")
	params.Set("include_null_first_air_dates", "false")
	var out Page[TVShow]
	err := c.get(ctx, "/discover/tv", params, &out)
	return out, err
}

func discoverParams(filters DiscoverFilters, page int, dateField string) url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(normalizePage(page)))
	params.Set("include_adult", "false")

	sort := strings.TrimSpace(filters.Sort)
	if sort == "" {
		sort = "popularity.desc"
	}
	params.Set("sort_by", sort)

	if len(filters.GenreIDs) > 0 {
		ids := make([]string, 0, len(filters.GenreIDs))
		for _, id := range filters.GenreIDs {
			ids = append(ids, strconv.Itoa(id))
		}
		params.Set("with_genres", strings.Join(ids, ","))
	}
	// Year bounds expand to full calendar days, inclusive.
	if filters.YearFrom != "" {
		params.Set(dateField+".gte", filters.YearFrom+"-01-01")
	}
	if filters.YearTo != "" {
		params.Set(dateField+".lte", filters.YearTo+"-12-31")
	}
	if filters.RatingFrom != nil {
		params.Set("vote_average.gte", formatRating(*filters.RatingFrom))
	}
	if filters.RatingTo != nil {
		params.Set("vote_average.lte", formatRating(*filters.RatingTo))
	}
	return params
}

func (c *Client) PopularMovies(ctx context.Context, page int) (Page[Movie], error) {
	return c.movieList(ctx, "/movie/popular", page)
}

func (c *Client) TopRatedMovies(ctx context.Context, page int) (Page[Movie], error) {
	return c.movieList(ctx, "/movie/top_rated", page)
}

func (c *Client) NowPlayingMovies(ctx context.Context, page int) (Page[Movie], error) {
	return c.movieList(ctx, "/movie/now_playing", page)
}

func (c *Client) movieList(ctx context.Context, path string, page int) (Page[Movie], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(normalizePage(page)))
	var out Page[Movie]
	err := c.get(ctx, path, params, &out)
	return out, err
}

func (c *Client) PopularTV(ctx context.Context, page int) (Page[TVShow], error) {
	return c.tvList(ctx, "/tv/popular", page)
}

func (c *Client) TopRatedTV(ctx context.Context, page int) (Page[TVShow], error) {
	return c.tvList(ctx, "/tv/top_rated", page)
}

func (c *Client) tvList(ctx context.Context, path string, page int) (Page[TVShow], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(normalizePage(page)))
	var out Page[TVShow]
	err := c.get(ctx, path, params, &out)
	return out, err
}

func (c *Client) PopularPeople(ctx context.Context, page int) (Page[Person], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(normalizePage(page)))
	var out Page[Person]
	err := c.get(ctx, "/person/popular", params, &out)
	return out, err
}

func (c *Client) MovieGenres(ctx context.Context) ([]Genre, error) {
	return c.genreList(ctx, "/genre/movie/list")
}

func (c *Client) TVGenres(ctx context.Context) ([]Genre, error) {
	return c.genreList(ctx, "/genre/tv/list")
}

func (c *Client) genreList(ctx context.Context, path string) ([]Genre, error) {
	var out struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

func (c *Client) MovieDetails(ctx context.Context, id int64) (*MovieDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "videos,credits,reviews,recommendations,release_dates")
	var out MovieDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TVDetails(ctx context.Context, id int64) (*TVDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "videos,credits,reviews,recommendations")
	var out TVDetails
	if err := c.get(ctx, fmt.Sprintf("/tv/%d", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PersonDetails(ctx context.Context, id int64) (*PersonDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "combined_credits")
	var out PersonDetails
	if err := c.get(ctx, fmt.Sprintf("/person/%d", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func formatRating(val float64) string {
	return strconv.FormatFloat(val, 'f', 1, 64)
}

// YearFromDate extracts the leading year from a YYYY-MM-DD date.
func YearFromDate(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// ParseYear parses a year string, returning nil when absent or
// malformed.
func ParseYear(year string) *int {
	year = strings.TrimSpace(year)
	if year == "" {
		return nil
	}
	val, err := strconv.Atoi(year)
	if err != nil {
		return nil
	}
	return &val
}
