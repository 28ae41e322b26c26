// Package tmdb is a read-only client for The Movie Database v3 API.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"advancedapi/internal/cache"
	"advancedapi/internal/logging"
	"advancedapi/internal/metrics"
	"advancedapi/internal/model"
)

// ErrNotFound is returned when the provider does not know the requested movie.
var ErrNotFound = errors.New("tmdb: movie not found")

// ErrDisabled is returned by every call when no API key is configured.
var ErrDisabled = errors.New("tmdb: provider not configured")

const (
	defaultBaseURL      = "https://api.themoviedb.org/3"
	defaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	maxResponseBytes    = 4 << 20
)

// Config configures the provider client.
type Config struct {
	APIKey         string
	BaseURL        string
	ImageBaseURL   string
	Language       string
	CacheTTL       time.Duration
	BreakerTimeout time.Duration
	HTTPClient     *http.Client
}

// Client calls the provider through a circuit breaker and caches raw responses.
type Client struct {
	cfg   Config
	http  *http.Client
	cb    *gobreaker.CircuitBreaker[[]byte]
	cache *cache.Client
}

// New creates a provider client. The cache may be nil.
func New(cfg Config, c *cache.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = defaultImageBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = "ar"
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:   cfg,
		http:  httpClient,
		cb:    newBreaker(cfg.BreakerTimeout),
		cache: c,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.APIKey != ""
}

type movieResult struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	Runtime          int     `json:"runtime"`
	Budget           int64   `json:"budget"`
	Revenue          int64   `json:"revenue"`
	ImdbID           string  `json:"imdb_id"`
	Genres           []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

type pageResponse struct {
	Page    int           `json:"page"`
	Results []movieResult `json:"results"`
}

// Search runs a title search.
func (c *Client) Search(ctx context.Context, query string, page int) ([]model.MovieSummary, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	var resp pageResponse
	if err := c.getJSON(ctx, "search", "/search/movie", params, &resp); err != nil {
		return nil, err
	}
	out := make([]model.MovieSummary, 0, len(resp.Results))
	for _, m := range resp.Results {
		out = append(out, c.summary(m))
	}
	return out, nil
}

// Popular returns one page of the provider's popular list.
func (c *Client) Popular(ctx context.Context, page int) ([]model.MovieSummary, error) {
	results, err := c.popular(ctx, page)
	if err != nil {
		return nil, err
	}
	out := make([]model.MovieSummary, 0, len(results))
	for _, m := range results {
		out = append(out, c.summary(m))
	}
	return out, nil
}

// PopularCatalog returns one page of the popular list shaped as catalog entries.
func (c *Client) PopularCatalog(ctx context.Context, page int) ([]model.Movie, error) {
	results, err := c.popular(ctx, page)
	if err != nil {
		return nil, err
	}
	out := make([]model.Movie, 0, len(results))
	for _, m := range results {
		out = append(out, c.catalogEntry(m))
	}
	return out, nil
}

// Details fetches a single movie by provider id.
func (c *Client) Details(ctx context.Context, id int64) (*model.MovieDetails, error) {
	var m movieResult
	if err := c.getJSON(ctx, "details", "/movie/"+strconv.FormatInt(id, 10), url.Values{}, &m); err != nil {
		return nil, err
	}
	genres := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		genres = append(genres, g.Name)
	}
	s := c.summary(m)
	s.Genres = genres
	return &model.MovieDetails{
		MovieSummary: s,
		Runtime:      m.Runtime,
		Budget:       m.Budget,
		Revenue:      m.Revenue,
	}, nil
}

func (c *Client) popular(ctx context.Context, page int) ([]movieResult, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var resp pageResponse
	if err := c.getJSON(ctx, "popular", "/movie/popular", params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) summary(m movieResult) model.MovieSummary {
	return model.MovieSummary{
		ID:          strconv.FormatInt(m.ID, 10),
		Title:       m.Title,
		Overview:    m.Overview,
		ReleaseDate: m.ReleaseDate,
		Rating:      m.VoteAverage,
		Poster:      c.imageURL(m.PosterPath),
		Genres:      []string{},
		Source:      model.SourceTMDB,
	}
}

func (c *Client) catalogEntry(m movieResult) model.Movie {
	tmdbID := m.ID
	movie := model.Movie{
		Title:         m.Title,
		OriginalTitle: m.OriginalTitle,
		Overview:      m.Overview,
		Rating:        m.VoteAverage,
		VoteCount:     m.VoteCount,
		Language:      m.OriginalLanguage,
		Genres:        []string{},
		ExternalIDs:   model.ExternalIDs{TMDBID: &tmdbID, IMDBID: m.ImdbID},
		IsActive:      true,
	}
	if d, err := time.Parse("2006-01-02", m.ReleaseDate); err == nil {
		movie.ReleaseDate = &d
	}
	if p := c.imageURL(m.PosterPath); p != nil {
		movie.Poster = *p
	}
	if b := c.imageURL(m.BackdropPath); b != nil {
		movie.Backdrop = *b
	}
	return movie
}

func (c *Client) imageURL(path string) *string {
	if path == "" {
		return nil
	}
	u := c.cfg.ImageBaseURL + path
	return &u
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	body, err := c.fetch(ctx, endpoint, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("tmdb %s: decode: %w", endpoint, err)
	}
	return nil
}

// fetch serves from cache when possible, otherwise calls the provider through the breaker.
func (c *Client) fetch(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	params.Set("language", c.cfg.Language)
	cacheKey := "tmdb:" + path + "?" + params.Encode()

	if cached, _ := c.cache.Get(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.do(ctx, path, params)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.ProviderRequests.WithLabelValues(endpoint, "rejected").Inc()
		logging.Warn().Err(err).Str("endpoint", endpoint).Msg("[CIRCUIT BREAKER] Request rejected")
		return nil, err
	case err != nil:
		metrics.ProviderRequests.WithLabelValues(endpoint, "failure").Inc()
		return nil, err
	}
	metrics.ProviderRequests.WithLabelValues(endpoint, "success").Inc()

	_ = c.cache.Set(ctx, cacheKey, body, c.cfg.CacheTTL)
	return body, nil
}

func (c *Client) do(ctx context.Context, path string, params url.Values) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("api_key", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("tmdb: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb: %s returned status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("tmdb: read %s: %w", path, err)
	}
	return body, nil
}
