// Package tmdb is the remote catalog client for The Movie Database v3 API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/mmcdole/reel/internal/domain"
)

const (
	// DefaultBaseURL is the TMDB v3 API root
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultImageBaseURL serves poster, backdrop and profile images
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"

	defaultTimeout = 15 * time.Second
	defaultRPS     = 20
	userAgent      = "Reel/1.0"

	// maxBodyExcerpt bounds the response body kept on HTTP failures
	maxBodyExcerpt = 200
)

// Client implements domain.CatalogClient for TMDB.
// It never retries; every failure comes back as a *domain.Failure.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

var _ domain.CatalogClient = (*Client)(nil)

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outgoing requests per second (0 disables pacing)
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a TMDB client. An empty baseURL uses DefaultBaseURL.
// An empty apiKey is accepted; every call then fails with a missing
// credential failure without touching the network.
func NewClient(baseURL, apiKey string, logger *slog.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRPS), 1),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doRequest performs a GET against path and returns the body of a 2xx response
func (c *Client) doRequest(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, &domain.Failure{Kind: domain.FailureMissingCredential, Op: op}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &domain.Failure{Kind: domain.FailureTransport, Op: op, Detail: err.Error()}
		}
	}

	if query == nil {
		query = url.Values{}
	}
	logURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())
	query.Set("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &domain.Failure{Kind: domain.FailureTransport, Op: op, Detail: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("tmdb request", "op", op, "url", logURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("tmdb request failed", "op", op, "error", redact(err, c.apiKey))
		return nil, &domain.Failure{Kind: domain.FailureTransport, Op: op, Detail: transportDetail(err, c.apiKey)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.Failure{Kind: domain.FailureTransport, Op: op, Detail: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := excerpt(body)
		c.logger.Error("tmdb request error", "op", op, "status", resp.StatusCode, "body", excerpt)
		return nil, &domain.Failure{Kind: domain.FailureHTTP, Op: op, Code: resp.StatusCode, Body: excerpt}
	}

	return body, nil
}

// decode unmarshals body into dest, mapping errors to a decode failure
func (c *Client) decode(op string, body []byte, dest interface{}) error {
	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Error("tmdb parse error", "op", op, "error", err, "bodyLen", len(body))
		return &domain.Failure{Kind: domain.FailureDecode, Op: op, Detail: err.Error()}
	}
	return nil
}

func (c *Client) fetchPage(ctx context.Context, op, path string, query url.Values) (*domain.ItemPage, error) {
	body, err := c.doRequest(ctx, op, path, query)
	if err != nil {
		return nil, err
	}
	var resp PageResponse
	if err := c.decode(op, body, &resp); err != nil {
		return nil, err
	}
	return MapPage(&resp), nil
}

// Popular fetches one page of movie/popular
func (c *Client) Popular(ctx context.Context, page int, language string) (*domain.ItemPage, error) {
	return c.fetchPage(ctx, domain.OpPopular, "/movie/popular", pageQuery(page, language))
}

// Search fetches one page of search/movie for query
func (c *Client) Search(ctx context.Context, query string, page int, language string) (*domain.ItemPage, error) {
	q := pageQuery(page, language)
	q.Set("query", query)
	return c.fetchPage(ctx, domain.OpSearch, "/search/movie", q)
}

// Discover fetches one page of discover/movie filtered by genres and year
func (c *Client) Discover(ctx context.Context, dq domain.DiscoverQuery, language string) (*domain.ItemPage, error) {
	q := pageQuery(dq.Page, language)
	if genres := dq.GenreParam(); genres != "" {
		q.Set("with_genres", genres)
	}
	if dq.Year > 0 {
		q.Set("primary_release_year", strconv.Itoa(dq.Year))
	}
	sortBy := dq.SortBy
	if sortBy == "" {
		sortBy = domain.DefaultSortBy
	}
	q.Set("sort_by", sortBy)
	return c.fetchPage(ctx, domain.OpDiscover, "/discover/movie", q)
}

// Details fetches movie/{id}
func (c *Client) Details(ctx context.Context, id int64, language string) (*domain.CatalogItem, error) {
	path := fmt.Sprintf("/movie/%d", id)
	body, err := c.doRequest(ctx, domain.OpDetails, path, languageQuery(language))
	if err != nil {
		return nil, err
	}
	var dto DetailsDTO
	if err := c.decode(domain.OpDetails, body, &dto); err != nil {
		return nil, err
	}
	return MapDetails(&dto), nil
}

// Credits fetches movie/{id}/credits and returns the cast
func (c *Client) Credits(ctx context.Context, id int64, language string) ([]domain.CastMember, error) {
	path := fmt.Sprintf("/movie/%d/credits", id)
	body, err := c.doRequest(ctx, domain.OpCredits, path, languageQuery(language))
	if err != nil {
		return nil, err
	}
	var resp CreditsResponse
	if err := c.decode(domain.OpCredits, body, &resp); err != nil {
		return nil, err
	}
	return MapCast(resp.Cast), nil
}

func languageQuery(language string) url.Values {
	q := url.Values{}
	if language != "" {
		q.Set("language", language)
	}
	return q
}

func pageQuery(page int, language string) url.Values {
	if page < 1 {
		page = 1
	}
	q := languageQuery(language)
	q.Set("page", strconv.Itoa(page))
	return q
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= maxBodyExcerpt {
		return s
	}
	cut := maxBodyExcerpt
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// transportDetail unwraps *url.Error so the message does not repeat the URL
func transportDetail(err error, apiKey string) string {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return redact(uerr.Err, apiKey)
	}
	return redact(err, apiKey)
}

func redact(err error, apiKey string) string {
	if apiKey == "" {
		return err.Error()
	}
	return strings.ReplaceAll(err.Error(), apiKey, "***")
}
