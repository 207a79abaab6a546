package api

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
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thesavant42/renewables-explorer/internal/models"
)

const (
	userAgent       = "renewables-explorer/1.0"
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 512
)

// ErrRequest wraps every failure of a call: transport errors, non-200
// statuses and undecodable bodies alike.
var ErrRequest = errors.New("api request failed")

// Client talks to the explorer data API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limit      int
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLimit sets the row limit sent with data requests. 0 omits it.
func WithLimit(limit int) Option {
	return func(c *Client) { c.limit = limit }
}

// WithLogger enables request logging.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for the API at baseURL.
// timeout 0 means requests only end when their context does.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the endpoint the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListSources fetches the dataset names (GET /sources).
func (c *Client) ListSources(ctx context.Context) ([]models.Source, error) {
	var sources []models.Source
	if err := c.getJSON(ctx, "/sources", nil, &sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// ListSourcesWithMetadata fetches the descriptive catalog
// (GET /sources_with_metadata).
func (c *Client) ListSourcesWithMetadata(ctx context.Context) (map[models.Source]models.SourceMetadata, error) {
	meta := make(map[models.Source]models.SourceMetadata)
	if err := c.getJSON(ctx, "/sources_with_metadata", nil, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// FetchCatalog loads the source list and the metadata concurrently.
// Only a source list failure is returned; metadata is best effort.
func (c *Client) FetchCatalog(ctx context.Context) (models.Catalog, error) {
	var catalog models.Catalog
	var g errgroup.Group

	g.Go(func() error {
		sources, err := c.ListSources(ctx)
		if err != nil {
			return err
		}
		catalog.Sources = sources
		return nil
	})

	g.Go(func() error {
		meta, err := c.ListSourcesWithMetadata(ctx)
		if err != nil {
			c.logWarn("Metadata unavailable", "error", err)
			return nil
		}
		catalog.Metadata = meta
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.Catalog{}, err
	}
	return catalog, nil
}

// FetchData fetches the records of one source (GET /data/{source}).
// Blank filters are not sent.
func (c *Client) FetchData(ctx context.Context, source models.Source, filters models.Filters) (*models.DataResponse, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: empty source name", ErrRequest)
	}

	params := filters.Values()
	if c.limit > 0 {
		params.Set("limit", strconv.Itoa(c.limit))
	}

	var resp models.DataResponse
	if err := c.getJSON(ctx, "/data/"+url.PathEscape(source), params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = models.Records{}
	}
	return &resp, nil
}

// BuildURL joins the base URL, a path and query parameters.
func (c *Client) BuildURL(path string, params url.Values) string {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.BuildURL(path, params)
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logError("Failed to create request", "url", endpoint, "error", err)
		return fmt.Errorf("%w: failed to create request: %v", ErrRequest, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)

	c.logInfo("GET", "endpoint", endpoint, "request_id", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logError("Request failed", "url", endpoint, "request_id", requestID, "error", err)
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	c.logDebug("Response", "status", resp.StatusCode, "request_id", requestID, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logError("API error", "status", resp.StatusCode, "request_id", requestID, "response", string(body))
		return fmt.Errorf("%w: status %d: %s", ErrRequest, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logError("Failed to decode response", "url", endpoint, "request_id", requestID, "error", err)
		return fmt.Errorf("%w: failed to decode response: %v", ErrRequest, err)
	}
	return nil
}

func (c *Client) logInfo(msg string, kv ...any) {
	if c.logger != nil {
		c.logger.Info(msg, kv...)
	}
}

func (c *Client) logDebug(msg string, kv ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, kv...)
	}
}

func (c *Client) logWarn(msg string, kv ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, kv...)
	}
}

func (c *Client) logError(msg string, kv ...any) {
	if c.logger != nil {
		c.logger.Error(msg, kv...)
	}
}
